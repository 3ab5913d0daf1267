package audit

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesRFC5424(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetWriter(&buf)

	l.Log(AuthenticateEvent{Username: "alice", ClientIP: "10.0.0.1", Success: true})

	line := buf.String()
	// PRI = authpriv(10)*8 + info(6)
	assert.True(t, regexp.MustCompile(`^<86>1 `).MatchString(line), line)
	assert.Contains(t, line, " authn ")
	assert.Contains(t, line, `[auth@32473 user="alice"]`)
	assert.Contains(t, line, `[client@32473 ip="10.0.0.1"]`)
	assert.Contains(t, line, "alice successfully authenticated\n")
}

func TestLoggerFailedAuthSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetWriter(&buf)

	l.Log(AuthenticateEvent{Username: "mallory", ClientIP: "10.0.0.2", ErrorMessage: "invalid api key"})

	line := buf.String()
	// PRI = authpriv(10)*8 + warning(4)
	assert.True(t, regexp.MustCompile(`^<84>1 `).MatchString(line), line)
	assert.Contains(t, line, "mallory failed to authenticate: invalid api key")
}

func TestEscapeSDValue(t *testing.T) {
	assert.Equal(t, `"plain"`, escapeSDValue("plain"))
	assert.Equal(t, `"a\"b"`, escapeSDValue(`a"b`))
	assert.Equal(t, `"a\\b"`, escapeSDValue(`a\b`))
	assert.Equal(t, `"a\]b"`, escapeSDValue("a]b"))
}

func TestUpdateEventMessages(t *testing.T) {
	ok := UpdateEvent{UserID: 3, EntryID: 7, AttrName: "hostname", Success: true}
	assert.Equal(t, "user 3 updated attribute hostname of entry 7", ok.Message())
	assert.Equal(t, SeverityNotice, ok.Severity())

	failed := UpdateEvent{UserID: 3, EntryID: 7, AttrName: "hostname", ErrorMessage: "permission denied"}
	assert.Equal(t, "user 3 tried to update attribute hostname of entry 7: permission denied", failed.Message())
	assert.Equal(t, SeverityWarning, failed.Severity())
}

func TestEntryEventMessages(t *testing.T) {
	named := EntryEvent{UserID: 3, Operation: "create", EntryID: 7, EntryName: "web-01", Success: true}
	assert.Equal(t, "user 3 performed create on entry web-01", named.Message())
	assert.Equal(t, "web-01", named.StructuredData()[SDIDSubject]["name"])

	// Without a name, fall back to the id.
	anon := EntryEvent{UserID: 3, Operation: "delete", EntryID: 7, Success: true}
	assert.Equal(t, "user 3 performed delete on entry 7", anon.Message())
	_, hasName := anon.StructuredData()[SDIDSubject]["name"]
	assert.False(t, hasName)
}

func TestExportEventMessages(t *testing.T) {
	ok := ExportEvent{UserID: 3, EntityCount: 12, Success: true}
	assert.Equal(t, "user 3 exported 12 entities", ok.Message())

	failed := ExportEvent{UserID: 3, ErrorMessage: "index unavailable"}
	assert.Equal(t, "user 3 failed to export: index unavailable", failed.Message())
}

func TestStructuredDataOmittedWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetWriter(&buf)

	l.Log(emptySDEvent{})

	parts := bytes.Fields(buf.Bytes())
	require.True(t, len(parts) >= 7)
	assert.Equal(t, "-", string(parts[6]))
}

type emptySDEvent struct{}

func (emptySDEvent) MessageID() string                        { return "noop" }
func (emptySDEvent) Message() string                          { return "noop" }
func (emptySDEvent) Severity() Severity                       { return SeverityInfo }
func (emptySDEvent) Facility() int                            { return FacilityAuth }
func (emptySDEvent) StructuredData() map[string]map[string]string { return nil }
