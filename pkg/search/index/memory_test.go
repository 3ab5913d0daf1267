package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverDoc(entityID uint, name, hostname string) *Document {
	return &Document{
		Entity: DocumentEntity{ID: entityID, Name: "server"},
		Name:   name,
		Attrs: []DocumentAttr{
			{Name: "hostname", Value: hostname},
		},
	}
}

func TestMemoryRegisterAndSearch(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Register(1, serverDoc(10, "web-01", "web-01.example.com")))
	require.NoError(t, m.Register(2, serverDoc(10, "db-01", "db-01.example.com")))

	res, err := m.Search(&Query{
		EntityIDs: []uint{10},
		Attrs: []AttrFilter{{
			Name:         "hostname",
			Alternatives: [][]Term{{{Kind: TermSubstring, Text: "WEB"}}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, uint(1), res.Hits[0].EntryID)
}

func TestMemoryEntityFilter(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Register(1, serverDoc(10, "web-01", "x")))
	require.NoError(t, m.Register(2, serverDoc(20, "web-02", "x")))

	res, err := m.Search(&Query{EntityIDs: []uint{20}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, uint(2), res.Hits[0].EntryID)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Register(1, serverDoc(10, "web-01", "x")))
	require.NoError(t, m.Delete(1))
	// Deleting again is not an error.
	require.NoError(t, m.Delete(1))

	res, err := m.Search(&Query{EntityIDs: []uint{10}})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestMemoryReRegisterReplaces(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Register(1, serverDoc(10, "web-01", "old.example.com")))
	require.NoError(t, m.Register(1, serverDoc(10, "web-01", "new.example.com")))

	res, err := m.Search(&Query{
		EntityIDs: []uint{10},
		Attrs: []AttrFilter{{
			Name:         "hostname",
			Alternatives: [][]Term{{{Kind: TermSubstring, Text: "old"}}},
		}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestMemoryOrdering(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Register(3, serverDoc(10, "charlie", "x")))
	require.NoError(t, m.Register(1, serverDoc(10, "alpha", "x")))
	require.NoError(t, m.Register(2, serverDoc(10, "bravo", "x")))

	res, err := m.Search(&Query{EntityIDs: []uint{10}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 3)
	assert.Equal(t, "alpha", res.Hits[0].Doc.Name)
	assert.Equal(t, "bravo", res.Hits[1].Doc.Name)
	assert.Equal(t, "charlie", res.Hits[2].Doc.Name)
}

func TestMemoryLinkSemantics(t *testing.T) {
	m := NewMemory()
	doc := &Document{
		Entity: DocumentEntity{ID: 10, Name: "server"},
		Name:   "web-01",
		Attrs: []DocumentAttr{
			{Name: "hostname", Value: "web-01.example.com"},
			{Name: "os", Value: "linux"},
		},
	}
	require.NoError(t, m.Register(1, doc))

	hostFilter := AttrFilter{Name: "hostname", Alternatives: [][]Term{{{Kind: TermSubstring, Text: "web"}}}}
	missFilter := AttrFilter{Name: "os", Alternatives: [][]Term{{{Kind: TermSubstring, Text: "windows"}}}}

	res, err := m.Search(&Query{EntityIDs: []uint{10}, Link: LinkOr, Attrs: []AttrFilter{hostFilter, missFilter}})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)

	res, err = m.Search(&Query{EntityIDs: []uint{10}, Link: LinkAnd, Attrs: []AttrFilter{hostFilter, missFilter}})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestMemoryEmptyTerm(t *testing.T) {
	m := NewMemory()
	blank := &Document{
		Entity: DocumentEntity{ID: 10},
		Name:   "blank",
		Attrs:  []DocumentAttr{{Name: "note", Value: ""}},
	}
	filled := &Document{
		Entity: DocumentEntity{ID: 10},
		Name:   "filled",
		Attrs:  []DocumentAttr{{Name: "note", Value: "hello"}},
	}
	require.NoError(t, m.Register(1, blank))
	require.NoError(t, m.Register(2, filled))

	res, err := m.Search(&Query{
		EntityIDs: []uint{10},
		Attrs: []AttrFilter{{
			Name:         "note",
			Alternatives: [][]Term{{{Kind: TermEmpty}}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "blank", res.Hits[0].Doc.Name)
}

func TestMemoryDateTerms(t *testing.T) {
	m := NewMemory()
	mkDoc := func(name, date string) *Document {
		return &Document{
			Entity: DocumentEntity{ID: 10},
			Name:   name,
			Attrs:  []DocumentAttr{{Name: "installed", DateValue: &date}},
		}
	}
	require.NoError(t, m.Register(1, mkDoc("early", "2024-01-10")))
	require.NoError(t, m.Register(2, mkDoc("late", "2024-06-10")))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	search := func(kind TermKind) []Hit {
		res, err := m.Search(&Query{
			EntityIDs: []uint{10},
			Attrs: []AttrFilter{{
				Name:         "installed",
				Alternatives: [][]Term{{{Kind: kind, Date: day}}},
			}},
		})
		require.NoError(t, err)
		return res.Hits
	}

	before := search(TermDateBefore)
	require.Len(t, before, 1)
	assert.Equal(t, "early", before[0].Doc.Name)

	after := search(TermDateAfter)
	require.Len(t, after, 1)
	assert.Equal(t, "late", after[0].Doc.Name)

	on := search(TermDateOn)
	assert.Empty(t, on)
}

func TestMemoryNameFilter(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Register(1, serverDoc(10, "web-01", "x")))
	require.NoError(t, m.Register(2, serverDoc(10, "db-01", "x")))

	res, err := m.Search(&Query{
		EntityIDs: []uint{10},
		Name:      [][]Term{{{Kind: TermSubstring, Text: "web"}}},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "web-01", res.Hits[0].Doc.Name)
}
