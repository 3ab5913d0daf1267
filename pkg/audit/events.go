package audit

import (
	"fmt"
	"strconv"
)

// AuthenticateEvent represents a token issuance audit event
type AuthenticateEvent struct {
	Username     string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated", e.Username)
	}
	msg := fmt.Sprintf("%s failed to authenticate", e.Username)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
}

// UpdateEvent represents an attribute value write audit event
type UpdateEvent struct {
	UserID       uint
	EntryID      uint
	AttrName     string
	Success      bool
	ErrorMessage string
}

func (e UpdateEvent) MessageID() string {
	return "update"
}

func (e UpdateEvent) Message() string {
	target := fmt.Sprintf("attribute %s of entry %d", e.AttrName, e.EntryID)
	if e.Success {
		return fmt.Sprintf("user %d updated %s", e.UserID, target)
	}
	msg := fmt.Sprintf("user %d tried to update %s", e.UserID, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e UpdateEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e UpdateEvent) Facility() int {
	return FacilityAuth
}

func (e UpdateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"entry":     strconv.FormatUint(uint64(e.EntryID), 10),
			"attribute": e.AttrName,
		},
		SDIDAuth: {
			"user": strconv.FormatUint(uint64(e.UserID), 10),
		},
		SDIDAction: {
			"operation": "update",
		},
	}
}

// EntryEvent represents an entry lifecycle audit event (create, delete, copy)
type EntryEvent struct {
	UserID       uint
	Operation    string
	EntryID      uint
	EntryName    string
	Success      bool
	ErrorMessage string
}

func (e EntryEvent) MessageID() string {
	return "entry"
}

func (e EntryEvent) Message() string {
	target := fmt.Sprintf("entry %s", e.EntryName)
	if e.EntryName == "" {
		target = fmt.Sprintf("entry %d", e.EntryID)
	}
	if e.Success {
		return fmt.Sprintf("user %d performed %s on %s", e.UserID, e.Operation, target)
	}
	msg := fmt.Sprintf("user %d failed %s on %s", e.UserID, e.Operation, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e EntryEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e EntryEvent) Facility() int {
	return FacilityAuth
}

func (e EntryEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"entry": strconv.FormatUint(uint64(e.EntryID), 10),
		},
		SDIDAuth: {
			"user": strconv.FormatUint(uint64(e.UserID), 10),
		},
		SDIDAction: {
			"operation": e.Operation,
		},
	}
	if e.EntryName != "" {
		sd[SDIDSubject]["name"] = e.EntryName
	}
	return sd
}

// ExportEvent represents a bulk export audit event
type ExportEvent struct {
	UserID       uint
	EntityCount  int
	Success      bool
	ErrorMessage string
}

func (e ExportEvent) MessageID() string {
	return "export"
}

func (e ExportEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %d exported %d entities", e.UserID, e.EntityCount)
	}
	msg := fmt.Sprintf("user %d failed to export", e.UserID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ExportEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e ExportEvent) Facility() int {
	return FacilityAuth
}

func (e ExportEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": strconv.FormatUint(uint64(e.UserID), 10),
		},
		SDIDAction: {
			"operation": "export",
		},
	}
}
