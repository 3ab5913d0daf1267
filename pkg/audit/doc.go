// Package audit provides audit logging for security-relevant operations.
//
// Events are emitted in RFC5424 syslog format on stdout and, when
// CMDB_AUDIT_DATABASE_URL is set, persisted to a separate audit database.
//
// # Event Types
//
//   - Authentication events (success/failure)
//   - Attribute value update events
//   - Entry lifecycle events (create, delete, copy)
//   - Bulk export events
//
// # Usage
//
//	audit.Log(audit.AuthenticateEvent{Username: username, Success: true})
//
// Audit logging is on by default; set CMDB_AUDIT_ENABLED=false to disable.
package audit
