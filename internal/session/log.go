package session

import "time"

// Severity classifies a session log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LogEntry is a consumer-facing session event: what happened, when, and how
// bad it is. The process log gets the same line through the logger; this is
// the structured copy for UIs and recorders.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Severity  Severity
}
