package oplog

import "time"

// Severity classifies a toast for styling purposes only.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ToastDuration is the fixed display window for a notification.
const ToastDuration = 3 * time.Second

// Toast is an ephemeral notification. It is never persisted and never
// outlives its expiry; a new toast displaces the previous one.
type Toast struct {
	Message  string
	Severity Severity
	Expiry   time.Time
}

// NewToast creates a toast expiring ToastDuration after now.
func NewToast(message string, severity Severity, now time.Time) Toast {
	return Toast{
		Message:  message,
		Severity: severity,
		Expiry:   now.Add(ToastDuration),
	}
}

// Expired reports whether the display window has closed.
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}
