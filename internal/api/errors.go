package api

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure. Every non-2xx response maps to
// exactly one kind; callers decide on user notification from it.
type Kind int

const (
	// KindForbidden is an authorization denial (403). Recoverable,
	// user-visible, never retried.
	KindForbidden Kind = iota

	// KindNotFound means the target is absent (404). Recoverable and
	// non-fatal; unrelated state is left untouched.
	KindNotFound

	// KindViolation is a business-rule rejection signaled by the
	// backend's recognizable marker. The message is surfaced verbatim.
	KindViolation

	// KindFailure is any other status or transport error. The full
	// status code goes to the diagnostic log for troubleshooting.
	KindFailure
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindViolation:
		return "violation"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Error is a classified backend failure.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s (status %d)", e.Kind, e.StatusCode)
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
