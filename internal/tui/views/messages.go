package views

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aegis-intel/aegis-console/internal/api"
	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/session"
)

// ToastMsg asks the app shell to show an ephemeral notification.
type ToastMsg struct {
	Message  string
	Severity oplog.Severity
}

// LogMsg asks the app shell to append a diagnostic log entry.
type LogMsg struct {
	Action string
	Detail string
}

// SessionExpiredMsg signals that the credential could not be renewed.
// The shell reacts with a forced logout; no further authenticated
// requests are attempted.
type SessionExpiredMsg struct{}

// AdminRefreshRequestMsg asks the shell for an immediate, user-visible
// refresh of the privileged collections.
type AdminRefreshRequestMsg struct{}

// InspectMissionMsg asks the shell to open a mission in the
// operations detail view.
type InspectMissionMsg struct {
	ID string
}

func toastCmd(message string, severity oplog.Severity) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Message: message, Severity: severity}
	}
}

func logCmd(action, detail string) tea.Cmd {
	return func() tea.Msg {
		return LogMsg{Action: action, Detail: detail}
	}
}

// reportFailure converts a classified operation failure into the
// user-facing notification plus a log entry. No failure propagates
// past an operation boundary unhandled.
func reportFailure(err error) tea.Cmd {
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		return func() tea.Msg { return SessionExpiredMsg{} }

	case api.IsKind(err, api.KindViolation):
		var apiErr *api.Error
		errors.As(err, &apiErr)
		// Authorization boundary: the policy message verbatim.
		return tea.Batch(
			toastCmd("SECURITY BLOCK: "+apiErr.Message, oplog.SeverityError),
			logCmd("BLOCK", apiErr.Message),
		)

	case api.IsKind(err, api.KindForbidden):
		return tea.Batch(
			toastCmd("ACCESS DENIED", oplog.SeverityError),
			logCmd("ERR", "access denied"),
		)

	case api.IsKind(err, api.KindNotFound):
		return tea.Batch(
			toastCmd("TARGET NOT FOUND", oplog.SeverityWarning),
			logCmd("ERR", "target absent"),
		)

	case errors.Is(err, intel.ErrEmptyMissionID),
		errors.Is(err, intel.ErrEmptyNote),
		errors.Is(err, intel.ErrEmptyAgent),
		errors.Is(err, intel.ErrInvalidStatus):
		return toastCmd(strings.ToUpper(err.Error()), oplog.SeverityWarning)

	default:
		detail := err.Error()
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			detail = fmt.Sprintf("exception code %d", apiErr.StatusCode)
		}
		return tea.Batch(
			toastCmd("SYSTEM FAILURE", oplog.SeverityError),
			logCmd("ERR", detail),
		)
	}
}
