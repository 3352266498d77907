package components

import (
	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/tui/styles"
)

// RenderToast renders an ephemeral notification box, or an empty
// string when no toast is active.
func RenderToast(toast *oplog.Toast, theme *styles.Theme) string {
	if toast == nil {
		return ""
	}
	var prefix string
	switch toast.Severity {
	case oplog.SeverityError:
		prefix = "✖ "
	case oplog.SeveritySuccess:
		prefix = "⚡ "
	case oplog.SeverityWarning:
		prefix = "▲ "
	default:
		prefix = "ℹ "
	}
	return theme.ToastStyle(toast.Severity).Render(prefix + toast.Message)
}
