// Package styles defines the color palettes and shared styles for the
// console. Each capability tier gets its own palette so an operator can
// tell at a glance which access level a terminal is running at.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/authz"
	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/oplog"
)

// Theme defines the color palette and styles for the TUI.
type Theme struct {
	// Color palette
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color

	// Panel styles
	PanelStyle        lipgloss.Style
	FocusedPanelStyle lipgloss.Style
	TitleStyle        lipgloss.Style
	LabelStyle        lipgloss.Style
}

// RoleTheme returns the palette for a capability tier.
func RoleTheme(tier authz.Tier) *Theme {
	var theme *Theme
	switch tier {
	case authz.TierSuperSupervisor:
		theme = &Theme{
			Primary: lipgloss.Color("#D946EF"),
			Accent:  lipgloss.Color("#8B5CF6"),
			Success: lipgloss.Color("#00FF41"),
			Warning: lipgloss.Color("#FACC15"),
			Danger:  lipgloss.Color("#FF003C"),
			Muted:   lipgloss.Color("#4C1D95"),
			Text:    lipgloss.Color("#A2A2A2"),
		}
	case authz.TierSupervisor:
		theme = &Theme{
			Primary: lipgloss.Color("#F59E0B"),
			Accent:  lipgloss.Color("#D97706"),
			Success: lipgloss.Color("#10B981"),
			Warning: lipgloss.Color("#EAB308"),
			Danger:  lipgloss.Color("#EF4444"),
			Muted:   lipgloss.Color("#78350F"),
			Text:    lipgloss.Color("#94A3B8"),
		}
	default:
		theme = &Theme{
			Primary: lipgloss.Color("#06B6D4"),
			Accent:  lipgloss.Color("#3B82F6"),
			Success: lipgloss.Color("#22C55E"),
			Warning: lipgloss.Color("#EAB308"),
			Danger:  lipgloss.Color("#F43F5E"),
			Muted:   lipgloss.Color("#1E3A8A"),
			Text:    lipgloss.Color("#94A3B8"),
		}
	}

	theme.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Muted).
		Padding(0, 1)

	theme.FocusedPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1)

	theme.TitleStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	theme.LabelStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	return theme
}

// StatusStyle returns the badge style for a mission status.
func (t *Theme) StatusStyle(status intel.Status) lipgloss.Style {
	var color lipgloss.Color
	switch status {
	case intel.StatusDraft:
		color = lipgloss.Color("#0EA5E9")
	case intel.StatusStandby:
		color = lipgloss.Color("#EAB308")
	case intel.StatusActive:
		color = lipgloss.Color("#F97316")
	case intel.StatusCompleted:
		color = lipgloss.Color("#22C55E")
	case intel.StatusAborted:
		color = lipgloss.Color("#EF4444")
	default:
		color = t.Muted
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Bold(true)
}

// ClearanceStyle renders a clearance level, with the elevated
// treatment for levels at or above the high threshold.
func (t *Theme) ClearanceStyle(level int) lipgloss.Style {
	if authz.HighClearance(level) {
		return lipgloss.NewStyle().Foreground(t.Danger).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

// ToastStyle returns the border/text style for a toast severity.
func (t *Theme) ToastStyle(severity oplog.Severity) lipgloss.Style {
	var color lipgloss.Color
	switch severity {
	case oplog.SeverityError:
		color = t.Danger
	case oplog.SeverityWarning:
		color = t.Warning
	case oplog.SeveritySuccess:
		color = t.Success
	default:
		color = t.Accent
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Border(lipgloss.ThickBorder()).
		BorderForeground(color).
		Padding(0, 2).
		Bold(true)
}
