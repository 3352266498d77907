package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/tui/styles"
)

// StatusBar displays a one-line bar at the bottom of the screen: the
// active view on the left, a status message in the center and key
// hints on the right.
type StatusBar struct {
	mode     string
	message  string
	keyHints string
	width    int
	isError  bool
	theme    *styles.Theme
}

// NewStatusBar creates a new status bar.
func NewStatusBar(width int, theme *styles.Theme) *StatusBar {
	return &StatusBar{
		mode:     "Operations",
		message:  "Ready",
		keyHints: "? help | q quit",
		width:    width,
		theme:    theme,
	}
}

// SetMode sets the current view name to display.
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// SetMessage sets the status message to display.
func (s *StatusBar) SetMessage(message string) {
	s.message = message
	s.isError = false
}

// SetError sets an error message, styled distinctly.
func (s *StatusBar) SetError(message string) {
	s.message = message
	s.isError = true
}

// SetKeyHints sets the key hints shown on the right.
func (s *StatusBar) SetKeyHints(hints string) {
	s.keyHints = hints
}

// SetWidth sets the width of the status bar.
func (s *StatusBar) SetWidth(width int) {
	if width > 0 {
		s.width = width
	}
}

// Render renders the status bar to a string.
func (s *StatusBar) Render() string {
	left := lipgloss.NewStyle().
		Background(s.theme.Primary).
		Foreground(lipgloss.Color("#000000")).
		Bold(true).
		Padding(0, 1).
		Render(s.mode)

	right := lipgloss.NewStyle().
		Foreground(s.theme.Muted).
		Padding(0, 1).
		Render(s.keyHints)

	available := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if available < 1 {
		available = 1
	}

	centerStyle := lipgloss.NewStyle().Foreground(s.theme.Text).Padding(0, 1).Width(available)
	if s.isError {
		centerStyle = centerStyle.Foreground(s.theme.Danger).Bold(true)
	}
	center := centerStyle.Render(truncate(s.message, available-2))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, center, right)
}

// truncate cuts a string to width runes with an ellipsis.
func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
