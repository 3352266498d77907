package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/tui/styles"
)

// LogPanel renders the rolling diagnostic log at the bottom of the
// screen, newest entry last.
type LogPanel struct {
	log    *oplog.Buffer
	title  string
	width  int
	height int
	theme  *styles.Theme
}

// NewLogPanel creates a panel over the given buffer.
func NewLogPanel(log *oplog.Buffer, title string, theme *styles.Theme) *LogPanel {
	return &LogPanel{
		log:    log,
		title:  title,
		width:  80,
		height: 6,
		theme:  theme,
	}
}

// SetSize sets the panel dimensions.
func (p *LogPanel) SetSize(width, height int) {
	if width > 0 {
		p.width = width
	}
	if height > 0 {
		p.height = height
	}
}

// Height returns the rendered height in lines.
func (p *LogPanel) Height() int {
	return p.height
}

// Render renders the panel to a string.
func (p *LogPanel) Render() string {
	lines := p.height - 3 // border and title
	if lines < 1 {
		lines = 1
	}

	entries := p.log.Entries()
	if len(entries) > lines {
		entries = entries[len(entries)-lines:]
	}

	entryStyle := lipgloss.NewStyle().Foreground(p.theme.Muted)
	failStyle := lipgloss.NewStyle().Foreground(p.theme.Danger)

	var b strings.Builder
	b.WriteString(p.theme.TitleStyle.Render(">> "+p.title) + "\n")
	for _, entry := range entries {
		line := fmt.Sprintf("[%s] %s >> %s",
			entry.Time.Format("15:04:05"),
			strings.ToUpper(entry.Action),
			entry.Detail)
		style := entryStyle
		if strings.Contains(entry.Action, "ERR") || strings.Contains(entry.Detail, "fail") {
			style = failStyle
		}
		b.WriteString(style.Render(truncate(line, p.width-4)) + "\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(p.theme.Muted).
		Width(p.width).
		Height(p.height - 1).
		Render(strings.TrimRight(b.String(), "\n"))
}
