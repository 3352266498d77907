package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/authz"
	"github.com/aegis-intel/aegis-console/internal/tui/styles"
)

// Header renders the top bar: platform banner on the left, operator
// identity and clearance on the right.
type Header struct {
	tier      authz.Tier
	codeName  string
	badgeID   string
	clearance int
	width     int
	theme     *styles.Theme
}

// NewHeader creates a header for the given operator.
func NewHeader(tier authz.Tier, codeName, badgeID string, theme *styles.Theme) *Header {
	return &Header{
		tier:     tier,
		codeName: codeName,
		badgeID:  badgeID,
		width:    80,
		theme:    theme,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	if width > 0 {
		h.width = width
	}
}

// SetClearance updates the displayed clearance level.
func (h *Header) SetClearance(level int) {
	h.clearance = level
}

// Height returns the rendered height in lines.
func (h *Header) Height() int {
	return 3
}

// banner returns the tier-specific platform banner.
func (h *Header) banner() string {
	switch h.tier {
	case authz.TierSuperSupervisor:
		return "AEGIS // ROOT_ACCESS"
	case authz.TierSupervisor:
		return "AEGIS // COMMAND"
	default:
		return "AEGIS // FIELD_OP"
	}
}

// Render renders the header to a string.
func (h *Header) Render() string {
	title := h.theme.TitleStyle.Render(h.banner())

	identity := lipgloss.NewStyle().Foreground(h.theme.Text).Render(
		fmt.Sprintf("%s #%s ", h.codeName, h.badgeID)) +
		h.theme.ClearanceStyle(h.clearance).Render(fmt.Sprintf("LVL-%d", h.clearance))

	gap := h.width - lipgloss.Width(title) - lipgloss.Width(identity) - 4
	if gap < 1 {
		gap = 1
	}
	row := title + lipgloss.NewStyle().Width(gap).Render("") + identity

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(h.theme.Primary).
		Width(h.width).
		Padding(0, 1).
		Render(row)
}
