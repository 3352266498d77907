package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/authz"
	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/tui/styles"
)

type adminTab int

const (
	tabAgents adminTab = iota
	tabMissions
)

type clearanceChangedMsg struct {
	username string
	level    int
}

type clearanceFailedMsg struct {
	username string
	err      error
}

type adminStatusMsg struct{ mission *intel.Mission }
type adminStatusErrMsg struct{ err error }

// AdminView is the privileged board: the global agent registry with
// dossier access and clearance control, and the global mission
// registry. Its collections are refreshed by the shell, either on a
// background cadence or on demand; the view itself never schedules
// timers.
type AdminView struct {
	ctx    context.Context
	engine *intel.Engine
	cap    authz.Capability
	theme  *styles.Theme

	width  int
	height int

	tab      adminTab
	agents   []intel.Agent
	missions []intel.Mission

	agentIdx   int
	missionIdx int

	dossier      *intel.Agent
	statusPicker bool
	statusIdx    int

	lastSync time.Time
}

// NewAdminView builds the board for the given capability.
func NewAdminView(ctx context.Context, engine *intel.Engine, cap authz.Capability, theme *styles.Theme) *AdminView {
	return &AdminView{
		ctx:    ctx,
		engine: engine,
		cap:    cap,
		theme:  theme,
		width:  80,
		height: 24,
	}
}

// SetSize updates the view dimensions.
func (v *AdminView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// ApplySnapshot merges one synchronization pass into the board. Only
// collections that refreshed successfully are applied; a failed fetch
// leaves the previous data on screen.
func (v *AdminView) ApplySnapshot(snap intel.AdminSnapshot, at time.Time) {
	if snap.AgentsErr == nil {
		v.agents = snap.Agents
		if v.agentIdx >= len(v.agents) {
			v.agentIdx = 0
		}
		// Keep an open dossier in sync with the registry.
		if v.dossier != nil {
			for i := range v.agents {
				if v.agents[i].Username == v.dossier.Username {
					v.dossier = &v.agents[i]
				}
			}
		}
	}
	if snap.MissionsErr == nil {
		v.missions = snap.Missions
		if v.missionIdx >= len(v.missions) {
			v.missionIdx = 0
		}
	}
	if snap.AgentsErr == nil || snap.MissionsErr == nil {
		v.lastSync = at
	}
}

func (v *AdminView) submitClearance(username string, level int) tea.Cmd {
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		confirmed, err := engine.ChangeAgentClearance(ctx, username, level)
		if err != nil {
			return clearanceFailedMsg{username: username, err: err}
		}
		return clearanceChangedMsg{username: username, level: confirmed}
	}
}

func (v *AdminView) submitMissionStatus() tea.Cmd {
	if v.missionIdx >= len(v.missions) {
		return nil
	}
	missionID := v.missions[v.missionIdx].ID
	status := intel.AllStatuses[v.statusIdx]
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		mission, err := engine.UpdateStatus(ctx, missionID, status)
		if err != nil {
			return adminStatusErrMsg{err: err}
		}
		return adminStatusMsg{mission: mission}
	}
}

// Update handles messages routed to the admin board.
func (v *AdminView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case clearanceChangedMsg:
		return tea.Batch(
			toastCmd(fmt.Sprintf("CLEARANCE SET: %s LVL-%d", msg.username, msg.level), oplog.SeveritySuccess),
			logCmd("GRANT", fmt.Sprintf("%s -> LVL-%d", msg.username, msg.level)),
		)

	case clearanceFailedMsg:
		// The optimistic row keeps the submitted value until the
		// next synchronization pass restores the truth.
		return reportFailure(msg.err)

	case adminStatusMsg:
		v.statusPicker = false
		for i := range v.missions {
			if v.missions[i].ID == msg.mission.ID {
				v.missions[i] = *msg.mission
			}
		}
		return tea.Batch(
			toastCmd("STATUS SET: "+string(msg.mission.Status), oplog.SeveritySuccess),
			logCmd("STATUS", fmt.Sprintf("mission %s -> %s", msg.mission.ID, msg.mission.Status)),
			func() tea.Msg { return AdminRefreshRequestMsg{} },
		)

	case adminStatusErrMsg:
		v.statusPicker = false
		return reportFailure(msg.err)
	}

	return nil
}

func (v *AdminView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.statusPicker {
		switch msg.String() {
		case "up", "k":
			v.statusIdx = (v.statusIdx + len(intel.AllStatuses) - 1) % len(intel.AllStatuses)
		case "down", "j":
			v.statusIdx = (v.statusIdx + 1) % len(intel.AllStatuses)
		case "enter":
			return v.submitMissionStatus()
		case "esc":
			v.statusPicker = false
		}
		return nil
	}

	if v.dossier != nil {
		switch msg.String() {
		case "esc", "enter":
			v.dossier = nil
		case "0", "1", "2", "3":
			return v.applyClearanceKey(msg.String())
		}
		return nil
	}

	switch msg.String() {
	case "tab":
		if v.tab == tabAgents {
			v.tab = tabMissions
		} else {
			v.tab = tabAgents
		}
	case "up", "k":
		v.moveSelection(-1)
	case "down", "j":
		v.moveSelection(1)
	case "enter":
		if v.tab == tabAgents {
			if v.cap.CanViewDossier && v.agentIdx < len(v.agents) {
				v.dossier = &v.agents[v.agentIdx]
			}
		} else if v.missionIdx < len(v.missions) {
			id := v.missions[v.missionIdx].ID
			return func() tea.Msg { return InspectMissionMsg{ID: id} }
		}
	case "s":
		if v.tab == tabMissions && v.missionIdx < len(v.missions) {
			v.statusPicker = true
			v.statusIdx = 0
			for i, status := range intel.AllStatuses {
				if status == v.missions[v.missionIdx].Status {
					v.statusIdx = i
				}
			}
		}
	case "0", "1", "2", "3":
		if v.tab == tabAgents {
			return v.applyClearanceKey(msg.String())
		}
	case "r":
		return func() tea.Msg { return AdminRefreshRequestMsg{} }
	}
	return nil
}

// applyClearanceKey updates the selected agent's row immediately and
// submits the change. The row is not reverted on failure; the next
// synchronization pass carries the authoritative level either way.
func (v *AdminView) applyClearanceKey(key string) tea.Cmd {
	if v.agentIdx >= len(v.agents) {
		return nil
	}
	level := intel.ClampClearance(int(key[0] - '0'))
	agent := &v.agents[v.agentIdx]
	agent.ClearanceLevel = level
	if v.dossier != nil && v.dossier.Username == agent.Username {
		v.dossier = agent
	}
	return v.submitClearance(agent.Username, level)
}

func (v *AdminView) moveSelection(delta int) {
	if v.tab == tabAgents {
		if n := len(v.agents); n > 0 {
			v.agentIdx = (v.agentIdx + delta + n) % n
		}
		return
	}
	if n := len(v.missions); n > 0 {
		v.missionIdx = (v.missionIdx + delta + n) % n
	}
}

// View renders the admin board.
func (v *AdminView) View() string {
	var sections []string
	sections = append(sections, v.renderTabs())

	if v.tab == tabAgents {
		sections = append(sections, v.renderAgents())
	} else {
		sections = append(sections, v.renderMissions())
	}

	if v.dossier != nil {
		sections = append(sections, v.renderDossier())
	}
	if v.statusPicker {
		sections = append(sections, v.renderStatusPicker())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *AdminView) renderTabs() string {
	active := lipgloss.NewStyle().Foreground(v.theme.Primary).Bold(true).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(v.theme.Muted)

	agents := inactive.Render("PERSONNEL REGISTRY")
	missions := inactive.Render("MISSION REGISTRY")
	if v.tab == tabAgents {
		agents = active.Render("PERSONNEL REGISTRY")
	} else {
		missions = active.Render("MISSION REGISTRY")
	}

	sync := ""
	if !v.lastSync.IsZero() {
		sync = lipgloss.NewStyle().Foreground(v.theme.Muted).Render(
			"  sync " + v.lastSync.Format("15:04:05"))
	}
	return agents + "   " + missions + sync
}

func (v *AdminView) renderAgents() string {
	if len(v.agents) == 0 {
		if v.lastSync.IsZero() {
			return v.theme.PanelStyle.Render("SYNCHRONIZING WITH COMMAND ...")
		}
		return v.theme.PanelStyle.Render("NO PERSONNEL DATA")
	}
	var b strings.Builder
	for i, agent := range v.agents {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(v.theme.Text)
		if i == v.agentIdx {
			marker = "> "
			style = lipgloss.NewStyle().Foreground(v.theme.Primary).Bold(true)
		}
		b.WriteString(marker + style.Render(fmt.Sprintf("%-16s %-14s", agent.Username, agent.CodeName)) +
			v.theme.ClearanceStyle(agent.ClearanceLevel).Render(fmt.Sprintf(" LVL-%d", agent.ClearanceLevel)) + "\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Muted).Render("enter dossier | 0-3 set clearance"))
	return v.theme.PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (v *AdminView) renderMissions() string {
	if len(v.missions) == 0 {
		if v.lastSync.IsZero() {
			return v.theme.PanelStyle.Render("SYNCHRONIZING WITH COMMAND ...")
		}
		return v.theme.PanelStyle.Render("NO MISSION DATA")
	}
	var b strings.Builder
	for i, mission := range v.missions {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(v.theme.Text)
		if i == v.missionIdx {
			marker = "> "
			style = lipgloss.NewStyle().Foreground(v.theme.Primary).Bold(true)
		}
		b.WriteString(marker + style.Render(fmt.Sprintf("%-12s %-24s", mission.ID, truncateTo(mission.GeographicZone, 24))) +
			v.theme.StatusStyle(mission.Status).Render(string(mission.Status)) + "\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Muted).Render("enter inspect | s status"))
	return v.theme.PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (v *AdminView) renderDossier() string {
	agent := v.dossier
	var b strings.Builder
	b.WriteString(v.theme.TitleStyle.Render("DOSSIER // "+agent.CodeName) + "\n")
	b.WriteString(v.theme.LabelStyle.Render("USERNAME  ") + agent.Username + "\n")
	b.WriteString(v.theme.LabelStyle.Render("BADGE     ") + agent.Matricola + "\n")
	b.WriteString(v.theme.LabelStyle.Render("CLEARANCE ") +
		v.theme.ClearanceStyle(agent.ClearanceLevel).Render(fmt.Sprintf("LVL-%d", agent.ClearanceLevel)) + "\n")
	if agent.Office != "" {
		b.WriteString(v.theme.LabelStyle.Render("OFFICE    ") + agent.Office + "\n")
	}
	if agent.Department != "" {
		b.WriteString(v.theme.LabelStyle.Render("DIVISION  ") + agent.Department + "\n")
	}
	if v.cap.CanSeeSensitive {
		b.WriteString(v.theme.LabelStyle.Render("IDENTITY  ") + agent.FullName + "\n")
		b.WriteString(v.theme.LabelStyle.Render("CONTACT   ") + agent.Email + "  " + agent.Phone + "\n")
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Muted).Render("PERSONAL DATA REDACTED") + "\n")
	}
	return v.theme.FocusedPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (v *AdminView) renderStatusPicker() string {
	var b strings.Builder
	b.WriteString(v.theme.TitleStyle.Render("SET STATUS") + "\n")
	for i, status := range intel.AllStatuses {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(v.theme.Text)
		if i == v.statusIdx {
			marker = "> "
			style = lipgloss.NewStyle().Foreground(v.theme.Primary).Bold(true)
		}
		b.WriteString(marker + style.Render(string(status)) + "\n")
	}
	return v.theme.FocusedPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func truncateTo(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width < 2 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
