// Package views contains the two screens of the console: the
// operations workspace every tier gets, and the privileged
// administration board. Views are bubbletea models wired into the app
// shell; anything that crosses a view boundary (toasts, log entries,
// session expiry) travels as an exported message.
package views

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/api"
	"github.com/aegis-intel/aegis-console/internal/authz"
	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/session"
	"github.com/aegis-intel/aegis-console/internal/tui/styles"
)

// opsFocus identifies which input area of the operations view owns the
// keyboard.
type opsFocus int

const (
	focusBrowse opsFocus = iota
	focusSearch
	focusCreate
	focusNote
	focusAssign
	focusStatus
)

// Create-form field order.
const (
	createFieldDescription = iota
	createFieldZone
	createFieldClearance
	createFieldAttachment
	createFieldCount
)

// Internal messages for in-flight requests. Each fetch carries the
// sequence number it was issued under; a response whose sequence no
// longer matches is stale and is dropped without touching state.
type missionLoadedMsg struct {
	seq     int
	mission *intel.Mission
}

type missionFailedMsg struct {
	seq int
	err error
}

type missionCreatedMsg struct{ result intel.CreateResult }
type missionCreateFailedMsg struct{ err error }
type noteAddedMsg struct{ mission *intel.Mission }
type noteFailedMsg struct{ err error }
type statusUpdatedMsg struct{ mission *intel.Mission }
type statusFailedMsg struct{ err error }
type agentAssignedMsg struct{ mission *intel.Mission }
type agentAssignFailedMsg struct{ err error }
type suggestionsMsg struct {
	fragment string
	agents   []intel.Agent
}
type attachmentSavedMsg struct{ path string }
type attachmentFailedMsg struct{ err error }

// OperationsView is the mission workspace: lookup by identifier, the
// dossier card with its note ledger and command console, and the
// creation form for command tiers.
type OperationsView struct {
	ctx    context.Context
	engine *intel.Engine
	cap    authz.Capability
	theme  *styles.Theme

	width  int
	height int

	focus opsFocus

	search  textinput.Model
	loading bool
	seq     int
	mission *intel.Mission

	createInputs [createFieldCount]textinput.Model
	createField  int
	creating     bool

	noteInput   textinput.Model
	assignInput textinput.Model
	suggestions []intel.Agent

	statusIdx int
}

// NewOperationsView builds the workspace for the given capability.
func NewOperationsView(ctx context.Context, engine *intel.Engine, cap authz.Capability, theme *styles.Theme) *OperationsView {
	v := &OperationsView{
		ctx:    ctx,
		engine: engine,
		cap:    cap,
		theme:  theme,
		width:  80,
		height: 24,
	}

	v.search = textinput.New()
	v.search.Placeholder = "mission identifier"
	v.search.CharLimit = 64
	v.search.Width = 36

	placeholders := [createFieldCount]string{
		"objective description",
		"geographic zone",
		"clearance 0-3",
		"attachment path (optional)",
	}
	for i := range v.createInputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		in.Width = 40
		v.createInputs[i] = in
	}
	v.createInputs[createFieldClearance].CharLimit = 1

	v.noteInput = textinput.New()
	v.noteInput.Placeholder = "field note"
	v.noteInput.CharLimit = 500
	v.noteInput.Width = 50

	v.assignInput = textinput.New()
	v.assignInput.Placeholder = "agent username"
	v.assignInput.CharLimit = 64
	v.assignInput.Width = 36

	return v
}

// SetSize updates the view dimensions.
func (v *OperationsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Focused reports whether a text input currently owns the keyboard,
// so the shell can suppress its global key bindings.
func (v *OperationsView) Focused() bool {
	return v.focus != focusBrowse
}

// Inspect loads a mission by identifier, as if it had been typed into
// the lookup field. Used by the admin board to jump into a record.
func (v *OperationsView) Inspect(id string) tea.Cmd {
	v.search.SetValue(id)
	return v.startFetch(id)
}

// startFetch clears the current card before issuing the request, so a
// failed lookup never leaves a stale record on screen.
func (v *OperationsView) startFetch(id string) tea.Cmd {
	id = strings.TrimSpace(intel.Sanitize(id))
	if id == "" {
		return toastCmd("IDENTIFIER REQUIRED", oplog.SeverityWarning)
	}

	v.mission = nil
	v.loading = true
	v.seq++
	seq := v.seq
	engine := v.engine
	ctx := v.ctx

	return tea.Batch(
		logCmd("QUERY", "mission "+id),
		func() tea.Msg {
			mission, err := engine.FetchByID(ctx, id)
			if err != nil {
				return missionFailedMsg{seq: seq, err: err}
			}
			return missionLoadedMsg{seq: seq, mission: mission}
		},
	)
}

func (v *OperationsView) refetch() tea.Cmd {
	if v.mission == nil {
		return nil
	}
	return v.startFetch(v.mission.ID)
}

func (v *OperationsView) submitCreate() tea.Cmd {
	level := 0
	if raw := strings.TrimSpace(v.createInputs[createFieldClearance].Value()); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			level = parsed
		}
	}
	draft := intel.MissionDraft{
		Description:    v.createInputs[createFieldDescription].Value(),
		GeographicZone: v.createInputs[createFieldZone].Value(),
		ClearanceLevel: level,
	}

	path := strings.TrimSpace(v.createInputs[createFieldAttachment].Value())
	v.creating = true
	engine := v.engine
	ctx := v.ctx

	return func() tea.Msg {
		var attachment *intel.Attachment
		if path != "" {
			file, err := os.Open(path)
			if err != nil {
				return missionCreateFailedMsg{err: fmt.Errorf("attachment: %w", err)}
			}
			defer file.Close()
			attachment = &intel.Attachment{
				Filename: filepath.Base(path),
				Content:  file,
			}
		}
		result, err := engine.CreateWithAttachment(ctx, draft, attachment)
		if err != nil {
			return missionCreateFailedMsg{err: err}
		}
		return missionCreatedMsg{result: result}
	}
}

func (v *OperationsView) submitNote() tea.Cmd {
	if v.mission == nil {
		return nil
	}
	missionID := v.mission.ID
	text := v.noteInput.Value()
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		mission, err := engine.AppendNote(ctx, missionID, text)
		if err != nil {
			return noteFailedMsg{err: err}
		}
		return noteAddedMsg{mission: mission}
	}
}

func (v *OperationsView) submitStatus() tea.Cmd {
	if v.mission == nil {
		return nil
	}
	missionID := v.mission.ID
	status := intel.AllStatuses[v.statusIdx]
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		mission, err := engine.UpdateStatus(ctx, missionID, status)
		if err != nil {
			return statusFailedMsg{err: err}
		}
		return statusUpdatedMsg{mission: mission}
	}
}

func (v *OperationsView) submitAssign() tea.Cmd {
	if v.mission == nil {
		return nil
	}
	missionID := v.mission.ID
	username := v.assignInput.Value()
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		mission, err := engine.AssignAgent(ctx, missionID, username)
		if err != nil {
			return agentAssignFailedMsg{err: err}
		}
		return agentAssignedMsg{mission: mission}
	}
}

func (v *OperationsView) fetchSuggestions(fragment string) tea.Cmd {
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		agents, err := engine.SearchSuggestions(ctx, fragment)
		if err != nil {
			// Suggestions are advisory; a failed lookup just
			// yields none.
			return suggestionsMsg{fragment: fragment}
		}
		return suggestionsMsg{fragment: fragment, agents: agents}
	}
}

func (v *OperationsView) downloadAttachment() tea.Cmd {
	if v.mission == nil || v.mission.AttachmentFilename == "" {
		return nil
	}
	missionID := v.mission.ID
	filename := v.mission.AttachmentFilename
	engine := v.engine
	ctx := v.ctx
	return func() tea.Msg {
		content, err := engine.DownloadAttachment(ctx, missionID)
		if err != nil {
			return attachmentFailedMsg{err: err}
		}
		path := filepath.Join(os.TempDir(), filename)
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return attachmentFailedMsg{err: err}
		}
		return attachmentSavedMsg{path: path}
	}
}

func (v *OperationsView) blurAll() {
	v.search.Blur()
	for i := range v.createInputs {
		v.createInputs[i].Blur()
	}
	v.noteInput.Blur()
	v.assignInput.Blur()
	v.focus = focusBrowse
}

// Update handles messages routed to the operations view.
func (v *OperationsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case missionLoadedMsg:
		if msg.seq != v.seq {
			return nil
		}
		v.loading = false
		v.mission = msg.mission
		return logCmd("DATA", "mission "+msg.mission.ID+" decrypted")

	case missionFailedMsg:
		if msg.seq != v.seq {
			return nil
		}
		v.loading = false
		v.mission = nil
		return reportFailure(msg.err)

	case missionCreatedMsg:
		v.creating = false
		for i := range v.createInputs {
			v.createInputs[i].SetValue("")
		}
		v.blurAll()
		v.mission = msg.result.Mission
		v.search.SetValue(msg.result.Mission.ID)
		cmds := []tea.Cmd{
			toastCmd("MISSION FILED: "+msg.result.Mission.ID, oplog.SeveritySuccess),
			logCmd("CREATE", "mission "+msg.result.Mission.ID),
		}
		if msg.result.AttachmentErr != nil {
			// The record exists; only the upload failed.
			cmds = append(cmds,
				toastCmd("ATTACHMENT UPLOAD FAILED", oplog.SeverityWarning),
				logCmd("ERR", "attachment upload failed"))
		}
		if v.cap.CanViewAdmin {
			cmds = append(cmds, func() tea.Msg { return AdminRefreshRequestMsg{} })
		}
		return tea.Batch(cmds...)

	case missionCreateFailedMsg:
		v.creating = false
		return reportFailure(msg.err)

	case noteAddedMsg:
		v.noteInput.SetValue("")
		v.blurAll()
		v.mission = msg.mission
		return tea.Batch(
			toastCmd("NOTE COMMITTED", oplog.SeveritySuccess),
			logCmd("NOTE", "mission "+msg.mission.ID),
		)

	case noteFailedMsg:
		return reportFailure(msg.err)

	case statusUpdatedMsg:
		v.blurAll()
		v.mission = msg.mission
		cmds := []tea.Cmd{
			toastCmd("STATUS SET: "+string(msg.mission.Status), oplog.SeveritySuccess),
			logCmd("STATUS", fmt.Sprintf("mission %s -> %s", msg.mission.ID, msg.mission.Status)),
		}
		if v.cap.CanViewAdmin {
			cmds = append(cmds, func() tea.Msg { return AdminRefreshRequestMsg{} })
		}
		return tea.Batch(cmds...)

	case statusFailedMsg:
		return reportFailure(msg.err)

	case adminStatusMsg:
		// A status change fired from the admin board refreshes an
		// open detail card for the same mission.
		if v.mission != nil && v.mission.ID == msg.mission.ID {
			v.mission = msg.mission
		}
		return nil

	case agentAssignedMsg:
		v.assignInput.SetValue("")
		v.suggestions = nil
		v.blurAll()
		v.mission = msg.mission
		return tea.Batch(
			toastCmd("AGENT DEPLOYED", oplog.SeveritySuccess),
			logCmd("ASSIGN", "mission "+msg.mission.ID),
		)

	case agentAssignFailedMsg:
		// A policy violation surfaces its message verbatim; every
		// other refusal collapses to a generic grant failure.
		switch {
		case errors.Is(msg.err, session.ErrSessionExpired),
			api.IsKind(msg.err, api.KindViolation),
			api.IsKind(msg.err, api.KindNotFound):
			return reportFailure(msg.err)
		default:
			return tea.Batch(
				toastCmd("GRANT FAILED", oplog.SeverityError),
				logCmd("ERR", "assignment refused"),
			)
		}

	case suggestionsMsg:
		if msg.fragment == strings.TrimSpace(intel.Sanitize(v.assignInput.Value())) {
			v.suggestions = msg.agents
		}
		return nil

	case attachmentSavedMsg:
		return tea.Batch(
			toastCmd("ATTACHMENT RETRIEVED", oplog.SeveritySuccess),
			logCmd("FETCH", "saved "+msg.path),
		)

	case attachmentFailedMsg:
		return reportFailure(msg.err)
	}

	return nil
}

func (v *OperationsView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.focus {
	case focusBrowse:
		return v.handleBrowseKey(msg)

	case focusSearch:
		switch msg.String() {
		case "enter":
			cmd := v.startFetch(v.search.Value())
			v.blurAll()
			return cmd
		case "esc":
			v.blurAll()
			return nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return cmd

	case focusCreate:
		return v.handleCreateKey(msg)

	case focusNote:
		switch msg.String() {
		case "enter":
			return v.submitNote()
		case "esc":
			v.blurAll()
			return nil
		}
		var cmd tea.Cmd
		v.noteInput, cmd = v.noteInput.Update(msg)
		return cmd

	case focusAssign:
		switch msg.String() {
		case "enter":
			return v.submitAssign()
		case "esc":
			v.suggestions = nil
			v.blurAll()
			return nil
		}
		var cmd tea.Cmd
		v.assignInput, cmd = v.assignInput.Update(msg)
		fragment := strings.TrimSpace(intel.Sanitize(v.assignInput.Value()))
		if len(fragment) < 2 {
			v.suggestions = nil
			return cmd
		}
		return tea.Batch(cmd, v.fetchSuggestions(fragment))

	case focusStatus:
		switch msg.String() {
		case "up", "k":
			v.statusIdx = (v.statusIdx + len(intel.AllStatuses) - 1) % len(intel.AllStatuses)
		case "down", "j":
			v.statusIdx = (v.statusIdx + 1) % len(intel.AllStatuses)
		case "enter":
			return v.submitStatus()
		case "esc":
			v.blurAll()
		}
		return nil
	}
	return nil
}

func (v *OperationsView) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		v.focus = focusSearch
		return v.search.Focus()
	case "n":
		if !v.cap.CanCreate {
			return nil
		}
		v.focus = focusCreate
		v.createField = createFieldDescription
		return v.createInputs[createFieldDescription].Focus()
	case "m":
		if v.mission == nil {
			return nil
		}
		v.focus = focusNote
		return v.noteInput.Focus()
	case "a":
		if v.mission == nil || !v.cap.CanCommand {
			return nil
		}
		v.focus = focusAssign
		return v.assignInput.Focus()
	case "s":
		if v.mission == nil || !v.cap.CanCommand {
			return nil
		}
		v.focus = focusStatus
		v.statusIdx = 0
		for i, status := range intel.AllStatuses {
			if status == v.mission.Status {
				v.statusIdx = i
			}
		}
		return nil
	case "d":
		return v.downloadAttachment()
	case "r":
		return v.refetch()
	}
	return nil
}

func (v *OperationsView) handleCreateKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.blurAll()
		return nil
	case "tab", "down":
		v.createInputs[v.createField].Blur()
		v.createField = (v.createField + 1) % createFieldCount
		return v.createInputs[v.createField].Focus()
	case "shift+tab", "up":
		v.createInputs[v.createField].Blur()
		v.createField = (v.createField + createFieldCount - 1) % createFieldCount
		return v.createInputs[v.createField].Focus()
	case "enter":
		if v.creating {
			return nil
		}
		if v.createField < createFieldCount-1 {
			v.createInputs[v.createField].Blur()
			v.createField++
			return v.createInputs[v.createField].Focus()
		}
		return v.submitCreate()
	}
	var cmd tea.Cmd
	v.createInputs[v.createField], cmd = v.createInputs[v.createField].Update(msg)
	return cmd
}

// View renders the operations workspace.
func (v *OperationsView) View() string {
	var sections []string

	sections = append(sections, v.renderSearch())

	if v.focus == focusCreate {
		sections = append(sections, v.renderCreateForm())
	}

	switch {
	case v.loading:
		sections = append(sections, v.theme.PanelStyle.Render("DECRYPTING RECORD ..."))
	case v.mission != nil:
		sections = append(sections, v.renderMission())
	default:
		hints := "/ lookup"
		if v.cap.CanCreate {
			hints += "  n new mission"
		}
		sections = append(sections,
			v.theme.PanelStyle.Render("NO RECORD ON SCREEN\n"+
				lipgloss.NewStyle().Foreground(v.theme.Muted).Render(hints)))
	}

	if v.focus == focusStatus {
		sections = append(sections, v.renderStatusPicker())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *OperationsView) renderSearch() string {
	style := v.theme.PanelStyle
	if v.focus == focusSearch {
		style = v.theme.FocusedPanelStyle
	}
	return style.Render(v.theme.LabelStyle.Render("TRACE ") + v.search.View())
}

func (v *OperationsView) renderCreateForm() string {
	labels := [createFieldCount]string{"OBJECTIVE", "ZONE", "CLEARANCE", "ATTACHMENT"}
	var b strings.Builder
	b.WriteString(v.theme.TitleStyle.Render("NEW MISSION") + "\n")
	for i := range v.createInputs {
		b.WriteString(v.theme.LabelStyle.Render(fmt.Sprintf("%-11s", labels[i])) +
			v.createInputs[i].View() + "\n")
	}
	if v.creating {
		b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Warning).Render("FILING ..."))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Muted).Render("enter submit | esc cancel"))
	}
	return v.theme.FocusedPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (v *OperationsView) renderMission() string {
	m := v.mission
	var b strings.Builder

	b.WriteString(v.theme.TitleStyle.Render("MISSION "+m.ID) + "  " +
		v.theme.StatusStyle(m.Status).Render(string(m.Status)) + "\n")
	b.WriteString(v.theme.LabelStyle.Render("ZONE      ") + m.GeographicZone + "\n")
	b.WriteString(v.theme.LabelStyle.Render("CLEARANCE ") +
		v.theme.ClearanceStyle(m.ClearanceLevel).Render(fmt.Sprintf("LVL-%d", m.ClearanceLevel)) + "\n")
	b.WriteString(v.theme.LabelStyle.Render("BRIEF     ") + m.Description + "\n")
	if m.AttachmentFilename != "" {
		b.WriteString(v.theme.LabelStyle.Render("DOSSIER   ") + m.AttachmentFilename +
			lipgloss.NewStyle().Foreground(v.theme.Muted).Render("  (d retrieve)") + "\n")
	}

	if len(m.AssignedAgents) > 0 {
		b.WriteString("\n" + v.theme.TitleStyle.Render("PERSONNEL") + "\n")
		for _, agent := range m.AssignedAgents {
			b.WriteString(fmt.Sprintf("  %s  %s  ", agent.CodeName, agent.Username) +
				v.theme.ClearanceStyle(agent.ClearanceLevel).Render(fmt.Sprintf("LVL-%d", agent.ClearanceLevel)) + "\n")
		}
	}

	if len(m.Notes) > 0 {
		b.WriteString("\n" + v.theme.TitleStyle.Render("FIELD NOTES") + "\n")
		for _, note := range m.Notes {
			b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Muted).Render(
				fmt.Sprintf("  [%s] %s: ", note.Timestamp.Format("01-02 15:04"), note.AuthorCodeName)) +
				note.Content + "\n")
		}
	}

	if v.focus == focusNote {
		b.WriteString("\n" + v.theme.LabelStyle.Render("NOTE   ") + v.noteInput.View() + "\n")
	}
	if v.focus == focusAssign {
		b.WriteString("\n" + v.theme.LabelStyle.Render("DEPLOY ") + v.assignInput.View() + "\n")
		for _, agent := range v.suggestions {
			b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Accent).Render(
				fmt.Sprintf("    %s  %s", agent.Username, agent.CodeName)) + "\n")
		}
	}

	if v.focus == focusBrowse {
		hints := "m note"
		if v.cap.CanCommand {
			hints += "  a deploy  s status"
		}
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(v.theme.Muted).Render(hints))
	}

	return v.theme.PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (v *OperationsView) renderStatusPicker() string {
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
