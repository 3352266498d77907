// Package tui implements the terminal console shell: one bubbletea
// program owning all mutable client state. Network responses, timer
// ticks and key events all arrive as messages on the single update
// loop, so no state transition ever races another.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aegis-intel/aegis-console/internal/authz"
	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/session"
	"github.com/aegis-intel/aegis-console/internal/tui/components"
	"github.com/aegis-intel/aegis-console/internal/tui/styles"
	"github.com/aegis-intel/aegis-console/internal/tui/views"
)

// PollInterval is the cadence of the background synchronization of the
// privileged collections.
const PollInterval = 2 * time.Second

// Mode identifies the active screen.
type Mode int

const (
	ModeOperations Mode = iota
	ModeAdmin
)

// Shell messages.
type refreshTickMsg struct{}
type refreshDoneMsg struct{ err error }

type adminPollTickMsg struct{ gen int }

type adminSnapshotMsg struct {
	gen        int
	background bool
	snap       intel.AdminSnapshot
	at         time.Time
}

type clearanceConfirmedMsg struct{ level int }
type profileFailedMsg struct{ err error }
type toastExpiredMsg struct{ seq int }
type sessionClosedMsg struct{}

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	sess   *session.Session
	engine *intel.Engine
	cap    authz.Capability
	theme  *styles.Theme
	logger *slog.Logger
	log    *oplog.Buffer

	keys keyMap
	mode Mode

	header    *components.Header
	statusBar *components.StatusBar
	logPanel  *components.LogPanel

	ops   *views.OperationsView
	admin *views.AdminView

	toast    *oplog.Toast
	toastSeq int

	// pollGen is the live poller generation. Every teardown bumps it;
	// ticks and background snapshots from a dead generation are
	// dropped and never reschedule.
	pollGen int

	width    int
	height   int
	quitting bool
	expired  bool
}

// New assembles the shell for an established session.
func New(ctx context.Context, sess *session.Session, engine *intel.Engine, log *oplog.Buffer, logger *slog.Logger) *App {
	identity := sess.Identity()
	cap := authz.Compose(identity.Roles, sess.CurrentClearance())
	theme := styles.RoleTheme(cap.Tier)

	a := &App{
		ctx:    ctx,
		sess:   sess,
		engine: engine,
		cap:    cap,
		theme:  theme,
		logger: logger,
		log:    log,
		keys:   defaultKeyMap(),
		width:  100,
		height: 30,
	}

	a.header = components.NewHeader(cap.Tier, identity.CodeName, identity.BadgeID, theme)
	a.header.SetClearance(sess.CurrentClearance())
	a.statusBar = components.NewStatusBar(a.width, theme)
	a.statusBar.SetMode("OPERATIONS")
	a.logPanel = components.NewLogPanel(log, "OPERATIONS LOG", theme)

	a.ops = views.NewOperationsView(ctx, engine, cap, theme)
	if cap.CanViewAdmin {
		a.admin = views.NewAdminView(ctx, engine, cap, theme)
	}

	return a
}

// Init starts the credential refresher and, on privileged tiers, the
// first synchronization plus the background poller.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.confirmProfile(),
		a.scheduleRefresh(),
	}
	if a.admin != nil {
		cmds = append(cmds,
			a.fetchSnapshot(a.pollGen, false),
			a.schedulePoll(a.pollGen),
		)
	}
	return tea.Batch(cmds...)
}

// confirmProfile fetches the authoritative profile to settle the
// provisional claim-derived clearance.
func (a *App) confirmProfile() tea.Cmd {
	engine := a.engine
	ctx := a.ctx
	return func() tea.Msg {
		profile, err := engine.FetchProfile(ctx)
		if err != nil {
			return profileFailedMsg{err: err}
		}
		return clearanceConfirmedMsg{level: profile.ClearanceLevel}
	}
}

func (a *App) scheduleRefresh() tea.Cmd {
	return tea.Tick(session.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (a *App) runRefresh() tea.Cmd {
	sess := a.sess
	ctx := a.ctx
	return func() tea.Msg {
		return refreshDoneMsg{err: sess.RefreshBeforeExpiry(ctx, session.RefreshThreshold)}
	}
}

func (a *App) schedulePoll(gen int) tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		return adminPollTickMsg{gen: gen}
	})
}

func (a *App) fetchSnapshot(gen int, background bool) tea.Cmd {
	engine := a.engine
	ctx := a.ctx
	return func() tea.Msg {
		return adminSnapshotMsg{
			gen:        gen,
			background: background,
			snap:       engine.FetchAdminSnapshot(ctx),
			at:         time.Now(),
		}
	}
}

// stopPolling invalidates the live poller generation. Any tick or
// background snapshot still in flight lands dead.
func (a *App) stopPolling() {
	a.pollGen++
}

func (a *App) showToast(message string, severity oplog.Severity) tea.Cmd {
	a.toastSeq++
	seq := a.toastSeq
	toast := oplog.NewToast(message, severity, time.Now())
	a.toast = &toast
	return tea.Tick(oplog.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// forceLogout tears down the session after an unrecoverable credential
// failure and exits.
func (a *App) forceLogout() tea.Cmd {
	if a.expired {
		return nil
	}
	a.expired = true
	a.stopPolling()
	a.statusBar.SetError("SESSION EXPIRED // DISCONNECTING")
	a.log.Append("AUTH", "session expired, forcing disconnect")
	return tea.Sequence(a.closeSession(), tea.Quit)
}

func (a *App) closeSession() tea.Cmd {
	sess := a.sess
	ctx := a.ctx
	logger := a.logger
	return func() tea.Msg {
		if err := sess.Close(ctx); err != nil {
			// Best effort: local teardown proceeds regardless.
			logger.Warn("session close failed", "error", err)
		}
		return sessionClosedMsg{}
	}
}

func (a *App) setMode(mode Mode) {
	if mode == ModeAdmin && a.admin == nil {
		return
	}
	a.mode = mode
	if mode == ModeAdmin {
		a.statusBar.SetMode("ADMIN BOARD")
		a.statusBar.SetKeyHints("tab registry | f1 ops | q quit")
	} else {
		a.statusBar.SetMode("OPERATIONS")
		hints := "/ lookup"
		if a.admin != nil {
			hints += " | f2 admin"
		}
		a.statusBar.SetKeyHints(hints + " | q quit")
	}
}

// Update is the single state-transition point of the client.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.header.SetWidth(msg.Width)
		a.statusBar.SetWidth(msg.Width)
		a.logPanel.SetSize(msg.Width, 7)
		content := msg.Height - a.header.Height() - a.logPanel.Height() - 1
		a.ops.SetSize(msg.Width, content)
		if a.admin != nil {
			a.admin.SetSize(msg.Width, content)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case views.ToastMsg:
		return a, a.showToast(msg.Message, msg.Severity)

	case views.LogMsg:
		a.log.Append(msg.Action, msg.Detail)
		return a, nil

	case views.SessionExpiredMsg:
		return a, a.forceLogout()

	case views.AdminRefreshRequestMsg:
		if a.admin == nil {
			return a, nil
		}
		return a, a.fetchSnapshot(a.pollGen, false)

	case views.InspectMissionMsg:
		a.setMode(ModeOperations)
		return a, a.ops.Inspect(msg.ID)

	case refreshTickMsg:
		if a.expired || a.quitting {
			return a, nil
		}
		return a, a.runRefresh()

	case refreshDoneMsg:
		if msg.err != nil {
			return a, a.forceLogout()
		}
		return a, a.scheduleRefresh()

	case adminPollTickMsg:
		// A tick from a dead generation neither fetches nor
		// reschedules.
		if msg.gen != a.pollGen || a.admin == nil {
			return a, nil
		}
		return a, tea.Batch(
			a.fetchSnapshot(msg.gen, true),
			a.schedulePoll(msg.gen),
		)

	case adminSnapshotMsg:
		if a.admin == nil || (msg.background && msg.gen != a.pollGen) {
			return a, nil
		}
		a.admin.ApplySnapshot(msg.snap, msg.at)
		if msg.snap.AuditErr == nil {
			a.log.Replace(auditToLog(msg.snap.Audit))
		}
		if !msg.background {
			a.statusBar.SetMessage(fmt.Sprintf("registries synchronized (%d agents, %d missions)",
				len(msg.snap.Agents), len(msg.snap.Missions)))
		}
		return a, nil

	case clearanceConfirmedMsg:
		a.sess.ConfirmClearance(msg.level)
		a.header.SetClearance(a.sess.CurrentClearance())
		a.cap = authz.Compose(a.sess.Identity().Roles, a.sess.CurrentClearance())
		return a, nil

	case profileFailedMsg:
		if errors.Is(msg.err, session.ErrSessionExpired) {
			return a, a.forceLogout()
		}
		a.log.Append("ERR", "profile confirmation failed")
		return a, nil

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = nil
		}
		return a, nil

	case sessionClosedMsg:
		return a, nil
	}

	// Async results reach their view even after a mode switch. Each
	// view only reacts to its own message types.
	cmds := []tea.Cmd{a.ops.Update(msg)}
	if a.admin != nil {
		cmds = append(cmds, a.admin.Update(msg))
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}
	if a.expired {
		return a, nil
	}

	// A focused text input owns the keyboard completely.
	if a.mode == ModeOperations && a.ops.Focused() {
		return a, a.ops.Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Operations):
		a.setMode(ModeOperations)
		return a, nil
	case key.Matches(msg, a.keys.Admin):
		a.setMode(ModeAdmin)
		return a, nil
	}

	if a.mode == ModeAdmin && a.admin != nil {
		return a, a.admin.Update(msg)
	}
	return a, a.ops.Update(msg)
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.quitting {
		return a, tea.Quit
	}
	a.quitting = true
	a.stopPolling()
	a.log.Append("EXIT", "operator disconnect")
	return a, tea.Sequence(a.closeSession(), tea.Quit)
}

// View renders the full screen.
func (a *App) View() string {
	if a.quitting || a.expired {
		style := lipgloss.NewStyle().Foreground(a.theme.Primary).Bold(true)
		if a.expired {
			style = lipgloss.NewStyle().Foreground(a.theme.Danger).Bold(true)
		}
		return style.Render("CONNECTION TERMINATED") + "\n"
	}

	var content string
	if a.mode == ModeAdmin && a.admin != nil {
		content = a.admin.View()
	} else {
		content = a.ops.View()
	}

	sections := []string{a.header.Render(), content}
	if toast := components.RenderToast(a.toast, a.theme); toast != "" {
		sections = append(sections, toast)
	}
	sections = append(sections, a.logPanel.Render(), a.statusBar.Render())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// auditToLog converts the authoritative audit history into log panel
// entries, oldest first, capped at the buffer capacity.
func auditToLog(audit []intel.AuditEntry) []oplog.Entry {
	if len(audit) > oplog.DefaultCapacity {
		audit = audit[:oplog.DefaultCapacity]
	}
	entries := make([]oplog.Entry, 0, len(audit))
	for i := len(audit) - 1; i >= 0; i-- {
		entries = append(entries, oplog.Entry{
			ID:     audit[i].ID,
			Time:   audit[i].Timestamp,
			Action: audit[i].Action,
			Detail: fmt.Sprintf("%s: %s", audit[i].Actor, audit[i].Details),
		})
	}
	return entries
}
