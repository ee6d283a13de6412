// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/theme"
	"github.com/jeranaias/sessionwatch/internal/ui/components"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
)

const (
	refreshInterval = time.Second
	noticeDuration  = 2 * time.Second
)

// =============================================================================
// MESSAGES
// =============================================================================

// redrawMsg is sent when the warning overlay changed.
type redrawMsg struct{}

// refreshMsg polls the monitor state.
type refreshMsg time.Time

// clearNoticeMsg clears the status bar notice it was scheduled for.
type clearNoticeMsg struct{ seq int }

// ThemeChangedMsg applies new theme settings, typically from the file watcher.
type ThemeChangedMsg struct {
	Settings theme.Settings
}

// =============================================================================
// MODEL
// =============================================================================

// Options wires the shell to a monitor and its collaborators. Overlay and
// Activity must be the same values the monitor was built with.
type Options struct {
	Monitor    *session.Monitor
	Overlay    *components.WarningOverlay
	Activity   *Activity
	Themes     *theme.Store
	Settings   theme.Settings
	Translator *i18n.Translator
	Logger     *log.Logger
}

// Model is the Bubble Tea model for the session shell.
type Model struct {
	monitor  *session.Monitor
	overlay  *components.WarningOverlay
	activity *Activity
	themes   *theme.Store
	tr       *i18n.Translator
	logger   *log.Logger

	settings theme.Settings
	theme    *styles.Theme
	status   *components.StatusBar
	help     *components.HelpPanel
	spinner  spinner.Model
	keys     KeyMap

	state     session.State
	noticeSeq int
	width     int
	height    int
	quitting  bool
}

// New creates the shell model.
func New(opts Options) Model {
	tr := opts.Translator
	if tr == nil {
		tr = i18n.New("en")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	th := styles.NewTheme(opts.Settings)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	m := Model{
		monitor:  opts.Monitor,
		overlay:  opts.Overlay,
		activity: opts.Activity,
		themes:   opts.Themes,
		tr:       tr,
		logger:   logger,
		settings: opts.Settings,
		theme:    th,
		status:   components.NewStatusBar(tr, th),
		help:     components.NewHelpPanel(tr, th, opts.Monitor.Config()),
		spinner:  sp,
		keys:     DefaultKeyMap(),
		width:    80,
		height:   24,
	}
	m.overlay.SetTheme(th)
	return m
}

// Init starts the redraw listener, the state poll and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForRedraw(m.overlay),
		refreshCmd(),
		m.spinner.Tick,
	)
}

func waitForRedraw(o *components.WarningOverlay) tea.Cmd {
	return func() tea.Msg {
		<-o.Redraws()
		return redrawMsg{}
	}
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// State returns the last polled monitor state.
func (m Model) State() session.State {
	return m.state
}

// Settings returns the applied theme settings.
func (m Model) Settings() theme.Settings {
	return m.settings
}

// Quitting reports whether the shell is exiting.
func (m Model) Quitting() bool {
	return m.quitting
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kind, ok := ActivityFor(msg); ok && m.activity != nil {
		m.activity.Emit(kind)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overlay.SetSize(msg.Width, msg.Height-1)
		m.status.SetWidth(msg.Width)
		m.help.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case redrawMsg:
		m.refreshState()
		if m.state.Phase.IsTerminal() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, waitForRedraw(m.overlay)

	case refreshMsg:
		m.refreshState()
		if m.state.Phase.IsTerminal() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, refreshCmd()

	case ThemeChangedMsg:
		return m.applySettings(msg.Settings)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.status.SetNotice("")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.help.Update(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Theme):
		return m.cycleTheme()

	case key.Matches(msg, m.keys.Help):
		m.help.Toggle()
		return m, nil
	}

	if m.overlay.IsVisible() {
		switch {
		case key.Matches(msg, m.keys.Continue):
			m.overlay.ChooseContinue()
		case key.Matches(msg, m.keys.Logout):
			m.overlay.ChooseLogout()
		case key.Matches(msg, m.keys.Choose):
			m.overlay.Choose()
		case key.Matches(msg, m.keys.Switch):
			m.overlay.ToggleFocus()
		}
		return m, nil
	}

	return m, m.help.Update(msg)
}

func (m *Model) refreshState() {
	m.state = m.monitor.State()
	m.status.SetState(m.state)
}

func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	if m.themes == nil {
		next := m.settings
		next.Mode = next.Mode.Next()
		return m.applySettings(next)
	}
	next, err := m.themes.Cycle()
	if err != nil {
		m.logger.Printf("THEME_ERROR | %v", err)
		return m, nil
	}
	return m.applySettings(next)
}

func (m Model) applySettings(s theme.Settings) (tea.Model, tea.Cmd) {
	changed := s.Mode != m.settings.Mode
	m.settings = s
	m.theme = styles.NewTheme(s)
	m.overlay.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.help.SetTheme(m.theme)
	if !changed {
		return m, nil
	}
	m.noticeSeq++
	m.status.SetNotice(m.tr.T(i18n.ThemeChanged, string(s.Mode)))
	return m, clearNoticeCmd(m.noticeSeq)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the shell.
func (m Model) View() string {
	if m.quitting {
		if m.state.Phase.IsTerminal() {
			return m.tr.T(i18n.LoggedOut) + "\n"
		}
		return ""
	}

	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case m.overlay.IsVisible():
		body = m.overlay.View()
	case m.help.IsVisible():
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.help.View())
	default:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.idleView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.status.View())
}

func (m Model) idleView() string {
	cfg := m.monitor.Config()
	lines := []string{
		m.theme.OverlayTitle.Foreground(styles.Emerald).Render(m.tr.T(i18n.StatusIdle)),
		"",
		m.theme.ShortcutDesc.Render(fmt.Sprintf("monitor %s", m.monitor.ID())),
		m.theme.ShortcutDesc.Render(fmt.Sprintf("warning after %s, logout %s later", cfg.SilentDuration, cfg.WarningDuration)),
	}
	if m.state.RenewalPending {
		lines = append(lines, "", m.spinner.View()+" "+m.tr.T(i18n.Renewing))
	}
	return strings.Join(lines, "\n")
}
