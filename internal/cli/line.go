// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// line.go - Line-mode monitor for terminals without full-screen support.
//
// Every line typed counts as activity. During the warning the surface prints
// the countdown between prompts and the user answers with a command:
//
//	continue, c    renew the session
//	logout, l      log out now
//	status, s      show the monitor state
//	help, h        list commands
//	quit, exit, q  leave without logging out
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/sessionwatch/internal/config"
	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/ui/shell"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// LINE SURFACE
// =============================================================================

// LineSurface is a warning surface that prints to a writer. Countdown lines
// are printed on the half minute and for the last ten seconds.
type LineSurface struct {
	mu       sync.Mutex
	out      io.Writer
	tr       *i18n.Translator
	controls session.Controls
	mounted  bool
	visible  bool
	last     session.Countdown
}

// NewLineSurface creates a surface writing to out.
func NewLineSurface(out io.Writer, tr *i18n.Translator) *LineSurface {
	return &LineSurface{out: out, tr: tr, last: session.Countdown{Seconds: -1}}
}

// Mount binds the controls once.
func (s *LineSurface) Mount(c session.Controls) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return true
	}
	s.mounted = true
	s.controls = c
	return false
}

// Show prints the warning.
func (s *LineSurface) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible {
		return
	}
	s.visible = true
	fmt.Fprintf(s.out, "\n%s\n%s\n%s\n",
		warningStyle.Render("[!] "+s.tr.T(i18n.WarningTitle)),
		s.tr.T(i18n.WarningBody),
		s.tr.T(i18n.WarningQuestion))
}

// Hide marks the warning as dismissed.
func (s *LineSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

// IsVisible reports whether the warning is up.
func (s *LineSurface) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// SetCountdown prints the countdown when it crosses a reporting point.
func (s *LineSurface) SetCountdown(c session.Countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.last.Seconds < 0 || c.Seconds > s.last.Seconds
	s.last = c
	if !first && c.Seconds%30 != 0 && c.Seconds > 10 {
		return
	}
	style := warningStyle
	if c.Severity() == session.SeverityDanger {
		style = dangerStyle
	}
	fmt.Fprintln(s.out, style.Render(s.tr.T(i18n.LineWarning, c.String())))
}

// Controls returns the bound controls.
func (s *LineSurface) Controls() session.Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

// =============================================================================
// COMMANDS
// =============================================================================

// lineAction is the outcome of one typed line.
type lineAction int

const (
	lineKeepGoing lineAction = iota
	lineQuit
)

// runLineCommand executes one typed command against the monitor.
func runLineCommand(input string, m *session.Monitor, surface *LineSurface, tr *i18n.Translator, out io.Writer) lineAction {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return lineKeepGoing
	}

	switch fields[0] {
	case "continue", "c", "yes", "y":
		if !surface.IsVisible() {
			fmt.Fprintln(out, infoStyle.Render(tr.T(i18n.StatusIdle)))
			return lineKeepGoing
		}
		fmt.Fprintln(out, infoStyle.Render(tr.T(i18n.Renewing)))
		if c := surface.Controls(); c.Continue != nil {
			c.Continue()
		}
	case "logout", "l", "no", "n":
		if c := surface.Controls(); c.Logout != nil {
			c.Logout()
		} else {
			m.LogoutNow()
		}
	case "status", "s":
		printLineStatus(out, m, tr)
	case "help", "h", "?":
		fmt.Fprintln(out, infoStyle.Render("continue (c)  logout (l)  status (s)  quit (q)"))
	case "quit", "exit", "q":
		return lineQuit
	default:
		fmt.Fprintf(out, "%s %q\n", infoStyle.Render("unknown command"), fields[0])
	}

	if m.State().Phase.IsTerminal() {
		return lineQuit
	}
	return lineKeepGoing
}

func printLineStatus(out io.Writer, m *session.Monitor, tr *i18n.Translator) {
	st := m.State()
	indicator, text := styles.StatusIndicators.Active, tr.T(i18n.StatusIdle)
	switch st.Phase {
	case session.PhaseWarning:
		indicator = styles.SeverityIndicator(st.Countdown().Severity())
		text = tr.T(i18n.StatusWarning, st.Countdown().String())
	case session.PhaseLoggedOut:
		indicator, text = styles.StatusIndicators.Closed, tr.T(i18n.StatusLoggedOut)
	}
	fmt.Fprintf(out, "%s %s  %s\n", indicator, text, infoStyle.Render(m.ID()))
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineInput wraps liner with a history file in the config directory.
type lineInput struct {
	line        *liner.State
	historyFile string
}

func newLineInput() *lineInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	in := &lineInput{
		line:        line,
		historyFile: filepath.Join(configDir, "line_history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *lineInput) read(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// close saves history with owner-only permissions and restores the terminal.
func (in *lineInput) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			in.line.WriteHistory(f)
			f.Close()
		}
	}
	in.line.Close()
}

// =============================================================================
// HANDLER
// =============================================================================

// HandleLine runs the line-mode monitor.
func HandleLine(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	rt, err := NewRuntime(cfg, nil, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	surface := NewLineSurface(os.Stdout, rt.Translator)
	activity := shell.NewActivity()

	loggedOut := func(ev session.Event) {
		if ev.Kind == session.EventLoggedOut {
			fmt.Fprintln(os.Stdout, "\n"+dangerStyle.Render(rt.Translator.T(i18n.LoggedOut)))
		}
	}
	monitor, err := rt.NewMonitor(surface, activity, loggedOut)
	if err != nil {
		return err
	}
	defer monitor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rt.ServeDebug(ctx)

	if !args.Quiet {
		mcfg := monitor.Config()
		fmt.Printf("%s %s\n", promptStyle.Render("sessionwatch"), infoStyle.Render(
			fmt.Sprintf("warning after %s, logout %s later. Type 'help' for commands.",
				mcfg.SilentDuration, mcfg.WarningDuration)))
	}

	in := newLineInput()
	defer in.close()

	monitor.Start()

	for {
		input, err := in.read(rt.Translator.T(i18n.LinePrompt))
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed terminal
			fmt.Println()
			return nil
		}
		if monitor.State().Phase.IsTerminal() {
			return nil
		}
		activity.Emit(session.ActivityKeyPress)

		if runLineCommand(input, monitor, surface, rt.Translator, os.Stdout) == lineQuit {
			return nil
		}
	}
}
