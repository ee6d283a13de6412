// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
	"github.com/jeranaias/sessionwatch/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is a key hint shown on the right of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts lists the shell key bindings.
var DefaultShortcuts = []Shortcut{
	{Key: "c", Desc: "continue"},
	{Key: "l", Desc: "logout"},
	{Key: "ctrl+k", Desc: "theme"},
	{Key: "?", Desc: "help"},
	{Key: "ctrl+c", Desc: "quit"},
}

// StatusBar is the bottom line of the shell.
type StatusBar struct {
	State     session.State
	MonitorID string
	Notice    string
	Width     int
	Shortcuts []Shortcut

	tr    *i18n.Translator
	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(tr *i18n.Translator, theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:     80,
		Shortcuts: DefaultShortcuts,
		tr:        tr,
		theme:     theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetState updates the displayed monitor state.
func (s *StatusBar) SetState(state session.State) {
	s.State = state
}

// SetNotice shows a transient message such as a theme change. Empty clears it.
func (s *StatusBar) SetNotice(notice string) {
	s.Notice = notice
}

// SetTheme swaps the theme after a mode change.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// PhaseText returns the localized phase label.
func (s *StatusBar) PhaseText() string {
	switch s.State.Phase {
	case session.PhaseWarning:
		return s.tr.T(i18n.StatusWarning, s.State.Countdown().String())
	case session.PhaseLoggedOut:
		return s.tr.T(i18n.StatusLoggedOut)
	default:
		return s.tr.T(i18n.StatusIdle)
	}
}

// View renders the status bar.
func (s *StatusBar) View() string {
	th := s.theme

	indicator := styles.StatusIndicators.Active
	switch s.State.Phase {
	case session.PhaseWarning:
		indicator = styles.SeverityIndicator(s.State.Countdown().Severity())
	case session.PhaseLoggedOut:
		indicator = styles.StatusIndicators.Closed
	}
	left := th.PhaseStyle(s.State.Phase).Render(indicator + " " + s.PhaseText())
	if s.State.RenewalPending {
		left += " " + th.ShortcutDesc.Render(s.tr.T(i18n.Renewing))
	}
	if s.Notice != "" {
		left += " " + th.Toast.Render(s.Notice)
	}

	var right string
	if !th.Compact && s.Width >= 60 {
		hints := make([]string, 0, len(s.Shortcuts))
		for _, sc := range s.Shortcuts {
			hints = append(hints, th.ShortcutKey.Render(sc.Key)+" "+th.ShortcutDesc.Render(sc.Desc))
		}
		right = strings.Join(hints, th.ShortcutDesc.Render("  "))
	} else {
		right = th.ShortcutDesc.Render(s.tr.T(i18n.HelpHint))
	}

	inner := s.Width - 2
	if inner < 10 {
		inner = 10
	}
	if lipgloss.Width(left)+lipgloss.Width(right) >= inner {
		// Narrow: plain phase text only, truncated to fit.
		right = ""
		left = th.PhaseStyle(s.State.Phase).Render(util.TruncateWidth(indicator+" "+s.PhaseText(), inner))
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return th.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
