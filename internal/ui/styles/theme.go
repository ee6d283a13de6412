// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/theme"
)

// CompactOption shrinks the warning box and drops the status bar hints.
const CompactOption = "display-compact"

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	Mode         theme.Mode
	IsDark       bool
	ColorProfile termenv.Profile
	Compact      bool

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusPhase  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Toast        lipgloss.Style

	// ==========================================================================
	// WARNING OVERLAY STYLES
	// ==========================================================================

	OverlayBox      lipgloss.Style
	OverlayTitle    lipgloss.Style
	OverlayBody     lipgloss.Style
	OverlayLabel    lipgloss.Style
	OverlayQuestion lipgloss.Style
	Button          lipgloss.Style
	ButtonActive    lipgloss.Style
	Backdrop        lipgloss.TerminalColor

	// ==========================================================================
	// HELP PANEL STYLES
	// ==========================================================================

	HelpBox lipgloss.Style
}

// NewTheme builds a theme for the given settings. ModeDefault follows the
// terminal background; the other modes force it.
func NewTheme(settings theme.Settings) *Theme {
	mode := settings.Mode
	if !mode.Valid() {
		mode = theme.ModeDefault
	}

	var isDark bool
	switch mode {
	case theme.ModeDark:
		isDark = true
	case theme.ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
		Compact:      settings.HasOption(CompactOption),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusPhase = lipgloss.NewStyle().
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Toast = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	padding := []int{1, 3}
	if t.Compact {
		padding = []int{0, 1}
	}

	t.OverlayBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		Background(Surface).
		Padding(padding...).
		Align(lipgloss.Center)

	t.OverlayTitle = lipgloss.NewStyle().
		Bold(true)

	t.OverlayBody = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Align(lipgloss.Center)

	t.OverlayLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.OverlayQuestion = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.ButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	t.Backdrop = SurfaceDim

	t.HelpBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)
}

// BorderFor returns the overlay box style colored for the severity.
func (t *Theme) BorderFor(s session.Severity) lipgloss.Style {
	return t.OverlayBox.BorderForeground(SeverityColor(s))
}

// CountdownFor returns the countdown text style for the severity.
func (t *Theme) CountdownFor(s session.Severity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(SeverityColor(s)).Bold(true)
}

// PhaseStyle returns the status bar phase label style.
func (t *Theme) PhaseStyle(p session.Phase) lipgloss.Style {
	return t.StatusPhase.Foreground(PhaseColor(p))
}

// GlamourStyle names the glamour style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
