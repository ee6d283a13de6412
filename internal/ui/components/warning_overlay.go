// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
)

// =============================================================================
// WARNING OVERLAY
// =============================================================================

// Button indexes.
const (
	ButtonContinue = iota
	ButtonLogout
)

// WarningOverlay is the terminal warning surface. It implements
// session.WarningSurface and is safe for use from the monitor goroutine and
// the UI goroutine at once.
type WarningOverlay struct {
	mu sync.Mutex

	// Monitor-facing state
	mounted   bool
	controls  session.Controls
	visible   bool
	countdown session.Countdown
	total     int

	// UI state
	focused  int
	chosen   int
	choosing bool
	width    int
	height   int

	tr    *i18n.Translator
	theme *styles.Theme
	bar   progress.Model

	redraw chan struct{}
}

// NewWarningOverlay creates an overlay. warning is the length of the warning
// phase and scales the progress bar.
func NewWarningOverlay(tr *i18n.Translator, theme *styles.Theme, warning time.Duration) *WarningOverlay {
	total := int(warning / time.Second)
	if total <= 0 {
		total = 1
	}
	return &WarningOverlay{
		total:  total,
		tr:     tr,
		theme:  theme,
		bar:    progress.New(progress.WithoutPercentage(), progress.WithSolidFill(styles.Amber.Dark)),
		redraw: make(chan struct{}, 1),
	}
}

// =============================================================================
// session.WarningSurface
// =============================================================================

// Mount binds the controls once. Later calls keep the first binding.
func (o *WarningOverlay) Mount(c session.Controls) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mounted {
		return true
	}
	o.mounted = true
	o.controls = c
	return false
}

// Show displays the overlay with the continue button focused.
func (o *WarningOverlay) Show() {
	o.mu.Lock()
	o.visible = true
	o.focused = ButtonContinue
	o.choosing = false
	o.mu.Unlock()
	o.signal()
}

// Hide hides the overlay.
func (o *WarningOverlay) Hide() {
	o.mu.Lock()
	o.visible = false
	o.choosing = false
	o.mu.Unlock()
	o.signal()
}

// IsVisible returns whether the overlay is currently visible.
func (o *WarningOverlay) IsVisible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// SetCountdown updates the countdown region.
func (o *WarningOverlay) SetCountdown(c session.Countdown) {
	o.mu.Lock()
	o.countdown = c
	o.mu.Unlock()
	o.signal()
}

// signal requests a redraw without blocking the monitor.
func (o *WarningOverlay) signal() {
	select {
	case o.redraw <- struct{}{}:
	default:
	}
}

// Redraws delivers a value whenever the overlay changed. Pending signals
// coalesce.
func (o *WarningOverlay) Redraws() <-chan struct{} {
	return o.redraw
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetSize sets the overlay dimensions.
func (o *WarningOverlay) SetSize(width, height int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.width = width
	o.height = height
}

// SetTheme swaps the theme after a mode change.
func (o *WarningOverlay) SetTheme(theme *styles.Theme) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.theme = theme
}

// Countdown returns the last countdown value.
func (o *WarningOverlay) Countdown() session.Countdown {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.countdown
}

// Focused returns the focused button index.
func (o *WarningOverlay) Focused() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.focused
}

// =============================================================================
// CONTROLS
// =============================================================================

// ToggleFocus moves focus to the other button.
func (o *WarningOverlay) ToggleFocus() {
	o.mu.Lock()
	if o.focused == ButtonContinue {
		o.focused = ButtonLogout
	} else {
		o.focused = ButtonContinue
	}
	o.mu.Unlock()
	o.signal()
}

// Choose activates the focused button.
func (o *WarningOverlay) Choose() bool {
	o.mu.Lock()
	focused := o.focused
	o.mu.Unlock()
	return o.choose(focused)
}

// ChooseContinue activates "continue".
func (o *WarningOverlay) ChooseContinue() bool {
	return o.choose(ButtonContinue)
}

// ChooseLogout activates "logout".
func (o *WarningOverlay) ChooseLogout() bool {
	return o.choose(ButtonLogout)
}

// choose runs the bound control on its own goroutine. It reports false when
// the overlay is hidden, unmounted, or already waiting on a choice.
func (o *WarningOverlay) choose(button int) bool {
	o.mu.Lock()
	if !o.visible || !o.mounted || o.choosing {
		o.mu.Unlock()
		return false
	}
	fn := o.controls.Continue
	if button == ButtonLogout {
		fn = o.controls.Logout
	}
	if fn == nil {
		o.mu.Unlock()
		return false
	}
	o.choosing = true
	o.chosen = button
	o.focused = button
	o.mu.Unlock()

	o.signal()
	go fn()
	return true
}

// =============================================================================
// RENDER
// =============================================================================

// View renders the overlay, or "" when hidden.
func (o *WarningOverlay) View() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.visible {
		return ""
	}

	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}
	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	th := o.theme
	severity := o.countdown.Severity()
	color := styles.SeverityColor(severity)

	var parts []string
	parts = append(parts, th.OverlayTitle.Foreground(color).Render(
		styles.SeverityIndicator(severity)+" "+o.tr.T(i18n.WarningTitle)))
	if !th.Compact {
		parts = append(parts, "")
		parts = append(parts, th.OverlayBody.Width(maxWidth-8).Render(o.tr.T(i18n.WarningBody)))
	}
	parts = append(parts, "")
	parts = append(parts, th.OverlayLabel.Render(o.tr.T(i18n.TimeRemaining))+" "+
		th.CountdownFor(severity).Render(o.countdown.String()))

	o.bar.Width = maxWidth - 10
	o.bar.FullColor = colorFor(color, th.IsDark)
	parts = append(parts, o.bar.ViewAs(float64(clamp(o.countdown.Seconds, 0, o.total))/float64(o.total)))
	parts = append(parts, "")

	if o.choosing && o.chosen == ButtonContinue {
		parts = append(parts, th.OverlayQuestion.Render(o.tr.T(i18n.Renewing)))
	} else {
		parts = append(parts, th.OverlayQuestion.Render(o.tr.T(i18n.WarningQuestion)))
		parts = append(parts, "")
		parts = append(parts, o.renderButtons())
	}

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	box := th.BorderFor(severity).Width(maxWidth).Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(th.Backdrop),
	)
}

func (o *WarningOverlay) renderButtons() string {
	labels := []string{o.tr.T(i18n.ContinueButton), o.tr.T(i18n.LogoutButton)}
	rendered := make([]string, len(labels))
	for i, label := range labels {
		if i == o.focused {
			rendered[i] = o.theme.ButtonActive.Render(label)
		} else {
			rendered[i] = o.theme.Button.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func colorFor(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
