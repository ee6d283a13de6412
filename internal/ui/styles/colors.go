// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionwatch/internal/session"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Primary accent, focused buttons
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, key hints
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Active session
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - Warning countdown
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - Danger countdown, logged out
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Sky - Notice countdown
var Sky = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#7DD3FC"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains text indicators shown next to colored states so
// the state reads without color.
type StatusIndicatorSet struct {
	Active  string
	Warning string
	Danger  string
	Pending string
	Closed  string
}

// StatusIndicators are ASCII-only.
var StatusIndicators = StatusIndicatorSet{
	Active:  "[*]",
	Warning: "[!]",
	Danger:  "[!!]",
	Pending: "[ ]",
	Closed:  "[X]",
}

// SeverityColor maps a countdown severity to its color.
func SeverityColor(s session.Severity) lipgloss.AdaptiveColor {
	switch s {
	case session.SeverityDanger:
		return Rose
	case session.SeverityWarning:
		return Amber
	default:
		return Sky
	}
}

// SeverityIndicator maps a countdown severity to its text indicator.
func SeverityIndicator(s session.Severity) string {
	switch s {
	case session.SeverityDanger:
		return StatusIndicators.Danger
	case session.SeverityWarning:
		return StatusIndicators.Warning
	default:
		return StatusIndicators.Pending
	}
}

// PhaseColor maps a monitor phase to its status bar color.
func PhaseColor(p session.Phase) lipgloss.AdaptiveColor {
	switch p {
	case session.PhaseWarning:
		return Amber
	case session.PhaseLoggedOut:
		return Rose
	default:
		return Emerald
	}
}
