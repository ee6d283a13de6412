// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "fmt"

// Severity thresholds for the countdown display, in seconds.
const (
	WarningThresholdSecs = 60
	DangerThresholdSecs  = 30
)

// Severity is the presentation level of the countdown. It never affects
// behavior.
type Severity int

const (
	SeverityNotice Severity = iota
	SeverityWarning
	SeverityDanger
)

// String returns a string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Countdown is the value shown in the warning surface's countdown region.
type Countdown struct {
	Seconds int
}

// String formats the countdown as M:SS.
func (c Countdown) String() string {
	return FormatCountdown(c.Seconds)
}

// Severity returns the display severity for the remaining time.
func (c Countdown) Severity() Severity {
	switch {
	case c.Seconds <= DangerThresholdSecs:
		return SeverityDanger
	case c.Seconds <= WarningThresholdSecs:
		return SeverityWarning
	default:
		return SeverityNotice
	}
}

// FormatCountdown formats whole seconds as minutes:seconds with the seconds
// zero-padded below 10. Negative values render as 0:00.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
