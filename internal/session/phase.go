// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "fmt"

// =============================================================================
// PHASE
// =============================================================================

// Phase is the state of a Monitor.
type Phase int

const (
	// PhaseIdle is the silent phase: no warning is shown and activity re-arms
	// the silent timer.
	PhaseIdle Phase = iota
	// PhaseWarning shows the warning surface and counts down.
	PhaseWarning
	// PhaseLoggedOut is terminal.
	PhaseLoggedOut
)

// String returns a string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseWarning:
		return "WARNING"
	case PhaseLoggedOut:
		return "LOGGED_OUT"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (p Phase) IsTerminal() bool {
	return p == PhaseLoggedOut
}

// =============================================================================
// ACTIVITY
// =============================================================================

// ActivityKind identifies the kind of user activity that was observed.
type ActivityKind int

const (
	ActivityMouseDown ActivityKind = iota
	ActivityMouseMove
	ActivityKeyPress
	ActivityScroll
	ActivityTouchStart
	ActivityClick
)

// String returns the DOM-style event name for the activity.
func (k ActivityKind) String() string {
	switch k {
	case ActivityMouseDown:
		return "mousedown"
	case ActivityMouseMove:
		return "mousemove"
	case ActivityKeyPress:
		return "keypress"
	case ActivityScroll:
		return "scroll"
	case ActivityTouchStart:
		return "touchstart"
	case ActivityClick:
		return "click"
	default:
		return "unknown"
	}
}

// ParseActivity maps an event name back to its ActivityKind.
func ParseActivity(name string) (ActivityKind, bool) {
	for k := ActivityMouseDown; k <= ActivityClick; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

// State is a point-in-time copy of a Monitor's state.
type State struct {
	// Phase is the current phase.
	Phase Phase `json:"phase"`

	// RemainingSeconds is the countdown value. Zero outside PhaseWarning.
	RemainingSeconds int `json:"remaining_seconds"`

	// RenewalPending is true while a keep-alive request is in flight.
	RenewalPending bool `json:"renewal_pending"`

	// Started is true once Start has run.
	Started bool `json:"started"`

	// Closed is true once Close has run.
	Closed bool `json:"closed"`
}

// Countdown returns the countdown value as a Countdown.
func (s State) Countdown() Countdown {
	return Countdown{Seconds: s.RemainingSeconds}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseWarning, PhaseLoggedOut} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
