// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"time"
)

// =============================================================================
// CAPABILITIES
// =============================================================================

// Modal is something that can be shown and hidden.
type Modal interface {
	Show()
	Hide()
	IsVisible() bool
}

// Controls are the two actions a warning surface offers the user.
type Controls struct {
	Continue func()
	Logout   func()
}

// WarningSurface is the modal the Monitor displays during the warning phase.
//
// Implementations are called from the Monitor's goroutine and must not block
// on the Monitor. Control callbacks must be invoked from another goroutine.
type WarningSurface interface {
	Modal

	// Mount installs the surface and binds the controls. If the surface was
	// already mounted it keeps its existing bindings and reports true.
	Mount(c Controls) (alreadyMounted bool)

	// SetCountdown updates the countdown region.
	SetCountdown(c Countdown)
}

// Renewer renews the session with the server.
type Renewer interface {
	Renew(ctx context.Context) error
}

// Navigator leaves the current page for target.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// ActivitySource delivers user activity to a subscriber.
type ActivitySource interface {
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(ActivityKind)) (cancel func())
}

// RenewerFunc adapts a function to Renewer.
type RenewerFunc func(ctx context.Context) error

// Renew calls f(ctx).
func (f RenewerFunc) Renew(ctx context.Context) error { return f(ctx) }

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate calls f(ctx, target).
func (f NavigatorFunc) Navigate(ctx context.Context, target string) error { return f(ctx, target) }

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies a Monitor event.
type EventKind string

const (
	EventStarted        EventKind = "started"
	EventReset          EventKind = "reset"
	EventWarningShown   EventKind = "warning_shown"
	EventCountdown      EventKind = "countdown"
	EventRenewRequested EventKind = "renew_requested"
	EventRenewed        EventKind = "renewed"
	EventRenewFailed    EventKind = "renew_failed"
	EventLoggedOut      EventKind = "logged_out"
	EventClosed         EventKind = "closed"
)

// Event describes something that happened inside a Monitor.
type Event struct {
	Kind             EventKind `json:"kind"`
	MonitorID        string    `json:"monitor_id"`
	Phase            Phase     `json:"phase"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Detail           string    `json:"detail,omitempty"`
	At               time.Time `json:"at"`
}

// Observer receives Monitor events on the Monitor's goroutine. It must return
// quickly and must not call back into the Monitor.
type Observer func(Event)

// noopSurface is used when no surface is configured.
type noopSurface struct {
	visible bool
}

func (s *noopSurface) Show()                    { s.visible = true }
func (s *noopSurface) Hide()                    { s.visible = false }
func (s *noopSurface) IsVisible() bool          { return s.visible }
func (s *noopSurface) Mount(Controls) bool      { return false }
func (s *noopSurface) SetCountdown(c Countdown) {}
