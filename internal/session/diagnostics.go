// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "os"

// DebugEnvVar gates the diagnostics handle.
const DebugEnvVar = "SESSIONWATCH_DEBUG"

// DebugEnabled reports whether the debug environment flag is set.
func DebugEnabled() bool {
	switch os.Getenv(DebugEnvVar) {
	case "1", "true", "TRUE", "yes", "on":
		return true
	}
	return false
}

// Diagnostics drives a Monitor directly for debugging and tests.
type Diagnostics struct {
	m *Monitor
}

// Diagnostics returns the debug handle. The second result is false unless the
// Monitor was built WithDiagnostics(true).
func (m *Monitor) Diagnostics() (*Diagnostics, bool) {
	if !m.diagnostics {
		return nil, false
	}
	return &Diagnostics{m: m}, true
}

// Reset returns to the idle phase with a fresh silent timer.
func (d *Diagnostics) Reset() {
	d.m.call(func() {
		if !d.m.started {
			return
		}
		d.m.reset("diagnostics")
	})
}

// ShowWarning skips the rest of the silent phase.
func (d *Diagnostics) ShowWarning() {
	d.m.call(func() {
		if !d.m.started || d.m.closed || d.m.phase != PhaseIdle {
			return
		}
		d.m.enterWarning()
	})
}

// ExtendSession presses "continue".
func (d *Diagnostics) ExtendSession() {
	d.m.Continue()
}

// Logout presses "logout now".
func (d *Diagnostics) Logout() {
	d.m.LogoutNow()
}

// Config returns the monitor configuration.
func (d *Diagnostics) Config() Config {
	return d.m.Config()
}

// State returns the monitor state.
func (d *Diagnostics) State() State {
	return d.m.State()
}

// ID returns the monitor ID.
func (d *Diagnostics) ID() string {
	return d.m.ID()
}
