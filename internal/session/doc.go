// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the session timeout monitor.
//
// A Monitor watches user activity and runs a two-phase idle timer. After the
// silent phase elapses without activity it shows a warning surface with a
// countdown. From the warning the user either continues (the session is
// renewed through the keep-alive endpoint) or logs out; if the warning runs
// out the monitor logs out on its own.
//
// # Key Types
//
//   - Monitor: the state machine, one per host program run
//   - Config: immutable timing and endpoint configuration
//   - WarningSurface: the modal the monitor shows and hides
//   - Renewer, Navigator: the keep-alive and logout side effects
//   - Clock: timer source, swapped for a manual clock in tests
//   - Diagnostics: debug handle, only present when enabled at construction
//
// # Phases
//
//	Idle --silent timer--> Warning --continue--> Idle
//	                         |
//	                         +--logout / warning timer--> LoggedOut
//
// While in Warning, ordinary activity is ignored. Only the two explicit
// controls leave the phase.
//
// # Usage
//
//	m, err := session.New(cfg,
//	    session.WithSurface(overlay),
//	    session.WithRenewer(client),
//	    session.WithNavigator(client),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m.Start()
//	defer m.Close()
//
//	m.RecordActivity(session.ActivityKeyPress)
//
// # Concurrency
//
// All state is owned by one goroutine per Monitor. Public methods post work to
// that goroutine and wait for it, so they are safe to call from anywhere except
// from inside a surface, observer or navigator callback.
package session
