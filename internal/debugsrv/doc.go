// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debugsrv exposes a session monitor's diagnostics over loopback HTTP.
//
// Endpoints:
//   - GET  /debug/session               - monitor ID, state and configuration
//   - POST /debug/session/reset         - back to idle with a fresh silent timer
//   - POST /debug/session/show-warning  - skip the rest of the silent phase
//   - POST /debug/session/extend        - press "continue"
//   - POST /debug/session/logout        - press "logout now"
//   - GET  /debug/session/events        - WebSocket stream of monitor events (JSON)
//
// The server refuses to listen on anything but a loopback address, and every
// request must come from a loopback peer. It is only started when diagnostics
// are enabled (SESSIONWATCH_DEBUG or [debug].enabled).
package debugsrv
