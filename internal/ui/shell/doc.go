// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell is the full-screen Bubble Tea front end of a session monitor.
//
// The shell turns terminal input into monitor activity through Activity,
// renders the warning overlay and status bar, and quits once the monitor
// reaches the logged-out phase. Ctrl+C quits without logging out.
package shell
