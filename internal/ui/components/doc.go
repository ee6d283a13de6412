// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual pieces of the terminal shell.
//
//   - WarningOverlay: the session.WarningSurface shown during the warning
//     phase, with countdown, progress bar and the two controls
//   - StatusBar: phase, countdown and key hints on the bottom line
//   - HelpPanel: key bindings rendered with glamour in a viewport
//   - Highlight: chroma highlighting for the config and journal commands
//
// WarningOverlay is driven from two goroutines. The monitor calls the
// WarningSurface methods and the shell reads View and the Redraws channel.
// All other components belong to the shell goroutine.
package components
