// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for sessionwatch.
//
// # Key Types
//
//   - Command: Enumeration of the CLI commands
//   - Args: Parsed global flags and the remaining arguments
//   - ArgParser: Flag and positional parsing for subcommands
//   - Runtime: The keep-alive client, journal and diagnostics server a
//     monitor is built with
//   - LineSurface: Warning surface for line mode
//
// # Usage
//
//	cmd, args := cli.Parse()
//	os.Exit(cli.Run(cmd, args))
//
// # Commands Overview
//
//   - tui: Full-screen monitor (default)
//   - line: Line-mode monitor
//   - config: Configuration management
//   - journal: Recorded monitor events
//   - theme: Stored theme preference
//   - version, help
//
// config, journal, theme and version support --json.
package cli
