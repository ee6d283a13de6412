// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across sessionwatch.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - AppDir, ExpandHome: locate ~/.sessionwatch (or $SESSIONWATCH_HOME)
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth: terminal-column aware helpers
//
// # Usage
//
//	path, err := util.ExpandHome("~/.sessionwatch/theme.toml")
//	if err != nil {
//	    return err
//	}
//	err = util.AtomicWriteFile(path, data, 0600)
package util
