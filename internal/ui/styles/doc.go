// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and lip gloss styles of the terminal UI.

All colors are lipgloss.AdaptiveColor values. NewTheme resolves which side of
each pair is used from the persisted theme mode:

	default - follow the terminal background (termenv detection)
	light   - force the light palette
	dark    - force the dark palette

# Severity

The warning countdown is colored by session.Severity:

	notice  - Sky
	warning - Amber (60 seconds or less)
	danger  - Rose (30 seconds or less)

Every colored state also carries an ASCII indicator from StatusIndicators so
it can be read without color.
*/
package styles
