// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/theme"
)

func TestNewThemeForcedModes(t *testing.T) {
	dark := NewTheme(theme.Settings{Mode: theme.ModeDark})
	assert.True(t, dark.IsDark)
	assert.Equal(t, "dark", dark.GlamourStyle())

	light := NewTheme(theme.Settings{Mode: theme.ModeLight})
	assert.False(t, light.IsDark)
	assert.Equal(t, "light", light.GlamourStyle())
}

func TestNewThemeInvalidModeFallsBack(t *testing.T) {
	th := NewTheme(theme.Settings{Mode: theme.Mode("neon")})
	assert.Equal(t, theme.ModeDefault, th.Mode)
}

func TestCompactOption(t *testing.T) {
	th := NewTheme(theme.Settings{Mode: theme.ModeDark, Options: []string{CompactOption}})
	assert.True(t, th.Compact)

	top, right, _, _ := th.OverlayBox.GetPadding()
	assert.Equal(t, 0, top)
	assert.Equal(t, 1, right)

	th = NewTheme(theme.Settings{Mode: theme.ModeDark})
	assert.False(t, th.Compact)
}

func TestSeverityMapping(t *testing.T) {
	assert.Equal(t, Rose, SeverityColor(session.SeverityDanger))
	assert.Equal(t, Amber, SeverityColor(session.SeverityWarning))
	assert.Equal(t, Sky, SeverityColor(session.SeverityNotice))

	assert.Equal(t, StatusIndicators.Danger, SeverityIndicator(session.Countdown{Seconds: 10}.Severity()))
	assert.Equal(t, StatusIndicators.Warning, SeverityIndicator(session.Countdown{Seconds: 45}.Severity()))
	assert.Equal(t, StatusIndicators.Pending, SeverityIndicator(session.Countdown{Seconds: 120}.Severity()))
}

func TestPhaseColor(t *testing.T) {
	assert.Equal(t, Emerald, PhaseColor(session.PhaseIdle))
	assert.Equal(t, Amber, PhaseColor(session.PhaseWarning))
	assert.Equal(t, Rose, PhaseColor(session.PhaseLoggedOut))
}
