// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/theme"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
)

func TestHelpMarkdown(t *testing.T) {
	md := HelpMarkdown(i18n.New("es"), session.DefaultConfig())
	assert.Contains(t, md, "28m0s")
	assert.Contains(t, md, "2m0s")
	assert.Contains(t, md, "Sesión por Expirar")
	assert.Contains(t, md, "/dashboard/")
	assert.Contains(t, md, "/logout/")
}

func TestHelpPanelToggle(t *testing.T) {
	th := styles.NewTheme(theme.Settings{Mode: theme.ModeLight})
	h := NewHelpPanel(i18n.New("en"), th, session.DefaultConfig())

	assert.False(t, h.IsVisible())
	assert.Empty(t, h.View())

	h.SetSize(100, 40)
	h.Toggle()
	assert.True(t, h.IsVisible())
	assert.Contains(t, h.View(), "ctrl+k")

	h.Toggle()
	assert.Empty(t, h.View())
}

func TestRenderMarkdownFallsBack(t *testing.T) {
	out := RenderMarkdown("**bold**", "no-such-style", 40)
	assert.Equal(t, "**bold**", out)

	out = RenderMarkdown("**bold**", "dark", 40)
	assert.Contains(t, out, "bold")
}

func TestHighlight(t *testing.T) {
	src := "[session]\nwarning_time_secs = 1680\n"
	out := HighlightTOML(src, true)
	assert.Contains(t, out, "warning_time_secs")
	assert.True(t, strings.Contains(out, "\x1b["), "expected ANSI escapes")

	out = HighlightJSON(`{"a": 1}`, false)
	assert.Contains(t, out, `"a"`)
}
