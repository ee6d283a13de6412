// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
)

// =============================================================================
// HELP PANEL
// =============================================================================

// HelpPanel shows the key bindings and timing as rendered markdown in a
// scrollable viewport.
type HelpPanel struct {
	visible  bool
	markdown string
	width    int
	height   int

	theme    *styles.Theme
	viewport viewport.Model
}

// NewHelpPanel creates a hidden help panel for cfg.
func NewHelpPanel(tr *i18n.Translator, theme *styles.Theme, cfg session.Config) *HelpPanel {
	h := &HelpPanel{
		markdown: HelpMarkdown(tr, cfg),
		width:    60,
		height:   20,
		theme:    theme,
		viewport: viewport.New(60, 20),
	}
	h.render()
	return h
}

// HelpMarkdown builds the help text.
func HelpMarkdown(tr *i18n.Translator, cfg session.Config) string {
	var b strings.Builder
	b.WriteString("# sessionwatch\n\n")
	fmt.Fprintf(&b, "After **%s** without activity the *%s* warning opens. ",
		cfg.SilentDuration, tr.T(i18n.WarningTitle))
	fmt.Fprintf(&b, "If nobody answers within **%s** the session is logged out.\n\n", cfg.WarningDuration)
	b.WriteString("| Key | Action |\n|-----|--------|\n")
	b.WriteString("| `c` / `enter` | " + tr.T(i18n.ContinueButton) + " |\n")
	b.WriteString("| `l` / `n` | " + tr.T(i18n.LogoutButton) + " |\n")
	b.WriteString("| `tab` / arrows | switch button |\n")
	b.WriteString("| `ctrl+k` | cycle theme (default, light, dark) |\n")
	b.WriteString("| `?` | toggle this help |\n")
	b.WriteString("| `ctrl+c` | quit without logging out |\n\n")
	fmt.Fprintf(&b, "Keep-alive: `%s`  \nLogout: `%s`\n", cfg.KeepAliveURL, cfg.LogoutURL)
	return b.String()
}

// Toggle shows or hides the panel.
func (h *HelpPanel) Toggle() {
	h.visible = !h.visible
	if h.visible {
		h.viewport.GotoTop()
	}
}

// IsVisible returns whether the panel is shown.
func (h *HelpPanel) IsVisible() bool {
	return h.visible
}

// SetSize resizes the panel and re-renders the markdown for the new width.
func (h *HelpPanel) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.viewport.Width = width - 4
	h.viewport.Height = height - 4
	h.render()
}

// SetTheme re-renders with the matching glamour style.
func (h *HelpPanel) SetTheme(theme *styles.Theme) {
	h.theme = theme
	h.render()
}

// Update forwards scroll keys to the viewport.
func (h *HelpPanel) Update(msg tea.Msg) tea.Cmd {
	if !h.visible {
		return nil
	}
	var cmd tea.Cmd
	h.viewport, cmd = h.viewport.Update(msg)
	return cmd
}

// View renders the panel, or "" when hidden.
func (h *HelpPanel) View() string {
	if !h.visible {
		return ""
	}
	return h.theme.HelpBox.Render(h.viewport.View())
}

func (h *HelpPanel) render() {
	wrap := h.width - 8
	if wrap < 20 {
		wrap = 20
	}
	h.viewport.SetContent(RenderMarkdown(h.markdown, h.theme.GlamourStyle(), wrap))
}

// RenderMarkdown renders md with glamour, returning md unchanged if the
// renderer fails.
func RenderMarkdown(md, style string, wrap int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
