// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/mention"
	"github.com/jeranaias/journal-composer/internal/ui/components"
	"github.com/jeranaias/journal-composer/internal/ui/styles"
)

// =============================================================================
// LAYOUT PIECES
// =============================================================================

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true).Render("composer")

	var parts []string
	if m.conversationID != "" {
		parts = append(parts, "conversation "+m.conversationID)
	}
	if m.dir != nil {
		parts = append(parts, fmt.Sprintf("%d agents", len(m.dir.Agents())))
		parts = append(parts, fmt.Sprintf("%d participants", len(m.dir.Participants())))
	}
	info := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(strings.Join(parts, " | "))

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(title + "  " + info)
}

// renderMessages renders as many of the most recent sent messages as fit.
func (m Model) renderMessages() string {
	rows := m.height - m.fixedHeight()
	if rows < 1 {
		rows = 1
	}

	var lines []string
	for _, msg := range m.sent {
		stamp := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(formatTimestamp(msg.At))
		body := lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(msg.Text)
		if msg.Report != nil && msg.Report.Command != nil {
			body = lipgloss.NewStyle().Foreground(styles.Cyan).Render(msg.Text)
		}
		lines = append(lines, strings.Split(stamp+" "+body, "\n")...)
	}
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for len(lines) < rows {
		lines = append([]string{""}, lines...)
	}
	return strings.Join(lines, "\n")
}

// renderEditor renders the text area with the suggestion popup spliced in
// below the row the engine anchored it to.
func (m Model) renderEditor() string {
	editor := m.input.View()
	overlay := m.renderOverlay()
	if overlay == "" {
		return editor
	}

	st := m.engine.State()
	left := int(st.Anchor.Left)
	if left < 0 {
		left = 0
	}
	overlay = lipgloss.NewStyle().MarginLeft(left).Render(overlay)

	rows := strings.Split(editor, "\n")
	at := int(st.Anchor.Top)
	if at <= 0 || at > len(rows) {
		at = len(rows)
	}
	out := make([]string, 0, len(rows)+lipgloss.Height(overlay))
	out = append(out, rows[:at]...)
	out = append(out, strings.Split(overlay, "\n")...)
	out = append(out, rows[at:]...)
	return strings.Join(out, "\n")
}

// renderOverlay returns the popup or the parameter hint for the current
// mode, or "" when idle.
func (m Model) renderOverlay() string {
	switch m.engine.Mode() {
	case mention.ModeMention, mention.ModeCommand:
		if !m.popup.HasCandidates() {
			return ""
		}
		return m.popup.View()
	case mention.ModeParameterHint:
		active, ok := m.engine.ActiveCommand()
		if !ok {
			return ""
		}
		return components.RenderHint(commands.UsageFor(active.AgentID, active.Command), m.engine.Hint())
	}
	return ""
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.spinner.IsActive():
		left = m.spinner.View()
	case m.report != nil:
		left = components.RenderReport(*m.report)
	default:
		if t, ok := m.toasts.Latest(); ok {
			left = components.RenderToast(t)
		}
	}

	help := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(helpLine(m.keys.ShortHelp()...))
	if left == "" {
		return help
	}
	return left + "\n" + help
}

// fixedHeight is the height of everything except the message list.
func (m Model) fixedHeight() int {
	return lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderEditor()) +
		lipgloss.Height(m.renderStatusBar())
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true).Render("Keys")

	nav := m.engine.Keys()
	lines := []string{title, ""}
	for _, group := range m.keys.FullHelp() {
		lines = append(lines, helpLine(group...))
	}
	lines = append(lines, "", "While suggestions are open:", helpLine(nav.ShortHelp()...))
	lines = append(lines, "", "Type @ to mention a participant or agent.",
		"After @agent and a space, the agent's commands are offered.",
		"Press any key to close.")

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
