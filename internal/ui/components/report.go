// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/ui/styles"
)

// =============================================================================
// HINT AND VALIDATION LINES
// =============================================================================

// RenderHint renders the parameter hint line shown under the editor.
func RenderHint(usage, hint string) string {
	if hint == "" {
		return ""
	}
	label := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true).Render(usage)
	body := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true).Render(hint)
	if usage == "" {
		return body
	}
	return label + "  " + body
}

// RenderReport renders a validation report as status lines.
func RenderReport(r commands.Report) string {
	var lines []string
	switch {
	case r.Err != nil:
		lines = append(lines, styles.RenderError(r.Err.Error()))
	case r.Pending != "":
		lines = append(lines, styles.RenderPending("loading commands for @"+r.Pending))
	case r.Unverified:
		lines = append(lines, styles.RenderWarning("commands for @"+r.Invocation.AgentID+" unavailable, not checked"))
	case r.Command != nil:
		lines = append(lines, styles.RenderSuccess(commands.UsageFor(r.Invocation.AgentID, *r.Command)))
	default:
		lines = append(lines, styles.RenderSuccess("ok"))
	}
	for _, w := range r.Warnings {
		lines = append(lines, styles.RenderWarning(w.Error()))
	}
	return strings.Join(lines, "\n")
}
