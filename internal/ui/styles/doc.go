// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the composer TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Colors

  - Cyan - Brand color, selection highlight, popup border
  - Purple - Agent mentions and command names
  - Emerald - Valid invocations
  - Amber - Warnings and pending schema loads
  - Rose - Validation errors

# Status Rendering

Status helpers prefix messages with ASCII indicators ([OK], [X], [!], [i])
so state is readable without color:

	styles.RenderStatus(report.OK(), "command is valid")

# Agent Colors

Agents may declare their own color in the agents file. AgentColor turns
that into a lipgloss color, falling back to Purple.

# Usage

	import "github.com/jeranaias/journal-composer/internal/ui/styles"

	title := lipgloss.NewStyle().Foreground(styles.Cyan).Render("composer")
*/
package styles
