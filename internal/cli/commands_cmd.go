// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/model"
	"github.com/jeranaias/journal-composer/internal/ui/components"
)

func newCommandsCommand(o *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "commands <agent>",
		Short: "Show the commands an agent accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := strings.TrimPrefix(args[0], "@")

			app, err := o.app(false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), o.cfg.Backend.Timeout())
			defer cancel()

			cmds, err := app.Commands(ctx, agentID)
			w := cmd.OutOrStdout()
			if jsonOut {
				var resp *JSONResponse
				if err != nil {
					resp = NewJSONErrorResponse("commands", err)
				} else {
					resp = NewJSONResponse("commands", CommandsData{AgentID: agentID, Commands: cmds})
				}
				if IsStdoutTTY() && ColorsEnabled() {
					fmt.Fprintln(w, components.HighlightJSON(resp.String()))
				} else if perr := resp.Print(w); perr != nil {
					return perr
				}
				return err
			}
			if err != nil {
				return NewCommandError("commands", "fetch", "could not load schema for @"+agentID, err)
			}

			doc := CommandsMarkdown(agentID, cmds)
			if IsStdoutTTY() {
				doc = renderMarkdown(doc, GetTerminalWidth())
			}
			fmt.Fprint(w, doc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// CommandsMarkdown documents an agent's commands as markdown.
func CommandsMarkdown(agentID string, cmds []model.CommandDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# @%s\n\n", agentID)
	if len(cmds) == 0 {
		b.WriteString("This agent accepts no commands.\n")
		return b.String()
	}

	for _, c := range cmds {
		fmt.Fprintf(&b, "## %s\n\n", c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", c.Description)
		}
		fmt.Fprintf(&b, "```\n%s\n```\n\n", commands.UsageFor(agentID, c))

		if len(c.Parameters) > 0 {
			b.WriteString("| Parameter | Type | Required | Description |\n")
			b.WriteString("|---|---|---|---|\n")
			for _, p := range c.Parameters {
				typ := string(p.Type)
				if len(p.EnumValues) > 0 {
					typ += ": " + strings.Join(p.EnumValues, ", ")
				}
				req := "no"
				if p.Required {
					req = "yes"
				}
				desc := p.Description
				if p.HasDefault() {
					desc = strings.TrimSpace(desc + " (default " + p.DefaultString() + ")")
				}
				fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", p.Name, typ, req, escapeCell(desc))
			}
			b.WriteString("\n")
		}

		if len(c.Examples) > 0 {
			b.WriteString("Examples:\n\n")
			for _, ex := range c.Examples {
				fmt.Fprintf(&b, "- `%s`\n", ex)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderMarkdown renders markdown for the terminal. The input is returned
// unchanged if rendering fails.
func renderMarkdown(doc string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}
