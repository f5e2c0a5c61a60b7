// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/journal-composer/internal/directory"
)

func newAgentsCommand(o *rootOptions) *cobra.Command {
	var (
		jsonOut bool
		yamlOut bool
	)

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List mentionable agents and participants",
		Long: `List the agents from the agents file. With --conversation the
conversation's participants are fetched and listed too.

--yaml prints the agents in the agents file layout, e.g. to normalize a
hand-written file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.app(false)
			if err != nil {
				return err
			}
			defer app.Close()

			w := cmd.OutOrStdout()
			if yamlOut {
				data, err := directory.MarshalAgents(app.Directory.Agents())
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), o.cfg.Backend.Timeout())
			defer cancel()

			return OutputJSON(w, jsonOut, "agents", func() (interface{}, error) {
				if err := app.LoadParticipants(ctx); err != nil {
					return nil, WrapError(err, "load participants")
				}
				data := AgentsData{
					Agents:       app.Directory.Agents(),
					Participants: app.Directory.Participants(),
				}
				if !jsonOut {
					printAgents(cmd, data)
				}
				return data, nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&yamlOut, "yaml", false, "output agents as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func printAgents(cmd *cobra.Command, data AgentsData) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, TitleStyle.Render("Agents"))
	if len(data.Agents) == 0 {
		fmt.Fprintln(w, DimStyle.Render("  none (set directory.agents_file or --agents)"))
	}
	for _, a := range data.Agents {
		fmt.Fprintf(w, "  %s%s %s\n", RenderLabel("@"+a.ID), ValueStyle.Render(a.Name), DimStyle.Render(a.Description))
	}

	if len(data.Participants) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Participants"))
	for _, p := range data.Participants {
		fmt.Fprintf(w, "  %s%s %s\n", RenderLabel("@"+p.User.ID), ValueStyle.Render(p.User.Name), DimStyle.Render(p.User.Role))
	}
}
