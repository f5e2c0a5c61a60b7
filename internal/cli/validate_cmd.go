// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/ui/components"
)

func newValidateCommand(o *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate <invocation>",
		Short: "Check a command invocation against the agent's schema",
		Long: `Check a command invocation such as

  @bot-editorial status newStatus="accepted"

The agent must be in the agents file. The command name is checked against
the schema fetched from the backend; parameter problems are warnings.
Arguments are joined with spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.app(false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), o.cfg.Backend.Timeout())
			defer cancel()

			input := strings.Join(args, " ")
			report := app.Validate(ctx, input)
			data := validateData(input, report)

			w := cmd.OutOrStdout()
			if jsonOut {
				resp := NewJSONResponse("validate", data)
				if report.Err != nil {
					msg := report.Err.Error()
					resp.Success, resp.Error = false, &msg
				}
				if err := resp.Print(w); err != nil {
					return err
				}
				return report.Err
			}

			fmt.Fprintln(w, components.RenderReport(report))
			if data.Normalized != "" && report.OK() {
				fmt.Fprintln(w, DimStyle.Render(data.Normalized))
			}
			return report.Err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// validateData flattens a report for JSON output.
func validateData(input string, r commands.Report) ValidateData {
	d := ValidateData{
		Input:    input,
		Valid:    r.OK(),
		Verified: r.OK() && !r.Unverified,
		AgentID:  r.Invocation.AgentID,
		Command:  r.Invocation.Command,
		Params:   r.Invocation.Params,
	}
	if r.Err != nil {
		d.Error = r.Err.Error()
		d.ErrorKind = errorKind(r.Err)
		return d
	}
	for _, w := range r.Warnings {
		d.Warnings = append(d.Warnings, w.Error())
	}
	if r.Command != nil {
		d.Usage = commands.UsageFor(r.Invocation.AgentID, *r.Command)
	}
	d.Normalized = r.Invocation.String()
	return d
}

// errorKind names the validation failure for machine consumers.
func errorKind(err error) string {
	switch {
	case errors.Is(err, commands.ErrMissingPrefix):
		return "missing_prefix"
	case errors.Is(err, commands.ErrIncompleteCommand):
		return "incomplete_command"
	case errors.Is(err, commands.ErrUnknownAgent):
		return "unknown_agent"
	case errors.Is(err, commands.ErrUnknownCommand):
		return "unknown_command"
	}
	return "error"
}
