// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/config"
	"github.com/jeranaias/journal-composer/internal/ui/components"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// LineEditor provides history and tab completion for the REPL.
type LineEditor struct {
	line        *liner.State
	historyFile string
}

// NewLineEditor creates a line editor. complete may be nil.
func NewLineEditor(complete liner.WordCompleter) *LineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if complete != nil {
		line.SetWordCompleter(complete)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	e := &LineEditor{
		line:        line,
		historyFile: filepath.Join(configDir, "composer_history"),
	}
	e.LoadHistory()
	return e
}

// LoadHistory loads history from file.
func (e *LineEditor) LoadHistory() {
	if f, err := os.Open(e.historyFile); err == nil {
		e.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line. Non-empty lines are added to the history.
func (e *LineEditor) ReadInput(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		e.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes the history with 0600 permissions.
func (e *LineEditor) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(e.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	e.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (e *LineEditor) Close() {
	e.SaveHistory()
	e.line.Close()
}

// =============================================================================
// REPL COMMAND
// =============================================================================

func newREPLCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Compose messages line by line with tab completion",
		Long: `Compose messages line by line.

Tab completes @mentions, agent commands and parameters. Lines that
address an agent are checked as command invocations.

Slash commands:
  /agents   list agents and participants
  /help     show this help
  /quit     exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("start the REPL"); err != nil {
				return err
			}
			app, err := o.app(false)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.LoadParticipants(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("[!] participants unavailable: "+err.Error()))
			}

			editor := NewLineEditor(app.Complete)
			defer editor.Close()
			return runREPL(cmd.Context(), cmd.OutOrStdout(), app, editor)
		},
	}
}

// lineReader is the part of LineEditor the loop uses.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// runREPL reads lines until EOF, Ctrl+C or /quit.
func runREPL(ctx context.Context, w io.Writer, app *App, in lineReader) error {
	fmt.Fprintln(w, TitleStyle.Render("composer "+Version))
	fmt.Fprintln(w, DimStyle.Render("Tab completes mentions and commands. /help for help, /quit to exit."))

	sent := 0
	for {
		input, err := in.ReadInput("composer> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("%d messages composed", sent)))
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/quit", "/exit", "/q", "exit", "quit":
			fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("%d messages composed", sent)))
			return nil
		case "/help", "/h", "/?":
			printREPLHelp(w)
			continue
		case "/agents":
			printDirectory(w, app)
			continue
		}

		if handleLine(ctx, w, app, input) {
			sent++
		}
		app.Schemas.ForgetFailures()
	}
}

// handleLine checks a composed line and reports whether it would be sent.
func handleLine(ctx context.Context, w io.Writer, app *App, input string) bool {
	inv, ok := commands.ParseInvocation(input)
	if !ok {
		fmt.Fprintln(w, SuccessStyle.Render("[sent]")+" "+input)
		return true
	}
	if _, isAgent := app.Directory.Agent(inv.AgentID); !isAgent {
		fmt.Fprintln(w, SuccessStyle.Render("[sent]")+" "+input)
		return true
	}

	report := app.Validate(ctx, input)
	fmt.Fprintln(w, components.RenderReport(report))
	if !report.OK() {
		return false
	}
	fmt.Fprintln(w, SuccessStyle.Render("[sent]")+" "+report.Invocation.String())
	return true
}

func printREPLHelp(w io.Writer) {
	fmt.Fprintln(w, TitleStyle.Render("Composer REPL"))
	rows := [][2]string{
		{"@<tab>", "mention a participant or agent"},
		{"@agent <tab>", "list the agent's commands"},
		{"@agent cmd <tab>", "list the command's parameters"},
		{"/agents", "list agents and participants"},
		{"/quit", "exit"},
	}
	for _, r := range rows {
		fmt.Fprintln(w, RenderLabel(r[0])+ValueStyle.Render(r[1]))
	}
}

func printDirectory(w io.Writer, app *App) {
	for _, a := range app.Directory.Agents() {
		fmt.Fprintln(w, RenderLabel("@"+a.ID)+ValueStyle.Render(a.Name))
	}
	for _, p := range app.Directory.Participants() {
		fmt.Fprintln(w, RenderLabel("@"+p.User.ID)+DimStyle.Render(p.User.Name))
	}
}
