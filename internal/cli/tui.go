// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/journal-composer/internal/ui/chat"
)

func newTUICommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Open the full-screen composer (default)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationFullscreen: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, o)
		},
	}
}

// runTUI runs the composer until the user quits.
func runTUI(cmd *cobra.Command, o *rootOptions) error {
	if err := RequiresTTY("open the composer"); err != nil {
		return err
	}

	app, err := o.app(o.cfg.Directory.Watch)
	if err != nil {
		return err
	}
	defer app.Close()

	m := chat.New(chat.Deps{
		Engine:         app.Engine,
		Directory:      app.Directory,
		Estimator:      app.Estimator,
		UI:             o.cfg.UI,
		Watcher:        app.Watcher,
		Participants:   app.ParticipantSource(),
		ConversationID: o.cfg.Directory.ConversationID,
		Logger:         app.Logger,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(chat.Model); ok {
		app.Logger.Info("composer closed", "sent", len(fm.Sent()))
	}
	return nil
}
