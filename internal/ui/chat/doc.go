// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the message composer view for the journal-composer TUI.

The view hosts a composer.Engine behind a multi-line text area. Every edit is
handed to the engine, which decides whether a mention list, a command list or
a parameter hint is shown. Keys are offered to the engine first so that the
suggestion list owns up/down/tab/enter/esc while it is open.

# Key Components

## Model (model.go)

The Bubble Tea model:
  - Text area and its composer.Editor adapter (editor.go)
  - Engine and controller for committing suggestions
  - Schema, directory and watcher messages forwarded to the engine
  - Submission with post-hoc validation of command invocations

## View Rendering (view.go)

  - Header with conversation and agent count
  - Sent messages
  - Editor, suggestion popup indented to the estimated anchor
  - Parameter hint line and validation status
  - Schema loading spinner and expiring notices (components.Spinner,
    components.ToastManager)

# Usage

	m := chat.New(chat.Deps{Engine: eng, Directory: dir})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package chat
