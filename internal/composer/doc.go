// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer ties mode detection, suggestion filtering, keyboard
// navigation and command validation into one engine a message editor can
// drive.
//
// # Key Types
//
//   - Engine: re-derives the parse state on every buffer change
//   - Navigator: cycles, commits and cancels the open suggestion list
//   - KeyMap: bindings the navigator reacts to
//   - Controller: lets a parent prepend text to and focus the editor
//
// # Usage
//
//	eng := composer.NewEngine(composer.Options{
//	    Schemas:   cache,
//	    Directory: dir,
//	    Estimator: position.NewEstimator(position.CellSurface{}, layout),
//	})
//
//	// On every keystroke:
//	if consumed, cmd := eng.HandleKey(msg); consumed {
//	    return m, cmd
//	}
//	// ...let the editor apply msg, then:
//	cmd := eng.SetBuffer(editor.Value(), cursor)
//
// Schema fetches run as tea.Cmds. Feed their schema.LoadedMsg back through
// Engine.Update so detection re-runs against the current buffer.
package composer
