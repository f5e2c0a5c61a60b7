// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keys the suggestion list reacts to. Keys that match no
// binding are left to the editor.
type KeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Commit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default suggestion bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous suggestion"),
		),
		Next: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next suggestion"),
		),
		Commit: key.NewBinding(
			key.WithKeys("tab", "enter"),
			key.WithHelp("tab/enter", "insert suggestion"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close suggestions"),
		),
	}
}

// ShortHelp returns the bindings shown while suggestions are open.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Commit, k.Cancel}
}

// FullHelp returns all bindings grouped for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next},
		{k.Commit, k.Cancel},
	}
}
