// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// NAVIGATION STATE
// =============================================================================

// NavState is the state of the suggestion list.
type NavState int

const (
	NoSuggestions NavState = iota
	SuggestionsOpen
)

// String returns the string representation of the state.
func (s NavState) String() string {
	if s == SuggestionsOpen {
		return "open"
	}
	return "closed"
}

// Action is what a key press asks the engine to do.
type Action int

const (
	// ActionNone means the key was not handled.
	ActionNone Action = iota
	ActionPrev
	ActionNext
	ActionCommit
	ActionCancel
)

// =============================================================================
// NAVIGATOR
// =============================================================================

// Navigator tracks the selected row of the suggestion list.
// Invariant: 0 <= Selected() < count whenever the list is open.
type Navigator struct {
	keys     KeyMap
	count    int
	selected int
}

// NewNavigator creates a closed navigator.
func NewNavigator(keys KeyMap) *Navigator {
	return &Navigator{keys: keys}
}

// State returns whether the list is open.
func (n *Navigator) State() NavState {
	if n.count > 0 {
		return SuggestionsOpen
	}
	return NoSuggestions
}

// Selected returns the selected index, or -1 when closed.
func (n *Navigator) Selected() int {
	if n.count == 0 {
		return -1
	}
	return n.selected
}

// Len returns the number of rows.
func (n *Navigator) Len() int {
	return n.count
}

// Open shows count rows with row selected. Out of range selections fall
// back to the first row. A count of zero closes the list.
func (n *Navigator) Open(count, selected int) {
	if count <= 0 {
		n.Close()
		return
	}
	n.count = count
	if selected < 0 || selected >= count {
		selected = 0
	}
	n.selected = selected
}

// Close hides the list.
func (n *Navigator) Close() {
	n.count = 0
	n.selected = 0
}

// Handle maps a key press to an action and applies cycling. It returns
// ActionNone, leaving the key to the editor, when the list is closed or
// the key is not bound.
func (n *Navigator) Handle(msg tea.KeyMsg) Action {
	if n.count == 0 {
		return ActionNone
	}
	switch {
	case key.Matches(msg, n.keys.Next):
		n.selected = (n.selected + 1) % n.count
		return ActionNext
	case key.Matches(msg, n.keys.Prev):
		n.selected = (n.selected - 1 + n.count) % n.count
		return ActionPrev
	case key.Matches(msg, n.keys.Commit):
		return ActionCommit
	case key.Matches(msg, n.keys.Cancel):
		return ActionCancel
	}
	return ActionNone
}
