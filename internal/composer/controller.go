// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Editor is the text widget a Controller drives. Cursor positions are
// byte offsets.
type Editor interface {
	Value() string
	SetValue(s string)
	CursorOffset() int
	SetCursorOffset(offset int)
	Focus() tea.Cmd
}

// Controller lets a parent view manipulate the composer without reaching
// into its widget, e.g. to start a reply with a mention.
type Controller struct {
	editor Editor
	engine *Engine
}

// NewController creates a controller for editor. engine may be nil.
func NewController(editor Editor, engine *Engine) *Controller {
	return &Controller{editor: editor, engine: engine}
}

// PrependContent inserts text at the start of the buffer. The cursor keeps
// its place relative to the existing content.
func (c *Controller) PrependContent(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	cursor := c.editor.CursorOffset() + len(text)
	c.editor.SetValue(text + c.editor.Value())
	c.editor.SetCursorOffset(cursor)

	if c.engine == nil {
		return nil
	}
	return c.engine.SetBuffer(c.editor.Value(), c.editor.CursorOffset())
}

// Focus gives the editor keyboard focus.
func (c *Controller) Focus() tea.Cmd {
	return c.editor.Focus()
}

// Apply writes a committed suggestion back into the editor.
func (c *Controller) Apply(msg CommitMsg) {
	c.editor.SetValue(msg.Text)
	c.editor.SetCursorOffset(msg.Cursor)
}
