// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/journal-composer/internal/util"
)

// =============================================================================
// TEXT AREA ADAPTER
// =============================================================================

// textareaEditor exposes a bubbles text area as a composer.Editor. The text
// area tracks its cursor as (row, rune column); the engine works in byte
// offsets into the whole value.
type textareaEditor struct {
	ta *textarea.Model
}

func newTextareaEditor(ta *textarea.Model) *textareaEditor {
	return &textareaEditor{ta: ta}
}

func (e *textareaEditor) Value() string {
	return e.ta.Value()
}

func (e *textareaEditor) SetValue(s string) {
	e.ta.SetValue(s)
}

// CursorOffset returns the cursor as a byte offset into Value.
func (e *textareaEditor) CursorOffset() int {
	lines := strings.Split(e.ta.Value(), "\n")
	row := e.ta.Line()
	if row >= len(lines) {
		row = len(lines) - 1
	}
	if row < 0 {
		row = 0
	}

	offset := 0
	for _, l := range lines[:row] {
		offset += len(l) + 1
	}
	info := e.ta.LineInfo()
	return offset + util.ByteOffset(lines[row], info.StartColumn+info.ColumnOffset)
}

// SetCursorOffset moves the cursor to a byte offset into Value.
func (e *textareaEditor) SetCursorOffset(offset int) {
	text := e.ta.Value()
	offset = util.ClampOffset(text, offset)

	before := text[:offset]
	row := strings.Count(before, "\n")
	col := utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:])

	// Bounded so a text area that refuses to move cannot spin.
	limit := len(text) + 1
	for i := 0; e.ta.Line() > row && i < limit; i++ {
		e.ta.CursorUp()
	}
	for i := 0; e.ta.Line() < row && i < limit; i++ {
		e.ta.CursorDown()
	}
	e.ta.SetCursor(col)
}

func (e *textareaEditor) Focus() tea.Cmd {
	return e.ta.Focus()
}
