// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCommittable is returned when the mode or candidate does not
	// insert text (parameter hints, idle).
	ErrNotCommittable = errors.New("candidate cannot be committed")

	// ErrInvalidRange is returned when the replacement range does not fit
	// the text.
	ErrInvalidRange = errors.New("invalid replacement range")
)

// Commit replaces text[res.StartOffset:res.Cursor] with the insertion of
// the chosen candidate and returns the new text and the cursor just past
// the inserted trailing space.
func Commit(text string, res Result, chosen Candidate) (string, int, error) {
	if !res.Mode.Committable() {
		return text, res.Cursor, fmt.Errorf("%s mode: %w", res.Mode, ErrNotCommittable)
	}
	insert := chosen.Insertion()
	if insert == "" {
		return text, res.Cursor, ErrNotCommittable
	}
	start, end := res.StartOffset, res.Cursor
	if start < 0 || start > end || end > len(text) {
		return text, res.Cursor, fmt.Errorf("%w: [%d:%d] of %d bytes", ErrInvalidRange, start, end, len(text))
	}

	newText := text[:start] + insert + text[end:]
	return newText, start + len(insert), nil
}
