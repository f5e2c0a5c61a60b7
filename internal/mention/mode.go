// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// MODE
// =============================================================================

// Mode is the interpretation of the text around the cursor.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMention
	ModeCommand
	ModeParameterHint
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeMention:
		return "mention"
	case ModeCommand:
		return "command"
	case ModeParameterHint:
		return "parameter-hint"
	default:
		return "unknown"
	}
}

// Committable reports whether selecting a candidate in this mode rewrites
// the buffer. Parameter hints are informational only.
func (m Mode) Committable() bool {
	return m == ModeMention || m == ModeCommand
}

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input is everything the detector looks at.
type Input struct {
	Text string

	// Cursor is a byte offset into Text. Out of range values are clamped.
	Cursor int

	// Agents are the ids of known agents. Command and parameter modes only
	// apply to these.
	Agents []string
}

// SchemaLookup answers which commands an agent accepts. settled is false
// while the schema has not been loaded yet.
type SchemaLookup interface {
	Commands(agentID string) (cmds []model.CommandDescriptor, settled bool)
}

// Result is the outcome of Detect.
type Result struct {
	Mode Mode

	// Query is the text typed after the trigger: the mention prefix, the
	// partial command name, or the parameter token.
	Query string

	// StartOffset is where the committed replacement starts. For mentions
	// it is the offset of the '@', for commands the start of the partial
	// command name.
	StartOffset int

	// Cursor is the clamped cursor the result was computed for.
	Cursor int

	// AgentID is set in command and parameter modes.
	AgentID string

	// Command is the invoked command in parameter mode.
	Command *model.CommandDescriptor

	// CommandEndOffset is the end of "@agent command" in parameter mode.
	CommandEndOffset int

	// TriggerOffset is the offset of the '@' that started the match. It is
	// also set on pending results.
	TriggerOffset int

	// Pending names an agent whose schema is needed before the text can be
	// classified. Mode is meaningless while Pending is set; callers keep
	// their previous state, load the schema and detect again.
	Pending string
}

// IsPending reports whether detection is waiting on a schema.
func (r Result) IsPending() bool {
	return r.Pending != ""
}

// Idle returns an idle result at the given cursor.
func Idle(cursor int) Result {
	return Result{Mode: ModeIdle, Cursor: cursor}
}
