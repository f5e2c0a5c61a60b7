// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/journal-composer/internal/model"
	"github.com/jeranaias/journal-composer/internal/schema"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

var (
	// ErrMissingPrefix means the text does not start with '@'.
	ErrMissingPrefix = errors.New("command must start with @")

	// ErrIncompleteCommand means there is no command after the agent.
	ErrIncompleteCommand = errors.New("incomplete command")

	// ErrUnknownAgent means the agent token names no known agent.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrUnknownCommand means the agent's schema has no such command.
	ErrUnknownCommand = errors.New("unknown command")
)

// ValidationError describes why an invocation was rejected. Kind is one of
// the Err* sentinels above and is what errors.Is matches.
type ValidationError struct {
	Kind    error
	AgentID string
	Command string
	Input   string
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrUnknownCommand):
		return fmt.Sprintf("%v %q for @%s", e.Kind, e.Command, e.AgentID)
	case errors.Is(e.Kind, ErrUnknownAgent):
		return fmt.Sprintf("%v @%s", e.Kind, e.AgentID)
	case errors.Is(e.Kind, ErrIncompleteCommand):
		return fmt.Sprintf("%v: expected @agent command", e.Kind)
	default:
		return e.Kind.Error()
	}
}

// Unwrap returns the sentinel kind.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// =============================================================================
// VALIDATOR
// =============================================================================

// SchemaSource is the part of the schema cache the validator reads.
type SchemaSource interface {
	Lookup(agentID string) ([]model.CommandDescriptor, schema.State)
	Fetch(agentID string) tea.Cmd
}

// Report is the outcome of validating one string.
type Report struct {
	Invocation Invocation

	// Err is a *ValidationError or nil.
	Err error

	// Pending names an agent whose schema was not loaded yet, so the
	// command name could not be checked. Validate again after Fetch
	// completes.
	Pending string

	// Fetch loads the pending schema. It is nil when a fetch is already
	// in flight.
	Fetch tea.Cmd

	// Unverified is set when the agent's schema failed to load, so the
	// command name was not checked.
	Unverified bool

	// Command is the matched descriptor when the command is known.
	Command *model.CommandDescriptor

	// Warnings are parameter problems. They do not make the invocation
	// invalid.
	Warnings []error
}

// OK reports whether the invocation passed every check that could run.
func (r Report) OK() bool {
	return r.Err == nil
}

// Validator checks completed invocations against the known agents and
// their command schemas.
type Validator struct {
	mu      sync.RWMutex
	agents  map[string]bool
	schemas SchemaSource
}

// NewValidator creates a validator for the given agent ids.
func NewValidator(agentIDs []string, schemas SchemaSource) *Validator {
	v := &Validator{schemas: schemas}
	v.SetAgents(agentIDs)
	return v
}

// SetAgents replaces the set of known agents.
func (v *Validator) SetAgents(agentIDs []string) {
	agents := make(map[string]bool, len(agentIDs))
	for _, id := range agentIDs {
		agents[id] = true
	}
	v.mu.Lock()
	v.agents = agents
	v.mu.Unlock()
}

// KnowsAgent reports whether id is a known agent.
func (v *Validator) KnowsAgent(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.agents[id]
}

// Validate checks s, which should hold exactly one invocation. Leading and
// trailing whitespace is ignored. The command name is only checked once
// the agent's schema is loaded; until then Report.Pending is set.
func (v *Validator) Validate(s string) Report {
	inv, ok := ParseInvocation(s)
	report := Report{Invocation: inv}

	fail := func(kind error) Report {
		report.Err = &ValidationError{
			Kind:    kind,
			AgentID: inv.AgentID,
			Command: inv.Command,
			Input:   inv.Raw,
		}
		return report
	}

	if !ok {
		return fail(ErrMissingPrefix)
	}
	if inv.AgentID == "" || inv.Command == "" {
		return fail(ErrIncompleteCommand)
	}
	if !v.KnowsAgent(inv.AgentID) {
		return fail(ErrUnknownAgent)
	}
	if v.schemas == nil {
		return report
	}

	cmds, state := v.schemas.Lookup(inv.AgentID)
	if !state.Settled() {
		report.Pending = inv.AgentID
		report.Fetch = v.schemas.Fetch(inv.AgentID)
		return report
	}
	if state == schema.StateFailed {
		report.Unverified = true
		return report
	}

	cmd, found := model.FindCommand(cmds, inv.Command)
	if !found {
		return fail(ErrUnknownCommand)
	}
	report.Command = &cmd
	report.Warnings = CheckParams(cmd, inv)
	return report
}
