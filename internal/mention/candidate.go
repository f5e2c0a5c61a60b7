// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"strings"

	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// CANDIDATE
// =============================================================================

// CandidateKind tells which field of a Candidate is populated.
type CandidateKind int

const (
	CandidateEntity CandidateKind = iota
	CandidateCommand
	CandidateParameter
)

// Candidate is one row of the suggestion popup.
type Candidate struct {
	Kind      CandidateKind
	Entity    model.Suggestion
	Command   model.CommandDescriptor
	Parameter model.Parameter
}

// EntityCandidate wraps a mention suggestion.
func EntityCandidate(s model.Suggestion) Candidate {
	return Candidate{Kind: CandidateEntity, Entity: s}
}

// CommandCandidate wraps a command descriptor.
func CommandCandidate(c model.CommandDescriptor) Candidate {
	return Candidate{Kind: CandidateCommand, Command: c}
}

// ParameterCandidate wraps a parameter hint.
func ParameterCandidate(p model.Parameter) Candidate {
	return Candidate{Kind: CandidateParameter, Parameter: p}
}

// Key returns the identifier of the candidate: the entity id, command name
// or parameter name.
func (c Candidate) Key() string {
	switch c.Kind {
	case CandidateCommand:
		return c.Command.Name
	case CandidateParameter:
		return c.Parameter.Name
	default:
		return c.Entity.ID
	}
}

// Label returns the primary text shown for the candidate.
func (c Candidate) Label() string {
	switch c.Kind {
	case CandidateCommand:
		return c.Command.Name
	case CandidateParameter:
		return c.Parameter.Name + `="` + c.Parameter.Placeholder() + `"`
	default:
		if c.Entity.DisplayName != "" {
			return c.Entity.DisplayName
		}
		return c.Entity.ID
	}
}

// Detail returns the secondary text shown for the candidate.
func (c Candidate) Detail() string {
	switch c.Kind {
	case CandidateCommand:
		return c.Command.Description
	case CandidateParameter:
		return c.Parameter.Description
	default:
		return c.Entity.Description
	}
}

// Insertion returns the text a commit writes in place of the query.
// Parameters have none.
func (c Candidate) Insertion() string {
	switch c.Kind {
	case CandidateEntity:
		return c.Entity.Token() + " "
	case CandidateCommand:
		return c.Command.Name + " "
	default:
		return ""
	}
}

// MatchFields implements Matchable.
func (c Candidate) MatchFields() []string {
	switch c.Kind {
	case CandidateCommand:
		return c.Command.MatchFields()
	case CandidateParameter:
		return c.Parameter.MatchFields()
	default:
		return c.Entity.MatchFields()
	}
}

// =============================================================================
// CANDIDATE LISTS
// =============================================================================

// Candidates builds the popup list for a detection result. Mentions are
// drawn from suggestions, commands and parameter hints from the agent's
// schema. Idle and pending results have no candidates.
func Candidates(res Result, suggestions []model.Suggestion, schemas SchemaLookup) []Candidate {
	if res.IsPending() {
		return nil
	}
	switch res.Mode {
	case ModeMention:
		var out []Candidate
		for _, s := range Filter(res.Query, suggestions) {
			out = append(out, EntityCandidate(s))
		}
		return out
	case ModeCommand:
		if schemas == nil {
			return nil
		}
		cmds, _ := schemas.Commands(res.AgentID)
		var out []Candidate
		for _, c := range Filter(res.Query, cmds) {
			out = append(out, CommandCandidate(c))
		}
		return out
	case ModeParameterHint:
		if res.Command == nil {
			return nil
		}
		var out []Candidate
		for _, p := range ParameterHints(*res.Command, res.Query) {
			out = append(out, ParameterCandidate(p))
		}
		return out
	default:
		return nil
	}
}

// ParameterHints narrows a command's parameters to the ones the token may
// refer to. An empty token keeps all of them; "name=..." keeps only name.
func ParameterHints(cmd model.CommandDescriptor, token string) []model.Parameter {
	if token == "" {
		return append([]model.Parameter(nil), cmd.Parameters...)
	}
	if name, ok := ParameterName(token); ok {
		if p, found := cmd.Parameter(name); found {
			return []model.Parameter{p}
		}
	}
	var out []model.Parameter
	for _, p := range cmd.Parameters {
		if strings.HasPrefix(p.Name, token) {
			out = append(out, p)
		}
	}
	return out
}
