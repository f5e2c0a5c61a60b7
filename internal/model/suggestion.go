// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the composer engine.
package model

// =============================================================================
// SUGGESTION KIND
// =============================================================================

// Kind identifies what a suggestion refers to.
type Kind string

const (
	KindUser  Kind = "user"
	KindAgent Kind = "agent"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// =============================================================================
// SUGGESTION
// =============================================================================

// Suggestion is a mentionable target shown in the mention popup.
type Suggestion struct {
	// ID is the canonical token inserted after the @.
	ID string `json:"id"`

	// DisplayName is the human label.
	DisplayName string `json:"displayName"`

	Kind Kind `json:"kind"`

	Description string `json:"description,omitempty"`

	// Color is only set for agents.
	Color string `json:"color,omitempty"`
}

// Token returns the mention token for the suggestion, e.g. "@john-doe".
func (s Suggestion) Token() string {
	return "@" + s.ID
}

// IsAgent reports whether the suggestion refers to an automation agent.
func (s Suggestion) IsAgent() bool {
	return s.Kind == KindAgent
}

// MatchFields returns the fields a query is matched against.
func (s Suggestion) MatchFields() []string {
	return []string{s.ID, s.DisplayName, s.Description}
}

// SuggestionIDs returns the ids of the given suggestions in order.
func SuggestionIDs(suggestions []Suggestion) []string {
	ids := make([]string, len(suggestions))
	for i, s := range suggestions {
		ids[i] = s.ID
	}
	return ids
}
