// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the composer engine.
package model

// =============================================================================
// DIRECTORY RECORDS
// =============================================================================

// Agent is an automation agent enabled in the current context.
type Agent struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Suggestion converts the agent into a mention suggestion.
func (a Agent) Suggestion() Suggestion {
	name := a.Name
	if name == "" {
		name = a.ID
	}
	return Suggestion{
		ID:          a.ID,
		DisplayName: name,
		Kind:        KindAgent,
		Description: a.Description,
		Color:       a.Color,
	}
}

// User is a platform user as returned by the conversation endpoint.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Participant is one entry of a conversation's participant list.
type Participant struct {
	User User `json:"user"`
}

// AgentIDs returns the ids of the given agents in order.
func AgentIDs(agents []Agent) []string {
	ids := make([]string, 0, len(agents))
	for _, a := range agents {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// =============================================================================
// SUGGESTION BUILDERS
// =============================================================================

// UserSuggestions builds mention suggestions for conversation participants.
// Participants that share a display name get " (email)" appended so the
// popup rows stay distinguishable.
func UserSuggestions(participants []Participant) []Suggestion {
	nameCount := make(map[string]int, len(participants))
	for _, p := range participants {
		nameCount[p.User.Name]++
	}

	suggestions := make([]Suggestion, 0, len(participants))
	for _, p := range participants {
		if p.User.ID == "" {
			continue
		}
		display := p.User.Name
		if display == "" {
			display = p.User.ID
		}
		if nameCount[p.User.Name] > 1 && p.User.Email != "" {
			display += " (" + p.User.Email + ")"
		}
		suggestions = append(suggestions, Suggestion{
			ID:          p.User.ID,
			DisplayName: display,
			Kind:        KindUser,
			Description: p.User.Role,
		})
	}
	return suggestions
}

// BuildSuggestions returns participants followed by agents. Ids are unique
// within the result; the first occurrence of an id wins.
func BuildSuggestions(participants []Participant, agents []Agent) []Suggestion {
	users := UserSuggestions(participants)
	out := make([]Suggestion, 0, len(users)+len(agents))
	seen := make(map[string]bool, len(users)+len(agents))

	for _, s := range users {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	for _, a := range agents {
		if a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a.Suggestion())
	}
	return out
}
