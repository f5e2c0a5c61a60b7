// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SUGGESTION BUILDER TESTS
// =============================================================================

func TestUserSuggestions_DisambiguatesDuplicateNames(t *testing.T) {
	participants := []Participant{
		{User: User{ID: "jsmith-1", Name: "Jane Smith", Email: "jane@uni-a.edu", Role: "editor"}},
		{User: User{ID: "jsmith-2", Name: "Jane Smith", Email: "jane@uni-b.edu", Role: "reviewer"}},
		{User: User{ID: "john-doe", Name: "John Doe", Email: "john@uni-a.edu", Role: "author"}},
	}

	got := UserSuggestions(participants)
	require.Len(t, got, 3)

	assert.Equal(t, "Jane Smith (jane@uni-a.edu)", got[0].DisplayName)
	assert.Equal(t, "Jane Smith (jane@uni-b.edu)", got[1].DisplayName)
	assert.Equal(t, "John Doe", got[2].DisplayName)
	assert.Equal(t, KindUser, got[2].Kind)
	assert.Equal(t, "author", got[2].Description)
}

func TestUserSuggestions_SkipsEmptyIDs(t *testing.T) {
	got := UserSuggestions([]Participant{{User: User{Name: "Ghost"}}})
	assert.Empty(t, got)
}

func TestBuildSuggestions_OrderAndUniqueness(t *testing.T) {
	participants := []Participant{
		{User: User{ID: "john-doe", Name: "John Doe"}},
	}
	agents := []Agent{
		{ID: "bot-editorial", Name: "Editorial Bot", Color: "#7C3AED"},
		{ID: "john-doe", Name: "Impostor"},
		{ID: ""},
	}

	got := BuildSuggestions(participants, agents)
	require.Equal(t, []string{"john-doe", "bot-editorial"}, SuggestionIDs(got))
	assert.Equal(t, KindUser, got[0].Kind)
	assert.Equal(t, KindAgent, got[1].Kind)
	assert.Equal(t, "#7C3AED", got[1].Color)
	assert.True(t, got[1].IsAgent())
	assert.Equal(t, "@bot-editorial", got[1].Token())
}

func TestAgent_SuggestionFallsBackToID(t *testing.T) {
	s := Agent{ID: "bot-x"}.Suggestion()
	assert.Equal(t, "bot-x", s.DisplayName)
}

func TestAgentIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, AgentIDs([]Agent{{ID: "a"}, {}, {ID: "b"}}))
}

// =============================================================================
// SCHEMA VALIDATION TESTS
// =============================================================================

func TestParameter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		param   Parameter
		wantErr error
	}{
		{"string ok", Parameter{Name: "note", Type: ParamString}, nil},
		{"enum ok", Parameter{Name: "newStatus", Type: ParamEnum, EnumValues: []string{"accepted"}}, nil},
		{"enum empty", Parameter{Name: "newStatus", Type: ParamEnum}, ErrEnumWithoutValues},
		{"no name", Parameter{Type: ParamNumber}, ErrEmptyName},
		{"bad type", Parameter{Name: "x", Type: "date"}, ErrUnknownParamType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.param.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestCommandDescriptor_Validate(t *testing.T) {
	dup := CommandDescriptor{
		Name: "assign",
		Parameters: []Parameter{
			{Name: "reviewer", Type: ParamString},
			{Name: "reviewer", Type: ParamString},
		},
	}
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateParam)
	assert.ErrorIs(t, CommandDescriptor{}.Validate(), ErrEmptyName)
	assert.NoError(t, CommandDescriptor{Name: "help"}.Validate())
}

func TestSanitizeCommands(t *testing.T) {
	cmds := []CommandDescriptor{
		{Name: "status", Parameters: []Parameter{{Name: "newStatus", Type: ParamEnum, EnumValues: []string{"accepted", "rejected"}}}},
		{Name: "broken", Parameters: []Parameter{{Name: "s", Type: ParamEnum}}},
		{Name: "help"},
	}

	kept, errs := SanitizeCommands(cmds)
	require.Len(t, kept, 2)
	assert.Equal(t, "status", kept[0].Name)
	assert.Equal(t, "help", kept[1].Name)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrEnumWithoutValues)
}

func TestCommandDescriptor_Lookups(t *testing.T) {
	cmd := CommandDescriptor{
		Name: "status",
		Parameters: []Parameter{
			{Name: "newStatus", Type: ParamEnum, Required: true, EnumValues: []string{"accepted", "rejected"}},
			{Name: "note", Type: ParamString, DefaultValue: "none"},
		},
	}

	p, ok := cmd.Parameter("note")
	require.True(t, ok)
	assert.Equal(t, "none", p.Placeholder())
	assert.True(t, p.HasDefault())

	_, ok = cmd.Parameter("Note")
	assert.False(t, ok)

	req := cmd.RequiredParameters()
	require.Len(t, req, 1)
	assert.Equal(t, "accepted|rejected", req[0].Placeholder())
	assert.True(t, cmd.HasParameters())

	found, ok := FindCommand([]CommandDescriptor{cmd}, "status")
	assert.True(t, ok)
	assert.Equal(t, "status", found.Name)
}
