// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// FIXTURES
// =============================================================================

// mapLookup is a SchemaLookup backed by a map. Agents missing from the map
// are unsettled.
type mapLookup map[string][]model.CommandDescriptor

func (m mapLookup) Commands(agentID string) ([]model.CommandDescriptor, bool) {
	cmds, ok := m[agentID]
	return cmds, ok
}

var (
	statusCmd = model.CommandDescriptor{
		Name:        "status",
		Description: "Change the manuscript status",
		Usage:       `@bot-editorial status newStatus="accepted"`,
		Parameters: []model.Parameter{
			{Name: "newStatus", Type: model.ParamEnum, Required: true, EnumValues: []string{"accepted", "rejected", "revision"}},
			{Name: "note", Type: model.ParamString},
		},
	}
	assignCmd = model.CommandDescriptor{
		Name:        "assign-reviewer",
		Description: "Assign a reviewer to the manuscript",
		Parameters: []model.Parameter{
			{Name: "reviewer", Type: model.ParamString, Required: true},
		},
	}
	helpCmd = model.CommandDescriptor{
		Name:        "help",
		Description: "List commands",
	}

	agents  = []string{"bot-editorial", "bot-plagiarism"}
	schemas = mapLookup{
		"bot-editorial": {statusCmd, assignCmd, helpCmd},
	}

	suggestions = []model.Suggestion{
		{ID: "john-doe", DisplayName: "John Doe", Kind: model.KindUser},
		{ID: "bot-editorial", DisplayName: "Editorial Bot", Kind: model.KindAgent, Description: "Editorial workflow"},
	}
)

func detect(text string, cursor int) Result {
	return Detect(Input{Text: text, Cursor: cursor, Agents: agents}, schemas)
}

// =============================================================================
// MENTION MODE
// =============================================================================

func TestDetect_Mention(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		cursor    int
		wantMode  Mode
		wantQuery string
		wantStart int
	}{
		{"bare at", "@", 1, ModeMention, "", 0},
		{"prefix", "@john", 5, ModeMention, "john", 0},
		{"after space", "Hello @jo", 9, ModeMention, "jo", 6},
		{"after newline", "Hi\n@jo", 6, ModeMention, "jo", 3},
		{"after tab", "x\t@", 3, ModeMention, "", 2},
		{"cursor mid token", "@johnny", 3, ModeMention, "jo", 0},
		{"email is not a mention", "email@user", 10, ModeIdle, "", 0},
		{"space ends mention", "@john ", 6, ModeIdle, "", 0},
		{"no at", "hello", 5, ModeIdle, "", 0},
		{"empty", "", 0, ModeIdle, "", 0},
		{"double at", "@@", 2, ModeIdle, "", 0},
		{"unicode before at", "café@", 6, ModeIdle, "", 0},
		{"unicode space before at", "x\u00a0@a", 5, ModeMention, "a", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := detect(tt.text, tt.cursor)
			assert.False(t, res.IsPending())
			assert.Equal(t, tt.wantMode, res.Mode)
			if tt.wantMode == ModeMention {
				assert.Equal(t, tt.wantQuery, res.Query)
				assert.Equal(t, tt.wantStart, res.StartOffset)
			}
		})
	}
}

func TestDetect_BoundaryRule(t *testing.T) {
	assert.Equal(t, ModeIdle, detect("email@user", len("email@user")).Mode)
	assert.Equal(t, ModeMention, detect("Hello @", len("Hello @")).Mode)
}

func TestDetect_ClampsCursor(t *testing.T) {
	res := detect("@jo", 99)
	assert.Equal(t, ModeMention, res.Mode)
	assert.Equal(t, 3, res.Cursor)

	res = detect("@jo", -4)
	assert.Equal(t, ModeIdle, res.Mode)
	assert.Equal(t, 0, res.Cursor)
}

// =============================================================================
// COMMAND MODE
// =============================================================================

func TestDetect_Command(t *testing.T) {
	text := "@bot-editorial st"
	res := detect(text, len(text))

	require.Equal(t, ModeCommand, res.Mode)
	assert.Equal(t, "st", res.Query)
	assert.Equal(t, len("@bot-editorial "), res.StartOffset)
	assert.Equal(t, "bot-editorial", res.AgentID)
}

func TestDetect_CommandAllowsSeveralSpaces(t *testing.T) {
	text := "please @bot-editorial   as"
	res := detect(text, len(text))

	require.Equal(t, ModeCommand, res.Mode)
	assert.Equal(t, "as", res.Query)
	assert.Equal(t, len("please @bot-editorial   "), res.StartOffset)
}

func TestDetect_CommandUnknownAgentFallsThrough(t *testing.T) {
	text := "@john-doe he"
	res := detect(text, len(text))
	assert.Equal(t, ModeIdle, res.Mode, "a user mention followed by prose is plain text")
}

func TestDetect_CommandNeedsBoundary(t *testing.T) {
	text := "x@bot-editorial st"
	res := detect(text, len(text))
	assert.Equal(t, ModeIdle, res.Mode)
}

func TestDetect_CommandPendingSchema(t *testing.T) {
	text := "@bot-plagiarism sc"
	res := detect(text, len(text))
	assert.True(t, res.IsPending())
	assert.Equal(t, "bot-plagiarism", res.Pending)
}

func TestDetect_TriggerOffset(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"mention", "hi @jo", 3},
		{"command", "ok @bot-editorial st", 3},
		{"parameter", "x @bot-editorial status new", 2},
		{"pending", "see @bot-plagiarism sc", 4},
		{"second invocation", "@bot-editorial help @bot-editorial as", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := detect(tt.text, len(tt.text))
			assert.Equal(t, tt.want, res.TriggerOffset)
		})
	}
}

func TestDetect_CommandEmptySchema(t *testing.T) {
	lookup := mapLookup{"bot-plagiarism": nil}
	text := "@bot-plagiarism sc"
	res := Detect(Input{Text: text, Cursor: len(text), Agents: agents}, lookup)

	assert.False(t, res.IsPending())
	assert.Equal(t, ModeCommand, res.Mode)
	assert.Empty(t, Candidates(res, suggestions, lookup))
}

// =============================================================================
// PARAMETER MODE
// =============================================================================

func TestDetect_ParameterHint(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantMode  Mode
		wantQuery string
	}{
		{"empty token", "@bot-editorial status ", ModeParameterHint, ""},
		{"name prefix", "@bot-editorial status new", ModeParameterHint, "new"},
		{"name with value", `@bot-editorial status newStatus="acc`, ModeParameterHint, `newStatus="acc`},
		{"quoted value with space", `@bot-editorial status note="two wor`, ModeParameterHint, `note="two wor`},
		{"second parameter", `@bot-editorial status newStatus="accepted" no`, ModeParameterHint, "no"},
		{"case sensitive", "@bot-editorial status New", ModeIdle, ""},
		{"not a parameter", "@bot-editorial status thanks", ModeIdle, ""},
		{"command without parameters", "@bot-editorial help ", ModeIdle, ""},
		{"unknown command", "@bot-editorial frobnicate ", ModeIdle, ""},
		{"unknown agent", "@john-doe status ", ModeIdle, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := detect(tt.text, len(tt.text))
			assert.Equal(t, tt.wantMode, res.Mode)
			if tt.wantMode == ModeParameterHint {
				assert.Equal(t, tt.wantQuery, res.Query)
				require.NotNil(t, res.Command)
				assert.Equal(t, "status", res.Command.Name)
				assert.Equal(t, "bot-editorial", res.AgentID)
				assert.Equal(t, len("@bot-editorial status"), res.CommandEndOffset)
			}
		})
	}
}

func TestDetect_ParameterUsesLastInvocation(t *testing.T) {
	text := `@bot-editorial help then @bot-editorial assign-reviewer rev`
	res := detect(text, len(text))

	require.Equal(t, ModeParameterHint, res.Mode)
	assert.Equal(t, "assign-reviewer", res.Command.Name)
	assert.Equal(t, len("@bot-editorial help then @bot-editorial assign-reviewer"), res.CommandEndOffset)
}

func TestDetect_ParameterPendingSchema(t *testing.T) {
	text := "@bot-plagiarism scan "
	res := detect(text, len(text))
	assert.Equal(t, "bot-plagiarism", res.Pending)
}

func TestDetect_ParameterFallsBackToMention(t *testing.T) {
	text := "@bot-editorial status @jo"
	res := detect(text, len(text))

	assert.Equal(t, ModeMention, res.Mode)
	assert.Equal(t, "jo", res.Query)
	assert.Equal(t, len("@bot-editorial status "), res.StartOffset)
}

// Scenario D: a command with a required enum parameter opens the hint.
func TestDetect_ScenarioD(t *testing.T) {
	text := "@bot-editorial status "
	res := detect(text, len(text))

	require.Equal(t, ModeParameterHint, res.Mode)
	assert.Equal(t, "status", res.Command.Name)

	hints := Candidates(res, suggestions, schemas)
	require.Len(t, hints, 2)
	assert.Equal(t, "newStatus", hints[0].Key())
	assert.True(t, hints[0].Parameter.Required)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestCurrentToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{" ", ""},
		{" abc", "abc"},
		{` a="x y`, `a="x y`},
		{` a="x y" b`, "b"},
		{"a\tb", "b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, currentToken(tt.in), "input %q", tt.in)
	}
}

func TestParameterName(t *testing.T) {
	name, ok := ParameterName(`newStatus="x=y"`)
	assert.True(t, ok)
	assert.Equal(t, "newStatus", name)

	_, ok = ParameterName("newSta")
	assert.False(t, ok)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "idle", ModeIdle.String())
	assert.Equal(t, "mention", ModeMention.String())
	assert.Equal(t, "command", ModeCommand.String())
	assert.Equal(t, "parameter-hint", ModeParameterHint.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
