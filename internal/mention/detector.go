// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeranaias/journal-composer/internal/model"
	"github.com/jeranaias/journal-composer/internal/util"
)

// =============================================================================
// PATTERNS
// =============================================================================

var (
	// invocationPattern matches "@agent command " anywhere in the text.
	// Group 1 is the agent, 2 the command.
	invocationPattern = regexp.MustCompile(`@([\w-]+) +([\w-]+) `)

	// partialCommandPattern matches "@agent partial" ending at the cursor.
	partialCommandPattern = regexp.MustCompile(`@([\w-]+) +([\w-]+)$`)
)

// =============================================================================
// DETECTOR
// =============================================================================

// Detect classifies the text around the cursor. The first matching rule
// wins: parameter hint, command, mention, idle.
func Detect(in Input, schemas SchemaLookup) Result {
	cursor := util.ClampOffset(in.Text, in.Cursor)
	before := in.Text[:cursor]

	if res, ok := detectParameter(before, in.Agents, schemas); ok {
		res.Cursor = cursor
		return res
	}
	if res, ok := detectCommand(before, in.Agents, schemas); ok {
		res.Cursor = cursor
		return res
	}
	if res, ok := detectMention(before); ok {
		res.Cursor = cursor
		return res
	}
	return Idle(cursor)
}

// detectParameter looks for the last "@agent command " before the cursor
// and checks that the token under the cursor can be a parameter of it.
func detectParameter(before string, agents []string, schemas SchemaLookup) (Result, bool) {
	var m []int
	for _, cand := range invocationPattern.FindAllStringSubmatchIndex(before, -1) {
		if atBoundary(before, cand[0]) {
			m = cand
		}
	}
	if m == nil {
		return Result{}, false
	}
	agentID := before[m[2]:m[3]]
	commandName := before[m[4]:m[5]]
	commandEnd := m[5]

	if !containsID(agents, agentID) || schemas == nil {
		return Result{}, false
	}
	cmds, settled := schemas.Commands(agentID)
	if !settled {
		return Result{Pending: agentID, TriggerOffset: m[0]}, true
	}
	cmd, ok := model.FindCommand(cmds, commandName)
	if !ok || !cmd.HasParameters() {
		return Result{}, false
	}

	token := currentToken(before[commandEnd:])
	if !looksLikeParameter(token, cmd) {
		return Result{}, false
	}
	return Result{
		Mode:             ModeParameterHint,
		Query:            token,
		StartOffset:      len(before) - len(token),
		AgentID:          agentID,
		Command:          &cmd,
		CommandEndOffset: commandEnd,
		TriggerOffset:    m[0],
	}, true
}

// detectCommand matches "@agent partial" ending at the cursor.
func detectCommand(before string, agents []string, schemas SchemaLookup) (Result, bool) {
	m := partialCommandPattern.FindStringSubmatchIndex(before)
	if m == nil || !atBoundary(before, m[0]) {
		return Result{}, false
	}
	agentID := before[m[2]:m[3]]
	if !containsID(agents, agentID) {
		return Result{}, false
	}
	if schemas == nil {
		return Result{}, false
	}
	if _, settled := schemas.Commands(agentID); !settled {
		return Result{Pending: agentID, TriggerOffset: m[0]}, true
	}
	return Result{
		Mode:          ModeCommand,
		Query:         before[m[4]:m[5]],
		StartOffset:   m[4],
		AgentID:       agentID,
		TriggerOffset: m[0],
	}, true
}

// detectMention finds the last '@' before the cursor that sits at the
// start of the text or right after whitespace.
func detectMention(before string) (Result, bool) {
	at := strings.LastIndexByte(before, '@')
	if at < 0 || !atBoundary(before, at) {
		return Result{}, false
	}
	query := before[at+1:]
	if strings.IndexFunc(query, unicode.IsSpace) >= 0 {
		return Result{}, false
	}
	return Result{
		Mode:          ModeMention,
		Query:         query,
		StartOffset:   at,
		TriggerOffset: at,
	}, true
}

// =============================================================================
// HELPERS
// =============================================================================

// atBoundary reports whether offset i is the start of text or follows
// whitespace.
func atBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsSpace(r)
}

// currentToken returns the trailing whitespace-delimited token of s.
// Whitespace inside double quotes does not end a token, so
// `note="two words` is one token.
func currentToken(s string) string {
	start := 0
	inQuote := false
	for i, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			start = i + utf8.RuneLen(r)
		}
	}
	return s[start:]
}

// looksLikeParameter reports whether token is empty, a case-sensitive
// prefix of a parameter name, or starts with "name=".
func looksLikeParameter(token string, cmd model.CommandDescriptor) bool {
	if token == "" {
		return true
	}
	for _, p := range cmd.Parameters {
		if strings.HasPrefix(p.Name, token) || strings.HasPrefix(token, p.Name+"=") {
			return true
		}
	}
	return false
}

// ParameterName returns the parameter a hint token refers to, if the token
// already contains "name=".
func ParameterName(token string) (string, bool) {
	name, _, ok := strings.Cut(token, "=")
	if !ok {
		return "", false
	}
	return name, true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
