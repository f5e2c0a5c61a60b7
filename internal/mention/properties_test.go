// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// GENERATORS
// =============================================================================

// composerText draws buffers built from the pieces that matter to the
// detector: mentions, command words, spaces, quotes and prose.
func composerText() *rapid.Generator[string] {
	piece := rapid.SampledFrom([]string{
		"@", "@bot-editorial", "@bot-plagiarism", "@john", " ", "  ", "\n",
		"status", "assign-reviewer", "help", "new", "newStatus=", `"`, "note",
		"hello", "email@user", "é", "x",
	})
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOf(piece).Draw(t, "pieces")
		return strings.Join(parts, "")
	})
}

func suggestionGen() *rapid.Generator[model.Suggestion] {
	return rapid.Custom(func(t *rapid.T) model.Suggestion {
		return model.Suggestion{
			ID:          rapid.StringMatching(`[a-z][a-z0-9-]{0,12}`).Draw(t, "id"),
			DisplayName: rapid.String().Draw(t, "name"),
			Description: rapid.String().Draw(t, "desc"),
		}
	})
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestProperty_DetectIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := composerText().Draw(t, "text")
		cursor := rapid.IntRange(0, len(text)).Draw(t, "cursor")
		in := Input{Text: text, Cursor: cursor, Agents: agents}

		first := Detect(in, schemas)
		second := Detect(in, schemas)
		require.Equal(t, first, second)
	})
}

func TestProperty_DetectOffsetsInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := composerText().Draw(t, "text")
		cursor := rapid.IntRange(0, len(text)).Draw(t, "cursor")
		res := Detect(Input{Text: text, Cursor: cursor, Agents: agents}, schemas)

		if res.IsPending() || res.Mode == ModeIdle {
			return
		}
		require.LessOrEqual(t, 0, res.StartOffset)
		require.LessOrEqual(t, res.StartOffset, res.Cursor)
		require.Equal(t, text[res.StartOffset:res.Cursor], queryText(res))
	})
}

// queryText is the buffer slice a result claims to cover.
func queryText(res Result) string {
	if res.Mode == ModeMention {
		return "@" + res.Query
	}
	return res.Query
}

func TestProperty_FilterSubset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(suggestionGen()).Draw(t, "items")
		query := rapid.String().Draw(t, "query")

		got := Filter(query, items)
		require.LessOrEqual(t, len(got), len(items))

		// Every result appears in the input, in input order.
		j := 0
		for _, g := range got {
			for j < len(items) && items[j] != g {
				j++
			}
			require.Less(t, j, len(items), "result %v not found in order", g)
			j++
		}

		all := Filter("", items)
		require.Len(t, all, len(items))
		for i := range items {
			require.Equal(t, items[i], all[i])
		}
	})
}

func TestProperty_MentionCommitIsIdle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prose := rapid.StringMatching(`([a-z]+ ){0,3}`).Draw(t, "prose")
		query := rapid.StringMatching(`[a-z-]{0,6}`).Draw(t, "query")
		tail := rapid.StringMatching(`( [a-z]+){0,2}`).Draw(t, "tail")
		chosen := rapid.SampledFrom(suggestions).Draw(t, "chosen")

		text := prose + "@" + query + tail
		cursor := len(prose) + 1 + len(query)
		res := Detect(Input{Text: text, Cursor: cursor, Agents: agents}, schemas)
		require.Equal(t, ModeMention, res.Mode)

		newText, newCursor, err := Commit(text, res, EntityCandidate(chosen))
		require.NoError(t, err)

		after := Detect(Input{Text: newText, Cursor: newCursor, Agents: agents}, schemas)
		require.Equal(t, ModeIdle, after.Mode)
		require.False(t, after.IsPending())
	})
}

func TestProperty_MentionBoundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-zA-Z0-9.]{1,8}`).Draw(t, "word")
		user := rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "user")

		glued := word + "@" + user
		require.Equal(t, ModeIdle, Detect(Input{Text: glued, Cursor: len(glued)}, schemas).Mode)

		spaced := word + " @" + user
		res := Detect(Input{Text: spaced, Cursor: len(spaced)}, schemas)
		require.Equal(t, ModeMention, res.Mode)
		require.Equal(t, user, res.Query)
	})
}
