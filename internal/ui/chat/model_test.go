// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/composer"
	"github.com/jeranaias/journal-composer/internal/directory"
	"github.com/jeranaias/journal-composer/internal/logging"
	"github.com/jeranaias/journal-composer/internal/mention"
	"github.com/jeranaias/journal-composer/internal/model"
	"github.com/jeranaias/journal-composer/internal/position"
	"github.com/jeranaias/journal-composer/internal/schema"
)

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	t *testing.T
	m Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logging.Discard()

	cache := schema.New(schema.FetcherFunc(func(context.Context, string) ([]model.CommandDescriptor, error) {
		return []model.CommandDescriptor{
			{
				Name:        "status",
				Description: "Change the manuscript status",
				Parameters: []model.Parameter{
					{Name: "newStatus", Type: model.ParamEnum, Required: true, EnumValues: []string{"accepted", "rejected"}},
				},
			},
			{Name: "help", Description: "List commands"},
		}, nil
	}), schema.WithLogger(logger))

	dir := directory.New(logger)
	dir.SetAgents([]model.Agent{{ID: "bot-editorial", Name: "Editorial Bot"}})
	dir.SetParticipants([]model.Participant{{User: model.User{ID: "john-doe", Name: "John Doe"}}})

	est := position.NewEstimator(position.CellSurface{}, position.DefaultLayout())
	eng := composer.NewEngine(composer.Options{
		Schemas:   cache,
		Directory: dir,
		Estimator: est,
		Logger:    logger,
	})

	m := New(Deps{Engine: eng, Directory: dir, Estimator: est, Logger: logger})
	// A blinking cursor schedules timers on every key press.
	m.input.Cursor.SetMode(cursor.CursorStatic)

	h := &harness{t: t, m: m}
	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

// send delivers msg and runs every command it produces, feeding the
// composer's own messages back in.
func (h *harness) send(msg tea.Msg) {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(cmd)
}

// sendOnly delivers msg and returns its command without running it.
func (h *harness) sendOnly(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	case composer.CommitMsg, composer.ValidatedMsg, schema.LoadedMsg:
		h.send(msg)
	}
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySend  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCheck = tea.KeyMsg{Type: tea.KeyCtrlG}
)

// =============================================================================
// SUGGESTIONS
// =============================================================================

func TestMentionPopupOpens(t *testing.T) {
	h := newHarness(t)
	h.typeText("@jo")

	st := h.m.engine.State()
	assert.Equal(t, mention.ModeMention, st.Mode)
	require.Len(t, st.Candidates, 1)
	assert.True(t, h.m.popup.HasCandidates())
	assert.Contains(t, h.m.View(), "John Doe")
}

func TestTabCommitsMention(t *testing.T) {
	h := newHarness(t)
	h.typeText("@jo")
	h.send(keyTab)

	assert.Equal(t, "@john-doe ", h.m.Value())
	assert.Equal(t, len("@john-doe "), h.m.editor.CursorOffset())
	assert.Equal(t, mention.ModeIdle, h.m.engine.Mode())
	assert.False(t, h.m.popup.HasCandidates())
}

func TestEscapeClosesPopup(t *testing.T) {
	h := newHarness(t)
	h.typeText("@jo")
	h.send(keyEsc)

	assert.Equal(t, "@jo", h.m.Value())
	assert.Equal(t, mention.ModeIdle, h.m.engine.Mode())
	assert.NotContains(t, h.m.View(), "John Doe")
}

func TestCommandFlow(t *testing.T) {
	h := newHarness(t)
	h.typeText("@bot-editorial ")

	st := h.m.engine.State()
	require.Equal(t, mention.ModeCommand, st.Mode)
	require.Len(t, st.Candidates, 2)

	h.typeText("sta")
	h.send(keyTab)
	assert.Equal(t, "@bot-editorial status ", h.m.Value())

	h.typeText("n")
	assert.Equal(t, mention.ModeParameterHint, h.m.engine.Mode())
	assert.Contains(t, h.m.View(), "newStatus")
}

func TestArrowKeysStayInPopup(t *testing.T) {
	h := newHarness(t)
	h.typeText("@bot-editorial ")
	h.send(keyDown)

	assert.Equal(t, 1, h.m.engine.State().Selected)
	assert.Equal(t, "@bot-editorial ", h.m.Value())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitPlainMessage(t *testing.T) {
	h := newHarness(t)
	h.typeText("hello reviewers")
	h.send(keySend)

	sent := h.m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hello reviewers", sent[0].Text)
	assert.Nil(t, sent[0].Report)
	assert.Empty(t, h.m.Value())
}

func TestSubmitUserMentionIsNotACommand(t *testing.T) {
	h := newHarness(t)
	h.typeText("@john-doe thanks")
	h.send(keySend)

	require.Len(t, h.m.Sent(), 1)
}

func TestSubmitRejectsUnknownCommand(t *testing.T) {
	h := newHarness(t)
	h.typeText("@bot-editorial nope")
	h.send(keySend)

	assert.Empty(t, h.m.Sent())
	assert.Equal(t, "@bot-editorial nope", h.m.Value())

	report, ok := h.m.Report()
	require.True(t, ok)
	assert.True(t, errors.Is(report.Err, commands.ErrUnknownCommand))
	assert.Contains(t, h.m.View(), "nope")
}

func TestSubmitWaitsForSchema(t *testing.T) {
	h := newHarness(t)

	// Hold back the schema load started by typing.
	load := h.sendOnly(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("@bot-editorial help")})
	require.NotNil(t, load)

	h.send(keySend)
	assert.Empty(t, h.m.Sent())
	report, ok := h.m.Report()
	require.True(t, ok)
	assert.Equal(t, "bot-editorial", report.Pending)
	assert.True(t, h.m.spinner.IsActive())
	assert.Contains(t, h.m.View(), "loading commands for @bot-editorial")

	h.run(load)
	assert.False(t, h.m.spinner.IsActive())

	sent := h.m.Sent()
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Report)
	require.NotNil(t, sent[0].Report.Command)
	assert.Equal(t, "help", sent[0].Report.Command.Name)
	assert.Empty(t, h.m.Value())
}

func TestCheckKeepsText(t *testing.T) {
	h := newHarness(t)
	h.typeText("@bot-editorial status")
	h.send(keyEsc)
	h.send(keyCheck)

	report, ok := h.m.Report()
	require.True(t, ok)
	assert.NoError(t, report.Err)
	assert.NotEmpty(t, report.Warnings)
	assert.Equal(t, "@bot-editorial status", h.m.Value())
	assert.Empty(t, h.m.Sent())
}

// =============================================================================
// CONTROLLER AND EDITOR
// =============================================================================

func TestControllerPrependContent(t *testing.T) {
	h := newHarness(t)
	h.typeText("thanks")
	h.run(h.m.Controller().PrependContent("@john-doe "))

	assert.Equal(t, "@john-doe thanks", h.m.Value())
	assert.Equal(t, len("@john-doe thanks"), h.m.editor.CursorOffset())
}

func TestTextareaEditorOffsets(t *testing.T) {
	ta := textarea.New()
	ta.SetWidth(40)
	ta.Focus()
	ed := newTextareaEditor(&ta)

	ed.SetValue("ab\ncdé")
	assert.Equal(t, len("ab\ncdé"), ed.CursorOffset())

	tests := []int{0, 1, 2, 3, 4, 5}
	for _, off := range tests {
		ed.SetCursorOffset(off)
		if got := ed.CursorOffset(); got != off {
			t.Errorf("SetCursorOffset(%d) then CursorOffset() = %d", off, got)
		}
	}

	ed.SetCursorOffset(100)
	assert.Equal(t, len("ab\ncdé"), ed.CursorOffset())
}

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, strings.Contains(h.m.View(), "While suggestions are open"))

	h.typeText("x")
	assert.False(t, h.m.showHelp)
	assert.Empty(t, h.m.Value())
}

func TestNoticesInStatusBar(t *testing.T) {
	h := newHarness(t)
	h.send(directory.AgentsChangedMsg{Agents: []model.Agent{
		{ID: "bot-editorial", Name: "Editorial Bot"},
		{ID: "bot-review", Name: "Review Bot"},
	}})
	assert.Contains(t, h.m.View(), "agents file reloaded (2 agents)")

	h.send(directory.ParticipantsLoadedMsg{Err: errors.New("timeout")})
	assert.Contains(t, h.m.View(), "participants unavailable")

	h.typeText("hello")
	h.send(keySend)
	assert.NotContains(t, h.m.View(), "participants unavailable")
}
