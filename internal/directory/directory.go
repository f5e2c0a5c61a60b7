// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// DIRECTORY
// =============================================================================

// ParticipantSource loads the participants of a conversation.
type ParticipantSource interface {
	FetchParticipants(ctx context.Context, conversationID string) ([]model.Participant, error)
}

// ParticipantsLoadedMsg reports the outcome of LoadParticipantsCmd.
type ParticipantsLoadedMsg struct {
	ConversationID string
	Count          int
	Err            error
}

// Directory is the set of mentionable agents and participants. It is safe
// for concurrent use.
type Directory struct {
	mu           sync.RWMutex
	agents       []model.Agent
	participants []model.Participant
	version      uint64
	logger       *slog.Logger
}

// New creates an empty directory.
func New(logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{logger: logger}
}

// SetAgents replaces the agent list.
func (d *Directory) SetAgents(agents []model.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents = append([]model.Agent(nil), agents...)
	d.version++
}

// SetParticipants replaces the participant list.
func (d *Directory) SetParticipants(participants []model.Participant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.participants = append([]model.Participant(nil), participants...)
	d.version++
}

// Agents returns a copy of the agent list.
func (d *Directory) Agents() []model.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Agent(nil), d.agents...)
}

// AgentIDs returns the ids of the known agents.
func (d *Directory) AgentIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return model.AgentIDs(d.agents)
}

// Agent looks up an agent by id.
func (d *Directory) Agent(id string) (model.Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.agents {
		if a.ID == id {
			return a, true
		}
	}
	return model.Agent{}, false
}

// Participants returns a copy of the participant list.
func (d *Directory) Participants() []model.Participant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Participant(nil), d.participants...)
}

// Suggestions returns the mention candidates: participants then agents.
func (d *Directory) Suggestions() []model.Suggestion {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return model.BuildSuggestions(d.participants, d.agents)
}

// Version increases on every change. Callers compare it to skip rebuilding
// derived state.
func (d *Directory) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

// LoadParticipants fetches a conversation's participants. On failure the
// error is logged and returned, and the current list is kept.
func (d *Directory) LoadParticipants(ctx context.Context, src ParticipantSource, conversationID string) error {
	participants, err := src.FetchParticipants(ctx, conversationID)
	if err != nil {
		d.logger.Warn("participant directory unavailable",
			"conversation", conversationID,
			"error", err,
		)
		return err
	}
	d.SetParticipants(participants)
	d.logger.Debug("participants loaded", "conversation", conversationID, "count", len(participants))
	return nil
}

// LoadParticipantsCmd is LoadParticipants as a bubbletea command.
func (d *Directory) LoadParticipantsCmd(src ParticipantSource, conversationID string) tea.Cmd {
	return func() tea.Msg {
		err := d.LoadParticipants(context.Background(), src, conversationID)
		msg := ParticipantsLoadedMsg{ConversationID: conversationID, Err: err}
		if err == nil {
			msg.Count = len(d.Participants())
		}
		return msg
	}
}
