// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jeranaias/journal-composer/internal/model"
)

// Conversation is the subset of the conversation resource the composer
// reads.
type Conversation struct {
	ID           string              `json:"id"`
	Title        string              `json:"title,omitempty"`
	Participants []model.Participant `json:"participants"`
}

// Bot is an agent resource with its command schema.
type Bot struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name,omitempty"`
	Description string                    `json:"description,omitempty"`
	Color       string                    `json:"color,omitempty"`
	Commands    []model.CommandDescriptor `json:"commands"`
}

// Agent returns the directory record of the bot.
func (b Bot) Agent() model.Agent {
	return model.Agent{ID: b.ID, Name: b.Name, Description: b.Description, Color: b.Color}
}

// GetConversation fetches a conversation with its participants.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.New("conversation id is required")
	}
	var conv Conversation
	if err := c.getJSON(ctx, &conv, "conversations", url.PathEscape(conversationID)); err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", conversationID, err)
	}
	if conv.ID == "" {
		conv.ID = conversationID
	}
	return &conv, nil
}

// FetchParticipants returns the participants of a conversation.
func (c *Client) FetchParticipants(ctx context.Context, conversationID string) ([]model.Participant, error) {
	conv, err := c.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return conv.Participants, nil
}

// GetBot fetches an agent and its command schema.
func (c *Client) GetBot(ctx context.Context, agentID string) (*Bot, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, errors.New("agent id is required")
	}
	var bot Bot
	if err := c.getJSON(ctx, &bot, "bots", url.PathEscape(agentID)); err != nil {
		return nil, fmt.Errorf("get bot %s: %w", agentID, err)
	}
	if bot.ID == "" {
		bot.ID = agentID
	}
	return &bot, nil
}

// FetchCommands returns the commands an agent accepts. It implements
// schema.Fetcher.
func (c *Client) FetchCommands(ctx context.Context, agentID string) ([]model.CommandDescriptor, error) {
	bot, err := c.GetBot(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return bot.Commands, nil
}
