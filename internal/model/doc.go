// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the composer engine.
//
// Every type here is immutable once built. Suggestions are rebuilt from the
// directories on each fetch and command descriptors are owned by the schema
// cache, so nothing in this package is persisted.
//
// # Key Types
//
//   - Suggestion: A mentionable user or agent (the target of an @token)
//   - CommandDescriptor: One command an agent accepts, with its parameters
//   - Parameter: A named, typed command parameter
//   - Agent, Participant: Directory records the suggestions are built from
//
// # Usage
//
// Build the mention list for a conversation:
//
//	suggestions := model.BuildSuggestions(participants, agents)
//
// Check a decoded schema:
//
//	if err := cmd.Validate(); err != nil {
//	    // drop the command
//	}
package model
