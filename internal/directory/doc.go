// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package directory holds the agents and conversation participants the
// composer can mention.
//
// Agents come from a YAML file:
//
//	agents:
//	  - id: bot-editorial
//	    name: Editorial Bot
//	    description: Manuscript workflow
//	    color: "#ff8800"
//
// The file can be watched and is reloaded when it changes. Participants
// are loaded from the backend for one conversation. A failed load leaves
// the previous list in place.
package directory
