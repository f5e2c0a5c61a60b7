// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package schema provides the per-agent command schema cache.
//
// Schemas are fetched lazily the first time an agent is addressed and kept
// for the rest of the session. Each agent id moves through the states
//
//	Unknown -> Pending -> Resolved
//	                   -> Failed (served as an empty schema)
//
// A Failed entry is not refetched on every keystroke. Invalidate makes one
// agent eligible again (the composer does so when a new "@agent" trigger
// appears) and ForgetFailures does it for all of them (the REPL, per line).
//
// Fetches are expressed as bubbletea commands so hosts can run them off the
// event loop and feed the resulting LoadedMsg back in.
//
// # Usage
//
//	cache := schema.New(client)
//	if cmd := cache.Fetch("bot-editorial"); cmd != nil {
//	    return cmd // host runs it; LoadedMsg arrives later
//	}
package schema
