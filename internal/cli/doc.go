// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the composer command-line interface.
//
// Commands are built with cobra. Every command shares one runtime (App)
// holding the configuration, logger, backend client, schema cache, agent
// directory and composer engine.
//
// # Commands Overview
//
//   - tui (default): full-screen composer with suggestions
//   - repl: line editor with tab completion from the engine
//   - validate: check one command invocation
//   - commands: show an agent's command schema
//   - agents: list the agent directory
//   - config: show, init, path, get and set configuration
//
// validate, commands and agents support --json.
package cli
