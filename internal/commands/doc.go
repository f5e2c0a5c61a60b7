// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands parses and validates agent command invocations.
//
// An invocation is written inline in a message as
//
//	@<agentId> <command> [<param>="<value>"]...
//
// # Key Types
//
//   - Invocation: a parsed "@agent command params" string
//   - Validator: post-hoc check of a completed invocation against the known
//     agents and their cached schemas
//   - ValidationError: one of ErrMissingPrefix, ErrIncompleteCommand,
//     ErrUnknownAgent or ErrUnknownCommand
//   - ParamError: a parameter problem found by CheckParams
//
// # Usage
//
//	v := commands.NewValidator(agentIDs, cache)
//	report := v.Validate(`@bot-editorial status newStatus="accepted"`)
//	if report.Pending != "" {
//	    return report.Fetch // validate again once the schema arrives
//	}
//	if report.Err != nil {
//	    showHint(report.Err.Error())
//	}
package commands
