// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mention detects inline @-mentions and agent command invocations
// in a composer buffer, filters candidate lists for them and commits a
// chosen candidate back into the text.
//
// Everything here is a pure function of its inputs. The only outside
// information the detector needs, the command schemas of agents, is read
// through the SchemaLookup interface and never fetched from here.
//
// # Modes
//
//	Idle                no popup
//	MentionActive       "@jo"             -> users and agents
//	CommandActive       "@bot-editorial s" -> commands of bot-editorial
//	ParameterHintActive "@bot-editorial status " -> parameters of status
//
// All offsets are byte offsets into the UTF-8 text.
package mention
