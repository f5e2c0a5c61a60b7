// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/journal-composer/internal/mention"
	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// HINTS
// =============================================================================

// HintFor renders the parameter hint line for cmd while token is being
// typed, e.g.
//
//	newStatus="accepted|rejected" (enum, required)  note="string"
//
// Only parameters the token may refer to are shown. An empty string means
// nothing matches.
func HintFor(cmd model.CommandDescriptor, token string) string {
	params := mention.ParameterHints(cmd, token)
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, ParamHint(p))
	}
	return strings.Join(parts, "  ")
}

// ParamHint renders one parameter as name="placeholder" followed by its
// type and flags.
func ParamHint(p model.Parameter) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(`="`)
	b.WriteString(p.Placeholder())
	b.WriteString(`"`)

	var flags []string
	if p.Type != "" && p.Type != model.ParamString {
		flags = append(flags, string(p.Type))
	}
	if p.Required {
		flags = append(flags, "required")
	}
	if p.HasDefault() {
		flags = append(flags, "default: "+p.DefaultString())
	}
	if len(flags) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(flags, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// UsageFor returns the usage line for a command. The schema's own usage
// string wins; otherwise one is built from the parameters with optional
// ones in brackets.
func UsageFor(agentID string, cmd model.CommandDescriptor) string {
	if cmd.Usage != "" {
		return cmd.Usage
	}
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(agentID)
	b.WriteString(" ")
	b.WriteString(cmd.Name)
	for _, p := range cmd.Parameters {
		arg := p.Name + `="` + p.Placeholder() + `"`
		if !p.Required {
			arg = "[" + arg + "]"
		}
		b.WriteString(" ")
		b.WriteString(arg)
	}
	return b.String()
}

func sortedCopy(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
