// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// INVOCATION
// =============================================================================

// Invocation is a parsed "@agent command params" string.
type Invocation struct {
	// AgentID is the token directly after '@'. It is empty when
	// whitespace follows the '@'.
	AgentID string

	// Command is the first word after the agent token.
	Command string

	// Params holds name="value" arguments with quotes removed.
	Params map[string]string

	// Order lists parameter names in the order they were written.
	Order []string

	// Positional holds tokens that are not name=value pairs.
	Positional []string

	// Raw is the trimmed input.
	Raw string
}

// ParseInvocation splits an invocation into agent, command and arguments.
// It does not validate anything; see Validator for that. ok is false when
// s does not start with '@'.
func ParseInvocation(s string) (inv Invocation, ok bool) {
	s = strings.TrimSpace(s)
	inv.Raw = s
	if !strings.HasPrefix(s, "@") {
		return inv, false
	}

	// The agent token must touch the '@'; "@ agent" has no agent.
	rest := s[1:]
	if strings.IndexFunc(rest, unicode.IsSpace) != 0 {
		inv.AgentID, rest = splitFirstWord(rest)
	}
	inv.Command, rest = splitFirstWord(rest)

	for _, tok := range splitArgs(rest) {
		name, value, isParam := strings.Cut(tok, "=")
		if !isParam || name == "" {
			inv.Positional = append(inv.Positional, tok)
			continue
		}
		if inv.Params == nil {
			inv.Params = make(map[string]string)
		}
		if _, seen := inv.Params[name]; !seen {
			inv.Order = append(inv.Order, name)
		}
		inv.Params[name] = value
	}
	return inv, true
}

// HasParam reports whether the invocation sets name.
func (inv Invocation) HasParam(name string) bool {
	_, ok := inv.Params[name]
	return ok
}

// String renders the invocation in canonical form: parameters in written
// order, values double quoted.
func (inv Invocation) String() string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(inv.AgentID)
	if inv.Command != "" {
		b.WriteString(" ")
		b.WriteString(inv.Command)
	}

	names := inv.Order
	if len(names) != len(inv.Params) {
		// Hand-built invocation without Order.
		names = make([]string, 0, len(inv.Params))
		for name := range inv.Params {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(quote(inv.Params[name]))
	}
	for _, p := range inv.Positional {
		b.WriteString(" ")
		b.WriteString(p)
	}
	return b.String()
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitFirstWord returns the text up to the first whitespace and the
// trimmed remainder.
func splitFirstWord(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end == -1 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}

// splitArgs splits an argument string into tokens, respecting quotes.
// Quotes are removed; a backslash inside quotes escapes a quote or
// backslash.
func splitArgs(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, quoted bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			quoted = true

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			quoted = true

		case char == '\\' && i+1 < len(runes) && (inDoubleQuote || inSingleQuote):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// quote wraps a value in double quotes, escaping quotes and backslashes.
func quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
