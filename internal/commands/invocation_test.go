// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"reflect"
	"testing"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		input      string
		ok         bool
		agent      string
		command    string
		params     map[string]string
		positional []string
	}{
		{"@bot-editorial status", true, "bot-editorial", "status", nil, nil},
		{`  @bot-editorial status newStatus="accepted"  `, true, "bot-editorial", "status", map[string]string{"newStatus": "accepted"}, nil},
		{`@bot status note="two words" count=3`, true, "bot", "status", map[string]string{"note": "two words", "count": "3"}, nil},
		{`@bot status note='single quoted'`, true, "bot", "status", map[string]string{"note": "single quoted"}, nil},
		{`@bot status note="say \"hi\""`, true, "bot", "status", map[string]string{"note": `say "hi"`}, nil},
		{`@bot status note=""`, true, "bot", "status", map[string]string{"note": ""}, nil},
		{"@bot status please now", true, "bot", "status", nil, []string{"please", "now"}},
		{"@bot   help", true, "bot", "help", nil, nil},
		{"@bot", true, "bot", "", nil, nil},
		{"@", true, "", "", nil, nil},
		{"@ bot-editorial status", true, "", "bot-editorial", nil, []string{"status"}},
		{"@\tbot-editorial", true, "", "bot-editorial", nil, nil},
		{"bot status", false, "", "", nil, nil},
		{"", false, "", "", nil, nil},
	}

	for _, tc := range tests {
		inv, ok := ParseInvocation(tc.input)
		if ok != tc.ok {
			t.Errorf("ParseInvocation(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if inv.AgentID != tc.agent || inv.Command != tc.command {
			t.Errorf("ParseInvocation(%q) = @%s %s, want @%s %s", tc.input, inv.AgentID, inv.Command, tc.agent, tc.command)
		}
		if !reflect.DeepEqual(inv.Params, tc.params) {
			t.Errorf("ParseInvocation(%q) params = %v, want %v", tc.input, inv.Params, tc.params)
		}
		if !reflect.DeepEqual(inv.Positional, tc.positional) {
			t.Errorf("ParseInvocation(%q) positional = %v, want %v", tc.input, inv.Positional, tc.positional)
		}
	}
}

func TestParseInvocation_Order(t *testing.T) {
	inv, _ := ParseInvocation(`@bot cmd b="1" a="2" b="3"`)

	if want := []string{"b", "a"}; !reflect.DeepEqual(inv.Order, want) {
		t.Errorf("Order = %v, want %v", inv.Order, want)
	}
	if inv.Params["b"] != "3" {
		t.Errorf("last value should win, got %q", inv.Params["b"])
	}
}

func TestInvocationString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"@bot status", "@bot status"},
		{`@bot status   newStatus=accepted note='a "b"'`, `@bot status newStatus="accepted" note="a \"b\""`},
		{"@bot status extra", "@bot status extra"},
	}

	for _, tc := range tests {
		inv, _ := ParseInvocation(tc.input)
		if got := inv.String(); got != tc.want {
			t.Errorf("String() of %q = %q, want %q", tc.input, got, tc.want)
		}

		// Canonical form parses back to the same invocation.
		again, _ := ParseInvocation(inv.String())
		if !reflect.DeepEqual(again.Params, inv.Params) || again.Command != inv.Command {
			t.Errorf("round trip of %q changed the invocation", tc.input)
		}
	}
}

func TestInvocationString_WithoutOrder(t *testing.T) {
	inv := Invocation{AgentID: "bot", Command: "cmd", Params: map[string]string{"z": "1", "a": "2"}}
	if got, want := inv.String(), `@bot cmd a="2" z="1"`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a b", []string{"a", "b"}},
		{`a="x y" b`, []string{"a=x y", "b"}},
		{`"" x`, []string{"", "x"}},
		{"é=ü", []string{"é=ü"}},
		{`a="unterminated value`, []string{"a=unterminated value"}},
	}

	for _, tc := range tests {
		if got := splitArgs(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
