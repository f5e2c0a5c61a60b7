// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/jeranaias/journal-composer/internal/model"
)

func TestHintFor(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", `newStatus="accepted|rejected" (enum, required)  note="string"  priority="1" (number, default: 1)`},
		{"n", `newStatus="accepted|rejected" (enum, required)  note="string"`},
		{`note="hel`, `note="string"`},
		{"pri", `priority="1" (number, default: 1)`},
		{"zzz", ""},
	}

	for _, tc := range tests {
		if got := HintFor(statusCmd, tc.token); got != tc.want {
			t.Errorf("HintFor(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestUsageFor(t *testing.T) {
	if got, want := UsageFor("bot-editorial", statusCmd), `@bot-editorial status newStatus="accepted|rejected" [note="string"] [priority="1"]`; got != want {
		t.Errorf("UsageFor() = %q, want %q", got, want)
	}

	custom := model.CommandDescriptor{Name: "help", Usage: "@bot help [topic]"}
	if got := UsageFor("bot", custom); got != "@bot help [topic]" {
		t.Errorf("UsageFor() should prefer the declared usage, got %q", got)
	}
}
