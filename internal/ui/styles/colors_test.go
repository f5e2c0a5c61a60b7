// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/journal-composer/internal/model"
)

func TestRenderStatus(t *testing.T) {
	if got := RenderStatus(true, "valid"); !strings.Contains(got, "[OK] valid") {
		t.Errorf("RenderStatus(true) = %q", got)
	}
	if got := RenderStatus(false, "unknown agent"); !strings.Contains(got, "[X] unknown agent") {
		t.Errorf("RenderStatus(false) = %q", got)
	}
	if got := RenderPending("loading"); !strings.Contains(got, "[ ] loading") {
		t.Errorf("RenderPending() = %q", got)
	}
}

func TestAgentColor(t *testing.T) {
	tests := []struct {
		in   string
		want lipgloss.TerminalColor
	}{
		{"#ff0000", lipgloss.Color("#ff0000")},
		{"#abc", lipgloss.Color("#abc")},
		{"", Purple},
		{"red", Purple},
		{"#12345", Purple},
	}
	for _, tt := range tests {
		if got := AgentColor(tt.in); got != tt.want {
			t.Errorf("AgentColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindColor(t *testing.T) {
	user := model.Suggestion{ID: "john-doe", Kind: model.KindUser}
	agent := model.Suggestion{ID: "bot", Kind: model.KindAgent, Color: "#00ff00"}

	if KindColor(user) != Cyan {
		t.Error("users should be cyan")
	}
	if KindColor(agent) != lipgloss.Color("#00ff00") {
		t.Error("agents should use their declared color")
	}
}
