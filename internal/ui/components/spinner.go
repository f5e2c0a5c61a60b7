// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/journal-composer/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// timerAfter is how long a load runs before the elapsed time is shown.
const timerAfter = time.Second

// Spinner is the loading indicator shown while an agent's commands are
// fetched.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool
}

// NewSpinner creates an inactive spinner with ASCII frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return Spinner{spinner: s}
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner with message. Starting an active spinner only
// changes the message and returns nil, so ticks are never doubled.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	if s.isActive {
		return nil
	}
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner. Pending ticks are dropped by Update.
func (s *Spinner) Stop() {
	s.isActive = false
	s.message = ""
}

// IsActive returns whether the spinner is running.
func (s Spinner) IsActive() bool {
	return s.isActive
}

// Message returns the text shown next to the spinner.
func (s Spinner) Message() string {
	return s.message
}

// Elapsed returns the time since Start, or zero when inactive.
func (s Spinner) Elapsed() time.Duration {
	if !s.isActive {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update advances the animation. Ticks arriving after Stop end the loop.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner, or "" when inactive.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}
	frame := lipgloss.NewStyle().Foreground(styles.Amber).Render(s.spinner.View())
	text := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(s.message)

	out := frame + " " + text
	if elapsed := s.Elapsed(); elapsed >= timerAfter {
		out += lipgloss.NewStyle().Foreground(styles.TextMuted).Render(" (" + formatElapsed(elapsed) + ")")
	}
	return out
}

// formatElapsed renders d as "12s" or "1m 5s".
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return strconv.Itoa(seconds) + "s"
	}
	return strconv.Itoa(seconds/60) + "m " + strconv.Itoa(seconds%60) + "s"
}
