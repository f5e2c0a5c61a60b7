// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the composer TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/journal-composer/internal/mention"
	"github.com/jeranaias/journal-composer/internal/ui/styles"
	"github.com/jeranaias/journal-composer/internal/util"
)

// =============================================================================
// SUGGESTION POPUP COMPONENT
// =============================================================================

// SuggestionPopup renders the candidate list of the composer engine. It
// holds no selection state of its own; the engine's navigator owns it.
type SuggestionPopup struct {
	candidates []mention.Candidate
	selected   int
	maxVisible int
	width      int
	labelWidth int
}

// NewSuggestionPopup creates an empty popup.
func NewSuggestionPopup(width, maxVisible int) *SuggestionPopup {
	p := &SuggestionPopup{maxVisible: 6, width: 40}
	p.SetWidth(width)
	p.SetMaxVisible(maxVisible)
	return p
}

// SetCandidates sets the rows and the highlighted row.
func (p *SuggestionPopup) SetCandidates(candidates []mention.Candidate, selected int) {
	p.candidates = candidates
	p.selected = selected
}

// HasCandidates returns true if there is anything to show.
func (p *SuggestionPopup) HasCandidates() bool {
	return len(p.candidates) > 0
}

// SetWidth sets the popup width in cells.
func (p *SuggestionPopup) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	p.width = width
	p.labelWidth = width * 2 / 5
}

// Width returns the popup width in cells.
func (p *SuggestionPopup) Width() int {
	return p.width
}

// SetMaxVisible sets the maximum number of visible rows.
func (p *SuggestionPopup) SetMaxVisible(n int) {
	if n > 0 {
		p.maxVisible = n
	}
}

// window returns the visible range, keeping the selected row centered
// when the list scrolls.
func (p *SuggestionPopup) window() (start, end int) {
	end = len(p.candidates)
	if end <= p.maxVisible {
		return 0, end
	}
	start = p.selected - p.maxVisible/2
	if start < 0 {
		start = 0
	}
	end = start + p.maxVisible
	if end > len(p.candidates) {
		end = len(p.candidates)
		start = end - p.maxVisible
	}
	return start, end
}

// View renders the popup box.
func (p *SuggestionPopup) View() string {
	if len(p.candidates) == 0 {
		return ""
	}

	start, end := p.window()
	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, p.renderRow(p.candidates[i], i == p.selected))
	}
	if start > 0 || end < len(p.candidates) {
		more := lipgloss.NewStyle().Foreground(styles.TextMuted).
			Render(strconv.Itoa(p.selected+1) + "/" + strconv.Itoa(len(p.candidates)))
		rows = append(rows, more)
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Cyan).
		Padding(0, 1).
		Width(p.width).
		MaxWidth(p.width + 2)

	return box.Render(strings.Join(rows, "\n"))
}

// renderRow renders one candidate.
func (p *SuggestionPopup) renderRow(c mention.Candidate, selected bool) string {
	labelStyle := lipgloss.NewStyle().
		Width(p.labelWidth).
		Foreground(labelColor(c))
	descWidth := p.width - p.labelWidth - 4
	if descWidth < 0 {
		descWidth = 0
	}
	descStyle := lipgloss.NewStyle().
		Width(descWidth).
		Foreground(styles.TextSecondary)

	if selected {
		labelStyle = labelStyle.
			Background(styles.Cyan).
			Foreground(styles.Surface).
			Bold(true)
		descStyle = descStyle.Foreground(styles.TextPrimary)
	}

	indicator := " "
	if selected {
		indicator = ">"
	}
	indicatorStyle := lipgloss.NewStyle().Width(2).Foreground(styles.Cyan)

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		indicatorStyle.Render(indicator),
		labelStyle.Render(util.TruncateWidth(c.Label(), p.labelWidth)),
		descStyle.Render(util.TruncateWidth(c.Detail(), descWidth)),
	)
}

func labelColor(c mention.Candidate) lipgloss.TerminalColor {
	switch c.Kind {
	case mention.CandidateCommand:
		return styles.Purple
	case mention.CandidateParameter:
		return styles.Amber
	default:
		return styles.KindColor(c.Entity)
	}
}

// ViewInline renders the first few candidates on one line.
func (p *SuggestionPopup) ViewInline() string {
	if len(p.candidates) == 0 {
		return ""
	}

	const maxInline = 3
	n := len(p.candidates)
	if n > maxInline {
		n = maxInline
	}

	var parts []string
	for i := 0; i < n; i++ {
		style := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		if i == p.selected {
			style = style.Foreground(styles.Cyan).Bold(true)
		}
		parts = append(parts, style.Render(p.candidates[i].Label()))
	}
	if len(p.candidates) > maxInline {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.TextMuted).
			Render("..."+strconv.Itoa(len(p.candidates)-maxInline)+" more"))
	}
	return strings.Join(parts, " | ")
}
