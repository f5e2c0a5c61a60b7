// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package position estimates where a suggestion popup should be anchored.
package position

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jeranaias/journal-composer/internal/util"
)

// ErrNoSurface is returned when the estimator has nothing to measure with.
var ErrNoSurface = errors.New("no measuring surface")

// =============================================================================
// LAYOUT
// =============================================================================

// Anchor is the popup position relative to the editor's content box.
type Anchor struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Layout describes the editor box the text is rendered in.
type Layout struct {
	Font Font

	// LineHeight is the height of one visual row.
	LineHeight float64

	PaddingTop  float64
	PaddingLeft float64

	// ContentWidth enables soft wrapping when > 0.
	ContentWidth float64

	// PopupWidth and ViewportWidth, when both > 0, keep the popup inside the
	// viewport by shifting it left.
	PopupWidth    float64
	ViewportWidth float64
}

// DefaultLayout returns a terminal layout: one cell per row, no padding.
func DefaultLayout() Layout {
	return Layout{LineHeight: 1}
}

// =============================================================================
// ESTIMATOR
// =============================================================================

// Estimator maps buffer offsets to popup anchors.
type Estimator struct {
	surface Surface
	layout  Layout
}

// NewEstimator creates an estimator measuring with surface.
func NewEstimator(surface Surface, layout Layout) *Estimator {
	if layout.LineHeight <= 0 {
		layout.LineHeight = 1
	}
	return &Estimator{surface: surface, layout: layout}
}

// Layout returns the layout the estimator was built with.
func (e *Estimator) Layout() Layout {
	return e.layout
}

// SetLayout replaces the layout, e.g. after a resize.
func (e *Estimator) SetLayout(layout Layout) {
	if layout.LineHeight <= 0 {
		layout.LineHeight = 1
	}
	e.layout = layout
}

// Estimate returns the anchor for the row below the one containing offset.
// The probe it acquires is released before returning on every path.
func (e *Estimator) Estimate(text string, offset int) (anchor Anchor, err error) {
	if e == nil || e.surface == nil {
		return Anchor{}, ErrNoSurface
	}

	probe, err := e.surface.NewProbe(e.layout.Font)
	if err != nil {
		return Anchor{}, fmt.Errorf("create probe: %w", err)
	}
	defer probe.Release()

	offset = util.ClampOffset(text, offset)
	lines := strings.Split(text[:offset], "\n")

	rows := 0
	for _, line := range lines[:len(lines)-1] {
		w, err := probe.Measure(line)
		if err != nil {
			return Anchor{}, fmt.Errorf("measure line: %w", err)
		}
		rows += e.visualRows(w)
	}

	w, err := probe.Measure(lines[len(lines)-1])
	if err != nil {
		return Anchor{}, fmt.Errorf("measure cursor line: %w", err)
	}
	left := w
	if cw := e.layout.ContentWidth; cw > 0 && w >= cw {
		wrapped := math.Floor(w / cw)
		rows += int(wrapped)
		left = w - wrapped*cw
	}

	anchor = Anchor{
		Top:  e.layout.PaddingTop + float64(rows+1)*e.layout.LineHeight,
		Left: e.layout.PaddingLeft + left,
	}
	return e.clamp(anchor), nil
}

// visualRows returns how many rows a complete line of width w occupies.
func (e *Estimator) visualRows(w float64) int {
	cw := e.layout.ContentWidth
	if cw <= 0 || w <= cw {
		return 1
	}
	return int(math.Ceil(w / cw))
}

func (e *Estimator) clamp(a Anchor) Anchor {
	l := e.layout
	if l.PopupWidth > 0 && l.ViewportWidth > 0 && a.Left+l.PopupWidth > l.ViewportWidth {
		a.Left = math.Max(0, l.ViewportWidth-l.PopupWidth)
	}
	return a
}
