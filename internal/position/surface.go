// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package position estimates where a suggestion popup should be anchored.
package position

import (
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// MEASURING CAPABILITY
// =============================================================================

// Font describes the text style a probe measures with.
type Font struct {
	Family string  `toml:"family" json:"family"`
	Size   float64 `toml:"size" json:"size"`
}

// Probe measures rendered text widths. A probe may hold host resources
// (an off-screen element, a layout context) until Release is called.
type Probe interface {
	Measure(s string) (float64, error)
	Release()
}

// Surface creates measuring probes for a font.
type Surface interface {
	NewProbe(font Font) (Probe, error)
}

// =============================================================================
// FUNCTION ADAPTER
// =============================================================================

// MeasureFunc adapts a stateless measureText(font, s) function to a Surface.
type MeasureFunc func(font Font, s string) float64

// NewProbe implements Surface.
func (f MeasureFunc) NewProbe(font Font) (Probe, error) {
	return funcProbe{fn: f, font: font}, nil
}

type funcProbe struct {
	fn   MeasureFunc
	font Font
}

func (p funcProbe) Measure(s string) (float64, error) {
	return p.fn(p.font, s), nil
}

func (funcProbe) Release() {}

// =============================================================================
// TERMINAL SURFACE
// =============================================================================

// CellSurface measures text in terminal cells. The font is ignored; wide
// runes count as two cells.
type CellSurface struct {
	// EastAsianAmbiguousWide treats ambiguous-width runes as wide.
	EastAsianAmbiguousWide bool
}

// NewProbe implements Surface.
func (s CellSurface) NewProbe(Font) (Probe, error) {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = s.EastAsianAmbiguousWide
	return cellProbe{cond: cond}, nil
}

type cellProbe struct {
	cond *runewidth.Condition
}

func (p cellProbe) Measure(s string) (float64, error) {
	return float64(p.cond.StringWidth(s)), nil
}

func (cellProbe) Release() {}
