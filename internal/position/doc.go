// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package position estimates where a suggestion popup should be anchored.
//
// The estimator never touches a rendering surface directly. Hosts hand it a
// Surface that can create short-lived measuring probes; the estimator
// measures the text before the cursor, accounts for hard and soft line
// breaks, and returns a {Top, Left} anchor below the cursor line.
//
// # Key Types
//
//   - Estimator: Computes anchors from a Surface and a Layout
//   - Surface, Probe: Host measuring capability (probe is always released)
//   - MeasureFunc: Adapts a plain measureText(font, s) function
//   - CellSurface: Terminal surface backed by go-runewidth
//
// # Usage
//
//	est := position.NewEstimator(position.CellSurface{}, position.DefaultLayout())
//	anchor, err := est.Estimate(text, cursor)
package position
