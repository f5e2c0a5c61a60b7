// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the composer packages.
//
// # Key Functions
//
// Buffer offsets:
//   - ByteOffset, RuneOffset: Convert between rune and byte cursor positions
//   - ClampOffset: Keep a cursor inside a buffer on a rune boundary
//
// Display:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: Cell-width aware truncation for terminal rows
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// A bubbles textarea reports rune positions; the engine wants bytes.
//	cursor := util.ByteOffset(value, runePos)
package util
