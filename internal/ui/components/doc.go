// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the composer TUI.
//
// # Components
//
//   - SuggestionPopup: bordered candidate list with a scrolling window
//   - RenderHint: parameter hint line for the active command
//   - RenderReport: validation result with warnings
//   - Highlight / HighlightJSON: chroma syntax highlighting for CLI output
//   - Spinner: schema loading indicator
//   - ToastManager / RenderToast: status notices that expire on their own
//
// Components render strings; they never own engine state. The popup is fed
// the engine's candidates and selected index on every update:
//
//	st := engine.State()
//	popup.SetCandidates(st.Candidates, st.Selected)
//	view := popup.View()
package components
