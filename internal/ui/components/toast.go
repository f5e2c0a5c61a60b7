// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"
	"time"

	"github.com/jeranaias/journal-composer/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind is the severity of a toast.
type ToastKind int

const (
	ToastKindStatus ToastKind = iota
	ToastKindWarning
	ToastKindError
)

// Display durations per kind. Errors stay longest.
const (
	StatusToastDuration  = 4 * time.Second
	WarningToastDuration = 6 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// Toast is a short notice in the status bar that expires on its own.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the toast should no longer be shown at now.
func (t Toast) IsExpired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the active toasts, newest first. Expired toasts are
// dropped lazily whenever the list is read, so no timer is needed; the
// cursor blink redraws the screen often enough.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
	now       func() time.Time
}

// NewToastManager creates a manager holding at most three toasts.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, maxToasts: 3, now: time.Now}
}

// SetClock replaces the time source. Used in tests.
func (m *ToastManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *ToastManager) add(kind ToastKind, message string, d time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{ID: m.nextID, Message: message, Kind: kind, CreatedAt: m.now(), Duration: d}
	m.nextID++

	// A repeated message refreshes the existing toast.
	for i, old := range m.toasts {
		if old.Message == message && old.Kind == kind {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			break
		}
	}
	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// AddStatus adds an informational toast and returns its id.
func (m *ToastManager) AddStatus(message string) int {
	return m.add(ToastKindStatus, message, StatusToastDuration)
}

// AddWarning adds a warning toast and returns its id.
func (m *ToastManager) AddWarning(message string) int {
	return m.add(ToastKindWarning, message, WarningToastDuration)
}

// AddError adds an error toast and returns its id.
func (m *ToastManager) AddError(message string) int {
	return m.add(ToastKindError, message, ErrorToastDuration)
}

// Remove drops the toast with id.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Toasts returns the unexpired toasts, newest first.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Latest returns the newest unexpired toast.
func (m *ToastManager) Latest() (Toast, bool) {
	toasts := m.Toasts()
	if len(toasts) == 0 {
		return Toast{}, false
	}
	return toasts[0], true
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderToast renders t as one status line.
func RenderToast(t Toast) string {
	switch t.Kind {
	case ToastKindError:
		return styles.RenderError(t.Message)
	case ToastKindWarning:
		return styles.RenderWarning(t.Message)
	default:
		return styles.RenderInfo(t.Message)
	}
}
