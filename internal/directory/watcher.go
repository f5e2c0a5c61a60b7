// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/journal-composer/internal/model"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// AgentsChangedMsg is delivered after the agents file was reloaded.
type AgentsChangedMsg struct {
	Agents []model.Agent
	Err    error
}

// =============================================================================
// AGENTS FILE WATCHER
// =============================================================================

// Watcher reloads an agents file into a Directory when it changes.
type Watcher struct {
	path     string
	dir      *Directory
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer

	changes chan AgentsChangedMsg
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the agents file at path.
func NewWatcher(path string, dir *Directory, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agents file path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     abs,
		dir:      dir,
		watcher:  fsw,
		debounce: debounce,
		logger:   dir.logger,
		changes:  make(chan AgentsChangedMsg, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch loads the file once and starts watching it. The parent directory
// is watched so that editors that save by renaming are noticed.
func (w *Watcher) Watch() error {
	if err := w.reload(); err != nil {
		return err
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Changes delivers reload results. Only the latest undelivered result is
// kept.
func (w *Watcher) Changes() <-chan AgentsChangedMsg {
	return w.changes
}

// WaitForChange returns a command that blocks until the next reload.
// Hosts re-issue it after handling each AgentsChangedMsg.
func (w *Watcher) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.changes:
			return msg
		case <-w.ctx.Done():
			return nil
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("agents file watcher error", "error", err)
		}
	}
}

// schedule debounces reloads.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.ctx.Err() != nil {
			return
		}
		err := w.reload()
		w.publish(AgentsChangedMsg{Agents: w.dir.Agents(), Err: err})
	})
}

// reload reads the file into the directory. A broken file keeps the
// previous agents.
func (w *Watcher) reload() error {
	agents, err := LoadAgents(w.path)
	if err != nil {
		w.logger.Warn("agents file not reloaded", "path", w.path, "error", err)
		return err
	}
	w.dir.SetAgents(agents)
	w.logger.Info("agents file loaded", "path", w.path, "agents", len(agents))
	return nil
}

// publish replaces any undelivered change with msg.
func (w *Watcher) publish(msg AgentsChangedMsg) {
	for {
		select {
		case w.changes <- msg:
			return
		default:
		}
		select {
		case <-w.changes:
		default:
		}
	}
}
