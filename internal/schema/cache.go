// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package schema provides the per-agent command schema cache.
package schema

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/singleflight"

	"github.com/jeranaias/journal-composer/internal/model"
)

// DefaultFetchTimeout bounds a single schema fetch.
const DefaultFetchTimeout = 10 * time.Second

// ErrNoFetcher is returned by Resolve on a cache without a fetcher.
var ErrNoFetcher = errors.New("no command schema source configured")

// =============================================================================
// TYPES
// =============================================================================

// State is the lifecycle state of one agent's schema.
type State int

const (
	StateUnknown State = iota
	StatePending
	StateResolved
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Settled reports whether the state answers lookups (possibly with an
// empty schema).
func (s State) Settled() bool {
	return s == StateResolved || s == StateFailed
}

// Fetcher retrieves the commands an agent accepts.
type Fetcher interface {
	FetchCommands(ctx context.Context, agentID string) ([]model.CommandDescriptor, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, agentID string) ([]model.CommandDescriptor, error)

// FetchCommands implements Fetcher.
func (f FetcherFunc) FetchCommands(ctx context.Context, agentID string) ([]model.CommandDescriptor, error) {
	return f(ctx, agentID)
}

// LoadedMsg is delivered when a fetch started by Fetch completes.
type LoadedMsg struct {
	AgentID  string
	Commands []model.CommandDescriptor
	Err      error

	// Stale is set when the entry was invalidated while the fetch was in
	// flight; the result was not stored.
	Stale bool
}

type entry struct {
	state    State
	commands []model.CommandDescriptor
	err      error
	loadedAt time.Time
}

// =============================================================================
// CACHE
// =============================================================================

// Cache memoizes command schemas keyed by agent id. It is safe to share
// between composers.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	last    string

	fetcher Fetcher
	group   singleflight.Group
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache backed by fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		fetcher: fetcher,
		timeout: DefaultFetchTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the cached commands for agentID and the entry state.
// Failed entries report an empty schema.
func (c *Cache) Lookup(agentID string) ([]model.CommandDescriptor, State) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[agentID]
	if !ok {
		return nil, StateUnknown
	}
	return e.commands, e.state
}

// Commands returns the schema for agentID when it is settled.
func (c *Cache) Commands(agentID string) ([]model.CommandDescriptor, bool) {
	cmds, state := c.Lookup(agentID)
	return cmds, state.Settled()
}

// Err returns the error recorded for a failed entry.
func (c *Cache) Err(agentID string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[agentID]; ok {
		return e.err
	}
	return nil
}

// LastRequested returns the agent id of the most recent fetch request.
func (c *Cache) LastRequested() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Fetch returns a command that loads agentID's schema, or nil when the
// schema is already pending or settled.
func (c *Cache) Fetch(agentID string) tea.Cmd {
	if agentID == "" || c.fetcher == nil {
		return nil
	}

	c.mu.Lock()
	if _, ok := c.entries[agentID]; ok {
		c.mu.Unlock()
		return nil
	}
	e := &entry{state: StatePending}
	c.entries[agentID] = e
	c.last = agentID
	c.mu.Unlock()

	return func() tea.Msg {
		return c.load(context.Background(), agentID, e)
	}
}

// Resolve loads agentID synchronously if needed and returns its schema.
// Hosts without an event loop (the REPL, the CLI) use this instead of Fetch.
func (c *Cache) Resolve(ctx context.Context, agentID string) ([]model.CommandDescriptor, error) {
	if cmds, state := c.Lookup(agentID); state.Settled() {
		return cmds, c.Err(agentID)
	}
	if c.fetcher == nil {
		return nil, ErrNoFetcher
	}

	c.mu.Lock()
	e, ok := c.entries[agentID]
	if !ok {
		e = &entry{state: StatePending}
		c.entries[agentID] = e
		c.last = agentID
	}
	c.mu.Unlock()

	msg := c.load(ctx, agentID, e)
	return msg.Commands, msg.Err
}

// load performs the fetch (deduplicated per agent id) and stores the result
// if e is still the live entry.
func (c *Cache) load(ctx context.Context, agentID string, e *entry) LoadedMsg {
	v, err, _ := c.group.Do(agentID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		cmds, err := c.fetcher.FetchCommands(ctx, agentID)
		if err != nil {
			c.logger.Warn("command schema fetch failed",
				"agent", agentID,
				"duration", time.Since(start),
				"error", err,
			)
			return nil, err
		}

		kept, dropped := model.SanitizeCommands(cmds)
		for _, derr := range dropped {
			c.logger.Warn("dropping invalid command descriptor", "agent", agentID, "error", derr)
		}
		c.logger.Debug("command schema loaded",
			"agent", agentID,
			"commands", len(kept),
			"duration", time.Since(start),
		)
		return kept, nil
	})

	var cmds []model.CommandDescriptor
	if err == nil {
		cmds, _ = v.([]model.CommandDescriptor)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[agentID] != e {
		return LoadedMsg{AgentID: agentID, Commands: cmds, Err: err, Stale: true}
	}
	e.loadedAt = time.Now()
	if err != nil {
		e.state = StateFailed
		e.commands = nil
		e.err = err
	} else {
		e.state = StateResolved
		e.commands = cmds
		e.err = nil
	}
	return LoadedMsg{AgentID: agentID, Commands: e.commands, Err: err}
}

// =============================================================================
// INVALIDATION
// =============================================================================

// Invalidate drops agentID's entry so the next Fetch reloads it. A fetch
// already in flight for it is discarded on arrival.
func (c *Cache) Invalidate(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, agentID)
}

// ForgetFailures drops every failed entry, making those agents eligible for
// a fresh fetch.
func (c *Cache) ForgetFailures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if e.state == StateFailed {
			delete(c.entries, id)
		}
	}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.last = ""
}

// Snapshot returns a copy of every settled schema keyed by agent id.
func (c *Cache) Snapshot() map[string][]model.CommandDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]model.CommandDescriptor, len(c.entries))
	for id, e := range c.entries {
		if e.state.Settled() {
			out[id] = append([]model.CommandDescriptor(nil), e.commands...)
		}
	}
	return out
}

// Put seeds a resolved schema, e.g. from a fixture or a prefetch.
func (c *Cache) Put(agentID string, cmds []model.CommandDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[agentID] = &entry{state: StateResolved, commands: cmds, loadedAt: time.Now()}
}
