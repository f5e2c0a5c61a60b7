// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/journal-composer/internal/model"
)

var statusCmd = model.CommandDescriptor{
	Name:        "status",
	Description: "Change the manuscript status",
	Parameters: []model.Parameter{
		{Name: "newStatus", Type: model.ParamEnum, Required: true, EnumValues: []string{"accepted", "rejected"}},
	},
}

// countingFetcher records calls per agent and returns a fixed result.
type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	cmds  []model.CommandDescriptor
	err   error
	gate  chan struct{}
}

func newCountingFetcher(cmds []model.CommandDescriptor, err error) *countingFetcher {
	return &countingFetcher{calls: make(map[string]int), cmds: cmds, err: err}
}

func (f *countingFetcher) FetchCommands(ctx context.Context, agentID string) ([]model.CommandDescriptor, error) {
	f.mu.Lock()
	f.calls[agentID]++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.cmds, f.err
}

func (f *countingFetcher) count(agentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[agentID]
}

// =============================================================================
// FETCH TESTS
// =============================================================================

func TestFetch_MemoizesResolvedSchema(t *testing.T) {
	f := newCountingFetcher([]model.CommandDescriptor{statusCmd}, nil)
	c := New(f)

	_, state := c.Lookup("bot-editorial")
	assert.Equal(t, StateUnknown, state)

	cmd := c.Fetch("bot-editorial")
	require.NotNil(t, cmd)

	_, state = c.Lookup("bot-editorial")
	assert.Equal(t, StatePending, state)
	assert.Nil(t, c.Fetch("bot-editorial"), "pending fetch must not be duplicated")

	msg, ok := cmd().(LoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "bot-editorial", msg.AgentID)
	assert.NoError(t, msg.Err)
	assert.False(t, msg.Stale)

	cmds, ok := c.Commands("bot-editorial")
	require.True(t, ok)
	require.Len(t, cmds, 1)
	assert.Equal(t, "status", cmds[0].Name)

	assert.Nil(t, c.Fetch("bot-editorial"), "resolved schema must not be refetched")
	assert.Equal(t, 1, f.count("bot-editorial"))
	assert.Equal(t, "bot-editorial", c.LastRequested())
}

func TestFetch_FailureCachedAsEmpty(t *testing.T) {
	f := newCountingFetcher(nil, errors.New("503 service unavailable"))
	c := New(f)

	msg := c.Fetch("bot-review")().(LoadedMsg)
	assert.Error(t, msg.Err)

	cmds, state := c.Lookup("bot-review")
	assert.Equal(t, StateFailed, state)
	assert.Empty(t, cmds)
	assert.Error(t, c.Err("bot-review"))

	// Keystrokes while failed do not retry.
	for i := 0; i < 5; i++ {
		assert.Nil(t, c.Fetch("bot-review"))
	}
	assert.Equal(t, 1, f.count("bot-review"))

	// A fresh trigger after ForgetFailures retries.
	c.ForgetFailures()
	cmd := c.Fetch("bot-review")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 2, f.count("bot-review"))
}

func TestFetch_ForgetFailuresKeepsResolved(t *testing.T) {
	c := New(newCountingFetcher(nil, nil))
	c.Put("bot-editorial", []model.CommandDescriptor{statusCmd})

	c.ForgetFailures()
	_, state := c.Lookup("bot-editorial")
	assert.Equal(t, StateResolved, state)
}

func TestFetch_DropsInvalidDescriptors(t *testing.T) {
	broken := model.CommandDescriptor{Name: "broken", Parameters: []model.Parameter{{Name: "x", Type: model.ParamEnum}}}
	c := New(newCountingFetcher([]model.CommandDescriptor{statusCmd, broken}, nil))

	c.Fetch("bot-editorial")()
	cmds, _ := c.Commands("bot-editorial")
	require.Len(t, cmds, 1)
	assert.Equal(t, "status", cmds[0].Name)
}

func TestFetch_InvalidatedWhileInFlightIsStale(t *testing.T) {
	f := newCountingFetcher([]model.CommandDescriptor{statusCmd}, nil)
	f.gate = make(chan struct{})
	c := New(f)

	cmd := c.Fetch("bot-editorial")
	done := make(chan LoadedMsg)
	go func() { done <- cmd().(LoadedMsg) }()

	c.Invalidate("bot-editorial")
	close(f.gate)

	msg := <-done
	assert.True(t, msg.Stale)
	_, state := c.Lookup("bot-editorial")
	assert.Equal(t, StateUnknown, state)
}

func TestFetch_EmptyAgentOrNoFetcher(t *testing.T) {
	assert.Nil(t, New(newCountingFetcher(nil, nil)).Fetch(""))
	assert.Nil(t, New(nil).Fetch("bot"))
}

func TestResolve_NoFetcher(t *testing.T) {
	c := New(nil)
	_, err := c.Resolve(context.Background(), "bot")
	assert.ErrorIs(t, err, ErrNoFetcher)

	_, state := c.Lookup("bot")
	assert.Equal(t, StateUnknown, state)
}

func TestResolve_DeduplicatesConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	c := New(FetcherFunc(func(ctx context.Context, agentID string) ([]model.CommandDescriptor, error) {
		calls.Add(1)
		<-gate
		return []model.CommandDescriptor{statusCmd}, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmds, err := c.Resolve(context.Background(), "bot-editorial")
			assert.NoError(t, err)
			assert.Len(t, cmds, 1)
		}()
	}
	close(gate)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(10))
	_, state := c.Lookup("bot-editorial")
	assert.Equal(t, StateResolved, state)

	// Settled now: no further network.
	before := calls.Load()
	_, err := c.Resolve(context.Background(), "bot-editorial")
	assert.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

// =============================================================================
// SNAPSHOT / RESET TESTS
// =============================================================================

func TestSnapshotAndReset(t *testing.T) {
	c := New(newCountingFetcher(nil, errors.New("down")))
	c.Put("bot-editorial", []model.CommandDescriptor{statusCmd})
	c.Fetch("bot-review")()

	snap := c.Snapshot()
	assert.Len(t, snap, 2)
	assert.Empty(t, snap["bot-review"])

	c.Reset()
	assert.Empty(t, c.Snapshot())
	assert.Equal(t, "", c.LastRequested())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "invalid", State(42).String())
	assert.True(t, StateFailed.Settled())
	assert.False(t, StatePending.Settled())
}
