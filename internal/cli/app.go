// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jeranaias/journal-composer/internal/backend"
	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/composer"
	"github.com/jeranaias/journal-composer/internal/config"
	"github.com/jeranaias/journal-composer/internal/directory"
	"github.com/jeranaias/journal-composer/internal/mention"
	"github.com/jeranaias/journal-composer/internal/model"
	"github.com/jeranaias/journal-composer/internal/position"
	"github.com/jeranaias/journal-composer/internal/schema"
	"github.com/jeranaias/journal-composer/internal/util"
)

// =============================================================================
// RUNTIME
// =============================================================================

// App is the runtime shared by the commands.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Client is nil when no backend URL is configured.
	Client    *backend.Client
	Schemas   *schema.Cache
	Directory *directory.Directory
	// Watcher is nil unless the agents file is watched.
	Watcher   *directory.Watcher
	Estimator *position.Estimator
	Engine    *composer.Engine
}

// NewApp wires the runtime from cfg. With watch set, the agents file is
// hot-reloaded; otherwise it is read once.
func NewApp(cfg *config.Config, logger *slog.Logger, watch bool) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	var fetcher schema.Fetcher
	if cfg.Backend.BaseURL != "" {
		client, err := backend.New(cfg.Backend.BaseURL,
			backend.WithToken(cfg.Backend.Token),
			backend.WithTimeout(cfg.Backend.Timeout()),
			backend.WithMaxRetries(cfg.Backend.MaxRetries),
			backend.WithRateLimit(cfg.Backend.RatePerSec, cfg.Backend.Burst),
			backend.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("backend client: %w", err)
		}
		a.Client = client
		fetcher = client
	}
	a.Schemas = schema.New(fetcher,
		schema.WithLogger(logger),
		schema.WithTimeout(cfg.Backend.Timeout()),
	)

	a.Directory = directory.New(logger)
	if path := cfg.Directory.AgentsFile; path != "" {
		if watch {
			w, err := directory.NewWatcher(path, a.Directory, 0)
			if err != nil {
				return nil, err
			}
			if err := w.Watch(); err != nil {
				w.Close()
				return nil, err
			}
			a.Watcher = w
		} else {
			agents, err := directory.LoadAgents(path)
			if err != nil {
				return nil, err
			}
			a.Directory.SetAgents(agents)
		}
	} else {
		logger.Warn("no agents file configured; agent commands are unavailable")
	}

	a.Estimator = position.NewEstimator(
		position.CellSurface{EastAsianAmbiguousWide: cfg.UI.EastAsianWide},
		cfg.UI.Layout(0),
	)
	a.Engine = composer.NewEngine(composer.Options{
		Schemas:   a.Schemas,
		Directory: a.Directory,
		Estimator: a.Estimator,
		Logger:    logger,
	})
	return a, nil
}

// Close stops the agents file watcher.
func (a *App) Close() error {
	if a == nil || a.Watcher == nil {
		return nil
	}
	return a.Watcher.Close()
}

// ParticipantSource returns the backend as a participant source, or nil.
func (a *App) ParticipantSource() directory.ParticipantSource {
	if a.Client == nil {
		return nil
	}
	return a.Client
}

// LoadParticipants fills the directory with the configured conversation's
// participants. It is a no-op without a backend or conversation.
func (a *App) LoadParticipants(ctx context.Context) error {
	id := a.Config.Directory.ConversationID
	if a.Client == nil || id == "" {
		return nil
	}
	return a.Directory.LoadParticipants(ctx, a.Client, id)
}

// Commands resolves an agent's command schema.
func (a *App) Commands(ctx context.Context, agentID string) ([]model.CommandDescriptor, error) {
	if a.Client == nil {
		return nil, backend.ErrNoBaseURL
	}
	return a.Schemas.Resolve(ctx, agentID)
}

// Validate checks text as a command invocation, loading the agent's schema
// first when needed.
func (a *App) Validate(ctx context.Context, text string) commands.Report {
	v := commands.NewValidator(a.Directory.AgentIDs(), a.Schemas)
	report := v.Validate(text)
	if report.Pending == "" {
		return report
	}
	if _, err := a.Schemas.Resolve(ctx, report.Pending); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Debug("schema not loaded for validation", "agent", report.Pending, "error", err)
	}
	report = v.Validate(text)
	if report.Pending != "" {
		// Nothing can load the schema, so the command name stays unchecked.
		report.Pending, report.Fetch = "", nil
		report.Unverified = true
	}
	return report
}

// Complete is a line completer backed by the engine. Without an event loop
// a pending schema is resolved before completing.
func (a *App) Complete(line string, pos int) (head string, completions []string, tail string) {
	cursor := util.ByteOffset(line, pos)
	res := mention.Detect(mention.Input{Text: line, Cursor: cursor, Agents: a.Directory.AgentIDs()}, a.Schemas)
	if res.IsPending() {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Backend.Timeout())
		if _, err := a.Schemas.Resolve(ctx, res.Pending); err != nil {
			a.Logger.Debug("no completions for agent", "agent", res.Pending, "error", err)
		}
		cancel()
	}
	return a.Engine.Complete(line, pos)
}
