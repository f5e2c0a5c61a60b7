// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// composer.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - BackendConfig: platform API location, token and client limits
//   - DirectoryConfig: agents file and conversation to load participants from
//   - UIConfig: popup and text layout used to place suggestions
//   - LogConfig: log level and format
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (COMPOSER_*)
//   - --config path, or ~/.composer/config.toml
//   - ~/.composer/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client, err := backend.New(cfg.Backend.BaseURL, backend.WithToken(cfg.Backend.Token))
package config
