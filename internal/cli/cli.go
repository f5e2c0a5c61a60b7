// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/journal-composer/internal/config"
	"github.com/jeranaias/journal-composer/internal/logging"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================

// Build information, set via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command annotations read by the root command.
const (
	// annotationFullscreen marks commands that own the terminal, so logs
	// must not go to stderr.
	annotationFullscreen = "fullscreen"
	// annotationNoConfig marks commands that work without a valid config.
	annotationNoConfig = "no-config"
)

// =============================================================================
// ROOT COMMAND
// =============================================================================

// rootOptions holds the persistent flags and the state PersistentPreRunE
// builds from them.
type rootOptions struct {
	configPath   string
	logLevel     string
	baseURL      string
	agentsFile   string
	conversation string

	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

// NewRootCommand builds the composer command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "composer",
		Short: "Compose journal messages with @mentions and agent commands",
		Long: `composer - message composer for academic journal conversations.

Type @ to mention a participant or agent. After "@agent " the agent's
commands are offered, and after a command its parameters are hinted.

Quick Start:
  composer config init                      # write ~/.composer/config.toml
  composer --agents agents.yaml             # open the composer
  composer repl -c conv-42                  # line mode with tab completion
  composer validate '@bot-editorial status newStatus="accepted"'
  composer commands bot-editorial`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		Annotations:       map[string]string{annotationFullscreen: "true"},
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, o)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "config file (default ~/.composer/config.toml)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&o.baseURL, "base-url", "", "journal API base URL")
	flags.StringVar(&o.agentsFile, "agents", "", "agents YAML file")
	flags.StringVarP(&o.conversation, "conversation", "c", "", "conversation whose participants can be mentioned")

	root.AddCommand(
		newTUICommand(o),
		newREPLCommand(o),
		newValidateCommand(o),
		newCommandsCommand(o),
		newAgentsCommand(o),
		newConfigCommand(o),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	cmd, err := root.ExecuteC()
	if err != nil {
		if !jsonMode(cmd) {
			DisplayError(root.ErrOrStderr(), cmd.Name(), err, false)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}

// jsonMode reports whether cmd was run with --json, in which case the
// command printed its own error.
func jsonMode(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup("json")
	return f != nil && f.Value.String() == "true"
}

// =============================================================================
// CONFIG AND LOGGING
// =============================================================================

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := o.readConfig()
	if err != nil {
		if cmd.Annotations[annotationNoConfig] != "true" {
			return err
		}
		cfg = config.Default()
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.baseURL != "" {
		cfg.Backend.BaseURL = o.baseURL
	}
	if o.agentsFile != "" {
		cfg.Directory.AgentsFile = o.agentsFile
	}
	if o.conversation != "" {
		cfg.Directory.ConversationID = o.conversation
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	config.SetGlobal(cfg)

	var fallback io.Writer = cmd.ErrOrStderr()
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if cmd.Annotations[annotationFullscreen] == "true" && opts.File == "" {
		opts.File, fallback = fullscreenLogFile()
	}
	logger, closeLog, err := logging.Open(opts, fallback)
	if err != nil {
		return err
	}

	o.cfg, o.logger, o.closeLog = cfg, logger, closeLog
	logger.Debug("config loaded", "command", cmd.Name(), "base_url", cfg.Backend.BaseURL, "agents_file", cfg.Directory.AgentsFile)
	return nil
}

func (o *rootOptions) readConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromPath(o.configPath)
	}
	return config.Load()
}

// fullscreenLogFile returns the log file used while the TUI owns the
// terminal, or "" and io.Discard when there is nowhere to write.
func fullscreenLogFile() (string, io.Writer) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", io.Discard
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", io.Discard
	}
	return filepath.Join(dir, "composer.log"), io.Discard
}

func (o *rootOptions) close() error {
	if o.closeLog == nil {
		return nil
	}
	err := o.closeLog()
	o.closeLog = nil
	return err
}

// configFilePath returns the file config commands read and write.
func (o *rootOptions) configFilePath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPathTOML()
}

// app builds the runtime for a command.
func (o *rootOptions) app(watch bool) (*App, error) {
	return NewApp(o.cfg, o.logger, watch)
}
