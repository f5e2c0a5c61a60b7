// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/journal-composer/internal/backend"
	"github.com/jeranaias/journal-composer/internal/commands"
	"github.com/jeranaias/journal-composer/internal/config"
	"github.com/jeranaias/journal-composer/internal/logging"
)

// =============================================================================
// FIXTURES
// =============================================================================

const agentsYAML = `agents:
  - id: bot-editorial
    name: Editorial Bot
    description: Editorial workflow
  - id: bot-broken
    name: Broken Bot
`

const editorialBot = `{
  "id": "bot-editorial",
  "commands": [
    {
      "name": "status",
      "description": "Change the manuscript status",
      "parameters": [
        {"name": "newStatus", "type": "enum", "required": true, "enumValues": ["accepted", "rejected"]}
      ]
    },
    {"name": "help", "description": "List commands"}
  ]
}`

const conversation = `{
  "id": "conv-1",
  "participants": [
    {"user": {"id": "john-doe", "name": "John Doe", "email": "john@example.org", "role": "reviewer"}}
  ]
}`

// newBackend serves the journal API endpoints the CLI reads.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bots/bot-editorial", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, editorialBot)
	})
	mux.HandleFunc("/bots/bot-broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/conversations/conv-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, conversation)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setup isolates HOME and writes an agents file and a config file that
// point at a test backend. It returns the flags every command needs.
func setup(t *testing.T) (srv *httptest.Server, flags []string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"COMPOSER_BASE_URL", "COMPOSER_TOKEN", "COMPOSER_AGENTS_FILE", "COMPOSER_CONVERSATION", "COMPOSER_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	config.ResetGlobalForTesting()

	srv = newBackend(t)

	agents := filepath.Join(home, "agents.yaml")
	require.NoError(t, os.WriteFile(agents, []byte(agentsYAML), 0600))

	cfgPath := filepath.Join(home, "composer.toml")
	cfg := fmt.Sprintf("[backend]\nbase_url = %q\nmax_retries = 0\n\n[log]\nlevel = \"error\"\n", srv.URL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))

	return srv, []string{"--config", cfgPath, "--agents", agents}
}

// runCLI executes the command tree with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

type jsonEnvelope[T any] struct {
	Success bool    `json:"success"`
	Data    T       `json:"data"`
	Error   *string `json:"error"`
	Command string  `json:"command"`
}

func decode[T any](t *testing.T, out string) jsonEnvelope[T] {
	t.Helper()
	var env jsonEnvelope[T]
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

// =============================================================================
// VALIDATE
// =============================================================================

func TestValidate_ValidInvocationJSON(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "validate", "--json", "@bot-editorial", "status", `newStatus="accepted"`)...)
	require.NoError(t, err)

	env := decode[ValidateData](t, out)
	assert.True(t, env.Success)
	assert.True(t, env.Data.Valid)
	assert.True(t, env.Data.Verified)
	assert.Equal(t, "status", env.Data.Command)
	assert.Equal(t, map[string]string{"newStatus": "accepted"}, env.Data.Params)
	assert.Empty(t, env.Data.Warnings)
	assert.Equal(t, `@bot-editorial status newStatus="accepted"`, env.Data.Normalized)
}

func TestValidate_UnknownCommand(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "validate", "@bot-editorial", "nope")...)

	require.Error(t, err)
	assert.True(t, errors.Is(err, commands.ErrUnknownCommand))
	assert.Equal(t, ExitInvalidCommand, GetExitCode(err))
	assert.Contains(t, out, "unknown command")
}

func TestValidate_ErrorKinds(t *testing.T) {
	_, flags := setup(t)

	tests := []struct {
		input string
		kind  string
	}{
		{"status", "missing_prefix"},
		{"@bot-editorial", "incomplete_command"},
		{"@nobody status", "unknown_agent"},
		{"@bot-editorial publish", "unknown_command"},
	}
	for _, tt := range tests {
		out, err := runCLI(t, append(flags, "validate", "--json", tt.input)...)
		if err == nil {
			t.Errorf("validate %q: expected an error", tt.input)
			continue
		}
		env := decode[ValidateData](t, out)
		if env.Success || env.Data.Valid {
			t.Errorf("validate %q: reported success", tt.input)
		}
		if env.Data.ErrorKind != tt.kind {
			t.Errorf("validate %q: kind = %q, want %q", tt.input, env.Data.ErrorKind, tt.kind)
		}
	}
}

func TestValidate_MissingParameterIsWarning(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "validate", "--json", "@bot-editorial", "status")...)
	require.NoError(t, err)

	env := decode[ValidateData](t, out)
	assert.True(t, env.Data.Valid)
	assert.NotEmpty(t, env.Data.Warnings)
	assert.Contains(t, env.Data.Usage, "newStatus")
}

func TestValidate_SchemaUnavailableIsUnverified(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "validate", "--json", "@bot-broken", "anything")...)
	require.NoError(t, err)

	env := decode[ValidateData](t, out)
	assert.True(t, env.Data.Valid)
	assert.False(t, env.Data.Verified)
}

// =============================================================================
// COMMANDS AND AGENTS
// =============================================================================

func TestCommands_JSON(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "commands", "--json", "@bot-editorial")...)
	require.NoError(t, err)

	env := decode[CommandsData](t, out)
	assert.True(t, env.Success)
	assert.Equal(t, "bot-editorial", env.Data.AgentID)
	require.Len(t, env.Data.Commands, 2)
	assert.Equal(t, "status", env.Data.Commands[0].Name)
}

func TestCommands_Markdown(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "commands", "bot-editorial")...)
	require.NoError(t, err)

	assert.Contains(t, out, "# @bot-editorial")
	assert.Contains(t, out, "## status")
	assert.Contains(t, out, `@bot-editorial status newStatus="accepted|rejected"`)
	assert.Contains(t, out, "| `newStatus` | enum: accepted, rejected | yes |")
}

func TestCommands_NotFound(t *testing.T) {
	_, flags := setup(t)
	_, err := runCLI(t, append(flags, "commands", "bot-missing")...)

	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotFound))
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestAgents_JSONWithParticipants(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "agents", "--json", "-c", "conv-1")...)
	require.NoError(t, err)

	env := decode[AgentsData](t, out)
	require.Len(t, env.Data.Agents, 2)
	assert.Equal(t, "bot-editorial", env.Data.Agents[0].ID)
	require.Len(t, env.Data.Participants, 1)
	assert.Equal(t, "john-doe", env.Data.Participants[0].User.ID)
}

func TestAgents_YAML(t *testing.T) {
	_, flags := setup(t)
	out, err := runCLI(t, append(flags, "agents", "--yaml")...)
	require.NoError(t, err)

	assert.Contains(t, out, "id: bot-editorial")
	assert.Contains(t, out, "name: Editorial Bot")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_InitGetSet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	config.ResetGlobalForTesting()

	out, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	want := filepath.Join(home, ".composer", "config.toml")
	assert.Equal(t, want+"\n", out)

	_, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = runCLI(t, "config", "init")
	assert.Error(t, err, "init must not overwrite without --force")

	out, err = runCLI(t, "config", "get", "ui.popup_width")
	require.NoError(t, err)
	assert.Equal(t, "40\n", out)

	_, err = runCLI(t, "config", "set", "ui.popup_width", "50")
	require.NoError(t, err)
	out, err = runCLI(t, "config", "get", "ui.popup_width")
	require.NoError(t, err)
	assert.Equal(t, "50\n", out)

	_, err = runCLI(t, "config", "set", "ui.popup_width", "5")
	assert.Error(t, err)

	_, err = runCLI(t, "config", "get", "ui.nope")
	var usage *UsageError
	assert.True(t, errors.As(err, &usage))
}

func TestConfig_ShowRedactsToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("COMPOSER_TOKEN", "secret-token")
	config.ResetGlobalForTesting()

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")

	out, err = runCLI(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "[REDACTED]")
}

func TestVersion_JSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := runCLI(t, "version", "--json")
	require.NoError(t, err)

	env := decode[VersionData](t, out)
	assert.Equal(t, Version, env.Data.Version)
	assert.NotEmpty(t, env.Data.GoVersion)
}

// =============================================================================
// REPL
// =============================================================================

// scriptedInput replays lines, then reports EOF.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) ReadInput(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	srv := newBackend(t)
	agents := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(agents, []byte(agentsYAML), 0600))

	cfg := config.Default()
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.MaxRetries = 0
	cfg.Directory.AgentsFile = agents
	cfg.Directory.ConversationID = "conv-1"

	app, err := NewApp(cfg, logging.Discard(), false)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestREPL_ValidatesAgentLines(t *testing.T) {
	app := newTestApp(t)
	in := &scriptedInput{lines: []string{
		"hello reviewers",
		"@bot-editorial nope",
		"@bot-editorial help",
		"",
		"/agents",
	}}

	var out bytes.Buffer
	require.NoError(t, runREPL(context.Background(), &out, app, in))

	s := out.String()
	assert.Equal(t, 2, strings.Count(s, "[sent]"))
	assert.Contains(t, s, "hello reviewers")
	assert.Contains(t, s, "unknown command")
	assert.Contains(t, s, "@bot-editorial help")
	assert.Contains(t, s, "Editorial Bot")
	assert.Contains(t, s, "2 messages composed")
}

func TestREPL_QuitCommand(t *testing.T) {
	app := newTestApp(t)
	in := &scriptedInput{lines: []string{"/quit", "never read"}}

	var out bytes.Buffer
	require.NoError(t, runREPL(context.Background(), &out, app, in))
	assert.Len(t, in.lines, 1)
}

func TestApp_Complete(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.LoadParticipants(context.Background()))

	tests := []struct {
		line      string
		wantHead  string
		wantComps []string
	}{
		{"hi @jo", "hi ", []string{"@john-doe "}},
		{"@bot-ed", "", []string{"@bot-editorial "}},
		// The schema is fetched on demand.
		{"@bot-editorial sta", "@bot-editorial ", []string{"status "}},
		{"plain text", "plain text", nil},
	}
	for _, tt := range tests {
		head, comps, tail := app.Complete(tt.line, len([]rune(tt.line)))
		assert.Equal(t, tt.wantHead, head, tt.line)
		assert.Equal(t, tt.wantComps, comps, tt.line)
		assert.Empty(t, tail, tt.line)
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Reason: "bad"}, ExitUsageError},
		{"validation", &commands.ValidationError{Kind: commands.ErrUnknownAgent}, ExitInvalidCommand},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.popup_width"}}), ExitConfigError},
		{"no backend", backend.ErrNoBaseURL, ExitConfigError},
		{"unauthorized", fmt.Errorf("get bot: %w", backend.ErrUnauthorized), ExitAuthError},
		{"not found", backend.ErrNotFound, ExitNotFoundError},
		{"timeout", context.DeadlineExceeded, ExitTimeoutError},
		{"api", &backend.APIError{Status: 502}, ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		if got := GetExitCode(tt.err); got != tt.want {
			t.Errorf("GetExitCode(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
