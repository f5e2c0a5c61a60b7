// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// composer.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/journal-composer/internal/position"
	"github.com/jeranaias/journal-composer/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete composer configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend is the journal platform API.
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Directory says where agents and participants come from.
	Directory DirectoryConfig `toml:"directory" json:"directory"`

	// UI configures the reference terminal composer.
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configures diagnostic logging.
	Log LogConfig `toml:"log" json:"log"`
}

// BackendConfig contains the platform API settings.
type BackendConfig struct {
	// BaseURL is the API root, e.g. https://journal.example.org/api
	BaseURL string `toml:"base_url" json:"base_url"`
	// Token is the bearer token. Prefer COMPOSER_TOKEN over storing it.
	Token string `toml:"token" json:"token"`
	// TimeoutSecs bounds a single request attempt.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is how often 5xx and 429 responses are retried.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RatePerSec limits outgoing requests; 0 disables limiting.
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	// Burst is the rate limiter burst size.
	Burst int `toml:"burst" json:"burst"`
}

// Timeout returns TimeoutSecs as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// DirectoryConfig contains the mention directory settings.
type DirectoryConfig struct {
	// AgentsFile is a YAML file listing the agents.
	AgentsFile string `toml:"agents_file" json:"agents_file"`
	// ConversationID selects whose participants can be mentioned.
	ConversationID string `toml:"conversation_id" json:"conversation_id"`
	// Watch reloads AgentsFile when it changes.
	Watch bool `toml:"watch" json:"watch"`
}

// UIConfig contains the composer layout settings.
type UIConfig struct {
	// PopupWidth is the suggestion popup width in cells.
	PopupWidth int `toml:"popup_width" json:"popup_width"`
	// MaxVisible is the number of popup rows shown at once.
	MaxVisible int `toml:"max_visible" json:"max_visible"`
	// LineHeight is the height of one text row.
	LineHeight float64 `toml:"line_height" json:"line_height"`
	// PaddingTop and PaddingLeft offset the text inside the input.
	PaddingTop  float64 `toml:"padding_top" json:"padding_top"`
	PaddingLeft float64 `toml:"padding_left" json:"padding_left"`
	// ContentWidth is the wrap width of the input; 0 disables soft wrap.
	ContentWidth float64 `toml:"content_width" json:"content_width"`
	// Font is the font family handed to the measuring surface.
	Font string `toml:"font" json:"font"`
	// FontSize is the font size handed to the measuring surface.
	FontSize float64 `toml:"font_size" json:"font_size"`
	// EastAsianWide measures ambiguous-width characters as two cells.
	EastAsianWide bool `toml:"east_asian_wide" json:"east_asian_wide"`
}

// Layout converts the UI settings into a position estimator layout.
func (u UIConfig) Layout(viewportWidth float64) position.Layout {
	return position.Layout{
		Font:          position.Font{Family: u.Font, Size: u.FontSize},
		LineHeight:    u.LineHeight,
		PaddingTop:    u.PaddingTop,
		PaddingLeft:   u.PaddingLeft,
		ContentWidth:  u.ContentWidth,
		PopupWidth:    float64(u.PopupWidth),
		ViewportWidth: viewportWidth,
	}
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// Format is text or json.
	Format string `toml:"format" json:"format"`
	// File receives the log; empty means stderr.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version: "1",

		Backend: BackendConfig{
			BaseURL:     "http://localhost:8080/api",
			TimeoutSecs: 15,
			MaxRetries:  3,
			RatePerSec:  10,
			Burst:       5,
		},

		Directory: DirectoryConfig{
			AgentsFile: "",
			Watch:      true,
		},

		UI: UIConfig{
			PopupWidth:   40,
			MaxVisible:   6,
			LineHeight:   1,
			PaddingTop:   0,
			PaddingLeft:  0,
			ContentWidth: 0,
			Font:         "monospace",
			FontSize:     1,
		},

		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the composer configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".composer"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens config files to 0600 since they may
// hold a token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default locations. Tries TOML first,
// then JSON, and falls back to defaults. Environment overrides are applied
// last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation. Files ending in .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills zero values that have no meaning as zero.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Backend.Burst == 0 {
		c.Backend.Burst = defaults.Backend.Burst
	}
	if c.UI.PopupWidth == 0 {
		c.UI.PopupWidth = defaults.UI.PopupWidth
	}
	if c.UI.MaxVisible == 0 {
		c.UI.MaxVisible = defaults.UI.MaxVisible
	}
	if c.UI.LineHeight == 0 {
		c.UI.LineHeight = defaults.UI.LineHeight
	}
	if c.UI.FontSize == 0 {
		c.UI.FontSize = defaults.UI.FontSize
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# journal composer configuration\n")
	buf.WriteString("# Environment variables COMPOSER_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors when
// anything is wrong.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("invalid URL '%s', must be an http or https URL", c.Backend.BaseURL),
			})
		}
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.Backend.MaxRetries),
		})
	}
	if c.Backend.RatePerSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_per_sec",
			Message: "must not be negative",
		})
	}
	if c.Backend.Burst < 1 {
		errs = append(errs, ValidationError{
			Field:   "backend.burst",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Backend.Burst),
		})
	}

	// UI
	if c.UI.PopupWidth < 10 || c.UI.PopupWidth > 200 {
		errs = append(errs, ValidationError{
			Field:   "ui.popup_width",
			Message: fmt.Sprintf("must be between 10 and 200, got %d", c.UI.PopupWidth),
		})
	}
	if c.UI.MaxVisible < 1 || c.UI.MaxVisible > 50 {
		errs = append(errs, ValidationError{
			Field:   "ui.max_visible",
			Message: fmt.Sprintf("must be between 1 and 50, got %d", c.UI.MaxVisible),
		})
	}
	if c.UI.LineHeight <= 0 {
		errs = append(errs, ValidationError{Field: "ui.line_height", Message: "must be positive"})
	}
	if c.UI.ContentWidth < 0 || c.UI.PaddingTop < 0 || c.UI.PaddingLeft < 0 {
		errs = append(errs, ValidationError{Field: "ui", Message: "padding and content_width must not be negative"})
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
//   - COMPOSER_BASE_URL: overrides backend.base_url
//   - COMPOSER_TOKEN: overrides backend.token
//   - COMPOSER_AGENTS_FILE: overrides directory.agents_file
//   - COMPOSER_CONVERSATION: overrides directory.conversation_id
//   - COMPOSER_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("COMPOSER_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("COMPOSER_TOKEN"); v != "" {
		c.Backend.Token = v
	}
	if v := os.Getenv("COMPOSER_AGENTS_FILE"); v != "" {
		c.Directory.AgentsFile = v
	}
	if v := os.Getenv("COMPOSER_CONVERSATION"); v != "" {
		c.Directory.ConversationID = v
	}
	if v := os.Getenv("COMPOSER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g.
// "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookupField(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookupField(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookupField walks the struct along a dotted key.
func (c *Config) lookupField(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		section := f.Tag.Get("toml")
		if f.Type.Kind() != reflect.Struct {
			keys = append(keys, section)
			continue
		}
		for j := 0; j < f.Type.NumField(); j++ {
			keys = append(keys, section+"."+f.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON with the token
// redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Backend.Token != "" {
		safe.Backend.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
