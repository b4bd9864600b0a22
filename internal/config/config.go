// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/provider"
	"github.com/jeranaias/redraft/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete redraft configuration.
type Config struct {
	// DefaultTargetLanguage is the translation target when none is given.
	DefaultTargetLanguage string `toml:"default_target_language"`
	// UpdateIntervalMS throttles partial-update delivery per model.
	UpdateIntervalMS int `toml:"update_interval_ms"`
	// CatalogTTLMinutes bounds how long a fetched model catalog is cached.
	CatalogTTLMinutes int `toml:"catalog_ttl_minutes"`
	// HistoryPath locates the history database. Empty disables history.
	HistoryPath string `toml:"history_path"`
	// LogLevel is the logrus level name ("debug", "info", ...).
	LogLevel string `toml:"log_level"`

	// Providers lists the configured backends.
	Providers []ProviderEntry `toml:"providers"`
	// Actions lists the configured prompt recipes. Empty uses the
	// built-in set.
	Actions []ActionEntry `toml:"actions"`
}

// ProviderEntry is one provider backend in the config file.
type ProviderEntry struct {
	Name    string `toml:"name"`
	Kind    string `toml:"kind"`
	BaseURL string `toml:"base_url"`
	// KeyHeader overrides the static-key header name (openai kind only).
	KeyHeader string `toml:"key_header"`
	// APIKey may be set inline; the REDRAFT_<NAME>_API_KEY env var takes
	// precedence so keys can stay out of the file.
	APIKey string `toml:"api_key"`
	// SigningKey is the HMAC secret for proxy kind; env override
	// REDRAFT_<NAME>_SIGNING_KEY.
	SigningKey string `toml:"signing_key"`
}

// ActionEntry is one prompt recipe in the config file.
type ActionEntry struct {
	ID             string   `toml:"id"`
	Name           string   `toml:"name"`
	PromptTemplate string   `toml:"prompt_template"`
	Scenes         []string `toml:"scenes"`
	Output         string   `toml:"output"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with built-in values. It carries no providers;
// those must come from the file or environment.
func Default() *Config {
	return &Config{
		DefaultTargetLanguage: "en",
		UpdateIntervalMS:      66,
		CatalogTTLMinutes:     30,
		LogLevel:              "info",
	}
}

// Dir returns the redraft configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".redraft"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file at path, fills defaults, applies environment
// overrides, and validates. An empty path uses the default location; a
// missing file is not an error and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills missing values from the built-in defaults.
func (c *Config) fillDefaults() {
	d := Default()
	if c.DefaultTargetLanguage == "" {
		c.DefaultTargetLanguage = d.DefaultTargetLanguage
	}
	if c.UpdateIntervalMS <= 0 {
		c.UpdateIntervalMS = d.UpdateIntervalMS
	}
	if c.CatalogTTLMinutes <= 0 {
		c.CatalogTTLMinutes = d.CatalogTTLMinutes
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Save writes the config to path atomically with restrictive permissions;
// the file carries credentials. An empty path uses the default location.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	var buf bytes.Buffer
	buf.WriteString("# redraft configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies REDRAFT_* environment variables over the
// loaded values. Credentials resolve per provider name, e.g. a provider
// named "openai" reads REDRAFT_OPENAI_API_KEY.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("REDRAFT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("REDRAFT_TARGET_LANGUAGE"); v != "" {
		c.DefaultTargetLanguage = v
	}
	if v := os.Getenv("REDRAFT_HISTORY_PATH"); v != "" {
		c.HistoryPath = v
	}
	if v := os.Getenv("REDRAFT_UPDATE_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.UpdateIntervalMS = ms
		}
	}

	for i := range c.Providers {
		prefix := "REDRAFT_" + envName(c.Providers[i].Name)
		if v := os.Getenv(prefix + "_API_KEY"); v != "" {
			c.Providers[i].APIKey = v
		}
		if v := os.Getenv(prefix + "_SIGNING_KEY"); v != "" {
			c.Providers[i].SigningKey = v
		}
	}
}

// envName normalizes a provider name into an environment variable segment.
func envName(name string) string {
	name = strings.ToUpper(name)
	name = strings.ReplaceAll(name, "-", "_")
	return strings.ReplaceAll(name, ".", "_")
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

// Validate checks the configuration and returns every violation found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	seen := make(map[string]bool)
	for i, p := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)

		if p.Name == "" {
			errs = append(errs, ValidationError{field + ".name", "must not be empty"})
		} else if seen[p.Name] {
			errs = append(errs, ValidationError{field + ".name", fmt.Sprintf("duplicate provider %q", p.Name)})
		}
		seen[p.Name] = true

		switch provider.Kind(p.Kind) {
		case provider.KindOpenAI, provider.KindProxy:
		default:
			errs = append(errs, ValidationError{field + ".kind", fmt.Sprintf("unknown kind %q (openai or proxy)", p.Kind)})
		}

		if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{field + ".base_url", fmt.Sprintf("not a valid URL: %q", p.BaseURL)})
		}
	}

	for i, a := range c.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		if a.ID == "" {
			errs = append(errs, ValidationError{field + ".id", "must not be empty"})
		}
		if strings.TrimSpace(a.PromptTemplate) == "" {
			errs = append(errs, ValidationError{field + ".prompt_template", "must not be empty"})
		}
		if _, err := action.ParseOutputKind(a.Output); a.Output != "" && err != nil {
			errs = append(errs, ValidationError{field + ".output", err.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// ProviderConfig converts a file entry into the provider package's config.
func (p ProviderEntry) ProviderConfig() provider.Config {
	return provider.Config{
		Name:       p.Name,
		Kind:       provider.Kind(p.Kind),
		BaseURL:    p.BaseURL,
		KeyHeader:  p.KeyHeader,
		APIKey:     p.APIKey,
		SigningKey: p.SigningKey,
	}
}

// ActionConfig converts a file entry into the action package's config.
func (a ActionEntry) ActionConfig() (action.Config, error) {
	out := action.OutputPlain
	if a.Output != "" {
		k, err := action.ParseOutputKind(a.Output)
		if err != nil {
			return action.Config{}, err
		}
		out = k
	}

	scenes := make([]action.Scene, 0, len(a.Scenes))
	for _, s := range a.Scenes {
		scenes = append(scenes, action.Scene(s))
	}

	return action.Config{
		ID:             a.ID,
		Name:           a.Name,
		PromptTemplate: a.PromptTemplate,
		Scenes:         scenes,
		Output:         out,
	}, nil
}

// ActionConfigs resolves the configured actions, falling back to the
// built-in set when the file defines none.
func (c *Config) ActionConfigs() ([]action.Config, error) {
	if len(c.Actions) == 0 {
		return action.Builtin(), nil
	}
	out := make([]action.Config, 0, len(c.Actions))
	for _, a := range c.Actions {
		ac, err := a.ActionConfig()
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", a.ID, err)
		}
		out = append(out, ac)
	}
	return out, nil
}

// UpdateInterval returns the partial-update throttle as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

// CatalogTTL returns the catalog cache lifetime as a duration.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLMinutes) * time.Minute
}
