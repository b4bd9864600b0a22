// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/provider"
)

const sampleTOML = `
default_target_language = "fr"
update_interval_ms = 100
log_level = "debug"

[[providers]]
name = "openai"
kind = "openai"
base_url = "https://api.openai.com/v1"
api_key = "sk-from-file"

[[providers]]
name = "relay"
kind = "proxy"
base_url = "https://relay.example.com"
signing_key = "shh"

[[actions]]
id = "shout"
name = "Shout"
prompt_template = "Rewrite in all caps: {text}"
output = "plain"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultTargetLanguage != "fr" {
		t.Errorf("DefaultTargetLanguage = %q, want fr", cfg.DefaultTargetLanguage)
	}
	if cfg.UpdateInterval() != 100*time.Millisecond {
		t.Errorf("UpdateInterval() = %v, want 100ms", cfg.UpdateInterval())
	}
	if len(cfg.Providers) != 2 {
		t.Fatalf("provider count = %d, want 2", len(cfg.Providers))
	}

	pc := cfg.Providers[1].ProviderConfig()
	if pc.Kind != provider.KindProxy || pc.SigningKey != "shh" {
		t.Errorf("ProviderConfig() = %+v", pc)
	}

	// Unset fields fall back to defaults.
	if cfg.CatalogTTLMinutes != Default().CatalogTTLMinutes {
		t.Errorf("CatalogTTLMinutes = %d, want default", cfg.CatalogTTLMinutes)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
	if len(cfg.Providers) != 0 {
		t.Errorf("Providers = %+v, want none", cfg.Providers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDRAFT_LOG_LEVEL", "warn")
	t.Setenv("REDRAFT_OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, env override must win", cfg.LogLevel)
	}
	if cfg.Providers[0].APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, env override must win", cfg.Providers[0].APIKey)
	}
	// Other providers are untouched.
	if cfg.Providers[1].SigningKey != "shh" {
		t.Errorf("SigningKey = %q, want file value", cfg.Providers[1].SigningKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{
			name:  "unknown kind",
			mod:   func(c *Config) { c.Providers[0].Kind = "smoke-signal" },
			field: "providers[0].kind",
		},
		{
			name:  "bad url",
			mod:   func(c *Config) { c.Providers[0].BaseURL = "not a url" },
			field: "providers[0].base_url",
		},
		{
			name:  "duplicate name",
			mod:   func(c *Config) { c.Providers[1].Name = c.Providers[0].Name },
			field: "providers[1].name",
		},
		{
			name:  "empty template",
			mod:   func(c *Config) { c.Actions[0].PromptTemplate = "  " },
			field: "actions[0].prompt_template",
		},
		{
			name:  "bad output kind",
			mod:   func(c *Config) { c.Actions[0].Output = "interpretive-dance" },
			field: "actions[0].output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, sampleTOML))
			if err != nil {
				t.Fatal(err)
			}
			tt.mod(cfg)

			err = cfg.Validate()
			var errs ValidateErrors
			if !errors.As(err, &errs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %s in %v", tt.field, errs)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultTargetLanguage = "de"
	cfg.Providers = []ProviderEntry{
		{Name: "openai", Kind: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "k"},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save error = %v", err)
	}
	if loaded.DefaultTargetLanguage != "de" {
		t.Errorf("round-trip DefaultTargetLanguage = %q", loaded.DefaultTargetLanguage)
	}
	if len(loaded.Providers) != 1 || loaded.Providers[0].Name != "openai" {
		t.Errorf("round-trip Providers = %+v", loaded.Providers)
	}
}

func TestActionConfigs(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatal(err)
	}

	actions, err := cfg.ActionConfigs()
	if err != nil {
		t.Fatalf("ActionConfigs() error = %v", err)
	}
	if len(actions) != 1 || actions[0].ID != "shout" || actions[0].Output != action.OutputPlain {
		t.Errorf("actions = %+v", actions)
	}

	// No configured actions falls back to the built-in set.
	empty := Default()
	builtin, err := empty.ActionConfigs()
	if err != nil {
		t.Fatal(err)
	}
	if len(builtin) == 0 {
		t.Error("expected built-in actions when none are configured")
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, sampleTOML)

	reloaded := make(chan *Config, 1)
	w, err := Watch(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	updated := sampleTOML + "\nhistory_path = \"/tmp/h.db\"\n"
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.HistoryPath != "/tmp/h.db" {
			t.Errorf("reloaded HistoryPath = %q", cfg.HistoryPath)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}
}
