// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/catalog"
	"github.com/jeranaias/redraft/internal/config"
	"github.com/jeranaias/redraft/internal/model"
	"github.com/jeranaias/redraft/internal/orchestrate"
	"github.com/jeranaias/redraft/internal/provider"
)

// app carries the resolved configuration and constructed collaborators
// shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *logrus.Entry
	actions []action.Config
	clients map[string]*provider.Client
}

var (
	flagConfig   string
	flagLogLevel string
)

// NewRootCmd builds the redraft command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "redraft",
		Short: "Concurrent multi-model writing assistant",
		Long: `redraft fans a writing request out to every configured model
concurrently, streams the answers as they arrive, and renders a
word-level diff between your text and each revision.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.redraft/config.toml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newReplCmd(a),
		newModelsCmd(a),
		newActionsCmd(a),
		newHistoryCmd(a),
	)

	return root
}

// setup resolves configuration and builds the provider clients.
func (a *app) setup() error {
	// A missing .env is fine; explicit files only.
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false})

	a.cfg = cfg
	a.log = logrus.WithField("component", "cli")

	a.actions, err = cfg.ActionConfigs()
	if err != nil {
		return err
	}

	a.clients = make(map[string]*provider.Client, len(cfg.Providers))
	for i := range cfg.Providers {
		entry := &cfg.Providers[i]
		if err := ensureCredential(entry); err != nil {
			return err
		}
		client, err := provider.NewClient(entry.ProviderConfig(), a.log)
		if err != nil {
			return fmt.Errorf("provider %q: %w", entry.Name, err)
		}
		a.clients[entry.Name] = client
	}

	return nil
}

// actionByID resolves a configured action.
func (a *app) actionByID(id string) (action.Config, error) {
	for _, ac := range a.actions {
		if ac.ID == id {
			return ac, nil
		}
	}
	known := make([]string, 0, len(a.actions))
	for _, ac := range a.actions {
		known = append(known, ac.ID)
	}
	return action.Config{}, fmt.Errorf("unknown action %q (have: %s)", id, strings.Join(known, ", "))
}

// defaultClient returns the first configured provider client.
func (a *app) defaultClient() (*provider.Client, error) {
	if len(a.cfg.Providers) == 0 {
		return nil, fmt.Errorf("no providers configured; add one to %s", configPathHint())
	}
	return a.clients[a.cfg.Providers[0].Name], nil
}

// resolveTargets maps the requested model IDs onto the default provider,
// consulting the catalog when none are named.
func (a *app) resolveTargets(cmd *cobra.Command, modelIDs []string) ([]orchestrate.Target, error) {
	client, err := a.defaultClient()
	if err != nil {
		return nil, err
	}

	if len(modelIDs) == 0 {
		cat := catalog.New(client, a.cfg.CatalogTTL(), a.log)
		models, err := cat.Models(cmd.Context())
		if err != nil {
			return nil, err
		}
		def, ok := catalog.Default(models)
		if !ok {
			return nil, fmt.Errorf("catalog returned no models")
		}
		return []orchestrate.Target{{Model: def, Client: client}}, nil
	}

	targets := make([]orchestrate.Target, 0, len(modelIDs))
	for _, id := range modelIDs {
		targets = append(targets, orchestrate.Target{
			Model:  model.ModelConfig{ID: id},
			Client: client,
		})
	}
	return targets, nil
}

// newEngine builds the orchestrator with the app's throttle interval.
func (a *app) newEngine(onUpdate orchestrate.UpdateFunc, onResult orchestrate.ResultFunc) *orchestrate.Engine {
	return orchestrate.New(orchestrate.Options{
		UpdateInterval: a.cfg.UpdateInterval(),
		Logger:         logrus.WithField("component", "engine"),
		OnUpdate:       onUpdate,
		OnResult:       onResult,
	})
}

func configPathHint() string {
	if flagConfig != "" {
		return flagConfig
	}
	if p, err := config.Path(); err == nil {
		return p
	}
	return "~/.redraft/config.toml"
}
