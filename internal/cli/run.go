// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jeranaias/redraft/internal/history"
	"github.com/jeranaias/redraft/internal/model"
	"github.com/jeranaias/redraft/internal/orchestrate"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		flagAction   string
		flagModels   []string
		flagLanguage string
	)

	cmd := &cobra.Command{
		Use:   "run [text]",
		Short: "Run one request and print each model's answer",
		Long: `Runs a single request against the selected models. Text comes from
the argument or, when absent, from stdin. For revision actions the
answer is shown as a word diff against the input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args)
			if err != nil {
				return err
			}

			act, err := a.actionByID(flagAction)
			if err != nil {
				return err
			}

			targets, err := a.resolveTargets(cmd, flagModels)
			if err != nil {
				return err
			}

			lang := flagLanguage
			if lang == "" {
				lang = a.cfg.DefaultTargetLanguage
			}

			renderer := NewRenderer()
			single := len(targets) == 1

			// With a single target the stream is echoed live; with
			// several, interleaved output would be unreadable, so
			// results print whole as each model finishes.
			var mu sync.Mutex
			printed := 0

			engine := a.newEngine(
				func(modelID string, u model.StreamingUpdate) {
					if !single || u.Kind != model.UpdateText {
						return
					}
					mu.Lock()
					defer mu.Unlock()
					if len(u.Text) > printed {
						fmt.Print(u.Text[printed:])
						printed = len(u.Text)
					}
				},
				nil,
			)

			results, err := engine.Execute(cmd.Context(), orchestrate.Request{
				Text:           text,
				Action:         act,
				TargetLanguage: lang,
				Targets:        targets,
			})
			if err != nil {
				return err
			}
			if single {
				fmt.Println()
				fmt.Println()
			}

			for _, r := range results {
				fmt.Print(renderer.Result(r))
			}

			a.recordHistory(act.ID, text, results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagAction, "action", "a", "proofread", "action to run")
	cmd.Flags().StringSliceVarP(&flagModels, "models", "m", nil, "model IDs (default: catalog default)")
	cmd.Flags().StringVarP(&flagLanguage, "language", "l", "", "target language for translation actions")

	return cmd
}

// inputText takes the request text from the argument or stdin.
func inputText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no input text")
	}
	return text, nil
}

// recordHistory persists the invocation when a history path is configured.
func (a *app) recordHistory(actionID, input string, results []model.ExecutionResult) {
	if a.cfg.HistoryPath == "" || len(results) == 0 {
		return
	}
	store, err := history.Open(a.cfg.HistoryPath)
	if err != nil {
		a.log.WithError(err).Warn("history unavailable")
		return
	}
	defer store.Close()

	if err := store.Record(uuid.NewString(), actionID, input, results); err != nil {
		a.log.WithError(err).Warn("failed to record history")
	}
}
