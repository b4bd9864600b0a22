// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/config"
	"github.com/jeranaias/redraft/internal/model"
	"github.com/jeranaias/redraft/internal/orchestrate"
)

func newReplCmd(a *app) *cobra.Command {
	var (
		flagAction   string
		flagModels   []string
		flagLanguage string
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive loop; each new line supersedes the running request",
		Long: `Starts an interactive prompt. Submitting a line dispatches it to the
selected models; submitting another before the answers arrive cancels
the in-flight request and starts over. Ctrl-C aborts the current
request, Ctrl-D exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			engine := a.newEngine(nil, func(r model.ExecutionResult) {
				fmt.Println()
				fmt.Print(renderer.Result(r))
			})

			// Hot-reload the action definition so prompt edits take
			// effect on the next submitted line.
			var actMu sync.Mutex
			current := act
			if watcher, werr := config.Watch(configPathHint(), func(fresh *config.Config) {
				acts, aerr := fresh.ActionConfigs()
				if aerr != nil {
					return
				}
				for _, ac := range acts {
					if ac.ID == act.ID {
						actMu.Lock()
						current = ac
						actMu.Unlock()
						return
					}
				}
			}, a.log); werr == nil {
				defer watcher.Close()
			}

			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			defer line.Close()

			histFile := replHistoryPath()
			if histFile != "" {
				if f, err := os.Open(histFile); err == nil {
					line.ReadHistory(f)
					f.Close()
				}
				defer saveReplHistory(line, histFile)
			}

			fmt.Printf("action: %s (Ctrl-C aborts the request, Ctrl-D exits)\n", act.ID)

			for {
				input, err := line.Prompt("> ")
				if err == liner.ErrPromptAborted {
					engine.Cancel()
					continue
				}
				if err != nil {
					// io.EOF on Ctrl-D.
					engine.Cancel()
					return nil
				}
				if strings.TrimSpace(input) == "" {
					continue
				}
				line.AppendHistory(input)

				actMu.Lock()
				dispatchAct := current
				actMu.Unlock()

				// Dispatch without waiting so the next prompt can
				// supersede this request.
				go func(text string, act action.Config) {
					results, err := engine.Execute(cmd.Context(), orchestrate.Request{
						Text:           text,
						Action:         act,
						TargetLanguage: lang,
						Targets:        targets,
					})
					if err == nil {
						a.recordHistory(act.ID, text, results)
					}
				}(input, dispatchAct)
			}
		},
	}

	cmd.Flags().StringVarP(&flagAction, "action", "a", "proofread", "action to run")
	cmd.Flags().StringSliceVarP(&flagModels, "models", "m", nil, "model IDs (default: catalog default)")
	cmd.Flags().StringVarP(&flagLanguage, "language", "l", "", "target language for translation actions")

	return cmd
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".redraft", "repl_history")
}

func saveReplHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
