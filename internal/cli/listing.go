// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jeranaias/redraft/internal/catalog"
	"github.com/jeranaias/redraft/internal/history"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the provider offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.defaultClient()
			if err != nil {
				return err
			}

			cat := catalog.New(client, a.cfg.CatalogTTL(), a.log)
			models, err := cat.Models(cmd.Context())
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Name", "Default", "Premium"})
			for _, m := range models {
				table.Append([]string{
					m.ID,
					m.Name(),
					boolCell(m.Default),
					boolCell(m.Premium),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newActionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the configured actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Name", "Output", "Scenes"})
			for _, ac := range a.actions {
				scenes := ""
				for i, s := range ac.Scenes {
					if i > 0 {
						scenes += ", "
					}
					scenes += string(s)
				}
				table.Append([]string{ac.ID, ac.Name, ac.Output.String(), scenes})
			}
			table.Render()
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.HistoryPath == "" {
				return fmt.Errorf("history disabled; set history_path in %s", configPathHint())
			}

			store, err := history.Open(a.cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(flagLimit)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"When", "Model", "Action", "Input", "Outcome", "Duration"})
			for _, e := range entries {
				outcome := truncate(e.Output, 40)
				if e.Error != "" {
					outcome = "error: " + truncate(e.Error, 34)
				}
				table.Append([]string{
					e.CreatedAt.Local().Format("Jan 02 15:04"),
					e.ModelID,
					e.ActionID,
					truncate(e.Input, 30),
					outcome,
					e.Duration.String(),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func boolCell(b bool) string {
	return strconv.FormatBool(b)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
