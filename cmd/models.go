// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"time"

	"rowdeck/cli/internal/output"
	"rowdeck/cli/internal/remote"

	"github.com/spf13/cobra"
)

var (
	modelsConcurrency int
	modelsInterval    int
	modelsOutput      string
)

// modelsCmd represents the models command for namespace discovery.
// It recursively expands a namespace into the flat list of models beneath it.
var modelsCmd = &cobra.Command{
	Use:   "models <namespace>",
	Short: "List the models under a namespace",
	Long: `The models command walks a namespace tree and lists every model found
beneath it, for example:

  rowdeck models crm
  rowdeck models crm --concurrency 4 --interval 100

Sibling namespaces are fetched in bounded concurrent batches, and requests are
spaced by a minimum interval to stay under the service's rate limits.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := dataClient()
		if err != nil {
			return err
		}

		opts := remote.DiscoverOptions{
			Concurrency: cfg.Concurrency,
			MinInterval: time.Duration(cfg.MinRequestInterval) * time.Millisecond,
		}
		if modelsConcurrency > 0 {
			opts.Concurrency = modelsConcurrency
		}
		if modelsInterval > 0 {
			opts.MinInterval = time.Duration(modelsInterval) * time.Millisecond
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Discovering models", spinnerFrames, 120*time.Millisecond)
		models, err := client.DiscoverModels(cmd.Context(), args[0], opts)
		stopSpinner()
		if err != nil {
			return err
		}

		formatter, err := output.New(modelsOutput, os.Stdout)
		if err != nil {
			return err
		}
		rows := make([]map[string]any, 0, len(models))
		for _, m := range models {
			rows = append(rows, map[string]any{
				"path":      m.Path,
				"title":     m.Title,
				"namespace": m.Namespace,
			})
		}
		return formatter.Format(rows)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().IntVar(&modelsConcurrency, "concurrency", 0, "Maximum sibling requests in flight (default from config)")
	modelsCmd.Flags().IntVar(&modelsInterval, "interval", 0, "Minimum milliseconds between request starts (default from config)")
	modelsCmd.Flags().StringVar(&modelsOutput, "output", "table", "Output format: json, ndjson, csv, table")
}
