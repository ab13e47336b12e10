// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"rowdeck/cli/internal/output"

	"github.com/spf13/cobra"
)

var summaryOutput string

// summaryCmd represents the summary command for field value summaries.
var summaryCmd = &cobra.Command{
	Use:   "summary <model> <field>",
	Short: "Show the service-side value summary for a field",
	Long: `The summary command fetches the service-side value summary for one field of
a model, typically the distinct values and their counts, for example:

  rowdeck summary crm/orders status`,
	Args: cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := dataClient()
		if err != nil {
			return err
		}
		rows, err := client.Summary(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		formatter, err := output.New(summaryOutput, os.Stdout)
		if err != nil {
			return err
		}
		records := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			records = append(records, row)
		}
		return formatter.Format(records)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryOutput, "output", "table", "Output format: json, ndjson, csv, table")
}
