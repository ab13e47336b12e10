// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"rowdeck/cli/internal/decl"
	"rowdeck/cli/internal/output"
	"rowdeck/cli/internal/schema"

	"github.com/spf13/cobra"
)

var (
	schemaSample int
	schemaDecl   string
	schemaOutput string
)

// schemaCmd represents the schema command for type inference.
// It samples records from a model and prints the inferred field types.
var schemaCmd = &cobra.Command{
	Use:   "schema <model>",
	Short: "Infer the field types of a model",
	Long: `The schema command samples records from a model and infers one type per
field by merging the types observed across the sample, for example:

  rowdeck schema crm/orders
  rowdeck schema crm/orders --sample 200 --decl orders.rd

The result is a heuristic: fields with conflicting observations fall back to
a lossless textual type. --decl additionally writes a declaration file that
can be reviewed and edited by hand.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := dataClient()
		if err != nil {
			return err
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Sampling records", spinnerFrames, 120*time.Millisecond)
		s, err := schema.Infer(cmd.Context(), client, args[0], schemaSample)
		stopSpinner()
		if err != nil {
			return err
		}

		if schemaDecl != "" {
			f, err := os.Create(schemaDecl)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := decl.Render(f, s); err != nil {
				return err
			}
			fmt.Printf("Declaration written to %s\n", schemaDecl)
		}

		formatter, err := output.New(schemaOutput, os.Stdout)
		if err != nil {
			return err
		}
		rows := make([]map[string]any, 0, len(s.Fields))
		for _, field := range s.Fields {
			observed := make([]string, len(field.Observed))
			for i, tag := range field.Observed {
				observed[i] = string(tag)
			}
			rows = append(rows, map[string]any{
				"field":    field.Name,
				"type":     string(field.Type),
				"observed": strings.Join(observed, ","),
			})
		}
		return formatter.Format(rows)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().IntVar(&schemaSample, "sample", 0, "Records to sample (default 50)")
	schemaCmd.Flags().StringVar(&schemaDecl, "decl", "", "Write a model declaration file to this path")
	schemaCmd.Flags().StringVar(&schemaOutput, "output", "table", "Output format: json, ndjson, csv, table")
}
