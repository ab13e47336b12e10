// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"rowdeck/cli/internal/filter"
	"rowdeck/cli/internal/output"
	"rowdeck/cli/internal/query"
	"rowdeck/cli/internal/remote"

	"github.com/spf13/cobra"
)

var (
	querySelect  []string
	queryFilter  string
	querySort    []string
	queryLimit   int
	queryCount   bool
	queryAll     bool
	queryOutput  string
	queryNoRetry bool
)

// queryCmd represents the query command for fetching records from a model.
// It compiles the select/filter/sort/limit flags into a wire query, runs it
// against the service, and renders the result in the requested format.
var queryCmd = &cobra.Command{
	Use:   "query <model>",
	Short: "Fetch records from a model",
	Long: `The query command fetches records from a model hosted on the Rowdeck data
service. Filters use the same syntax the service accepts, for example:

  rowdeck query crm/orders --filter 'status="open"&total>100'
  rowdeck query crm/orders --select id,total --sort -created --limit 20
  rowdeck query crm/orders --filter 'tags.contains("priority")' --count

By default one page is fetched; --all streams every page, following
continuation cursors and retrying rate-limited page fetches.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		model := args[0]

		q, err := compileQuery()
		if err != nil {
			return err
		}

		svc, cfg, err := authService()
		if err != nil {
			return err
		}
		tokens, err := svc.TokenSource()
		if err != nil {
			return err
		}
		policy := remote.RetryPolicy{PageSize: cfg.PageSize, NoRetry: queryNoRetry}
		client := remote.New(cfg.BaseURL, tokens, policy)

		if queryCount {
			n, err := client.Count(ctx, model, q)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		}

		formatter, err := output.New(queryOutput, os.Stdout)
		if err != nil {
			return err
		}

		var records []map[string]any
		if queryAll {
			s := client.Stream(ctx, model, q)
			for s.Next() {
				records = append(records, s.Record())
			}
			if err := s.Err(); err != nil {
				// Render what arrived before surfacing the partial failure.
				if len(records) > 0 {
					_ = formatter.Format(records)
				}
				return err
			}
		} else {
			page, err := client.GetAll(ctx, model, q)
			if err != nil {
				return err
			}
			for _, rec := range page {
				records = append(records, rec)
			}
		}
		return formatter.Format(records)
	},
}

// compileQuery turns the query flags into a builder.
func compileQuery() (*query.Builder, error) {
	q := query.New()
	if len(querySelect) > 0 {
		q = q.Select(querySelect...)
	}
	if queryFilter != "" {
		expr, err := filter.Parse(queryFilter)
		if err != nil {
			return nil, err
		}
		q = q.Where(expr)
	}
	for _, s := range querySort {
		if field := strings.TrimPrefix(s, "-"); field != s {
			q = q.SortDesc(field)
		} else {
			q = q.Sort(field)
		}
	}
	if queryLimit > 0 {
		q = q.Limit(queryLimit)
	}
	return q, nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringSliceVar(&querySelect, "select", nil, "Fields to project, comma separated")
	queryCmd.Flags().StringVar(&queryFilter, "filter", "", "Filter expression")
	queryCmd.Flags().StringSliceVar(&querySort, "sort", nil, "Sort fields; prefix with - for descending")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum records per page")
	queryCmd.Flags().BoolVar(&queryCount, "count", false, "Print the matching record count instead of records")
	queryCmd.Flags().BoolVar(&queryAll, "all", false, "Stream every page of the listing")
	queryCmd.Flags().StringVar(&queryOutput, "output", "json", "Output format: json, ndjson, csv, table")
	queryCmd.Flags().BoolVar(&queryNoRetry, "no-retry", false, "Fail immediately on rate limiting instead of backing off")
}
