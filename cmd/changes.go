// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	changesLatest bool
	changesSince  int64
	changesLimit  int
	changesFollow bool
)

// changesCmd represents the changes command for reading a model's change log.
var changesCmd = &cobra.Command{
	Use:   "changes <model>",
	Short: "Read a model's change log",
	Long: `The changes command reads a model's change log, for example:

  rowdeck changes crm/orders --latest
  rowdeck changes crm/orders --since 1200 --limit 50
  rowdeck changes crm/orders --since 1200 --follow

--latest prints only the newest entry. --since pages forward from an
exclusive change id; with --follow the command keeps polling for new entries
until interrupted.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		model := args[0]

		client, cfg, err := dataClient()
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)

		if changesLatest {
			ch, err := client.LatestChange(ctx, model)
			if err != nil {
				return err
			}
			if ch == nil {
				fmt.Println("change log is empty")
				return nil
			}
			return encoder.Encode(ch)
		}

		pageSize := changesLimit
		if pageSize <= 0 {
			pageSize = cfg.PageSize
		}

		sinceID := changesSince
		for {
			s := client.StreamChanges(ctx, model, sinceID, pageSize)
			for s.Next() {
				ch := s.Change()
				if err := encoder.Encode(ch); err != nil {
					return err
				}
				sinceID = ch.ID
			}
			if err := s.Err(); err != nil {
				return err
			}
			if !changesFollow {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().BoolVar(&changesLatest, "latest", false, "Print only the newest change entry")
	changesCmd.Flags().Int64Var(&changesSince, "since", 0, "Page forward from this change id (exclusive)")
	changesCmd.Flags().IntVar(&changesLimit, "limit", 0, "Entries per page (default from config)")
	changesCmd.Flags().BoolVar(&changesFollow, "follow", false, "Keep polling for new entries")
}
