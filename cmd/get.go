// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

// getCmd represents the get command for fetching a single record by id.
var getCmd = &cobra.Command{
	Use:   "get <model> <id>",
	Short: "Fetch a single record by id",
	Long: `The get command fetches one record from a model by its id and prints it as
pretty JSON, for example:

  rowdeck get crm/orders o-20941`,
	Args: cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := dataClient()
		if err != nil {
			return err
		}
		rec, err := client.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
