// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"rowdeck/cli/internal/auth"
	"rowdeck/cli/internal/keychain"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing authentication state.
// It removes all saved credentials and authentication state from the local
// system.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove all saved credentials",
	Long: `The logout command clears all authentication state from the local system.

This command removes:
- Client credentials from the OS keychain
- Local authentication state
- Database connection credentials`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if km, err := keychain.GetManager(); err == nil {
			_ = km.ClearAll()
		}
		_ = auth.Clear()

		fmt.Println("✅ All credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
