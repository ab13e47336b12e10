package cmd

import (
	"fmt"

	"rowdeck/cli/internal/auth"

	"github.com/spf13/cobra"
)

// whoamiCmd represents the whoami command for displaying current authentication state.
// It shows the stored account and validates the stored credentials against the
// auth endpoint.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays the account currently stored by login and checks
whether its credentials are still accepted by the auth endpoint.

If no valid session exists, it will indicate that the user is not logged in.
This command is useful for verifying authentication status before running
other commands that require authentication.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := auth.Load()
		if err != nil || !st.LoggedIn {
			fmt.Println("🔒 You're not logged in yet!")
			fmt.Println("   Run 'rowdeck login' to get started.")
			return nil
		}

		svc, _, err := authService()
		if err != nil {
			return err
		}
		account, ok, err := svc.WhoAmI(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("⚠️  Stored credentials are no longer accepted.")
			fmt.Println("   Run 'rowdeck login' to refresh them.")
			return nil
		}
		fmt.Printf("👤 Current account: %s\n", account)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
