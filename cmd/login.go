// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"rowdeck/cli/internal/logging"
	"rowdeck/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var (
	loginClientID     string
	loginClientSecret string
	verboseLogin      bool
)

// loginCmd represents the login command for service authentication.
// It accepts or prompts for a client id and secret, verifies them against the
// auth endpoint by performing a client-credentials exchange, and stores them
// securely in the OS keychain.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Store and verify service client credentials",
	Long: `The login command stores the client credentials used to authenticate against
the Rowdeck data service. Credentials can be passed with --client-id and
--client-secret or entered interactively; the secret prompt is cleared from
the terminal after input.

The credentials are verified by performing a token exchange before they are
saved to the OS keychain. If already logged in with working credentials, the
flow is skipped.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if verboseLogin {
			os.Setenv("ROWDECK_VERBOSE", "1")
		}
		ctx := cmd.Context()

		svc, _, err := authService()
		if err != nil {
			return err
		}

		// If already logged in with working credentials, short-circuit
		if account, ok, _ := svc.WhoAmI(ctx); ok {
			fmt.Printf("Already logged in as %s\n", account)
			return nil
		}

		clientID := strings.TrimSpace(loginClientID)
		clientSecret := strings.TrimSpace(loginClientSecret)
		reader := bufio.NewReader(os.Stdin)

		if clientID == "" {
			fmt.Print("Client ID: ")
			line, _ := reader.ReadString('\n')
			clientID = strings.TrimSpace(line)
		}
		if clientID == "" {
			return errors.New("client id is required")
		}

		if clientSecret == "" {
			promptText := "Client secret: "
			fmt.Print(promptText)
			line, _ := reader.ReadString('\n')
			clientSecret = strings.TrimSpace(line)
			// Clear the prompt and secret from the terminal
			terminal.ClearPreviousLines(len(promptText) + len(clientSecret))
		}
		if clientSecret == "" {
			return errors.New("client secret is required")
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Verifying credentials", spinnerFrames, 120*time.Millisecond)
		err = svc.Login(ctx, clientID, clientSecret)
		stopSpinner()
		if err != nil {
			fmt.Println("❌ " + logging.PresentError("login failed", err))
			return err
		}

		fmt.Printf("✅ Logged in as %s\n", clientID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "Service client id")
	loginCmd.Flags().StringVar(&loginClientSecret, "client-secret", "", "Service client secret")
	loginCmd.Flags().BoolVar(&verboseLogin, "verbose", false, "Enable verbose debug output")
}
