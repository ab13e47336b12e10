// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Rowdeck CLI application.
// It implements subcommands for querying hosted models, namespace discovery,
// schema inference, change-log access, and database loading using the Cobra CLI
// framework. The package handles command parsing, execution, and provides a
// terminal UI with spinners and progress indicators.
package cmd

import (
	"fmt"
	"os"

	"rowdeck/cli/internal/auth"
	"rowdeck/cli/internal/config"
	"rowdeck/cli/internal/httperrors"
	"rowdeck/cli/internal/remote"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the Rowdeck CLI application.
var rootCmd = &cobra.Command{
	Use:           "rowdeck",
	Short:         "Rowdeck CLI for querying hosted tabular data",
	Long:          `Rowdeck is a command-line tool for querying, exploring, and exporting models hosted on the Rowdeck data service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("rowdeck %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during
// execution. Transport-level failures get a friendly explanation; typed
// service errors print as-is.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !httperrors.Present(err, serviceContext()) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// serviceContext names the host a failed request was aimed at, falling back
// to a generic phrase when the configuration cannot be read.
func serviceContext() string {
	cfg, err := config.Load()
	if err != nil {
		return "contacting the Rowdeck service"
	}
	return "contacting " + httperrors.HostOf(cfg.BaseURL)
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}

// authService builds the auth service from the loaded configuration.
func authService() (*auth.Service, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	return auth.NewService(cfg.AuthURL, cfg.Scopes), cfg, nil
}

// dataClient builds the remote client from stored credentials and the loaded
// configuration.
func dataClient() (*remote.Client, config.Config, error) {
	svc, cfg, err := authService()
	if err != nil {
		return nil, cfg, err
	}
	tokens, err := svc.TokenSource()
	if err != nil {
		return nil, cfg, err
	}
	policy := remote.RetryPolicy{PageSize: cfg.PageSize}
	return remote.New(cfg.BaseURL, tokens, policy), cfg, nil
}
