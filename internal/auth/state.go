// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides authentication state management for the CLI.
// It handles the client-credentials login flow and session validation,
// persisting non-secret state and storing credentials in the OS keychain.
package auth

import (
	"context"
)

// IsLoggedIn reports whether the user is considered logged in.
func IsLoggedIn(ctx context.Context) (bool, error) {
	st, err := Load()
	if err != nil {
		return false, err
	}
	return st.LoggedIn, nil
}

// SetLoggedIn marks the user as logged in by persisting state.
func SetLoggedIn(ctx context.Context, account string) error {
	return Save(State{LoggedIn: true, Account: account})
}

// SetLoggedOut clears login state.
func SetLoggedOut(ctx context.Context) error {
	return Clear()
}
