// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides authentication services for the Rowdeck CLI.
// It manages the client-credentials login flow and session validation.
// Non-secret state and the credentials themselves are stored in the OS
// keychain for security.
package auth

import (
	"context"

	rderrors "rowdeck/cli/internal/errors"
	"rowdeck/cli/internal/keychain"
	"rowdeck/cli/internal/token"
)

// Service centralizes authentication-related operations against the auth
// endpoint and local secure storage/state.
type Service struct {
	authURL string
	scopes  []string
}

// NewService constructs an auth Service for the given auth endpoint.
func NewService(authURL string, scopes []string) *Service {
	return &Service{authURL: authURL, scopes: scopes}
}

// Login verifies the client credentials by exchanging them for a token, then
// persists them in the OS keychain and marks the session as logged in.
func (s *Service) Login(ctx context.Context, clientID, clientSecret string) error {
	cache := token.NewCache(s.authURL, clientID, clientSecret, s.scopes)
	if _, err := cache.Token(ctx); err != nil {
		return err
	}

	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	if err := km.SaveClientCredentials(clientID, clientSecret); err != nil {
		return err
	}
	return Save(State{LoggedIn: true, Account: clientID})
}

// Logout removes stored credentials and clears login state.
func (s *Service) Logout(ctx context.Context) error {
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	if err := km.ClearAuth(); err != nil {
		return err
	}
	return Clear()
}

// WhoAmI returns the stored account and whether the stored credentials are
// still accepted by the auth endpoint. A missing keychain or missing
// credentials means not logged in, not an error.
func (s *Service) WhoAmI(ctx context.Context) (string, bool, error) {
	st, err := Load()
	if err != nil || !st.LoggedIn {
		return "", false, nil
	}

	km, err := keychain.GetManager()
	if err != nil {
		return st.Account, false, nil
	}
	clientID, clientSecret, err := km.LoadClientCredentials()
	if err != nil {
		return st.Account, false, nil
	}

	cache := token.NewCache(s.authURL, clientID, clientSecret, s.scopes)
	if _, err := cache.Token(ctx); err != nil {
		if rderrors.IsKind(err, rderrors.AuthenticationFailed) {
			return st.Account, false, nil
		}
		return st.Account, false, err
	}
	return st.Account, true, nil
}

// TokenSource builds a token cache from the credentials stored at login. The
// cache satisfies remote.TokenSource.
func (s *Service) TokenSource() (*token.Cache, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return nil, err
	}
	clientID, clientSecret, err := km.LoadClientCredentials()
	if err != nil {
		return nil, rderrors.New(rderrors.AuthenticationFailed, "not logged in").
			WithHint("run 'rowdeck login' to store your client credentials")
	}
	return token.NewCache(s.authURL, clientID, clientSecret, s.scopes), nil
}
