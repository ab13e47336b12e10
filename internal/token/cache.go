// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package token caches short-lived bearer tokens obtained through the OAuth
// client-credentials grant. A cached token is considered valid only while
// more than five minutes remain before its expiry, so a token handed out by
// the cache survives the request it is used for.
//
// The cache holds no lock: a concurrent refresh just performs the same
// idempotent exchange twice and the last writer wins, which is acceptable
// for a CLI with one logical caller per operation.
package token

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	rderrors "rowdeck/cli/internal/errors"
)

// expirySlack is subtracted from the reported lifetime so a token is
// refreshed before it can expire mid-request.
const expirySlack = 5 * time.Minute

type cached struct {
	access    string
	expiresAt time.Time
}

// Cache exchanges client credentials for bearer tokens and keeps the latest
// one until it nears expiry.
type Cache struct {
	authBase     string
	clientID     string
	clientSecret string
	scopes       []string
	client       *http.Client

	tok *cached
	now func() time.Time
}

// NewCache creates a token cache for the given auth endpoint and client
// credentials. Scopes are joined with spaces in the token request.
func NewCache(authBase, clientID, clientSecret string, scopes []string) *Cache {
	return &Cache{
		authBase:     strings.TrimRight(authBase, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		scopes:       scopes,
		client:       &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
}

// Token returns a bearer token, refreshing when the cache is empty or the
// cached token is within five minutes of expiry.
func (c *Cache) Token(ctx context.Context) (string, error) {
	if c.tok != nil && c.now().Before(c.tok.expiresAt.Add(-expirySlack)) {
		return c.tok.access, nil
	}
	if err := c.refresh(ctx); err != nil {
		return "", err
	}
	return c.tok.access, nil
}

// Clear drops the cached token; the next Token call refreshes.
func (c *Cache) Clear() {
	c.tok = nil
}

// tokenResponse is the auth endpoint's success envelope.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenError is the auth endpoint's failure envelope.
type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// refresh performs the client-credentials exchange and replaces the cached
// token wholesale.
func (c *Cache) refresh(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if len(c.scopes) > 0 {
		form.Set("scope", strings.Join(c.scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBase+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	issuedAt := c.now()
	resp, err := c.client.Do(req)
	if err != nil {
		return rderrors.Wrap(rderrors.AuthenticationFailed, "token request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rderrors.Wrap(rderrors.AuthenticationFailed, "read token response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var te tokenError
		if json.Unmarshal(body, &te) == nil && te.Description != "" {
			return rderrors.New(rderrors.AuthenticationFailed, te.Description)
		}
		return rderrors.New(rderrors.AuthenticationFailed,
			"authentication failed (status "+resp.Status+")")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return rderrors.Wrap(rderrors.AuthenticationFailed, "parse token response", err)
	}
	if tr.AccessToken == "" {
		return rderrors.New(rderrors.AuthenticationFailed, "no access_token in response")
	}

	c.tok = &cached{
		access:    tr.AccessToken,
		expiresAt: issuedAt.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	return nil
}
