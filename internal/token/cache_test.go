// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	rderrors "rowdeck/cli/internal/errors"
)

func newTokenServer(t *testing.T, expiresIn int64, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/auth/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		})
	}))
}

func TestTokenFetchAndCache(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, 3600, &calls)
	defer srv.Close()

	c := NewCache(srv.URL, "id", "secret", nil)
	ctx := context.Background()

	tok, err := c.Token(ctx)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "tok-123" {
		t.Errorf("token = %q", tok)
	}
	if _, err := c.Token(ctx); err != nil {
		t.Fatalf("Token (cached): %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	var calls atomic.Int64
	const expiresIn = 3600
	srv := newTokenServer(t, expiresIn, &calls)
	defer srv.Close()

	c := NewCache(srv.URL, "id", "secret", nil)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return t0 }

	if _, err := c.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}

	// One millisecond before the five-minute slack boundary the cached
	// token is still valid.
	c.now = func() time.Time {
		return t0.Add(expiresIn*time.Second - expirySlack - time.Millisecond)
	}
	if _, err := c.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times before boundary, want 1", calls.Load())
	}

	// Exactly at the boundary the token is invalid and a refresh happens.
	c.now = func() time.Time {
		return t0.Add(expiresIn*time.Second - expirySlack)
	}
	if _, err := c.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times at boundary, want 2", calls.Load())
	}
}

func TestTokenClearForcesRefresh(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, 3600, &calls)
	defer srv.Close()

	c := NewCache(srv.URL, "id", "secret", nil)
	if _, err := c.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	c.Clear()
	if _, err := c.Token(context.Background()); err != nil {
		t.Fatalf("Token after Clear: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}

func TestTokenRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "my-id" || pass != "my-secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		r.ParseForm()
		if got := r.PostForm.Get("scope"); got != "data:read data:discover" {
			t.Errorf("scope = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "t",
			"token_type":   "Bearer",
			"expires_in":   60,
		})
	}))
	defer srv.Close()

	c := NewCache(srv.URL, "my-id", "my-secret", []string{"data:read", "data:discover"})
	if _, err := c.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
}

func TestTokenRefreshFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "description from server",
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid_client","error_description":"client secret revoked"}`,
			wantMsg: "client secret revoked",
		},
		{
			name:    "no description",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantMsg: "authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewCache(srv.URL, "id", "secret", nil)
			_, err := c.Token(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !rderrors.IsKind(err, rderrors.AuthenticationFailed) {
				t.Errorf("error kind: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
