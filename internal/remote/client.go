// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package remote implements the HTTP client for the Rowdeck data service.
// It issues compiled queries against model listings, follows continuation
// cursors, retries rate-limited page fetches with exponential backoff, walks
// namespaces with bounded concurrency, and reads the per-model change log.
//
// Listings come back in the service envelope:
//
//	{"_data": [...], "_page": {"next": "<cursor>"}}
//
// The absence of a cursor marks the end of a listing.
package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	rderrors "rowdeck/cli/internal/errors"
	"rowdeck/cli/internal/query"
)

// TokenSource supplies a valid bearer token for each request. The client
// calls it before every page fetch, not just the first, so long streams do
// not fail mid-traversal on an expired token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Record is one row of a model listing.
type Record map[string]any

// Envelope is the listing response: items plus an optional continuation
// cursor.
type Envelope struct {
	Data []Record `json:"_data"`
	Page *Page    `json:"_page,omitempty"`
}

// Page carries the continuation cursor for the next page, when there is one.
type Page struct {
	Next string `json:"next,omitempty"`
}

// Client talks to one Rowdeck data service instance.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	policy  RetryPolicy

	// sleep is swapped out in tests so backoff does not slow the suite.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a client for the service at baseURL. Zero fields of policy
// take their defaults (page size 100, backoff 1s..30s, 5 attempts).
func New(baseURL string, tokens TokenSource, policy RetryPolicy) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: 30 * time.Second},
		policy:  policy.withDefaults(),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// get performs one authenticated GET and returns the raw body, mapping
// non-success statuses to typed errors.
func (c *Client) get(ctx context.Context, pathAndQuery string) ([]byte, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, rderrors.Wrap(rderrors.RemoteError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rderrors.Wrap(rderrors.RemoteError, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError maps a non-success response to the error taxonomy.
func statusError(status int, body []byte) error {
	msg := serverMessage(body)
	switch status {
	case http.StatusBadRequest:
		return rderrors.New(rderrors.ValidationFailed, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return rderrors.New(rderrors.AuthenticationFailed, msg)
	case http.StatusNotFound:
		return rderrors.New(rderrors.NotFound, msg)
	case http.StatusTooManyRequests:
		return rderrors.New(rderrors.RateLimited, msg)
	default:
		return rderrors.New(rderrors.RemoteError, msg)
	}
}

// serverMessage extracts a human-readable message from an error body,
// falling back to the raw text.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "request rejected by service"
}

// buildQuery renders q and appends the continuation cursor when resuming a
// listing.
func buildQuery(q *query.Builder, cursor string) string {
	qs := ""
	if q != nil {
		qs = q.Encode()
	}
	if cursor != "" {
		clause := "page(" + url.QueryEscape(cursor) + ")"
		if qs == "" {
			qs = "?" + clause
		} else {
			qs += "&" + clause
		}
	}
	return qs
}

// fetchPage retrieves one page of a model listing.
func (c *Client) fetchPage(ctx context.Context, model string, q *query.Builder, cursor string) (*Envelope, error) {
	body, err := c.get(ctx, "/"+model+buildQuery(q, cursor))
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, rderrors.Wrap(rderrors.RemoteError, "parse listing envelope", err)
	}
	return &env, nil
}

// GetAll performs a single round trip and returns the page's records.
func (c *Client) GetAll(ctx context.Context, model string, q *query.Builder) ([]Record, error) {
	env, err := c.GetAllRaw(ctx, model, q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetAllRaw performs a single round trip and returns the full envelope,
// including the continuation cursor when the listing has more pages.
func (c *Client) GetAllRaw(ctx context.Context, model string, q *query.Builder) (*Envelope, error) {
	return c.fetchPage(ctx, model, q, "")
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, model, id string) (Record, error) {
	body, err := c.get(ctx, "/"+model+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, rderrors.Wrap(rderrors.RemoteError, "parse record", err)
	}
	return rec, nil
}

// Count asks the service how many records match q. It appends a count
// directive to the compiled query and extracts the scalar from the envelope.
func (c *Client) Count(ctx context.Context, model string, q *query.Builder) (int64, error) {
	counted := query.New()
	if q != nil {
		counted = q.Clone()
	}
	counted.Count()

	env, err := c.fetchPage(ctx, model, counted, "")
	if err != nil {
		return 0, err
	}
	if len(env.Data) == 0 {
		return 0, rderrors.New(rderrors.RemoteError, "count response has no data")
	}
	switch v := env.Data[0]["count()"].(type) {
	case float64:
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, rderrors.Wrap(rderrors.RemoteError, "parse count", err)
		}
		return n, nil
	default:
		return 0, rderrors.New(rderrors.RemoteError, "count response has no count() field")
	}
}

// Summary fetches the service-side value summary for one field of a model.
func (c *Client) Summary(ctx context.Context, model, field string) ([]Record, error) {
	body, err := c.get(ctx, "/"+model+"/:summary/"+url.PathEscape(field))
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, rderrors.Wrap(rderrors.RemoteError, "parse summary envelope", err)
	}
	return env.Data, nil
}
