// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	rderrors "rowdeck/cli/internal/errors"
	"rowdeck/cli/internal/filter"
	"rowdeck/cli/internal/query"
)

// stubTokens is a TokenSource counting how often a token was requested.
type stubTokens struct {
	calls atomic.Int64
}

func (s *stubTokens) Token(ctx context.Context) (string, error) {
	s.calls.Add(1)
	return "test-token", nil
}

func TestGetAll(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/orders" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"_data":[{"id":"1","total":10},{"id":"2","total":20}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	q := query.New().Where(filter.F("total").Gt(5)).Limit(2)

	recs, err := c.GetAll(context.Background(), "orders", q)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotQuery != "total>5&limit(2)" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGetAllRawKeepsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_data":[{"id":"1"}],"_page":{"next":"abc"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	env, err := c.GetAllRaw(context.Background(), "orders", nil)
	if err != nil {
		t.Fatalf("GetAllRaw: %v", err)
	}
	if env.Page == nil || env.Page.Next != "abc" {
		t.Errorf("cursor not surfaced: %+v", env.Page)
	}
}

func TestGetSingleRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/o-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"o-1","total":10}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	rec, err := c.Get(context.Background(), "orders", "o-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec["id"] != "o-1" {
		t.Errorf("record = %v", rec)
	}
}

func TestCount(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"_data":[{"count()":42}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	n, err := c.Count(context.Background(), "orders", query.New().Where(filter.F("x").Eq(1)))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d", n)
	}
	if gotQuery != "x=1&count()" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestCountDoesNotMutateQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_data":[{"count()":1}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	q := query.New().Limit(5)
	before := q.Encode()
	if _, err := c.Count(context.Background(), "orders", q); err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got := q.Encode(); got != before {
		t.Errorf("query mutated by Count: %q != %q", got, before)
	}
}

func TestSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/:summary/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"_data":[{"value":"open","count":3},{"value":"closed","count":9}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	rows, err := c.Summary(context.Background(), "orders", "status")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows", len(rows))
	}
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   rderrors.Kind
	}{
		{http.StatusBadRequest, rderrors.ValidationFailed},
		{http.StatusUnauthorized, rderrors.AuthenticationFailed},
		{http.StatusForbidden, rderrors.AuthenticationFailed},
		{http.StatusNotFound, rderrors.NotFound},
		{http.StatusTooManyRequests, rderrors.RateLimited},
		{http.StatusBadGateway, rderrors.RemoteError},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"message":"nope"}`))
		}))

		c := New(srv.URL, &stubTokens{}, RetryPolicy{})
		_, err := c.GetAll(context.Background(), "orders", nil)
		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
		} else if !rderrors.IsKind(err, tt.kind) {
			t.Errorf("status %d: kind = %v, want %s", tt.status, err, tt.kind)
		}
		srv.Close()
	}
}
