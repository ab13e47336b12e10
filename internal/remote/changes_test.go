// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLatestChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/:changes/-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"_data":[{"_id":907,"op":"update","record":{"id":"o-1"}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	ch, err := c.LatestChange(context.Background(), "orders")
	if err != nil {
		t.Fatalf("LatestChange: %v", err)
	}
	if ch == nil || ch.ID != 907 {
		t.Errorf("change = %+v", ch)
	}
}

func TestLatestChangeEmptyLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	ch, err := c.LatestChange(context.Background(), "orders")
	if err != nil {
		t.Fatalf("LatestChange: %v", err)
	}
	if ch != nil {
		t.Errorf("change = %+v, want nil for empty log", ch)
	}
}

func TestChangesPagesFromExclusiveID(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"_data":[{"_id":101},{"_id":102}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	entries, err := c.Changes(context.Background(), "orders", 100, 2)
	if err != nil {
		t.Fatalf("Changes: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries", len(entries))
	}
	if gotPath != "/orders/:changes/100" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "limit(2)" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestStreamChangesShortPageEndsLog(t *testing.T) {
	// Two full pages of 2, then a short page of 1: the short page ends the
	// stream without another request.
	pages := map[string]string{
		"0":   `{"_data":[{"_id":1},{"_id":2}]}`,
		"2":   `{"_data":[{"_id":3},{"_id":4}]}`,
		"4":   `{"_data":[{"_id":5}]}`,
	}
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		since := r.URL.Path[len("/orders/:changes/"):]
		body, ok := pages[since]
		if !ok {
			t.Errorf("unexpected since id %q", since)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubTokens{}, RetryPolicy{})
	s := c.StreamChanges(context.Background(), "orders", 0, 2)

	var ids []int64
	for s.Next() {
		ids = append(ids, s.Change().ID)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	want := []int64{1, 2, 3, 4, 5}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3 (short page is not re-verified)", calls)
	}
}
