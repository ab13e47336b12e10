// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package remote

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	rderrors "rowdeck/cli/internal/errors"
)

// Model is a terminal model found by namespace discovery. Discovery results
// are produced fresh on every run and carry no persistent identity.
type Model struct {
	Path      string `json:"path"`
	Title     string `json:"title,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// nsItem is one entry of a namespace listing.
type nsItem struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Kind  string `json:"kind"` // "ns" for sub-namespaces, "model" otherwise
}

// DiscoverOptions bounds the fan-out of a discovery run.
type DiscoverOptions struct {
	// Concurrency is the maximum number of sibling namespace requests in
	// flight at once.
	Concurrency int
	// MinInterval is the minimum spacing between request starts across the
	// whole run.
	MinInterval time.Duration
}

func (o DiscoverOptions) withDefaults() DiscoverOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.MinInterval <= 0 {
		o.MinInterval = 50 * time.Millisecond
	}
	return o
}

// throttle enforces a minimum spacing between request starts. Spacing is
// measured from the previous request's reserved start, and reservation is
// atomic under the mutex so concurrent batch members cannot collapse onto
// the same slot.
type throttle struct {
	mu   sync.Mutex
	min  time.Duration
	last time.Time
}

// reserve claims the next start slot and returns how long the caller must
// wait before issuing its request.
func (t *throttle) reserve() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	start := t.last.Add(t.min)
	if start.Before(now) {
		start = now
	}
	t.last = start
	return start.Sub(now)
}

// DiscoverModels recursively expands namespace into the flat set of terminal
// models beneath it. Sub-namespaces are fetched in bounded concurrent
// batches; every request is additionally spaced by the throttle. Results are
// sorted by path so runs are comparable.
func (c *Client) DiscoverModels(ctx context.Context, namespace string, opts DiscoverOptions) ([]Model, error) {
	opts = opts.withDefaults()
	th := &throttle{min: opts.MinInterval}

	var models []Model
	pending := []string{namespace}

	for len(pending) > 0 {
		n := opts.Concurrency
		if n > len(pending) {
			n = len(pending)
		}
		batch := pending[:n]
		pending = pending[n:]

		var (
			mu       sync.Mutex
			firstErr error
			wg       sync.WaitGroup
		)
		for _, ns := range batch {
			wg.Add(1)
			go func(ns string) {
				defer wg.Done()
				children, found, err := c.listNamespace(ctx, ns, th)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				models = append(models, found...)
				pending = append(pending, children...)
			}(ns)
		}
		wg.Wait()
		if firstErr != nil {
			return nil, firstErr
		}
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Path < models[j].Path })
	return models, nil
}

// listNamespace fetches one namespace listing, honoring the throttle, and
// splits the entries into sub-namespaces to expand and terminal models.
func (c *Client) listNamespace(ctx context.Context, ns string, th *throttle) ([]string, []Model, error) {
	if d := th.reserve(); d > 0 {
		if err := c.sleep(ctx, d); err != nil {
			return nil, nil, err
		}
	}

	body, err := c.get(ctx, "/"+ns+"/:ns")
	if err != nil {
		return nil, nil, err
	}
	var env struct {
		Data []nsItem `json:"_data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, rderrors.Wrap(rderrors.RemoteError, "parse namespace listing", err)
	}

	var children []string
	var models []Model
	for _, item := range env.Data {
		if item.Kind == "ns" {
			children = append(children, item.Path)
			continue
		}
		models = append(models, Model{Path: item.Path, Title: item.Title, Namespace: ns})
	}
	return children, models, nil
}
