// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package remote

import (
	"context"
	"encoding/json"
	"strconv"

	rderrors "rowdeck/cli/internal/errors"
	"rowdeck/cli/internal/query"
)

// Change is one entry of a model's change log.
type Change struct {
	ID     int64  `json:"_id"`
	Op     string `json:"op,omitempty"`
	At     string `json:"at,omitempty"`
	Record Record `json:"record,omitempty"`
}

// changeEnvelope mirrors Envelope with typed entries.
type changeEnvelope struct {
	Data []Change `json:"_data"`
}

// LatestChange fetches the newest change-log entry using the service's
// negative-index convention (/:changes/-1). It returns nil when the log is
// empty.
func (c *Client) LatestChange(ctx context.Context, model string) (*Change, error) {
	entries, err := c.changesPage(ctx, model, -1, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Changes returns up to limit entries with ids strictly greater than
// sinceID, oldest first.
func (c *Client) Changes(ctx context.Context, model string, sinceID int64, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = c.policy.PageSize
	}
	return c.changesPage(ctx, model, sinceID, limit)
}

func (c *Client) changesPage(ctx context.Context, model string, sinceID int64, limit int) ([]Change, error) {
	qs := query.New().Limit(limit).Encode()
	body, err := c.get(ctx, "/"+model+"/:changes/"+strconv.FormatInt(sinceID, 10)+qs)
	if err != nil {
		return nil, err
	}
	var env changeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, rderrors.Wrap(rderrors.RemoteError, "parse change log", err)
	}
	return env.Data, nil
}

// ChangeStream pages forward through the change log from an exclusive
// starting id. A short page (fewer entries than requested) marks the end of
// the log; it is not re-verified.
type ChangeStream struct {
	ctx      context.Context
	c        *Client
	model    string
	sinceID  int64
	pageSize int

	page []Change
	idx  int
	cur  Change
	done bool
	err  error
}

// StreamChanges iterates the change log forward from sinceID (exclusive).
func (c *Client) StreamChanges(ctx context.Context, model string, sinceID int64, pageSize int) *ChangeStream {
	if pageSize <= 0 {
		pageSize = c.policy.PageSize
	}
	return &ChangeStream{ctx: ctx, c: c, model: model, sinceID: sinceID, pageSize: pageSize}
}

// Next advances to the next change entry.
func (s *ChangeStream) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		if s.idx < len(s.page) {
			s.cur = s.page[s.idx]
			s.idx++
			s.sinceID = s.cur.ID
			return true
		}
		if s.done {
			return false
		}
		page, err := s.c.Changes(s.ctx, s.model, s.sinceID, s.pageSize)
		if err != nil {
			s.err = err
			return false
		}
		s.page = page
		s.idx = 0
		if len(page) < s.pageSize {
			s.done = true
		}
	}
}

// Change returns the entry produced by the last successful Next.
func (s *ChangeStream) Change() Change { return s.cur }

// Err returns the error that stopped the stream, if any.
func (s *ChangeStream) Err() error { return s.err }
