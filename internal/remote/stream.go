// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package remote

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	rderrors "rowdeck/cli/internal/errors"
	"rowdeck/cli/internal/query"
)

// RetryPolicy configures page size and rate-limit retry behavior for
// streams. Only HTTP 429 responses are retried; every other error class
// propagates after the first attempt.
type RetryPolicy struct {
	// PageSize is the limit applied to each page request.
	PageSize int
	// InitialBackoff is the sleep before the second attempt; it doubles on
	// each further attempt up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// MaxAttempts caps how often the same page is requested.
	MaxAttempts int
	// NoRetry surfaces the first 429 immediately.
	NoRetry bool
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.PageSize <= 0 {
		p.PageSize = 100
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = time.Second
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	return p
}

// backoffFor returns the sleep after the given failed attempt (1-based).
func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 1; i < attempt && d < p.MaxBackoff; i++ {
		d *= 2
	}
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// Stream is a forward-only lazy iterator over every record of a listing.
// It fetches pages on demand, re-requesting a page after rate limiting
// according to the client's retry policy, and is restartable only by
// creating a new Stream.
//
// Usage follows the scanner pattern:
//
//	s := client.Stream(ctx, "orders", q)
//	for s.Next() {
//	    rec := s.Record()
//	    ...
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	ctx   context.Context
	c     *Client
	model string
	base  *query.Builder

	cursor    string
	page      []Record
	idx       int
	cur       Record
	delivered int
	started   bool
	done      bool
	err       error
}

// Stream starts a lazy traversal of every record matching q. The query's
// limit is replaced with the policy page size; all other directives are
// kept.
func (c *Client) Stream(ctx context.Context, model string, q *query.Builder) *Stream {
	base := query.New()
	if q != nil {
		base = q.Clone()
	}
	base.Limit(c.policy.PageSize)
	return &Stream{ctx: ctx, c: c, model: model, base: base}
}

// Next advances to the next record, fetching the next page when the current
// one is exhausted. It returns false at the end of the listing or on error.
func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		if s.idx < len(s.page) {
			s.cur = s.page[s.idx]
			s.idx++
			s.delivered++
			return true
		}
		if s.started && s.done {
			return false
		}
		if err := s.fetchNext(); err != nil {
			s.err = err
			return false
		}
	}
}

// Record returns the record produced by the last successful Next.
func (s *Stream) Record() Record { return s.cur }

// Err returns the error that stopped the stream, if any. Rate-limit errors
// carry the number of records already delivered.
func (s *Stream) Err() error { return s.err }

// Delivered reports how many records the stream has produced so far.
func (s *Stream) Delivered() int { return s.delivered }

// fetchNext requests the next page, retrying the same page on 429 with
// exponential backoff. Exhausting the attempt budget (or NoRetry) turns the
// rate-limit error into a partial-failure signal carrying the delivered
// count.
func (s *Stream) fetchNext() error {
	attempt := 0
	for {
		attempt++
		env, err := s.c.fetchPage(s.ctx, s.model, s.base, s.cursor)
		if err == nil {
			s.started = true
			s.page = env.Data
			s.idx = 0
			if env.Page != nil && env.Page.Next != "" {
				s.cursor = env.Page.Next
			} else {
				s.done = true
			}
			return nil
		}
		if !rderrors.IsKind(err, rderrors.RateLimited) {
			return err
		}
		if s.c.policy.NoRetry || attempt >= s.c.policy.MaxAttempts {
			var e *rderrors.E
			stderrors.As(err, &e)
			e.Message = fmt.Sprintf("rate limited after %d attempts (%d records delivered)",
				attempt, s.delivered)
			return e.WithDelivered(s.delivered)
		}
		if err := s.c.sleep(s.ctx, s.c.policy.backoffFor(attempt)); err != nil {
			return err
		}
	}
}
