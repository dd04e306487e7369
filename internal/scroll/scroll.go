// Package scroll drives cursor-based pagination over the node pool: one
// initial search, then successive scroll requests, each page pulled only on
// demand so memory stays bounded by the page size.
package scroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dm/essearch-go/internal/client"
	"github.com/dm/essearch-go/internal/pool"
	"github.com/dm/essearch-go/internal/query"
)

// ErrCursorExpired is returned when the cluster no longer knows the scroll
// cursor. The scroll terminates; pages already delivered remain valid but
// the result set is incomplete.
var ErrCursorExpired = errors.New("scroll cursor expired")

// DefaultKeepAlive bounds how long the cluster holds an idle cursor.
const DefaultKeepAlive = time.Minute

// Iterator is a lazy, finite, one-pass sequence of result pages. It is not
// safe for concurrent use; each search owns its own Iterator.
type Iterator struct {
	pool      *pool.Pool
	desc      query.Descriptor
	pageSize  int
	keepAlive time.Duration
	log       *slog.Logger

	scrollID string
	first    []client.Hit
	hasFirst bool
	done     bool
	closed   bool
}

// Open issues the initial search request through the pool and returns an
// iterator positioned before the first page. The caller must Close the
// iterator on every exit path to release the cluster-side cursor.
func Open(ctx context.Context, p *pool.Pool, desc query.Descriptor, pageSize int, keepAlive time.Duration, log *slog.Logger) (*Iterator, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	it := &Iterator{
		pool:      p,
		desc:      desc,
		pageSize:  pageSize,
		keepAlive: keepAlive,
		log:       log,
	}

	body := desc.Body(pageSize)
	var resp *client.SearchResponse
	err := p.WithFailover(ctx, func(c *client.Client) error {
		var opErr error
		resp, opErr = c.Search(ctx, desc.Target(), body, keepAlive)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	it.scrollID = resp.ScrollID
	it.first = resp.Hits.Hits
	it.hasFirst = true
	if len(it.first) == 0 {
		it.done = true
	}
	return it, nil
}

// Next returns the next page of hits. done is true once the cluster returns
// an empty batch (or the first page was already empty); after that every
// call returns (nil, true, nil). A transport failure retries the same page
// on the next endpoint — cursors are cluster-global, not node-pinned, so the
// retry is safe. An expired cursor surfaces as ErrCursorExpired.
func (it *Iterator) Next(ctx context.Context) ([]client.Hit, bool, error) {
	if it.closed {
		return nil, true, nil
	}
	if it.hasFirst {
		it.hasFirst = false
		if it.done {
			return nil, true, nil
		}
		hits := it.first
		it.first = nil
		return hits, false, nil
	}
	if it.done {
		return nil, true, nil
	}

	var resp *client.SearchResponse
	err := it.pool.WithFailover(ctx, func(c *client.Client) error {
		var opErr error
		resp, opErr = c.ScrollNext(ctx, it.scrollID, it.keepAlive)
		return opErr
	})
	if err != nil {
		if isCursorExpired(err) {
			it.done = true
			return nil, true, fmt.Errorf("%w: %v", ErrCursorExpired, err)
		}
		return nil, false, err
	}

	if resp.ScrollID != "" {
		it.scrollID = resp.ScrollID
	}
	if len(resp.Hits.Hits) == 0 {
		it.done = true
		return nil, true, nil
	}
	return resp.Hits.Hits, false, nil
}

// Close releases the cluster-side cursor, best effort. Failures are logged,
// never fatal — the cluster expires idle cursors on its own. Close is
// idempotent.
func (it *Iterator) Close(ctx context.Context) {
	if it.closed {
		return
	}
	it.closed = true
	it.first = nil
	it.hasFirst = false

	if it.scrollID == "" {
		return
	}
	err := it.pool.WithFailover(ctx, func(c *client.Client) error {
		return c.ClearScroll(ctx, it.scrollID)
	})
	if err != nil {
		it.log.Warn("failed to release scroll cursor", "error", err)
	}
}

// isCursorExpired recognizes the cluster's expired-context reply to a scroll
// continuation. Elasticsearch reports it as a 404 carrying a
// search_context_missing_exception inside a search_phase_execution_exception
// envelope; since the scroll endpoint addresses no other resource, the
// status alone is decisive (the body is truncated and its exact shape varies
// across versions).
func isCursorExpired(err error) bool {
	var ce *client.ClusterError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.StatusCode == http.StatusNotFound
}
