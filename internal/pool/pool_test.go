package pool

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/essearch-go/internal/client"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// healthyServer returns an httptest server answering /_cluster/health and a
// counter of requests it received.
func healthyServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cluster_name":"test","status":"green"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// deadAddr starts and immediately stops a server, yielding an address that
// refuses connections.
func deadAddr(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()
	return addr
}

func newTestPool(t *testing.T, addrs ...string) *Pool {
	t.Helper()
	p, err := New(strings.Join(addrs, ","), Config{AttemptTimeout: 2 * time.Second}, discardLogger())
	require.NoError(t, err)
	return p
}

func healthOp(attempts *atomic.Int64) func(c *client.Client) error {
	return func(c *client.Client) error {
		attempts.Add(1)
		_, err := c.Health(context.Background())
		return err
	}
}

func TestWithFailover_SkipsDeadEndpoint(t *testing.T) {
	dead := deadAddr(t)
	alive, hits := healthyServer(t)

	p := newTestPool(t, dead, alive.URL)

	var attempts atomic.Int64
	err := p.WithFailover(context.Background(), healthOp(&attempts))
	require.NoError(t, err)
	assert.Equal(t, int64(2), attempts.Load(), "dead endpoint tried once, then the live one")
	assert.Equal(t, int64(1), hits.Load())
}

func TestWithFailover_StickyPreference(t *testing.T) {
	dead := deadAddr(t)
	alive, hits := healthyServer(t)

	p := newTestPool(t, dead, alive.URL)

	var attempts atomic.Int64
	require.NoError(t, p.WithFailover(context.Background(), healthOp(&attempts)))
	require.Equal(t, int64(2), attempts.Load())

	// The second call starts at the endpoint that last worked.
	require.NoError(t, p.WithFailover(context.Background(), healthOp(&attempts)))
	assert.Equal(t, int64(3), attempts.Load(), "second call must not revisit the dead endpoint")
	assert.Equal(t, int64(2), hits.Load())
}

func TestWithFailover_ExhaustionAfterExactlyNAttempts(t *testing.T) {
	p := newTestPool(t, deadAddr(t), deadAddr(t), deadAddr(t))

	var attempts atomic.Int64
	err := p.WithFailover(context.Background(), healthOp(&attempts))
	assert.ErrorIs(t, err, ErrAllNodesUnreachable)
	assert.Equal(t, int64(3), attempts.Load())
}

func TestWithFailover_ClusterErrorNotRetried(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"parsing_exception"}`, http.StatusBadRequest)
	}))
	t.Cleanup(rejecting.Close)
	fallback, hits := healthyServer(t)

	p := newTestPool(t, rejecting.URL, fallback.URL)

	var attempts atomic.Int64
	err := p.WithFailover(context.Background(), healthOp(&attempts))
	require.Error(t, err)
	assert.True(t, client.IsClusterError(err), "4xx must surface as a cluster error")
	assert.Equal(t, int64(1), attempts.Load(), "query errors are not retried across nodes")
	assert.Equal(t, int64(0), hits.Load())
}

func TestWithFailover_TimeoutCountsAsConnectionFailure(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)
	fast, hits := healthyServer(t)

	p, err := New(slow.URL+","+fast.URL, Config{AttemptTimeout: 100 * time.Millisecond}, discardLogger())
	require.NoError(t, err)

	var attempts atomic.Int64
	require.NoError(t, p.WithFailover(context.Background(), healthOp(&attempts)))
	assert.Equal(t, int64(2), attempts.Load())
	assert.Equal(t, int64(1), hits.Load())
}
