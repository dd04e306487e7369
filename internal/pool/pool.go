// Package pool manages the configured cluster endpoints and runs operations
// against them with sticky failover: requests prefer the last endpoint that
// worked and advance to the next one only on connection-level failures.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dm/essearch-go/internal/client"
)

// ErrAllNodesUnreachable is returned when every configured endpoint failed
// with a connection-level error. It wraps the last underlying error.
var ErrAllNodesUnreachable = errors.New("all nodes unreachable")

// Config holds pool-wide settings shared by every endpoint client.
type Config struct {
	Username           string
	Password           string
	UseSSL             bool
	InsecureSkipVerify bool
	AttemptTimeout     time.Duration
}

// Pool holds one client per configured endpoint, in caller preference order.
type Pool struct {
	endpoints []Endpoint
	clients   []*client.Client
	log       *slog.Logger

	mu        sync.Mutex
	preferred int // index of the last-known-good endpoint
}

// New builds a Pool from a comma-separated endpoint list.
func New(eaddr string, cfg Config, log *slog.Logger) (*Pool, error) {
	endpoints, err := ParseEndpoints(eaddr, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	clients := make([]*client.Client, len(endpoints))
	for i, ep := range endpoints {
		c, err := client.New(client.Config{
			BaseURL:            ep.URL(),
			Username:           cfg.Username,
			Password:           cfg.Password,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			RequestTimeout:     cfg.AttemptTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", ep, err)
		}
		clients[i] = c
	}

	return &Pool{endpoints: endpoints, clients: clients, log: log}, nil
}

// Endpoints returns the configured endpoints in preference order.
func (p *Pool) Endpoints() []Endpoint {
	return p.endpoints
}

// WithFailover runs op against endpoints in order, starting from the
// last-known-good one. Connection-level failures (dial, TLS, timeout) rotate
// to the next endpoint; a *client.ClusterError means the cluster itself
// rejected the request and is surfaced immediately without rotation. After
// all endpoints fail, returns ErrAllNodesUnreachable wrapping the last error.
func (p *Pool) WithFailover(ctx context.Context, op func(c *client.Client) error) error {
	p.mu.Lock()
	start := p.preferred
	p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < len(p.clients); attempt++ {
		idx := (start + attempt) % len(p.clients)

		err := op(p.clients[idx])
		if err == nil {
			p.mu.Lock()
			p.preferred = idx
			p.mu.Unlock()
			return nil
		}

		if client.IsClusterError(err) || ctx.Err() != nil {
			return err
		}

		p.log.Warn("endpoint unavailable, trying next",
			"endpoint", p.endpoints[idx].String(), "error", err)
		lastErr = err
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrAllNodesUnreachable, len(p.clients), lastErr)
}
