// Package client implements the HTTP transport to a single Elasticsearch
// endpoint: search and scroll requests plus the read-only cat/health
// endpoints. Endpoint selection and failover live in the pool package.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds configuration for a Client bound to one endpoint.
type Config struct {
	BaseURL            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

// Client talks to a single Elasticsearch endpoint over net/http.
type Client struct {
	http   *http.Client
	config Config
}

// New constructs a Client from the given config. It configures TLS
// skip-verify and request timeout from the config. Returns an error if
// BaseURL is empty.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
	}, nil
}

// BaseURL returns the configured base URL of the endpoint.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// ClusterError is a non-2xx response from the cluster itself: the request
// reached Elasticsearch and was rejected (bad query, missing index, expired
// scroll context). It is never retried on another endpoint.
type ClusterError struct {
	StatusCode int
	Body       string
}

func (e *ClusterError) Error() string {
	return fmt.Sprintf("cluster returned status %d: %s", e.StatusCode, e.Body)
}

// IsClusterError reports whether err wraps a ClusterError.
func IsClusterError(err error) bool {
	var ce *ClusterError
	return errors.As(err, &ce)
}

const maxResponseBytes = 32 * 1024 * 1024 // 32 MB — well above any real ES page

// do performs an HTTP request to the given path (relative to BaseURL) with an
// optional JSON body. It sets Accept/Content-Type and Basic Auth if
// credentials are configured. Non-2xx statuses become *ClusterError; anything
// that prevents a response (dial, TLS, timeout) is returned as a plain
// transport error.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.config.Username != "" || c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ClusterError{StatusCode: resp.StatusCode, Body: truncate(respBody, 200)}
	}

	return respBody, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
