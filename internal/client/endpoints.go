package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	endpointClusterHealth = "/_cluster/health?filter_path=cluster_name,status,number_of_nodes,number_of_data_nodes,active_primary_shards,active_shards,relocating_shards,unassigned_shards"
	endpointNodes         = "/_cat/nodes?format=json&h=node.role,name,ip&s=node.role,ip"
	endpointIndices       = "/_cat/indices?format=json&h=health,status,index,pri,rep,docs.count,store.size&s=index"
	endpointScroll        = "/_search/scroll"
)

// Search issues the initial search request against the given target (an
// index pattern, optionally followed by /doc-types on legacy clusters). A
// non-zero scroll duration requests a server-side cursor with that
// keep-alive; the response then carries the scroll id for ScrollNext.
func (c *Client) Search(ctx context.Context, target string, body any, scroll time.Duration) (*SearchResponse, error) {
	segments := strings.Split(target, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	path := "/" + strings.Join(segments, "/") + "/_search"
	if scroll > 0 {
		path += "?scroll=" + scrollTTL(scroll)
	}

	raw, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var result SearchResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("Search decode: %w", err)
	}
	return &result, nil
}

// ScrollNext fetches the next page for an open cursor, refreshing its
// keep-alive. An empty hit list signals exhaustion.
func (c *Client) ScrollNext(ctx context.Context, scrollID string, keepAlive time.Duration) (*SearchResponse, error) {
	body := map[string]any{
		"scroll":    scrollTTL(keepAlive),
		"scroll_id": scrollID,
	}

	raw, err := c.do(ctx, http.MethodPost, endpointScroll, body)
	if err != nil {
		return nil, fmt.Errorf("ScrollNext: %w", err)
	}

	var result SearchResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("ScrollNext decode: %w", err)
	}
	return &result, nil
}

// ClearScroll releases a server-side cursor.
func (c *Client) ClearScroll(ctx context.Context, scrollID string) error {
	body := map[string]any{"scroll_id": []string{scrollID}}
	if _, err := c.do(ctx, http.MethodDelete, endpointScroll, body); err != nil {
		return fmt.Errorf("ClearScroll: %w", err)
	}
	return nil
}

// Health fetches cluster health from /_cluster/health.
func (c *Client) Health(ctx context.Context) (*ClusterHealth, error) {
	body, err := c.doGet(ctx, endpointClusterHealth)
	if err != nil {
		return nil, fmt.Errorf("Health: %w", err)
	}

	var result ClusterHealth
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("Health decode: %w", err)
	}
	return &result, nil
}

// CatNodes fetches the list of nodes from /_cat/nodes.
func (c *Client) CatNodes(ctx context.Context) ([]NodeInfo, error) {
	body, err := c.doGet(ctx, endpointNodes)
	if err != nil {
		return nil, fmt.Errorf("CatNodes: %w", err)
	}

	var result []NodeInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("CatNodes decode: %w", err)
	}
	return result, nil
}

// CatIndices fetches the list of indices from /_cat/indices.
func (c *Client) CatIndices(ctx context.Context) ([]IndexInfo, error) {
	body, err := c.doGet(ctx, endpointIndices)
	if err != nil {
		return nil, fmt.Errorf("CatIndices: %w", err)
	}

	var result []IndexInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("CatIndices decode: %w", err)
	}
	return result, nil
}

// scrollTTL renders a keep-alive duration in the short form ES expects
// (whole seconds, e.g. "60s").
func scrollTTL(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%ds", secs)
}
