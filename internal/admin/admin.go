// Package admin implements the read-only administrative actions: index
// listing and a cluster health summary. Both reuse the node pool and need no
// time range or query plan.
package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dm/essearch-go/internal/client"
	"github.com/dm/essearch-go/internal/emit"
	"github.com/dm/essearch-go/internal/flatten"
	"github.com/dm/essearch-go/internal/pool"
)

// IndexDescriptor is one row of the index listing.
type IndexDescriptor struct {
	Name      string
	Health    string
	Status    string
	Primaries string
	Replicas  string
	DocsCount string
	StoreSize string
}

// HealthSummary combines /_cluster/health with the node listing into a
// single fixed-shape row.
type HealthSummary struct {
	ClusterName         string
	Status              string
	Nodes               int
	DataNodes           int
	ActivePrimaryShards int
	ActiveShards        int
	RelocatingShards    int
	UnassignedShards    int
	NodeNames           []string
}

// ListIndices returns one descriptor per index reported by the cluster, in
// the cluster's (name-sorted) order.
func ListIndices(ctx context.Context, p *pool.Pool) ([]IndexDescriptor, error) {
	var infos []client.IndexInfo
	err := p.WithFailover(ctx, func(c *client.Client) error {
		var opErr error
		infos, opErr = c.CatIndices(ctx)
		return opErr
	})
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}

	out := make([]IndexDescriptor, len(infos))
	for i, info := range infos {
		out[i] = IndexDescriptor{
			Name:      info.Index,
			Health:    info.Health,
			Status:    info.Status,
			Primaries: info.Pri,
			Replicas:  info.Rep,
			DocsCount: info.DocsCount,
			StoreSize: info.StoreSize,
		}
	}
	return out, nil
}

// ClusterHealth fetches the health document and the node listing
// concurrently and merges them into one summary. Both requests go through
// pool failover independently.
func ClusterHealth(ctx context.Context, p *pool.Pool) (*HealthSummary, error) {
	var (
		health *client.ClusterHealth
		nodes  []client.NodeInfo
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.WithFailover(gctx, func(c *client.Client) error {
			var opErr error
			health, opErr = c.Health(gctx)
			return opErr
		})
	})

	g.Go(func() error {
		return p.WithFailover(gctx, func(c *client.Client) error {
			var opErr error
			nodes, opErr = c.CatNodes(gctx)
			return opErr
		})
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cluster health: %w", err)
	}

	summary := &HealthSummary{
		ClusterName:         health.ClusterName,
		Status:              health.Status,
		Nodes:               health.NumberOfNodes,
		DataNodes:           health.NumberOfDataNodes,
		ActivePrimaryShards: health.ActivePrimaryShards,
		ActiveShards:        health.ActiveShards,
		RelocatingShards:    health.RelocatingShards,
		UnassignedShards:    health.UnassignedShards,
	}
	for _, n := range nodes {
		summary.NodeNames = append(summary.NodeNames, n.Name)
	}
	return summary, nil
}

// IndexRecord renders an index descriptor as an output record.
func IndexRecord(d IndexDescriptor) emit.Record {
	return emit.Record{
		{Key: "index", Value: d.Name},
		{Key: "health", Value: d.Health},
		{Key: "status", Value: d.Status},
		{Key: "pri", Value: d.Primaries},
		{Key: "rep", Value: d.Replicas},
		{Key: "docs.count", Value: d.DocsCount},
		{Key: "store.size", Value: d.StoreSize},
	}
}

// HealthRecord renders the health summary as a single output record.
func HealthRecord(s *HealthSummary) emit.Record {
	rec := emit.Record{
		{Key: "cluster_name", Value: s.ClusterName},
		{Key: "status", Value: s.Status},
		{Key: "nodes", Value: strconv.Itoa(s.Nodes)},
		{Key: "data_nodes", Value: strconv.Itoa(s.DataNodes)},
		{Key: "active_primary_shards", Value: strconv.Itoa(s.ActivePrimaryShards)},
		{Key: "active_shards", Value: strconv.Itoa(s.ActiveShards)},
		{Key: "relocating_shards", Value: strconv.Itoa(s.RelocatingShards)},
		{Key: "unassigned_shards", Value: strconv.Itoa(s.UnassignedShards)},
	}
	if len(s.NodeNames) > 0 {
		rec = append(rec, flatten.Pair{Key: "node_names", Value: strings.Join(s.NodeNames, ",")})
	}
	return rec
}
