package main

import (
	"context"
	"fmt"

	"github.com/dm/essearch-go/internal/admin"
	"github.com/dm/essearch-go/internal/client"
	"github.com/dm/essearch-go/internal/config"
	"github.com/dm/essearch-go/internal/emit"
	"github.com/dm/essearch-go/internal/pool"
)

// runAdmin dispatches the admin actions. The search-specific arguments
// (index, query, time bounds) are ignored here.
func runAdmin(ctx context.Context, cfg *config.Search, p *pool.Pool, writer emit.Writer) error {
	switch cfg.Action {
	case config.ActionIndicesList:
		indices, err := admin.ListIndices(ctx, p)
		if err != nil {
			return adminErr(err)
		}
		for _, idx := range indices {
			if err := writer.Write(admin.IndexRecord(idx)); err != nil {
				return err
			}
		}
		return writer.Flush()

	case config.ActionClusterHealth:
		summary, err := admin.ClusterHealth(ctx, p)
		if err != nil {
			return adminErr(err)
		}
		if err := writer.Write(admin.HealthRecord(summary)); err != nil {
			return err
		}
		return writer.Flush()

	default:
		return fmt.Errorf("unknown action %q", cfg.Action)
	}
}

// adminErr labels cluster-side rejections as operation failures; transport
// exhaustion keeps its own identity.
func adminErr(err error) error {
	if client.IsClusterError(err) {
		return fmt.Errorf("cluster operation failed: %w", err)
	}
	return err
}
