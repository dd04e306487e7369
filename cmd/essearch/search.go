package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/dm/essearch-go/internal/client"
	"github.com/dm/essearch-go/internal/config"
	"github.com/dm/essearch-go/internal/emit"
	"github.com/dm/essearch-go/internal/logging"
	"github.com/dm/essearch-go/internal/pool"
	"github.com/dm/essearch-go/internal/query"
	"github.com/dm/essearch-go/internal/scroll"
	"github.com/dm/essearch-go/internal/timex"
)

// defaultLookback is the ambient time range used when neither earliest nor
// latest is given: the last hour up to the evaluation instant.
const defaultLookback = time.Hour

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a search (or admin action) described by key=value arguments",
		ArgsUsage: "eaddr=host:port[,host:port] index=logs-* [query=...] [earliest=now-1h] [latest=now] [action=indices-list|cluster-health] ...",
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, c.Args().Slice(), c.String("profiles"), c.String("output"), c.Bool("verbose"))
		},
	}
}

func run(ctx context.Context, args []string, profilesPath, output string, verbose bool) error {
	log := logging.New(os.Stderr, verbose).With("invocation", uuid.NewString())

	cfg, err := config.ParseArgs(args)
	if err != nil {
		return err
	}

	profiles, err := config.LoadProfiles(profilesPath)
	if err != nil {
		return err
	}
	if err := profiles.Apply(cfg); err != nil {
		return err
	}
	cfg.Normalize()

	p, err := pool.New(cfg.Eaddr, pool.Config{
		Username:           cfg.Username,
		Password:           cfg.Password,
		UseSSL:             cfg.SSLEnabled(),
		InsecureSkipVerify: cfg.SSLEnabled() && !cfg.VerifyEnabled(),
		AttemptTimeout:     cfg.Timeout,
	}, log)
	if err != nil {
		return err
	}

	writer, err := emit.NewWriter(output, os.Stdout, cfg.Action != "")
	if err != nil {
		return err
	}

	if cfg.Action != "" {
		return runAdmin(ctx, cfg, p, writer)
	}
	return runSearch(ctx, cfg, p, writer, log)
}

func runSearch(ctx context.Context, cfg *config.Search, p *pool.Pool, writer emit.Writer, log *slog.Logger) error {
	now := time.Now()
	tr, err := timex.Resolve(cfg.Earliest, cfg.Latest, timex.Range{
		Start: now.Add(-defaultLookback),
		End:   now,
	}, now)
	if err != nil {
		return err
	}

	desc, err := query.Plan(query.Config{
		Index:     cfg.Index,
		Query:     cfg.Query,
		TimeField: cfg.TimeField,
		Fields:    cfg.Fields,
		Types:     cfg.Types,
	}, tr)
	if err != nil {
		return err
	}

	log.Debug("search planned",
		"index", desc.Index,
		"range_start", tr.Start.Unix(),
		"range_end", tr.End.Unix(),
		"page_size", cfg.PageSize,
		"scan", cfg.Scan)

	if !cfg.Scan {
		return runSinglePage(ctx, cfg, p, desc, writer)
	}

	it, err := scroll.Open(ctx, p, desc, cfg.PageSize, scroll.DefaultKeepAlive, log)
	if err != nil {
		return err
	}
	defer func() {
		// Release the cursor even when ctx is already canceled or an error
		// aborted the scroll mid-way.
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		it.Close(closeCtx)
	}()

	var emitted int64
	for {
		hits, done, err := it.Next(ctx)
		for _, hit := range hits {
			rec, recErr := emit.FromHit(hit, desc.TimeField, cfg.IncludeES, cfg.IncludeRaw)
			if recErr != nil {
				return recErr
			}
			if writeErr := writer.Write(rec); writeErr != nil {
				return writeErr
			}
			emitted++
		}
		if err != nil {
			_ = writer.Flush()
			if errors.Is(err, scroll.ErrCursorExpired) {
				return fmt.Errorf("%w: %s records emitted, results may be incomplete",
					scroll.ErrCursorExpired, emit.FormatCount(emitted))
			}
			return err
		}
		if done {
			break
		}
	}

	if err := writer.Flush(); err != nil {
		return err
	}
	log.Debug("search complete", "records", emit.FormatCount(emitted))
	return nil
}

// runSinglePage is the scan=false path: one search request, at most one page
// of results, no cluster-side cursor.
func runSinglePage(ctx context.Context, cfg *config.Search, p *pool.Pool, desc query.Descriptor, writer emit.Writer) error {
	body := desc.Body(cfg.PageSize)
	var resp *client.SearchResponse
	err := p.WithFailover(ctx, func(c *client.Client) error {
		var opErr error
		resp, opErr = c.Search(ctx, desc.Target(), body, 0)
		return opErr
	})
	if err != nil {
		return err
	}

	for _, hit := range resp.Hits.Hits {
		rec, err := emit.FromHit(hit, desc.TimeField, cfg.IncludeES, cfg.IncludeRaw)
		if err != nil {
			return err
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return writer.Flush()
}
