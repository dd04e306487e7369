// essearch searches a remote Elasticsearch cluster and streams the results
// back as flat records, translating the platform's earliest/latest time
// conventions into range filters. It also exposes two read-only admin
// actions (index listing, cluster health) over the same connection pool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:  "essearch",
		Usage: "Search Elasticsearch and stream results as flat records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "profiles",
				Usage: "Path to the TOML file of stored cluster profiles",
				Value: "essearch.toml",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output format: ndjson, csv or table (admin actions only)",
				Value: "ndjson",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging on stderr",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "essearch: %v\n", err)
		os.Exit(1)
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Println(version)
			return nil
		},
	}
}
