// Package query builds the search body sent to the cluster: the caller's
// opaque query string combined with the resolved time-range filter and an
// optional field projection. Pure planning, no I/O.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dm/essearch-go/internal/timex"
)

// ErrInvalidConfig is returned when a required search parameter is missing.
var ErrInvalidConfig = errors.New("invalid query configuration")

// DefaultTimeField is used when no timestamp field is configured.
const DefaultTimeField = "time"

// Config is the subset of the search configuration the planner consumes.
type Config struct {
	Index     string
	Query     string
	TimeField string
	Fields    []string
	Types     []string
}

// Descriptor fully describes one search: immutable once built, owned by the
// scroll iterator for the duration of that search.
type Descriptor struct {
	Index     string
	Query     string
	TimeField string
	Range     timex.Range
	Fields    []string // nil means full documents
	Types     []string // legacy doc types; empty on modern clusters
}

// Target is the search path target: the index pattern, optionally narrowed
// by legacy document types.
func (d Descriptor) Target() string {
	if len(d.Types) == 0 {
		return d.Index
	}
	return d.Index + "/" + strings.Join(d.Types, ",")
}

// Plan validates cfg and builds a Descriptor for the given time range.
// When a projection is requested the timestamp field is force-included so
// every emitted record can carry its event time.
func Plan(cfg Config, tr timex.Range) (Descriptor, error) {
	if cfg.Index == "" {
		return Descriptor{}, fmt.Errorf("%w: index is required", ErrInvalidConfig)
	}
	if cfg.Query == "" {
		return Descriptor{}, fmt.Errorf("%w: query is required", ErrInvalidConfig)
	}

	tsField := cfg.TimeField
	if tsField == "" {
		tsField = DefaultTimeField
	}

	var fields []string
	if len(cfg.Fields) > 0 {
		fields = slices.Clone(cfg.Fields)
		if !slices.Contains(fields, tsField) {
			fields = append(fields, tsField)
		}
	}

	return Descriptor{
		Index:     cfg.Index,
		Query:     cfg.Query,
		TimeField: tsField,
		Range:     tr,
		Fields:    fields,
		Types:     slices.Clone(cfg.Types),
	}, nil
}

// Body renders the descriptor as a search request body. The time-range
// filter is a required bool clause beside the query string, results are
// sorted ascending on the timestamp field, and the page size caps each
// batch.
func (d Descriptor) Body(pageSize int) map[string]any {
	body := map[string]any{
		"size": pageSize,
		"sort": []any{
			map[string]any{d.TimeField: map[string]any{"order": "asc"}},
		},
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{
						"range": map[string]any{
							d.TimeField: map[string]any{
								"gte": d.Range.Start.Unix(),
								"lt":  d.Range.End.Unix(),
							},
						},
					},
					map[string]any{
						"query_string": map[string]any{"query": d.Query},
					},
				},
			},
		},
	}

	if len(d.Fields) > 0 {
		body["_source"] = map[string]any{"includes": d.Fields}
	}

	return body
}
