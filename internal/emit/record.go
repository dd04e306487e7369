// Package emit turns search hits into the flat records the host platform
// consumes and streams them out in the configured format.
package emit

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dm/essearch-go/internal/client"
	"github.com/dm/essearch-go/internal/flatten"
)

// Record is one flat output row, in emission order.
type Record []flatten.Pair

// Get returns the value for key, or "" when absent.
func (r Record) Get(key string) string {
	for _, p := range r {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// FromHit flattens a single hit into a Record. The timestamp field leads the
// record as _time; the remaining source fields follow in flattened order.
// includeES appends the cluster metadata keys (es_index, es_type, es_id,
// es_score), includeRaw appends the whole hit as a JSON string under _raw.
func FromHit(hit client.Hit, tsField string, includeES, includeRaw bool) (Record, error) {
	pairs, err := flatten.Document(hit.Source)
	if err != nil {
		return nil, fmt.Errorf("hit %s: %w", hit.ID, err)
	}

	rec := make(Record, 0, len(pairs)+5)
	rec = append(rec, flatten.Pair{Key: "_time", Value: eventTime(pairs, tsField)})
	for _, p := range pairs {
		if p.Key == tsField {
			continue
		}
		rec = append(rec, p)
	}

	if includeES {
		score := ""
		if hit.Score != nil {
			score = strconv.FormatFloat(*hit.Score, 'f', -1, 64)
		}
		rec = append(rec,
			flatten.Pair{Key: "es_index", Value: hit.Index},
			flatten.Pair{Key: "es_type", Value: hit.Type},
			flatten.Pair{Key: "es_id", Value: hit.ID},
			flatten.Pair{Key: "es_score", Value: score},
		)
	}

	if includeRaw {
		raw, err := json.Marshal(hit)
		if err != nil {
			return nil, fmt.Errorf("hit %s: encode raw: %w", hit.ID, err)
		}
		rec = append(rec, flatten.Pair{Key: "_raw", Value: string(raw)})
	}

	return rec, nil
}

// eventTime pulls the timestamp value out of the flattened source. Missing
// timestamps produce an empty _time rather than an error: projections and
// sparse documents are normal.
func eventTime(pairs []flatten.Pair, tsField string) string {
	for _, p := range pairs {
		if p.Key == tsField {
			return p.Value
		}
	}
	return ""
}
