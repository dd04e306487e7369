// Package flatten renders arbitrary document trees into flat key→value
// pairs for a tabular consumer. Objects produce dotted paths, arrays
// bracketed indices; on a key collision the last write wins.
package flatten

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MaxDepth bounds recursion on pathological inputs. Subtrees below the cap
// are serialized to a JSON string in place.
const MaxDepth = 32

// Pair is one flattened field. Pairs preserve document order.
type Pair struct {
	Key   string
	Value string
}

// Document flattens a raw JSON object into ordered pairs.
func Document(raw json.RawMessage) ([]Pair, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return Tree(doc), nil
}

// Tree flattens an already-decoded value. Keys at each level are visited in
// sorted order so output is deterministic (decoded JSON maps are unordered).
func Tree(v any) []Pair {
	var out []Pair
	walk("", v, 0, &out)
	return dedupe(out)
}

func walk(prefix string, v any, depth int, out *[]Pair) {
	if depth >= MaxDepth {
		*out = append(*out, Pair{Key: prefix, Value: Scalar(v)})
		return
	}

	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(joinKey(prefix, k), val[k], depth+1, out)
		}
	case []any:
		for i, item := range val {
			walk(prefix+"["+strconv.Itoa(i)+"]", item, depth+1, out)
		}
	default:
		*out = append(*out, Pair{Key: prefix, Value: Scalar(val)})
	}
}

// Scalar renders a leaf value as a string. Numbers keep their shortest
// representation, nil becomes empty, and anything non-scalar falls back to
// its JSON form.
func Scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// dedupe drops earlier occurrences of duplicated keys, keeping the last
// value and the position of the first occurrence.
func dedupe(pairs []Pair) []Pair {
	last := make(map[string]string, len(pairs))
	for _, p := range pairs {
		last[p.Key] = p.Value
	}
	if len(last) == len(pairs) {
		return pairs
	}

	seen := make(map[string]bool, len(last))
	out := pairs[:0]
	for _, p := range pairs {
		if seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		out = append(out, Pair{Key: p.Key, Value: last[p.Key]})
	}
	return out
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
