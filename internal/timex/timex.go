// Package timex resolves the platform's earliest/latest time expressions
// into a concrete half-open timestamp range.
package timex

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrInvalidExpression is returned when a time expression does not match
	// any accepted grammar.
	ErrInvalidExpression = errors.New("invalid time expression")

	// ErrInvalidRange is returned when the resolved earliest instant is later
	// than the resolved latest instant. Bounds are never swapped silently.
	ErrInvalidRange = errors.New("invalid time range: earliest is after latest")
)

// Range is a half-open interval [Start, End). Start == End is a valid, empty
// range; a search over it matches nothing.
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether both bounds are unset.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// unitSeconds maps relative-offset units to their length in seconds.
// mon and y use the 30-day and 360-day calendar convention.
var unitSeconds = map[string]int64{
	"s":   1,
	"m":   60,
	"h":   3600,
	"d":   86400,
	"w":   604800,
	"mon": 2592000,
	"M":   2592000,
	"y":   31104000,
}

var (
	reEpoch  = regexp.MustCompile(`^\d+$`)
	reOffset = regexp.MustCompile(`^([+-])(\d+)(mon|[smhdwMy])`)
)

// absoluteLayouts are tried in order, longest first. Parsed in local time.
var absoluteLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// Resolve converts the earliest/latest expressions into a Range evaluated at
// now. Both expressions empty returns def unchanged (the ambient range
// supplied by the invoking environment). A single empty expression falls back
// to the corresponding bound of def.
func Resolve(earliest, latest string, def Range, now time.Time) (Range, error) {
	if earliest == "" && latest == "" {
		return def, nil
	}

	start := def.Start
	end := def.End

	if latest != "" {
		t, err := Parse(latest, now)
		if err != nil {
			return Range{}, fmt.Errorf("latest: %w", err)
		}
		end = t
	}
	if earliest != "" {
		t, err := Parse(earliest, now)
		if err != nil {
			return Range{}, fmt.Errorf("earliest: %w", err)
		}
		start = t
	}

	if start.After(end) {
		return Range{}, fmt.Errorf("%w (%s > %s)",
			ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{Start: start, End: end}, nil
}

// Parse evaluates a single time expression at the instant now. Accepted
// forms: unix epoch seconds, "now", "now" followed by one or more signed
// offsets (e.g. "now-4h", "now-1d+30m"), and the absolute layouts
// 2006-01-02[T15[:04[:05]]] interpreted in local time.
func Parse(expr string, now time.Time) (time.Time, error) {
	if expr == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	if reEpoch.MatchString(expr) {
		secs, err := strconv.ParseInt(expr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
		}
		return time.Unix(secs, 0), nil
	}

	if len(expr) >= 3 && expr[:3] == "now" {
		return parseRelative(expr, now)
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, expr, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
}

// parseRelative evaluates "now" with zero or more chained signed offsets.
// Offsets compose additively from the evaluation instant.
func parseRelative(expr string, now time.Time) (time.Time, error) {
	rest := expr[3:]
	t := now

	for rest != "" {
		m := reOffset.FindStringSubmatch(rest)
		if m == nil {
			return time.Time{}, fmt.Errorf("%w: %q (bad offset at %q)", ErrInvalidExpression, expr, rest)
		}
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
		}
		delta := time.Duration(n*unitSeconds[m[3]]) * time.Second
		if m[1] == "-" {
			t = t.Add(-delta)
		} else {
			t = t.Add(delta)
		}
		rest = rest[len(m[0]):]
	}

	return t, nil
}
