package timex

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestParse_Now(t *testing.T) {
	got, err := Parse("now", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, got)
}

func TestParse_RelativeUnits(t *testing.T) {
	cases := []struct {
		expr string
		want time.Duration
	}{
		{"now-30s", -30 * time.Second},
		{"now-5m", -5 * time.Minute},
		{"now-4h", -4 * time.Hour},
		{"now-2d", -48 * time.Hour},
		{"now-1w", -7 * 24 * time.Hour},
		{"now-1mon", -30 * 24 * time.Hour},
		{"now-1M", -30 * 24 * time.Hour},
		{"now-1y", -360 * 24 * time.Hour},
		{"now+15m", 15 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := Parse(tc.expr, testNow)
			require.NoError(t, err)
			assert.Equal(t, testNow.Add(tc.want), got)
		})
	}
}

func TestParse_OffsetsCompose(t *testing.T) {
	got, err := Parse("now-1d+2h", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-22*time.Hour), got)
}

// Larger offsets must resolve to strictly earlier instants.
func TestParse_MonotonicallyDecreasing(t *testing.T) {
	prev, err := Parse("now", testNow)
	require.NoError(t, err)
	for n := 1; n <= 10; n++ {
		got, err := Parse(fmt.Sprintf("now-%dh", n), testNow)
		require.NoError(t, err)
		assert.True(t, got.Before(prev), "now-%dh should be before now-%dh", n, n-1)
		prev = got
	}
}

func TestParse_Epoch(t *testing.T) {
	got, err := Parse("1718452800", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1718452800, 0), got)
}

func TestParse_AbsoluteLayouts(t *testing.T) {
	cases := []struct {
		expr string
		want time.Time
	}{
		{"2016-11-18", time.Date(2016, 11, 18, 0, 0, 0, 0, time.Local)},
		{"2016-11-18T23", time.Date(2016, 11, 18, 23, 0, 0, 0, time.Local)},
		{"2016-11-18T23:45", time.Date(2016, 11, 18, 23, 45, 0, 0, time.Local)},
		{"2016-11-18T23:45:30", time.Date(2016, 11, 18, 23, 45, 30, 0, time.Local)},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := Parse(tc.expr, testNow)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParse_InvalidExpressions(t *testing.T) {
	for _, expr := range []string{
		"", "yesterday", "now-", "now-4", "now-4x", "now4h", "now-4h-", "2016-13-45", "-4h",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr, testNow)
			assert.ErrorIs(t, err, ErrInvalidExpression)
		})
	}
}

func TestResolve_BothAbsentReturnsDefault(t *testing.T) {
	def := Range{Start: testNow.Add(-time.Hour), End: testNow}
	got, err := Resolve("", "", def, testNow)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestResolve_ExplicitRange(t *testing.T) {
	got, err := Resolve("now-1h", "now", Range{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-time.Hour), got.Start)
	assert.Equal(t, testNow, got.End)
}

func TestResolve_OnlyEarliestUsesDefaultEnd(t *testing.T) {
	def := Range{Start: testNow.Add(-24 * time.Hour), End: testNow}
	got, err := Resolve("now-2h", "", def, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-2*time.Hour), got.Start)
	assert.Equal(t, testNow, got.End)
}

func TestResolve_ReversedRangeFails(t *testing.T) {
	_, err := Resolve("now", "now-1h", Range{}, testNow)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// An empty range (start == end) is valid; it must yield zero documents
// downstream rather than an error here.
func TestResolve_EmptyRangeIsValid(t *testing.T) {
	got, err := Resolve("now", "now", Range{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, got.Start, got.End)
}

func TestResolve_BadExpressionSurfaces(t *testing.T) {
	_, err := Resolve("sometime", "now", Range{}, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidExpression))
}
