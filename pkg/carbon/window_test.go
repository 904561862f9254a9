package carbon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeZeroLengthWindow(t *testing.T) {
	at := time.Date(2024, time.May, 12, 10, 15, 0, 0, time.UTC)

	alloc, err := Decompose(at, at)
	require.NoError(t, err)
	assert.Empty(t, alloc)
	assert.Zero(t, alloc.TotalHours())
}

func TestDecomposeWithinSingleHour(t *testing.T) {
	start := time.Date(2024, time.May, 12, 10, 15, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)

	alloc, err := Decompose(start, end)
	require.NoError(t, err)

	require.Len(t, alloc, 1)
	assert.InDelta(t, 20.0/60.0, alloc[Bucket{time.May, 10}], 1e-12)
}

func TestDecomposeCrossesMidnight(t *testing.T) {
	// 2024-05-12T23:30 to 2024-05-13T01:30: two hours across a day boundary.
	start := time.Date(2024, time.May, 12, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 13, 1, 30, 0, 0, time.UTC)

	alloc, err := Decompose(start, end)
	require.NoError(t, err)

	require.Len(t, alloc, 3)
	assert.InDelta(t, 0.5, alloc[Bucket{time.May, 23}], 1e-12)
	assert.InDelta(t, 1.0, alloc[Bucket{time.May, 0}], 1e-12)
	assert.InDelta(t, 0.5, alloc[Bucket{time.May, 1}], 1e-12)
	assert.InDelta(t, 2.0, alloc.TotalHours(), 1e-12)
}

func TestDecomposeCrossesMonthBoundary(t *testing.T) {
	start := time.Date(2024, time.April, 30, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 1, 0, 30, 0, 0, time.UTC)

	alloc, err := Decompose(start, end)
	require.NoError(t, err)

	require.Len(t, alloc, 2)
	assert.InDelta(t, 0.5, alloc[Bucket{time.April, 23}], 1e-12)
	assert.InDelta(t, 0.5, alloc[Bucket{time.May, 0}], 1e-12)
}

func TestDecomposeMultiDayAccumulatesBuckets(t *testing.T) {
	// 48 hours starting on an hour boundary: every hour-of-day bucket is
	// visited twice.
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	alloc, err := Decompose(start, end)
	require.NoError(t, err)

	require.Len(t, alloc, 24)
	for hour := 0; hour < 24; hour++ {
		assert.InDelta(t, 2.0, alloc[Bucket{time.July, hour}], 1e-12, "hour %d", hour)
	}
	assert.InDelta(t, 48.0, alloc.TotalHours(), 1e-9)
}

func TestDecomposeHourBoundaryBelongsToNewHour(t *testing.T) {
	start := time.Date(2024, time.May, 12, 11, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	alloc, err := Decompose(start, end)
	require.NoError(t, err)

	require.Len(t, alloc, 1)
	assert.InDelta(t, 0.5, alloc[Bucket{time.May, 11}], 1e-12)
}

func TestDecomposeTotalMatchesWallClock(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		d     time.Duration
	}{
		{"sub-hour", time.Date(2024, time.January, 3, 9, 12, 34, 0, time.UTC), 17 * time.Minute},
		{"aligned start", time.Date(2024, time.February, 28, 22, 0, 0, 0, time.UTC), 5 * time.Hour},
		{"week long", time.Date(2024, time.March, 29, 13, 45, 10, 0, time.UTC), 7*24*time.Hour + 23*time.Minute},
		{"odd seconds", time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC), 3611 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alloc, err := Decompose(tc.start, tc.start.Add(tc.d))
			require.NoError(t, err)
			assert.InDelta(t, tc.d.Hours(), alloc.TotalHours(), 1e-9)
		})
	}
}

func TestDecomposeRejectsReversedWindow(t *testing.T) {
	start := time.Date(2024, time.May, 12, 10, 0, 0, 0, time.UTC)

	_, err := Decompose(start, start.Add(-time.Minute))
	assert.Error(t, err)
}
