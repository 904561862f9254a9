package carbon

import (
	"fmt"
	"time"
)

// Bucket is one (calendar month, hour of day) cell of a rate table.
type Bucket struct {
	Month time.Month
	Hour  int
}

// Allocation maps buckets to the fractional hours an execution window
// spent in them. The values sum to the window's wall-clock duration.
// A bucket visited on several days (a multi-day job passing through the
// same hour of day repeatedly) accumulates across all visits.
type Allocation map[Bucket]float64

// TotalHours returns the summed fractional hours of the allocation.
func (a Allocation) TotalHours() float64 {
	total := 0.0
	for _, h := range a {
		total += h
	}
	return total
}

// Decompose splits the window [start, end) into hour-aligned segments
// and attributes each segment's duration, in fractional hours, to the
// bucket of the segment's start instant. Bucket boundaries follow the
// timestamps' own location: month boundaries fall on midnight, so
// hour-aligned segments never straddle one. A segment starting exactly
// on an hour boundary belongs to the hour beginning there. A zero-length
// window yields an empty allocation.
//
// Linear in the number of hour boundaries crossed.
func Decompose(start, end time.Time) (Allocation, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("carbon: window end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	alloc := Allocation{}
	for cur := start; cur.Before(end); {
		next := hourAfter(cur)
		if next.After(end) {
			next = end
		}
		b := Bucket{Month: cur.Month(), Hour: cur.Hour()}
		alloc[b] += next.Sub(cur).Hours()
		cur = next
	}
	return alloc, nil
}

// hourAfter returns the first wall-clock hour boundary strictly after t.
func hourAfter(t time.Time) time.Time {
	boundary := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return boundary.Add(time.Hour)
}
