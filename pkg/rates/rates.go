// Package rates holds the time-bucketed electricity rate tables used for
// carbon and cost accounting. A table maps (calendar month, hour of day)
// to a rate: grams CO2 per kWh for carbon intensity, or currency per kWh
// for price. Tables are immutable once loaded and shared read-only.
package rates

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	months = 12
	hours  = 24
	cells  = months * hours
)

var (
	// ErrMalformedTable indicates a reference file that does not cover
	// all 288 (month, hour) cells or contains non-numeric rates.
	ErrMalformedTable = errors.New("rates: malformed reference table")

	// ErrOutOfRange indicates a lookup outside month 1-12 / hour 0-23.
	// Correct callers never trigger it.
	ErrOutOfRange = errors.New("rates: month/hour out of range")
)

// Table is a month x hour rate matrix. The fixed-size array gives O(1)
// lookup and makes the "all cells populated" invariant checkable at load.
type Table struct {
	cells [months][hours]float64
}

// Scalar builds a table with the same rate in every cell.
func Scalar(rate float64) *Table {
	var t Table
	for m := 0; m < months; m++ {
		for h := 0; h < hours; h++ {
			t.cells[m][h] = rate
		}
	}
	return &t
}

// Load parses a tab-separated reference table with one row per cell:
// month (1-12), hour (0-23), rate. Lines starting with '#' and blank
// lines are skipped. Every one of the 288 cells must appear exactly once.
func Load(r io.Reader) (*Table, error) {
	var t Table
	var seen [months][hours]bool
	n := 0

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: want 3 columns (month hour rate), got %d", ErrMalformedTable, line, len(fields))
		}

		month, err := strconv.Atoi(fields[0])
		if err != nil || month < 1 || month > months {
			return nil, fmt.Errorf("%w: line %d: bad month %q", ErrMalformedTable, line, fields[0])
		}
		hour, err := strconv.Atoi(fields[1])
		if err != nil || hour < 0 || hour >= hours {
			return nil, fmt.Errorf("%w: line %d: bad hour %q", ErrMalformedTable, line, fields[1])
		}
		rate, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad rate %q", ErrMalformedTable, line, fields[2])
		}

		if seen[month-1][hour] {
			return nil, fmt.Errorf("%w: line %d: duplicate cell month=%d hour=%d", ErrMalformedTable, line, month, hour)
		}
		seen[month-1][hour] = true
		t.cells[month-1][hour] = rate
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("rates: read reference table: %w", err)
	}

	if n != cells {
		return nil, fmt.Errorf("%w: %d of %d cells populated", ErrMalformedTable, n, cells)
	}
	return &t, nil
}

// Rate returns the rate for the given month and hour of day.
func (t *Table) Rate(month time.Month, hour int) (float64, error) {
	if month < time.January || month > time.December || hour < 0 || hour >= hours {
		return 0, fmt.Errorf("%w: month=%d hour=%d", ErrOutOfRange, month, hour)
	}
	return t.cells[month-1][hour], nil
}
