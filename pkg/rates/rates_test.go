package rates

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullTable renders a complete 288-row reference table where the rate of
// cell (m, h) is rate(m, h).
func fullTable(rate func(month, hour int) float64) string {
	var b strings.Builder
	b.WriteString("# month\thour\trate\n")
	for m := 1; m <= 12; m++ {
		for h := 0; h < 24; h++ {
			fmt.Fprintf(&b, "%d\t%d\t%g\n", m, h, rate(m, h))
		}
	}
	return b.String()
}

func TestScalarPopulatesEveryCell(t *testing.T) {
	table := Scalar(191.0)

	for m := time.January; m <= time.December; m++ {
		for h := 0; h < 24; h++ {
			rate, err := table.Rate(m, h)
			require.NoError(t, err)
			assert.Equal(t, 191.0, rate)
		}
	}
}

func TestLoadFullTable(t *testing.T) {
	src := fullTable(func(m, h int) float64 { return float64(m*100 + h) })

	table, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	rate, err := table.Rate(time.May, 23)
	require.NoError(t, err)
	assert.Equal(t, 523.0, rate)

	rate, err = table.Rate(time.January, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rate)
}

func TestLoadRejectsIncompleteTable(t *testing.T) {
	src := fullTable(func(m, h int) float64 { return 1 })
	lines := strings.Split(strings.TrimSpace(src), "\n")
	truncated := strings.Join(lines[:len(lines)-1], "\n")

	_, err := Load(strings.NewReader(truncated))
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestLoadRejectsNonNumericRate(t *testing.T) {
	src := "1\t0\tnot-a-number\n"

	_, err := Load(strings.NewReader(src))
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestLoadRejectsDuplicateCell(t *testing.T) {
	src := fullTable(func(m, h int) float64 { return 1 }) + "5\t10\t2\n"

	_, err := Load(strings.NewReader(src))
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestLoadRejectsShortRow(t *testing.T) {
	_, err := Load(strings.NewReader("1\t0\n"))
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestLoadRejectsOutOfRangeCell(t *testing.T) {
	_, err := Load(strings.NewReader("13\t0\t5\n"))
	assert.ErrorIs(t, err, ErrMalformedTable)

	_, err = Load(strings.NewReader("1\t24\t5\n"))
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestRateOutOfRange(t *testing.T) {
	table := Scalar(1)

	_, err := table.Rate(time.Month(13), 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = table.Rate(time.Month(0), 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = table.Rate(time.May, 24)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = table.Rate(time.May, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
