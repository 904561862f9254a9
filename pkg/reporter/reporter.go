// Package reporter renders computed emission and efficiency results for
// the terminal and for machine consumption.
package reporter

import (
	"time"

	"github.com/opscart/hpc-carbon-reporter/pkg/efficiency"
	"github.com/opscart/hpc-carbon-reporter/pkg/models"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Report contains all data for rendering one emission run.
type Report struct {
	Location    string                 `json:"location,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	Summary     models.Summary         `json:"summary"`
	Equivalents map[string]float64     `json:"equivalents,omitempty"`
	OffsetMin   float64                `json:"offset_cost_min,omitempty"`
	OffsetMax   float64                `json:"offset_cost_max,omitempty"`
	Leaderboard []efficiency.UserStats `json:"leaderboard,omitempty"`
}

// Build assembles a report from an aggregate summary.
func Build(location string, summary models.Summary) *Report {
	return &Report{
		Location:    location,
		GeneratedAt: time.Now(),
		Summary:     summary,
	}
}

// WithEquivalents attaches emission equivalents and offset price range.
func (r *Report) WithEquivalents(eq map[string]float64, offsetMin, offsetMax float64) *Report {
	r.Equivalents = eq
	r.OffsetMin = offsetMin
	r.OffsetMax = offsetMax
	return r
}

// WithLeaderboard attaches per-user efficiency rankings.
func (r *Report) WithLeaderboard(stats []efficiency.UserStats) *Report {
	r.Leaderboard = stats
	return r
}
