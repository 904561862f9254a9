// Package efficiency computes reserved-versus-used resource ratios for
// jobs and per-user leaderboards over a query window.
package efficiency

import (
	"errors"
	"fmt"
	"sort"

	"github.com/opscart/hpc-carbon-reporter/pkg/models"
)

// ErrNoData indicates there is nothing to aggregate: no job records, or
// zero reserved resources across all of them. Callers surface it as
// "no data for period".
var ErrNoData = errors.New("efficiency: no data for period")

// Compute aggregates efficiency ratios over a set of job records.
// Ratios are duration-weighted so long jobs influence the result in
// proportion to their runtime, not per-job means. Memory waste is
// clamped at zero per job so misreported usage never offsets real waste.
func Compute(jobs []*models.JobRecord) (models.EfficiencyReport, error) {
	if len(jobs) == 0 {
		return models.EfficiencyReport{}, ErrNoData
	}

	var memUsedGBh, memReservedGBh float64
	var cpuUsedHours, coreReservedHours float64
	var wasteGBh float64

	for _, job := range jobs {
		h := job.Walltime().Hours()
		memUsedGBh += job.MemoryUsedGB * h
		memReservedGBh += job.MemoryReservedGB * h
		cpuUsedHours += job.CPUTimeUsed.Hours()
		coreReservedHours += float64(job.CoresReserved) * h

		if w := (job.MemoryReservedGB - job.MemoryUsedGB) * h; w > 0 {
			wasteGBh += w
		}
	}

	if memReservedGBh == 0 || coreReservedHours == 0 {
		return models.EfficiencyReport{}, fmt.Errorf("%w: zero reserved resources over %d jobs", ErrNoData, len(jobs))
	}

	return models.EfficiencyReport{
		MemoryEfficiency:   memUsedGBh / memReservedGBh,
		CPUEfficiency:      cpuUsedHours / coreReservedHours,
		MemoryWasteGBHours: wasteGBh,
		JobCount:           len(jobs),
	}, nil
}

// Metric selects the ranking key for a leaderboard.
type Metric string

const (
	MetricMemory Metric = "memory"
	MetricCPU    Metric = "cpus"
)

// UserStats is one leaderboard row.
type UserStats struct {
	User   string                  `json:"user"`
	Rank   int                     `json:"rank"`
	Report models.EfficiencyReport `json:"report"`
}

// Leaderboard groups job records by user, computes each user's
// efficiency report and ranks users by the chosen metric, best first.
// Users whose records carry no reserved resources are skipped.
func Leaderboard(jobs []*models.JobRecord, metric Metric) ([]UserStats, error) {
	if metric != MetricMemory && metric != MetricCPU {
		return nil, fmt.Errorf("efficiency: unknown leaderboard metric %q", metric)
	}

	byUser := make(map[string][]*models.JobRecord)
	for _, job := range jobs {
		byUser[job.User] = append(byUser[job.User], job)
	}

	stats := make([]UserStats, 0, len(byUser))
	for user, userJobs := range byUser {
		report, err := Compute(userJobs)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		stats = append(stats, UserStats{User: user, Report: report})
	}
	if len(stats) == 0 {
		return nil, ErrNoData
	}

	score := func(s UserStats) float64 {
		if metric == MetricCPU {
			return s.Report.CPUEfficiency
		}
		return s.Report.MemoryEfficiency
	}
	sort.Slice(stats, func(i, j int) bool {
		if score(stats[i]) != score(stats[j]) {
			return score(stats[i]) > score(stats[j])
		}
		return stats[i].User < stats[j].User
	})
	for i := range stats {
		stats[i].Rank = i + 1
	}
	return stats, nil
}
