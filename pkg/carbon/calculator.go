// Package carbon implements the energy and emissions accounting engine:
// execution windows are decomposed into (month, hour-of-day) buckets and
// combined with per-unit power draw and time-varying electricity rates.
package carbon

import (
	"errors"
	"fmt"
	"time"

	"github.com/opscart/hpc-carbon-reporter/pkg/hardware"
	"github.com/opscart/hpc-carbon-reporter/pkg/models"
	"github.com/opscart/hpc-carbon-reporter/pkg/rates"
)

// ErrIncompleteUsage indicates a job record without the timing fields
// required for accounting (start/end for historical jobs, walltime for
// forecasts).
var ErrIncompleteUsage = errors.New("carbon: incomplete job usage")

// Calculator computes emission reports for job records against a fixed
// hardware spec and rate tables. priceRates may be nil, in which case
// reports carry no cost. A Calculator is read-only after construction.
type Calculator struct {
	hw         hardware.Spec
	carbonRate *rates.Table
	priceRate  *rates.Table
	currency   string
}

// NewCalculator builds a calculator. priceRates may be nil to disable
// cost estimation.
func NewCalculator(hw hardware.Spec, carbonRates, priceRates *rates.Table, currency string) *Calculator {
	return &Calculator{
		hw:         hw,
		carbonRate: carbonRates,
		priceRate:  priceRates,
		currency:   currency,
	}
}

// Compute produces the emission report for one job. Power is drawn for
// the reserved allocation for the job's whole lifetime, so reservation
// figures (not usage) drive energy. Carbon and cost apply the bucket's
// rate to the bucket's energy share before summing, since rates vary
// across buckets.
func (c *Calculator) Compute(job *models.JobRecord) (models.EmissionReport, error) {
	if !job.HasTiming() {
		return models.EmissionReport{}, fmt.Errorf("%w: job %s has no start/end time", ErrIncompleteUsage, job.JobID)
	}

	alloc, err := Decompose(job.StartTime, job.EndTime)
	if err != nil {
		return models.EmissionReport{}, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	powerKW := (float64(job.CoresReserved)*c.hw.CPUWattsPerCore +
		float64(job.GPUsUsed)*c.hw.GPUWattsPerUnit +
		job.MemoryReservedGB*c.hw.RAMWattsPerGB) / 1000.0

	var energyKWh, carbonG, cost float64
	for b, dt := range alloc {
		energyKWh += dt * powerKW

		intensity, err := c.carbonRate.Rate(b.Month, b.Hour)
		if err != nil {
			return models.EmissionReport{}, fmt.Errorf("job %s: carbon rate: %w", job.JobID, err)
		}
		carbonG += dt * powerKW * intensity

		if c.priceRate != nil {
			price, err := c.priceRate.Rate(b.Month, b.Hour)
			if err != nil {
				return models.EmissionReport{}, fmt.Errorf("job %s: price rate: %w", job.JobID, err)
			}
			cost += dt * powerKW * price
		}
	}

	report := models.EmissionReport{EnergyKWh: energyKWh, CarbonG: carbonG}
	if c.priceRate != nil {
		report.Cost = &models.CostEstimate{Amount: cost, Currency: c.currency}
	}
	return report, nil
}

// ComputeAll computes per-job reports and their summary for a batch of
// jobs. Jobs are independent; the result is a plain summation.
func (c *Calculator) ComputeAll(jobs []*models.JobRecord) ([]models.EmissionReport, models.Summary, error) {
	reports := make([]models.EmissionReport, 0, len(jobs))
	for _, job := range jobs {
		rep, err := c.Compute(job)
		if err != nil {
			return nil, models.Summary{}, err
		}
		reports = append(reports, rep)
	}
	return reports, Summarize(jobs, reports), nil
}

// Total sums emission reports. Cost is present if any input carries one.
func Total(reports []models.EmissionReport) models.EmissionReport {
	var total models.EmissionReport
	for _, r := range reports {
		total.EnergyKWh += r.EnergyKWh
		total.CarbonG += r.CarbonG
		if r.Cost != nil {
			if total.Cost == nil {
				total.Cost = &models.CostEstimate{Currency: r.Cost.Currency}
			}
			total.Cost.Amount += r.Cost.Amount
		}
	}
	return total
}

// Summarize builds the aggregate summary for a batch: summed emission
// figures plus the overall span covered by the jobs' execution windows.
func Summarize(jobs []*models.JobRecord, reports []models.EmissionReport) models.Summary {
	s := models.Summary{
		JobCount:       len(jobs),
		EmissionReport: Total(reports),
	}
	for _, job := range jobs {
		if s.Start.IsZero() || job.StartTime.Before(s.Start) {
			s.Start = job.StartTime
		}
		if job.EndTime.After(s.End) {
			s.End = job.EndTime
		}
		s.CPUTimeHours += job.CPUTimeUsed.Hours()
	}
	if !s.Start.IsZero() {
		s.WalltimeHours = s.End.Sub(s.Start).Hours()
	}
	return s
}

// ForecastJob builds a synthetic record for a hypothetical job starting
// at now, evaluated against the current rate tables. CPU time assumes
// full utilization of the reserved cores.
func ForecastJob(now time.Time, walltime time.Duration, cores int, memGB float64, gpus int) (*models.JobRecord, error) {
	if walltime <= 0 {
		return nil, fmt.Errorf("%w: forecast requires a positive walltime", ErrIncompleteUsage)
	}
	if cores < 1 {
		cores = 1
	}
	if memGB < 0 {
		memGB = 0
	}
	return &models.JobRecord{
		JobID:            "forecast",
		StartTime:        now,
		EndTime:          now.Add(walltime),
		CoresUsed:        cores,
		CoresReserved:    cores,
		MemoryUsedGB:     memGB,
		MemoryReservedGB: memGB,
		GPUsUsed:         gpus,
		CPUTimeUsed:      time.Duration(cores) * walltime,
	}, nil
}
