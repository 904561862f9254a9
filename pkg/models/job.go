package models

import "time"

// JobRecord represents one finished (or forecast) batch job as recorded
// by the queueing system. For forecast jobs EndTime is the evaluation
// instant plus the requested walltime.
type JobRecord struct {
	JobID string
	User  string

	StartTime time.Time
	EndTime   time.Time

	// Cores and memory as reported by the scheduler. Reserved figures
	// drive power draw; used figures drive efficiency metrics.
	CoresUsed     int
	CoresReserved int

	MemoryUsedGB     float64
	MemoryReservedGB float64

	GPUsUsed int

	// Aggregate CPU time across all cores, as opposed to walltime.
	CPUTimeUsed time.Duration
}

// Walltime returns the wall-clock duration of the job.
func (j *JobRecord) Walltime() time.Duration {
	return j.EndTime.Sub(j.StartTime)
}

// HasTiming reports whether both timing fields are present.
func (j *JobRecord) HasTiming() bool {
	return !j.StartTime.IsZero() && !j.EndTime.IsZero()
}
