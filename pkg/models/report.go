package models

import "time"

// CostEstimate is an electricity cost in a configured currency.
type CostEstimate struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// EmissionReport is the computed energy and carbon figure for one job
// or an aggregate of jobs. Cost is nil when no price is configured.
// Reports are derived values and never mutated after construction.
type EmissionReport struct {
	EnergyKWh float64       `json:"energy_kwh"`
	CarbonG   float64       `json:"carbon_g"`
	Cost      *CostEstimate `json:"cost,omitempty"`
}

// EfficiencyReport holds per-user aggregate efficiency ratios. Ratios
// can exceed 1 when usage is misreported by the scheduler.
type EfficiencyReport struct {
	MemoryEfficiency   float64 `json:"memory_efficiency"`
	CPUEfficiency      float64 `json:"cpu_efficiency"`
	MemoryWasteGBHours float64 `json:"memory_waste_gb_hours"`
	JobCount           int     `json:"job_count"`
}

// Summary describes an aggregate run: the overall time span covered by
// the underlying jobs plus their summed emission figures.
type Summary struct {
	Start         time.Time `json:"start,omitzero"`
	End           time.Time `json:"end,omitzero"`
	WalltimeHours float64   `json:"walltime_hours"`
	CPUTimeHours  float64   `json:"cpu_time_hours"`
	JobCount      int       `json:"job_count"`

	EmissionReport
}

// SavedReport is an emission report persisted for later lookup.
type SavedReport struct {
	ID        string        `json:"id"`
	User      string        `json:"user,omitempty"`
	JobIDs    []string      `json:"job_ids"`
	EnergyKWh float64       `json:"energy_kwh"`
	CarbonG   float64       `json:"carbon_g"`
	Cost      *CostEstimate `json:"cost,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
