package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// GenerateCSV writes the report as CSV rows.
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	s := report.Summary
	rows := [][]string{
		{"Location", report.Location},
		{"Jobs", fmt.Sprintf("%d", s.JobCount)},
		{"Walltime (h)", fmt.Sprintf("%.2f", s.WalltimeHours)},
		{"CPU time (h)", fmt.Sprintf("%.2f", s.CPUTimeHours)},
		{"Energy (kWh)", fmt.Sprintf("%.4f", s.EnergyKWh)},
		{"Emissions (g CO2)", fmt.Sprintf("%.2f", s.CarbonG)},
	}
	if s.Cost != nil {
		rows = append(rows, []string{fmt.Sprintf("Cost (%s)", s.Cost.Currency), fmt.Sprintf("%.2f", s.Cost.Amount)})
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if len(report.Equivalents) > 0 {
		w.Write([]string{})
		w.Write([]string{"EQUIVALENTS"})
		names := make([]string, 0, len(report.Equivalents))
		for name := range report.Equivalents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := w.Write([]string{name, fmt.Sprintf("%.3f", report.Equivalents[name])}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	if len(report.Leaderboard) > 0 {
		w.Write([]string{})
		w.Write([]string{"Rank", "User", "Memory Efficiency", "CPU Efficiency", "Memory Waste (GBh)", "Jobs"})
		for _, row := range report.Leaderboard {
			rec := []string{
				fmt.Sprintf("%d", row.Rank),
				row.User,
				fmt.Sprintf("%.3f", row.Report.MemoryEfficiency),
				fmt.Sprintf("%.3f", row.Report.CPUEfficiency),
				fmt.Sprintf("%.1f", row.Report.MemoryWasteGBHours),
				fmt.Sprintf("%d", row.Report.JobCount),
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	return nil
}
