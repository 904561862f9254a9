package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// WriteText renders the report as a terminal summary.
func WriteText(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "--------------------------------------------------------------------")
	fmt.Fprintln(w, "----                    RESOURCE USE REPORT                     ----")
	fmt.Fprintln(w)

	s := report.Summary
	if !s.Start.IsZero() {
		fmt.Fprintf(w, "      Computation began: %s\n", s.Start.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "      Computation ended: %s\n", s.End.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "      Total real time:   %.2f hours\n", s.WalltimeHours)
		fmt.Fprintf(w, "      Total CPU time:    %.2f hours\n", s.CPUTimeHours)
		fmt.Fprintf(w, "      Jobs:              %d\n", s.JobCount)
		fmt.Fprintln(w)
	}

	// A leaderboard-only run carries no emission figures to print.
	if s.JobCount == 0 && len(report.Leaderboard) > 0 {
		if err := writeLeaderboard(report, w); err != nil {
			return err
		}
		fmt.Fprintln(w, "--------------------------------------------------------------------")
		return nil
	}

	fmt.Fprintf(w, "      Estimated energy use:          %.2f kWh\n", s.EnergyKWh)
	fmt.Fprintf(w, "      Estimated emissions generated: %.2f g CO2\n", s.CarbonG)
	if s.Cost != nil {
		fmt.Fprintf(w, "      Estimated energy cost:         %.2f %s\n", s.Cost.Amount, s.Cost.Currency)
	}
	if report.OffsetMax > 0 {
		fmt.Fprintf(w, "      Price to offset carbon:        %.2f-%.2f\n", report.OffsetMin, report.OffsetMax)
	}

	if len(report.Equivalents) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      The carbon generated corresponds to:")
		names := make([]string, 0, len(report.Equivalents))
		for name := range report.Equivalents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			label := strings.ReplaceAll(name, "_", " ")
			fmt.Fprintf(w, "      - %.2f %s\n", report.Equivalents[name], label)
		}
	}

	if len(report.Leaderboard) > 0 {
		fmt.Fprintln(w)
		if err := writeLeaderboard(report, w); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "--------------------------------------------------------------------")
	return nil
}

func writeLeaderboard(report *Report, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tMEM EFF\tCPU EFF\tMEM WASTE (GBh)\tJOBS")
	for _, row := range report.Leaderboard {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.1f\t%d\n",
			row.Rank, row.User,
			row.Report.MemoryEfficiency, row.Report.CPUEfficiency,
			row.Report.MemoryWasteGBHours, row.Report.JobCount,
		)
	}
	return tw.Flush()
}
