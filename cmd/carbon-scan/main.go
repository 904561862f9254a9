package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opscart/hpc-carbon-reporter/pkg/carbon"
	"github.com/opscart/hpc-carbon-reporter/pkg/config"
	"github.com/opscart/hpc-carbon-reporter/pkg/efficiency"
	"github.com/opscart/hpc-carbon-reporter/pkg/models"
	"github.com/opscart/hpc-carbon-reporter/pkg/reporter"
	"github.com/opscart/hpc-carbon-reporter/pkg/storage"
)

var (
	configPath   string
	outputFormat string

	// report flags
	saveReport    bool
	usePrometheus bool

	// forecast flags
	forecastWalltime string
	forecastCores    int
	forecastMemoryGB float64
	forecastGPUs     int

	// users flags
	usersDays   int
	usersMetric string
	noCarbon    bool

	// history flags
	historyUser  string
	historyLimit int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carbon-scan",
		Short: "Cluster energy, carbon and efficiency reporting",
		Long: `Report resource efficiency and estimate the energy and carbon cost of
jobs submitted to the batch queueing system, using time-varying carbon
intensity and electricity price tables.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Cluster configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, csv, json")

	reportCmd := &cobra.Command{
		Use:   "report <jobid>...",
		Short: "Compute energy and emissions for finished jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().BoolVar(&saveReport, "save", false, "Persist the computed report")
	reportCmd.Flags().BoolVar(&usePrometheus, "use-prometheus", false, "Read job records from Prometheus instead of the database")

	forecastCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Estimate emissions of a hypothetical job starting now",
		RunE:  runForecast,
	}
	forecastCmd.Flags().StringVarP(&forecastWalltime, "walltime", "t", "", "Expected walltime in HH:MM:SS")
	forecastCmd.Flags().IntVarP(&forecastCores, "cpus", "c", 1, "Number of reserved cores")
	forecastCmd.Flags().Float64VarP(&forecastMemoryGB, "memory", "m", 1, "Reserved memory in GB")
	forecastCmd.Flags().IntVarP(&forecastGPUs, "gpus", "g", 0, "Number of GPUs")

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Per-user efficiency leaderboard over a period",
		RunE:  runUsers,
	}
	usersCmd.Flags().IntVar(&usersDays, "days", 30, "Look-back window in days")
	usersCmd.Flags().StringVar(&usersMetric, "metric", "memory", "Ranking metric: memory, cpus")
	usersCmd.Flags().BoolVar(&noCarbon, "no-carbon", false, "Skip the emission summary")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List saved emission reports",
		RunE:  runHistory,
	}
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "Only reports for this user")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of reports to show")

	rootCmd.AddCommand(reportCmd, forecastCmd, usersCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	calc, translator, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	jobs, err := fetchJobs(ctx, cfg, args)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no job records found for the given job IDs")
	}

	_, summary, err := calc.ComputeAll(jobs)
	if err != nil {
		return err
	}

	if saveReport {
		if err := persistReport(ctx, cfg, jobs, summary); err != nil {
			return err
		}
	}

	return writeSummary(cfg, translator, summary, nil)
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	calc, translator, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	walltime, err := parseWalltime(forecastWalltime)
	if err != nil {
		return err
	}
	job, err := carbon.ForecastJob(time.Now(), walltime, forecastCores, forecastMemoryGB, forecastGPUs)
	if err != nil {
		return err
	}

	_, summary, err := calc.ComputeAll([]*models.JobRecord{job})
	if err != nil {
		return err
	}
	return writeSummary(cfg, translator, summary, nil)
}

func runUsers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	to := time.Now()
	from := to.AddDate(0, 0, -usersDays)
	jobs, err := store.ListJobs(ctx, from, to)
	if err != nil {
		return err
	}

	board, err := efficiency.Leaderboard(jobs, efficiency.Metric(usersMetric))
	if err != nil {
		return err
	}

	var summary models.Summary
	var translator *carbon.Translator
	if !noCarbon {
		calc, tr, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		if _, summary, err = calc.ComputeAll(jobs); err != nil {
			return err
		}
		translator = tr
	}
	return writeSummary(cfg, translator, summary, board)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.ListReports(ctx, historyUser, historyLimit)
	if err != nil {
		return err
	}
	if outputFormat == string(reporter.FormatJSON) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for _, rep := range reports {
		cost := ""
		if rep.Cost != nil {
			cost = fmt.Sprintf("  %.2f %s", rep.Cost.Amount, rep.Cost.Currency)
		}
		fmt.Printf("%s  %s  user=%s  jobs=%d  %.2f kWh  %.2f gCO2%s\n",
			rep.CreatedAt.Format("2006-01-02 15:04"), rep.ID, rep.User,
			len(rep.JobIDs), rep.EnergyKWh, rep.CarbonG, cost)
	}
	return nil
}

func fetchJobs(ctx context.Context, cfg *config.Config, jobIDs []string) ([]*models.JobRecord, error) {
	if usePrometheus {
		return fetchJobsFromPrometheus(ctx, cfg, jobIDs)
	}

	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.GetJobs(ctx, jobIDs)
}

func persistReport(ctx context.Context, cfg *config.Config, jobs []*models.JobRecord, summary models.Summary) error {
	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	saved := &models.SavedReport{
		JobIDs:    jobIDList(jobs),
		EnergyKWh: summary.EnergyKWh,
		CarbonG:   summary.CarbonG,
		Cost:      summary.Cost,
	}
	if len(jobs) > 0 {
		saved.User = jobs[0].User
	}
	if err := store.SaveReport(ctx, saved); err != nil {
		return err
	}
	slog.Info("report saved", "id", saved.ID)
	return nil
}

func jobIDList(jobs []*models.JobRecord) []string {
	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = job.JobID
	}
	return ids
}

func writeSummary(cfg *config.Config, translator *carbon.Translator, summary models.Summary, board []efficiency.UserStats) error {
	report := reporter.Build(cfg.Cluster.Location, summary)
	if translator != nil {
		offsetMin, offsetMax := translator.OffsetCost(summary.CarbonG)
		report.WithEquivalents(translator.Equivalents(summary.CarbonG), offsetMin, offsetMax)
	}
	if board != nil {
		report.WithLeaderboard(board)
	}

	switch reporter.Format(outputFormat) {
	case reporter.FormatText:
		return reporter.WriteText(report, os.Stdout)
	case reporter.FormatCSV:
		return reporter.GenerateCSV(report, os.Stdout)
	case reporter.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
