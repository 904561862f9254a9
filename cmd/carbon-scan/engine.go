package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/opscart/hpc-carbon-reporter/pkg/carbon"
	"github.com/opscart/hpc-carbon-reporter/pkg/config"
	"github.com/opscart/hpc-carbon-reporter/pkg/datasource"
	"github.com/opscart/hpc-carbon-reporter/pkg/hardware"
	"github.com/opscart/hpc-carbon-reporter/pkg/models"
	"github.com/opscart/hpc-carbon-reporter/pkg/rates"
)

// buildEngine wires the configuration into a ready calculator and the
// emission-equivalents translator.
func buildEngine(cfg *config.Config) (*carbon.Calculator, *carbon.Translator, error) {
	catalog, err := hardware.DefaultCatalog()
	if err != nil {
		return nil, nil, err
	}

	hw, err := catalog.Resolve(
		modelRef(cfg.Cluster.Hardware.CPU),
		modelRef(cfg.Cluster.Hardware.GPU),
		cfg.Cluster.Hardware.RAM.WattsPerGB,
	)
	if err != nil {
		return nil, nil, err
	}

	carbonTable, err := loadTable(cfg.Cluster.Carbon.CustomIntensityFile, cfg.Cluster.Carbon.CarbonIntensity)
	if err != nil {
		return nil, nil, fmt.Errorf("carbon intensity: %w", err)
	}

	var priceTable *rates.Table
	if cfg.HasPricing() {
		priceTable, err = loadTable(cfg.Cluster.Price.CustomPriceTable, cfg.Cluster.Price.EnergyPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("energy price: %w", err)
		}
	}

	translator, err := carbon.NewTranslator()
	if err != nil {
		return nil, nil, err
	}

	calc := carbon.NewCalculator(hw, carbonTable, priceTable, cfg.Cluster.Price.Currency)
	return calc, translator, nil
}

func modelRef(mc config.ModelConfig) hardware.ModelRef {
	if mc.Watts > 0 {
		return hardware.Custom(mc.Watts)
	}
	return hardware.Named(mc.Model)
}

// loadTable builds a rate table from a reference file when one is
// configured, otherwise from the scalar fallback.
func loadTable(path string, scalar float64) (*rates.Table, error) {
	if path == "" {
		return rates.Scalar(scalar), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table %s: %w", path, err)
	}
	defer f.Close()
	return rates.Load(f)
}

func fetchJobsFromPrometheus(ctx context.Context, cfg *config.Config, jobIDs []string) ([]*models.JobRecord, error) {
	if cfg.PrometheusURL == "" {
		return nil, fmt.Errorf("PROMETHEUS_URL is not configured")
	}
	source, err := datasource.NewPrometheusSource(cfg.PrometheusURL)
	if err != nil {
		return nil, err
	}
	if !source.IsAvailable(ctx) {
		return nil, fmt.Errorf("prometheus at %s is not reachable", cfg.PrometheusURL)
	}
	return source.GetJobs(ctx, jobIDs)
}

// parseWalltime parses the scheduler's HH:MM:SS walltime notation.
func parseWalltime(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("walltime must be HH:MM:SS, got %q", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || sec < 0 {
		return 0, fmt.Errorf("walltime must be HH:MM:SS, got %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
