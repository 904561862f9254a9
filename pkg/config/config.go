// Package config loads the cluster configuration file and the runtime
// environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`

	// Runtime endpoints, overridable by environment.
	DatabaseURL   string `yaml:"database_url"`
	PrometheusURL string `yaml:"prometheus_url"`
}

// ClusterConfig describes the cluster whose jobs are accounted.
type ClusterConfig struct {
	Location string         `yaml:"location"`
	Hardware HardwareConfig `yaml:"hardware"`
	Carbon   CarbonConfig   `yaml:"carbon"`
	Price    PriceConfig    `yaml:"price"`
}

// HardwareConfig selects power models for the cluster's hardware.
type HardwareConfig struct {
	CPU ModelConfig `yaml:"cpu"`
	GPU ModelConfig `yaml:"gpu"`
	RAM RAMConfig   `yaml:"ram"`
}

// ModelConfig names a model from the power reference table, or sets
// explicit per-unit watts. Watts wins when both are given.
type ModelConfig struct {
	Model string  `yaml:"model"`
	Cores int     `yaml:"cores"`
	Watts float64 `yaml:"watts"`
}

type RAMConfig struct {
	WattsPerGB float64 `yaml:"watts_per_gb"`
}

// CarbonConfig selects the carbon intensity source: a single scalar in
// gCO2/kWh, or a month x hour reference table file.
type CarbonConfig struct {
	CarbonIntensity     float64 `yaml:"carbon_intensity"`
	CustomIntensityFile string  `yaml:"custom_intensity_file"`
}

// PriceConfig selects the optional electricity price source. When
// neither a scalar price nor a table file is set, reports carry no cost.
type PriceConfig struct {
	EnergyPrice      float64 `yaml:"energy_price"`
	Currency         string  `yaml:"currency"`
	CustomPriceTable string  `yaml:"custom_price_table"`
}

// Default returns a configuration with defaults applied.
func Default() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost port=5432 user=carbon password=devpassword dbname=jobrecords sslmode=disable"),
		PrometheusURL: getEnv("PROMETHEUS_URL", ""),
		Cluster: ClusterConfig{
			Hardware: HardwareConfig{
				CPU: ModelConfig{Cores: 1},
				RAM: RAMConfig{WattsPerGB: 0.375}, // one 16GB stick at ~6W
			},
		},
	}
}

// Load reads the YAML configuration file, then applies environment
// overrides on top of it.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Environment wins over the file for runtime endpoints.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PROMETHEUS_URL"); v != "" {
		cfg.PrometheusURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	carbon := c.Cluster.Carbon
	if carbon.CarbonIntensity < 0 {
		return fmt.Errorf("carbon.carbon_intensity must be non-negative, got %v", carbon.CarbonIntensity)
	}
	if carbon.CarbonIntensity == 0 && carbon.CustomIntensityFile == "" {
		return fmt.Errorf("either carbon.carbon_intensity or carbon.custom_intensity_file must be set")
	}

	price := c.Cluster.Price
	if c.HasPricing() && price.Currency == "" {
		return fmt.Errorf("price.currency must be set when an energy price is configured")
	}
	if price.EnergyPrice < 0 {
		return fmt.Errorf("price.energy_price must be non-negative, got %v", price.EnergyPrice)
	}

	if c.Cluster.Hardware.RAM.WattsPerGB < 0 {
		return fmt.Errorf("hardware.ram.watts_per_gb must be non-negative, got %v", c.Cluster.Hardware.RAM.WattsPerGB)
	}
	return nil
}

// HasPricing reports whether an electricity price source is configured.
func (c *Config) HasPricing() bool {
	return c.Cluster.Price.EnergyPrice > 0 || c.Cluster.Price.CustomPriceTable != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
