package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClusterConfig(t *testing.T) {
	path := writeConfig(t, `
cluster:
  location: denmark
  hardware:
    cpu:
      model: epyc_7742
      cores: 128
    gpu:
      watts: 300
    ram:
      watts_per_gb: 0.4
  carbon:
    carbon_intensity: 191
  price:
    energy_price: 2.1
    currency: DKK
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cluster.Location != "denmark" {
		t.Errorf("Expected location denmark, got %s", cfg.Cluster.Location)
	}
	if cfg.Cluster.Hardware.CPU.Model != "epyc_7742" {
		t.Errorf("Expected cpu model epyc_7742, got %s", cfg.Cluster.Hardware.CPU.Model)
	}
	if cfg.Cluster.Hardware.GPU.Watts != 300 {
		t.Errorf("Expected gpu watts 300, got %v", cfg.Cluster.Hardware.GPU.Watts)
	}
	if cfg.Cluster.Carbon.CarbonIntensity != 191 {
		t.Errorf("Expected intensity 191, got %v", cfg.Cluster.Carbon.CarbonIntensity)
	}
	if !cfg.HasPricing() {
		t.Error("Expected pricing to be configured")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	path := writeConfig(t, `
cluster:
  carbon:
    carbon_intensity: 100
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Error("Expected a default database URL")
	}
	if cfg.Cluster.Hardware.RAM.WattsPerGB != 0.375 {
		t.Errorf("Expected default ram watts 0.375, got %v", cfg.Cluster.Hardware.RAM.WattsPerGB)
	}
	if cfg.HasPricing() {
		t.Error("Expected no pricing by default")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	os.Setenv("DATABASE_URL", "host=db.example sslmode=require")
	defer os.Unsetenv("DATABASE_URL")

	path := writeConfig(t, `
database_url: host=from-file
cluster:
  carbon:
    carbon_intensity: 100
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabaseURL != "host=db.example sslmode=require" {
		t.Errorf("Expected env override, got %s", cfg.DatabaseURL)
	}
}

func TestValidateRequiresCarbonSource(t *testing.T) {
	path := writeConfig(t, `
cluster:
  location: denmark
`)

	if _, err := Load(path); err == nil {
		t.Error("Expected error when no carbon source is configured")
	}
}

func TestValidateRequiresCurrencyWithPrice(t *testing.T) {
	path := writeConfig(t, `
cluster:
  carbon:
    carbon_intensity: 100
  price:
    energy_price: 2.1
`)

	if _, err := Load(path); err == nil {
		t.Error("Expected error when price is set without currency")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
