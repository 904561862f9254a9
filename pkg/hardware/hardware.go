// Package hardware resolves named or custom CPU/GPU specifications to
// per-unit power draw figures. Resolution happens once at configuration
// time; the calculator only ever sees a resolved Spec.
package hardware

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed reference/power_models.yaml
var referenceFS embed.FS

// ErrUnknownModel indicates a model name missing from the power
// reference table whose configured default is also missing.
var ErrUnknownModel = errors.New("hardware: unknown model")

// ModelCustom is the reserved model name for explicit wattage values.
const ModelCustom = "custom"

// Spec holds resolved power characteristics for a job's reservation.
type Spec struct {
	CPUWattsPerCore float64
	GPUWattsPerUnit float64
	RAMWattsPerGB   float64
}

// ModelRef names a model to look up in the reference table, or carries
// explicit watts under the reserved "custom" name. The zero value means
// "not configured" and resolves to the catalog default.
type ModelRef struct {
	Name  string
	Watts float64
}

// Named references a model by reference-table name.
func Named(name string) ModelRef { return ModelRef{Name: name} }

// Custom bypasses the lookup with an explicit per-unit wattage.
func Custom(watts float64) ModelRef { return ModelRef{Name: ModelCustom, Watts: watts} }

// Catalog is the power reference table for CPU and GPU models.
type Catalog struct {
	CPUs       map[string]float64 `yaml:"cpu"`
	GPUs       map[string]float64 `yaml:"gpu"`
	DefaultCPU string             `yaml:"default_cpu"`
	DefaultGPU string             `yaml:"default_gpu"`
}

// DefaultCatalog loads the power reference table shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	raw, err := referenceFS.ReadFile("reference/power_models.yaml")
	if err != nil {
		return nil, fmt.Errorf("hardware: read power reference: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("hardware: parse power reference: %w", err)
	}
	return &c, nil
}

// Resolve turns CPU and GPU model references plus the configured RAM
// constant into a Spec. Named lookups that miss fall back to the catalog
// default model; a miss there too is an error.
func (c *Catalog) Resolve(cpu, gpu ModelRef, ramWattsPerGB float64) (Spec, error) {
	cpuWatts, err := resolveOne(cpu, c.CPUs, c.DefaultCPU)
	if err != nil {
		return Spec{}, fmt.Errorf("cpu: %w", err)
	}
	gpuWatts, err := resolveOne(gpu, c.GPUs, c.DefaultGPU)
	if err != nil {
		return Spec{}, fmt.Errorf("gpu: %w", err)
	}
	if ramWattsPerGB < 0 {
		return Spec{}, fmt.Errorf("hardware: negative ram watts per GB: %v", ramWattsPerGB)
	}
	return Spec{
		CPUWattsPerCore: cpuWatts,
		GPUWattsPerUnit: gpuWatts,
		RAMWattsPerGB:   ramWattsPerGB,
	}, nil
}

func resolveOne(ref ModelRef, table map[string]float64, fallback string) (float64, error) {
	if ref.Name == ModelCustom {
		if ref.Watts < 0 {
			return 0, fmt.Errorf("hardware: negative custom watts: %v", ref.Watts)
		}
		return ref.Watts, nil
	}

	name := ref.Name
	if name == "" {
		name = fallback
	}
	if watts, ok := table[name]; ok {
		return watts, nil
	}
	if watts, ok := table[fallback]; ok {
		return watts, nil
	}
	return 0, fmt.Errorf("%w: %q (default %q)", ErrUnknownModel, name, fallback)
}
