package hardware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		CPUs:       map[string]float64{"generic_core": 12.0, "epyc_7742": 3.5},
		GPUs:       map[string]float64{"generic_gpu": 250.0, "a100_sxm4": 400.0},
		DefaultCPU: "generic_core",
		DefaultGPU: "generic_gpu",
	}
}

func TestResolveNamedModels(t *testing.T) {
	spec, err := testCatalog().Resolve(Named("epyc_7742"), Named("a100_sxm4"), 0.375)
	require.NoError(t, err)

	assert.Equal(t, 3.5, spec.CPUWattsPerCore)
	assert.Equal(t, 400.0, spec.GPUWattsPerUnit)
	assert.Equal(t, 0.375, spec.RAMWattsPerGB)
}

func TestResolveCustomWattsBypassLookup(t *testing.T) {
	spec, err := testCatalog().Resolve(Custom(9.9), Custom(123), 0)
	require.NoError(t, err)

	assert.Equal(t, 9.9, spec.CPUWattsPerCore)
	assert.Equal(t, 123.0, spec.GPUWattsPerUnit)
}

func TestResolveMissFallsBackToDefault(t *testing.T) {
	spec, err := testCatalog().Resolve(Named("no_such_cpu"), Named("no_such_gpu"), 0)
	require.NoError(t, err)

	assert.Equal(t, 12.0, spec.CPUWattsPerCore)
	assert.Equal(t, 250.0, spec.GPUWattsPerUnit)
}

func TestResolveEmptyRefUsesDefault(t *testing.T) {
	spec, err := testCatalog().Resolve(ModelRef{}, ModelRef{}, 0)
	require.NoError(t, err)

	assert.Equal(t, 12.0, spec.CPUWattsPerCore)
	assert.Equal(t, 250.0, spec.GPUWattsPerUnit)
}

func TestResolveDefaultAlsoMissing(t *testing.T) {
	c := testCatalog()
	c.DefaultCPU = "gone"
	delete(c.CPUs, "generic_core")

	_, err := c.Resolve(Named("no_such_cpu"), Named("a100_sxm4"), 0)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestResolveNegativeRAM(t *testing.T) {
	_, err := testCatalog().Resolve(ModelRef{}, ModelRef{}, -1)
	assert.Error(t, err)
}

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.NotEmpty(t, c.CPUs)
	assert.NotEmpty(t, c.GPUs)
	assert.Contains(t, c.CPUs, c.DefaultCPU)
	assert.Contains(t, c.GPUs, c.DefaultGPU)
}
