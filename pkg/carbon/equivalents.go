package carbon

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed reference/emission_equivalents.yaml
var equivalentsFS embed.FS

// Translator converts raw carbon mass into relatable equivalents
// (washing machine cycles, car kilometres, ...) using fixed conversion
// constants. Pure and stateless once constructed.
type Translator struct {
	perUnit         map[string]float64
	offsetMinPerTon float64
	offsetMaxPerTon float64
}

type equivalentsFile struct {
	Equivalents map[string]float64 `yaml:"equivalents"`
	Offset      struct {
		MinPerTon float64 `yaml:"min_per_ton"`
		MaxPerTon float64 `yaml:"max_per_ton"`
	} `yaml:"offset_price"`
}

// NewTranslator loads the conversion constants shipped with the binary.
func NewTranslator() (*Translator, error) {
	raw, err := equivalentsFS.ReadFile("reference/emission_equivalents.yaml")
	if err != nil {
		return nil, fmt.Errorf("carbon: read equivalents reference: %w", err)
	}
	var f equivalentsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("carbon: parse equivalents reference: %w", err)
	}
	if len(f.Equivalents) == 0 {
		return nil, fmt.Errorf("carbon: equivalents reference has no entries")
	}
	for name, g := range f.Equivalents {
		if g <= 0 {
			return nil, fmt.Errorf("carbon: equivalent %q has non-positive gCO2 figure %v", name, g)
		}
	}
	return &Translator{
		perUnit:         f.Equivalents,
		offsetMinPerTon: f.Offset.MinPerTon,
		offsetMaxPerTon: f.Offset.MaxPerTon,
	}, nil
}

// Equivalents returns, per equivalence name, how many of that unit the
// given carbon mass corresponds to.
func (t *Translator) Equivalents(carbonG float64) map[string]float64 {
	out := make(map[string]float64, len(t.perUnit))
	for name, gPerUnit := range t.perUnit {
		out[name] = carbonG / gPerUnit
	}
	return out
}

// Names returns the equivalence names in stable order, for display.
func (t *Translator) Names() []string {
	names := make([]string, 0, len(t.perUnit))
	for name := range t.perUnit {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OffsetCost returns the low and high estimate for the price of
// offsetting the given carbon mass, in the reference table's currency.
func (t *Translator) OffsetCost(carbonG float64) (min, max float64) {
	tons := carbonG / 1e6
	return tons * t.offsetMinPerTon, tons * t.offsetMaxPerTon
}
