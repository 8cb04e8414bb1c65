package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/shardeval/internal/harness"
	"github.com/danielpatrickdp/shardeval/internal/metrics"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string             `json:"description"`
	Config      FixtureConfig      `json:"config"`
	Batches     []FixtureBatch     `json:"batches"`
	Expected    map[string]float64 `json:"expected,omitempty"`
	Tolerance   float64            `json:"tolerance,omitempty"`
}

// FixtureConfig mirrors harness.Config with JSON tags. Zero-valued
// Threshold and AUCDecimalPlaces fall back to the harness defaults.
type FixtureConfig struct {
	Classes          []string `json:"classes"`
	RefClass         string   `json:"ref_class,omitempty"`
	Threshold        float64  `json:"threshold,omitempty"`
	AUCDecimalPlaces int      `json:"auc_decimal_places,omitempty"`
	CalcAUC          bool     `json:"calc_auc"`
}

// FixtureBatch is one recorded evaluation batch.
type FixtureBatch struct {
	TrueLabels []string    `json:"true_labels"`
	ProbRows   [][]float64 `json:"prob_rows"`
}

// #endregion fixture-types

// #region fixture-loader

// DefaultTolerance is the comparison tolerance when the fixture leaves it
// unset.
const DefaultTolerance = 1e-9

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToHarnessConfig converts a FixtureConfig to a domain harness.Config.
func (fc *FixtureConfig) ToHarnessConfig() harness.Config {
	config := harness.DefaultConfig()
	config.Classes = fc.Classes
	config.RefClass = fc.RefClass
	config.CalcAUC = fc.CalcAUC
	if fc.Threshold != 0 {
		config.Threshold = fc.Threshold
	}
	if fc.AUCDecimalPlaces != 0 {
		config.AUCDecimalPlaces = fc.AUCDecimalPlaces
	}
	return config
}

// ToleranceOrDefault returns the fixture's comparison tolerance.
func (f *Fixture) ToleranceOrDefault() float64 {
	if f.Tolerance > 0 {
		return f.Tolerance
	}
	return DefaultTolerance
}

// Validate checks batch shapes before replay.
func (f *Fixture) Validate() error {
	for i, batch := range f.Batches {
		if len(batch.TrueLabels) != len(batch.ProbRows) {
			return fmt.Errorf("batch %d: %d labels vs %d rows: %w", i, len(batch.TrueLabels), len(batch.ProbRows), metrics.ErrLengthMismatch)
		}
	}
	return nil
}

// #endregion fixture-loader
