// Package replay re-runs recorded evaluation fixtures through the metric
// harness, optionally sharded, and compares the resulting report against
// expected values.
package replay

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/shardeval/internal/harness"
	"github.com/danielpatrickdp/shardeval/internal/registry"
)

// #region types
// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps    int
	TotalExamples int
	Shards        int
	Report        registry.Report
}

// Mismatch is one divergence between the replayed report and the fixture's
// expected values.
type Mismatch struct {
	Name    string
	Got     float64
	Want    float64
	Missing bool // metric absent from the replayed report
}

// #endregion types

// #region replay
// Replay feeds every fixture batch through a single fresh harness and
// returns the aggregated report.
func Replay(f *Fixture) (*Summary, error) {
	return ReplaySharded(f, 1)
}

// ReplaySharded splits the fixture's batches round-robin across the given
// number of harnesses and combines their recorders. Micro-aggregated
// metrics are partition-independent, so the combined report's auc must
// equal the single-harness run's.
func ReplaySharded(f *Fixture, shards int) (*Summary, error) {
	if shards < 1 {
		return nil, fmt.Errorf("shard count %d must be positive", shards)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	config := f.Config.ToHarnessConfig()
	harnesses := make([]*harness.Harness, shards)
	for i := range harnesses {
		h, err := harness.New(config)
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		harnesses[i] = h
	}

	summary := &Summary{Shards: shards}
	for i, batch := range f.Batches {
		h := harnesses[i%shards]
		if _, err := h.Step(batch.TrueLabels, batch.ProbRows); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		summary.TotalSteps++
		summary.TotalExamples += len(batch.TrueLabels)
	}

	recorders := make([]*registry.Recorder, shards)
	for i, h := range harnesses {
		recorders[i] = h.Recorder()
	}
	report, err := registry.Combine(recorders...)
	if err != nil {
		return nil, fmt.Errorf("combining shards: %w", err)
	}
	summary.Report = report
	return summary, nil
}

// Compare checks the replayed report against expected values within the
// tolerance, returning mismatches in name order.
func Compare(report registry.Report, expected map[string]float64, tolerance float64) []Mismatch {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	var mismatches []Mismatch
	for _, name := range names {
		want := expected[name]
		got, ok := report[name]
		if !ok {
			mismatches = append(mismatches, Mismatch{Name: name, Want: want, Missing: true})
			continue
		}
		if math.Abs(got-want) > tolerance {
			mismatches = append(mismatches, Mismatch{Name: name, Got: got, Want: want})
		}
	}
	return mismatches
}

// #endregion replay
