// Package registry accumulates named metrics within a shard and aggregates
// recorders across shards into a scalar report.
package registry

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/danielpatrickdp/shardeval/internal/metrics"
)

// #region recorder
// Recorder folds named metric observations into one running accumulator per
// name. Recording is order-free: any interleaving of Record calls produces
// the same accumulators.
type Recorder struct {
	values map[string]metrics.Metric
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{values: make(map[string]metrics.Metric)}
}

// Record merges each observation into the accumulator for name. Nil
// observations are skipped.
func (r *Recorder) Record(name string, ms ...metrics.Metric) error {
	for _, m := range ms {
		if m == nil {
			continue
		}
		acc, ok := r.values[name]
		if !ok {
			r.values[name] = m
			continue
		}
		merged, err := acc.Merge(m)
		if err != nil {
			return fmt.Errorf("recording %q: %w", name, err)
		}
		r.values[name] = merged
	}
	return nil
}

// Get returns the accumulator for name, or nil if nothing was recorded.
func (r *Recorder) Get(name string) metrics.Metric {
	return r.values[name]
}

// Names returns the recorded metric names, sorted.
func (r *Recorder) Names() []string {
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the name-to-accumulator mapping. The metrics
// themselves are immutable, so sharing them is safe.
func (r *Recorder) Snapshot() map[string]metrics.Metric {
	out := make(map[string]metrics.Metric, len(r.values))
	for name, m := range r.values {
		out[name] = m
	}
	return out
}

// #endregion recorder

// #region combine
// Report maps metric names to their aggregated scalar values.
type Report map[string]float64

// Combine aggregates shard recorders into one report. Macro-averaged
// metrics take the unweighted mean of per-shard values; everything else is
// merged across shards first and valued once from the combined counts.
func Combine(recorders ...*Recorder) (Report, error) {
	perName := make(map[string][]metrics.Metric)
	for _, rec := range recorders {
		for name, m := range rec.values {
			perName[name] = append(perName[name], m)
		}
	}

	report := make(Report, len(perName))
	for name, shards := range perName {
		if shards[0].MacroAverage() {
			values := make(stats.Float64Data, 0, len(shards))
			for i, m := range shards {
				v, err := m.Value()
				if err != nil {
					return nil, fmt.Errorf("%q shard %d: %w", name, i, err)
				}
				values = append(values, v)
			}
			mean, err := stats.Mean(values)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", name, err)
			}
			report[name] = mean
			continue
		}
		merged, err := metrics.MergeAll(shards...)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		v, err := merged.Value()
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		report[name] = v
	}
	return report, nil
}

// #endregion combine
