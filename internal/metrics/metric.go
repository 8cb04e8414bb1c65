// Package metrics implements mergeable classification metrics: the
// confusion-matrix precision/recall/F1 family, support-weighted F1, and an
// exact threshold-grid ROC-AUC accumulator. Every metric is an immutable
// value object; accumulation happens by merging instances, so partial
// results computed on separate shards combine into the same numbers a
// single-pass computation would produce.
package metrics

import (
	"errors"
	"fmt"
)

// #region errors
var (
	// ErrTypeMismatch is returned when two metrics of different dynamic
	// types are merged.
	ErrTypeMismatch = errors.New("metric type mismatch")

	// ErrVariantMismatch is returned when two confusion metrics with
	// different variants (e.g. precision and recall) are merged.
	ErrVariantMismatch = errors.New("confusion variant mismatch")

	// ErrClassMismatch is returned when two AUC accumulators tracking
	// different positive classes are merged.
	ErrClassMismatch = errors.New("auc class label mismatch")

	// ErrLengthMismatch is returned when paired input slices disagree in
	// length.
	ErrLengthMismatch = errors.New("input length mismatch")

	// ErrDegenerateAUC is returned by AUCMetrics.Value when the accumulator
	// has seen no positive or no negative examples, so no ROC curve exists.
	ErrDegenerateAUC = errors.New("auc undefined: need at least one positive and one negative example")
)

// #endregion errors

// #region metric
// Metric is an immutable, mergeable metric value.
//
// Merge is associative and commutative, and a nil operand is the identity:
// m.Merge(nil) returns m unchanged. Merging incompatible metrics is a
// contract violation and returns an error rather than coercing.
type Metric interface {
	// Value extracts the scalar value of the accumulated metric.
	Value() (float64, error)

	// MacroAverage reports how this metric aggregates across shards:
	// true means the global value is the unweighted mean of per-shard
	// values; false means shards must be merged first and the value
	// computed once from the combined counts.
	MacroAverage() bool

	// Merge combines this metric with another of the same kind, returning
	// a new instance. Neither operand is modified.
	Merge(other Metric) (Metric, error)
}

// #endregion metric

// #region helpers
// MergeAll folds a sequence of metrics into one, treating nil entries as
// identity. Returns nil when every entry is nil.
func MergeAll(ms ...Metric) (Metric, error) {
	var acc Metric
	for i, m := range ms {
		if m == nil {
			continue
		}
		if acc == nil {
			acc = m
			continue
		}
		merged, err := acc.Merge(m)
		if err != nil {
			return nil, fmt.Errorf("merging metric %d: %w", i, err)
		}
		acc = merged
	}
	return acc, nil
}

// #endregion helpers
