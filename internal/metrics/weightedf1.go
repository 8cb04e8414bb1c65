package metrics

import "fmt"

// #region weighted-f1
// WeightedF1 is the support-weighted mean of per-class F1 metrics: each
// class's F1 value weighted by the fraction of examples whose true label is
// that class. The per-class accumulators all describe the same example set,
// so any one of them carries the total example count.
type WeightedF1 struct {
	values map[string]*ConfusionMetric
}

// NewWeightedF1 creates a weighted-F1 metric over per-class F1 metrics.
// The mapping is copied; every entry must be an F1 variant.
func NewWeightedF1(values map[string]*ConfusionMetric) (*WeightedF1, error) {
	copied := make(map[string]*ConfusionMetric, len(values))
	for class, m := range values {
		if m.Variant() != VariantF1 {
			return nil, fmt.Errorf("class %q: %w", class, ErrVariantMismatch)
		}
		copied[class] = m
	}
	return &WeightedF1{values: copied}, nil
}

// Classes returns a copy of the per-class F1 mapping.
func (m *WeightedF1) Classes() map[string]*ConfusionMetric {
	copied := make(map[string]*ConfusionMetric, len(m.values))
	for class, f1 := range m.values {
		copied[class] = f1
	}
	return copied
}

// MacroAverage reports true: global values are means of per-shard values.
func (m *WeightedF1) MacroAverage() bool { return true }

// Value computes the support-weighted F1. The empty mapping yields 0.
func (m *WeightedF1) Value() (float64, error) {
	if len(m.values) == 0 {
		return 0.0, nil
	}
	var total float64
	for _, f1 := range m.values {
		c := f1.Counts()
		total = c.TP + c.TN + c.FP + c.FN
		break
	}
	var weighted float64
	for _, f1 := range m.values {
		c := f1.Counts()
		v, err := f1.Value()
		if err != nil {
			return 0, err
		}
		weighted += v * ((c.TP + c.FN) / total)
	}
	return weighted, nil
}

// Merge unions the class mappings, merging F1 metrics for shared classes.
func (m *WeightedF1) Merge(other Metric) (Metric, error) {
	if other == nil {
		return m, nil
	}
	o, ok := other.(*WeightedF1)
	if !ok {
		return nil, ErrTypeMismatch
	}
	output := make(map[string]*ConfusionMetric, len(m.values)+len(o.values))
	for class, f1 := range m.values {
		output[class] = f1
	}
	for class, f1 := range o.values {
		existing, present := output[class]
		if !present {
			output[class] = f1
			continue
		}
		merged, err := existing.Merge(f1)
		if err != nil {
			return nil, fmt.Errorf("class %q: %w", class, err)
		}
		output[class] = merged.(*ConfusionMetric)
	}
	return &WeightedF1{values: output}, nil
}

// #endregion weighted-f1

// #region compute
// ComputeManyWeightedF1 zips per-class F1 slices positionally: the i-th
// result combines the i-th F1 of every class. All slices must share one
// length.
func ComputeManyWeightedF1(perClass map[string][]*ConfusionMetric) ([]*WeightedF1, error) {
	n := -1
	for class, f1s := range perClass {
		if n == -1 {
			n = len(f1s)
		} else if len(f1s) != n {
			return nil, fmt.Errorf("class %q has %d metrics, want %d: %w", class, len(f1s), n, ErrLengthMismatch)
		}
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]*WeightedF1, 0, n)
	for i := 0; i < n; i++ {
		values := make(map[string]*ConfusionMetric, len(perClass))
		for class, f1s := range perClass {
			values[class] = f1s[i]
		}
		w, err := NewWeightedF1(values)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// #endregion compute
