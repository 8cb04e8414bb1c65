package metrics

// #region variant
// Variant selects which scalar a ConfusionMetric extracts from its counts.
type Variant string

const (
	VariantPrecision Variant = "precision"
	VariantRecall    Variant = "recall"
	VariantF1        Variant = "f1"
)

// #endregion variant

// #region counts
// Counts holds the four confusion-matrix counters for one positive class.
type Counts struct {
	TP float64 // true positives
	TN float64 // true negatives
	FP float64 // false positives
	FN float64 // false negatives
}

// Add returns the element-wise sum of two count sets.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		TP: c.TP + other.TP,
		TN: c.TN + other.TN,
		FP: c.FP + other.FP,
		FN: c.FN + other.FN,
	}
}

// #endregion counts

// #region confusion-metric
// ConfusionMetric is one member of the precision/recall/F1 family: shared
// confusion counts plus a variant tag that decides which value to extract.
// Merging preserves the variant, so a precision stays a precision.
type ConfusionMetric struct {
	variant Variant
	counts  Counts
}

// NewPrecision creates a precision metric over the given counts.
func NewPrecision(counts Counts) *ConfusionMetric {
	return &ConfusionMetric{variant: VariantPrecision, counts: counts}
}

// NewRecall creates a recall metric over the given counts.
func NewRecall(counts Counts) *ConfusionMetric {
	return &ConfusionMetric{variant: VariantRecall, counts: counts}
}

// NewF1 creates an F1 metric over the given counts.
func NewF1(counts Counts) *ConfusionMetric {
	return &ConfusionMetric{variant: VariantF1, counts: counts}
}

// Variant returns the metric's variant tag.
func (m *ConfusionMetric) Variant() Variant { return m.variant }

// Counts returns a copy of the metric's confusion counts.
func (m *ConfusionMetric) Counts() Counts { return m.counts }

// MacroAverage reports true: global values are means of per-shard values.
func (m *ConfusionMetric) MacroAverage() bool { return true }

// Value extracts the variant's scalar. All three variants are defined as
// exactly 0 when TP == 0, which also covers the empty accumulator.
func (m *ConfusionMetric) Value() (float64, error) {
	if m.counts.TP == 0 {
		return 0.0, nil
	}
	switch m.variant {
	case VariantPrecision:
		return m.counts.TP / (m.counts.TP + m.counts.FP), nil
	case VariantRecall:
		return m.counts.TP / (m.counts.TP + m.counts.FN), nil
	default:
		numer := 2 * m.counts.TP
		return numer / (numer + m.counts.FP + m.counts.FN), nil
	}
}

// Merge sums counts with another confusion metric of the same variant.
func (m *ConfusionMetric) Merge(other Metric) (Metric, error) {
	if other == nil {
		return m, nil
	}
	o, ok := other.(*ConfusionMetric)
	if !ok {
		return nil, ErrTypeMismatch
	}
	if o.variant != m.variant {
		return nil, ErrVariantMismatch
	}
	return &ConfusionMetric{variant: m.variant, counts: m.counts.Add(o.counts)}, nil
}

// #endregion confusion-metric

// #region compute
// ComputeMany builds the precision, recall, and F1 metrics that share one
// set of confusion counts.
func ComputeMany(counts Counts) (*ConfusionMetric, *ConfusionMetric, *ConfusionMetric) {
	return NewPrecision(counts), NewRecall(counts), NewF1(counts)
}

// ComputeMetrics scores each prediction/gold pair against the positive
// class, producing per-example precision, recall, and F1 metrics with 0/1
// confusion counts. The i-th entry of each slice covers example i only;
// merging a slice yields the batch-level metric.
func ComputeMetrics(predictions, goldLabels []string, positiveClass string) (precisions, recalls, f1s []*ConfusionMetric, err error) {
	if len(predictions) != len(goldLabels) {
		return nil, nil, nil, ErrLengthMismatch
	}
	precisions = make([]*ConfusionMetric, 0, len(predictions))
	recalls = make([]*ConfusionMetric, 0, len(predictions))
	f1s = make([]*ConfusionMetric, 0, len(predictions))
	for i, predicted := range predictions {
		gold := goldLabels[i]
		var counts Counts
		switch {
		case predicted == positiveClass && gold == positiveClass:
			counts.TP = 1
		case predicted != positiveClass && gold != positiveClass:
			counts.TN = 1
		case predicted == positiveClass && gold != positiveClass:
			counts.FP = 1
		default:
			counts.FN = 1
		}
		prec, rec, f1 := ComputeMany(counts)
		precisions = append(precisions, prec)
		recalls = append(recalls, rec)
		f1s = append(f1s, f1)
	}
	return precisions, recalls, f1s, nil
}

// #endregion compute
