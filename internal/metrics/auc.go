package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// The grid sentinel sits above every valid probability, so the highest
// threshold always holds an empty (0, 0) bucket.
const aucSentinel = 1.5

// DefaultAUCDecimalPlaces is the default quantization precision for the
// threshold grid.
const DefaultAUCDecimalPlaces = 3

// #region auc-metrics
// AUCMetrics accumulates an exact ROC curve for one positive class over a
// finite threshold grid. The grid holds the floor and ceiling of every
// observed probability at a fixed decimal precision plus the sentinel; each
// threshold's bucket counts the false and true positives among samples with
// probability greater than or equal to it. Two accumulators built over
// different grids merge losslessly because each grid point's bucket can be
// recovered exactly from the other accumulator's successor bucket.
type AUCMetrics struct {
	class      string
	thresholds []float64 // ascending, deduplicated
	fp         []int64   // fp[i] = false positives with prob >= thresholds[i]
	tp         []int64   // tp[i] = true positives with prob >= thresholds[i]
	posCnt     int64
	negCnt     int64
}

// EmptyAUC returns the identity accumulator for the given class: empty grid,
// zero counts. Merging it with any accumulator of the same class returns an
// equal accumulator.
func EmptyAUC(class string) *AUCMetrics {
	return &AUCMetrics{class: class}
}

// RawDataToAUC builds an accumulator from parallel label and probability
// slices, where classProbs[i] is the model's probability that example i
// belongs to class. Probabilities are assumed to lie in [0, 1].
// decimalPlaces controls grid quantization; pass DefaultAUCDecimalPlaces
// unless the caller needs a coarser grid.
func RawDataToAUC(trueLabels []string, classProbs []float64, class string, decimalPlaces int) (*AUCMetrics, error) {
	if len(trueLabels) != len(classProbs) {
		return nil, fmt.Errorf("%d labels vs %d probabilities: %w", len(trueLabels), len(classProbs), ErrLengthMismatch)
	}
	if len(classProbs) == 0 {
		return EmptyAUC(class), nil
	}

	var posCnt int64
	for _, label := range trueLabels {
		if label == class {
			posCnt++
		}
	}
	negCnt := int64(len(trueLabels)) - posCnt

	// Quantize every probability down and up to the grid precision. The
	// sentinel bounds the grid from above; no lower bound is needed since
	// buckets count greater-or-equal.
	scale := math.Pow(10, float64(decimalPlaces))
	gridSet := map[float64]struct{}{aucSentinel: {}}
	for _, prob := range classProbs {
		scaled := prob * scale
		gridSet[math.Floor(scaled)/scale] = struct{}{}
		gridSet[math.Ceil(scaled)/scale] = struct{}{}
	}
	thresholds := make([]float64, 0, len(gridSet))
	for t := range gridSet {
		thresholds = append(thresholds, t)
	}
	sort.Float64s(thresholds)

	fp := make([]int64, len(thresholds))
	tp := make([]int64, len(thresholds))
	for i, prob := range classProbs {
		counts := fp
		if trueLabels[i] == class {
			counts = tp
		}
		// The sample reaches every threshold <= its probability. Ties are
		// inclusive, so an exact grid hit extends the range by one.
		ind := sort.SearchFloat64s(thresholds, prob)
		if ind < len(thresholds) && thresholds[ind] == prob {
			ind++
		}
		for j := 0; j < ind; j++ {
			counts[j]++
		}
	}

	return &AUCMetrics{
		class:      class,
		thresholds: thresholds,
		fp:         fp,
		tp:         tp,
		posCnt:     posCnt,
		negCnt:     negCnt,
	}, nil
}

// Class returns the positive class this accumulator tracks.
func (m *AUCMetrics) Class() string { return m.class }

// Counts returns the accumulated positive and negative example counts.
func (m *AUCMetrics) Counts() (pos, neg int64) { return m.posCnt, m.negCnt }

// Thresholds returns a copy of the accumulator's grid.
func (m *AUCMetrics) Thresholds() []float64 {
	out := make([]float64, len(m.thresholds))
	copy(out, m.thresholds)
	return out
}

// MacroAverage reports false: shards must be merged before valuing.
func (m *AUCMetrics) MacroAverage() bool { return false }

// bucket returns the (fp, tp) pair for an arbitrary threshold: the exact
// bucket on a grid hit, otherwise the bucket of the smallest grid threshold
// strictly greater, clamped to the last grid entry. Correct because buckets
// are cumulative counts of samples at or above the threshold and the grid
// brackets every observed probability.
func (m *AUCMetrics) bucket(threshold float64) (fp, tp int64) {
	if len(m.thresholds) == 0 {
		return 0, 0
	}
	i := sort.SearchFloat64s(m.thresholds, threshold)
	if i >= len(m.thresholds) {
		i = len(m.thresholds) - 1
	}
	return m.fp[i], m.tp[i]
}

// Merge combines two accumulators for the same class over the union of
// their grids. An empty-grid operand acts as the identity.
func (m *AUCMetrics) Merge(other Metric) (Metric, error) {
	if other == nil {
		return m, nil
	}
	o, ok := other.(*AUCMetrics)
	if !ok {
		return nil, ErrTypeMismatch
	}
	if o.class != m.class {
		return nil, fmt.Errorf("%q vs %q: %w", m.class, o.class, ErrClassMismatch)
	}

	merged := &AUCMetrics{
		class:  m.class,
		posCnt: m.posCnt + o.posCnt,
		negCnt: m.negCnt + o.negCnt,
	}
	thresholds := mergeSortedNoDupes(m.thresholds, o.thresholds)
	merged.thresholds = thresholds
	merged.fp = make([]int64, len(thresholds))
	merged.tp = make([]int64, len(thresholds))
	for i, t := range thresholds {
		selfFP, selfTP := m.bucket(t)
		otherFP, otherTP := o.bucket(t)
		merged.fp[i] = selfFP + otherFP
		merged.tp[i] = selfTP + otherTP
	}
	return merged, nil
}

// Value computes the area under the ROC curve by trapezoidal integration
// over the grid's exact curve points. Undefined without at least one
// positive and one negative example.
func (m *AUCMetrics) Value() (float64, error) {
	if m.posCnt == 0 || m.negCnt == 0 {
		return 0, fmt.Errorf("%d positives, %d negatives: %w", m.posCnt, m.negCnt, ErrDegenerateAUC)
	}
	// Thresholds ascend, so tpr and fpr descend; reverse both to integrate
	// fpr over ascending tpr from (0,0) at the sentinel to (1,1) at the
	// lowest threshold. The area above that curve is the ROC area.
	n := len(m.thresholds)
	tpr := make([]float64, n)
	fpr := make([]float64, n)
	for i := 0; i < n; i++ {
		j := n - 1 - i
		fpr[i] = float64(m.fp[j]) / float64(m.negCnt)
		tpr[i] = float64(m.tp[j]) / float64(m.posCnt)
	}
	return 1 - integrate.Trapezoidal(tpr, fpr), nil
}

// #endregion auc-metrics

// #region grid-merge
// mergeSortedNoDupes merges two ascending deduplicated slices into one,
// linear in the combined length.
func mergeSortedNoDupes(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// #endregion grid-merge
