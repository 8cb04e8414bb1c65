package metrics

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12
}

func mustValue(t *testing.T, m Metric) float64 {
	t.Helper()
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	return v
}

func TestConfusionValues(t *testing.T) {
	counts := Counts{TP: 3, TN: 5, FP: 1, FN: 2}
	prec, rec, f1 := ComputeMany(counts)

	if v := mustValue(t, prec); !almostEqual(v, 3.0/4.0) {
		t.Fatalf("precision = %v, want 0.75", v)
	}
	if v := mustValue(t, rec); !almostEqual(v, 3.0/5.0) {
		t.Fatalf("recall = %v, want 0.6", v)
	}
	if v := mustValue(t, f1); !almostEqual(v, 6.0/9.0) {
		t.Fatalf("f1 = %v, want 6/9", v)
	}
}

func TestConfusionZeroTruePositives(t *testing.T) {
	// All three variants are pinned to 0 when TP == 0, even with nonzero
	// FP or FN that would otherwise make the ratio well-defined.
	counts := Counts{TN: 4, FP: 2, FN: 3}
	prec, rec, f1 := ComputeMany(counts)
	for _, m := range []*ConfusionMetric{prec, rec, f1} {
		if v := mustValue(t, m); v != 0.0 {
			t.Fatalf("%s with TP=0 = %v, want 0", m.Variant(), v)
		}
	}

	// Empty accumulator too.
	empty := NewPrecision(Counts{})
	if v := mustValue(t, empty); v != 0.0 {
		t.Fatalf("empty precision = %v, want 0", v)
	}
}

func TestConfusionMergePreservesVariant(t *testing.T) {
	a := NewRecall(Counts{TP: 1, FN: 1})
	b := NewRecall(Counts{TP: 2, FN: 0})

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	cm := merged.(*ConfusionMetric)
	if cm.Variant() != VariantRecall {
		t.Fatalf("merged variant = %s, want recall", cm.Variant())
	}
	if v := mustValue(t, cm); !almostEqual(v, 3.0/4.0) {
		t.Fatalf("merged recall = %v, want 0.75", v)
	}

	// Operands unchanged.
	if a.Counts().TP != 1 || b.Counts().TP != 2 {
		t.Fatal("merge mutated an operand")
	}
}

func TestConfusionMergeNilIdentity(t *testing.T) {
	a := NewF1(Counts{TP: 2, FP: 1})
	merged, err := a.Merge(nil)
	if err != nil {
		t.Fatalf("merge nil: %v", err)
	}
	if merged.(*ConfusionMetric) != a {
		t.Fatal("merge with nil should return the receiver")
	}
}

func TestConfusionMergeVariantMismatch(t *testing.T) {
	prec := NewPrecision(Counts{TP: 1})
	rec := NewRecall(Counts{TP: 1})
	if _, err := prec.Merge(rec); !errors.Is(err, ErrVariantMismatch) {
		t.Fatalf("merging precision with recall: err = %v, want ErrVariantMismatch", err)
	}
}

func TestConfusionMergeTypeMismatch(t *testing.T) {
	prec := NewPrecision(Counts{TP: 1})
	auc := EmptyAUC("pos")
	if _, err := prec.Merge(auc); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("merging precision with auc: err = %v, want ErrTypeMismatch", err)
	}
}

func TestConfusionMergeAssociativeCommutative(t *testing.T) {
	a := NewPrecision(Counts{TP: 1, FP: 2})
	b := NewPrecision(Counts{TP: 3, TN: 1})
	c := NewPrecision(Counts{FP: 1, FN: 4})

	ab, err := a.Merge(b)
	if err != nil {
		t.Fatalf("a+b: %v", err)
	}
	abc1, err := ab.Merge(c)
	if err != nil {
		t.Fatalf("(a+b)+c: %v", err)
	}
	bc, err := b.Merge(c)
	if err != nil {
		t.Fatalf("b+c: %v", err)
	}
	abc2, err := a.Merge(bc)
	if err != nil {
		t.Fatalf("a+(b+c): %v", err)
	}
	ba, err := b.Merge(a)
	if err != nil {
		t.Fatalf("b+a: %v", err)
	}

	if abc1.(*ConfusionMetric).Counts() != abc2.(*ConfusionMetric).Counts() {
		t.Fatal("merge is not associative")
	}
	if ab.(*ConfusionMetric).Counts() != ba.(*ConfusionMetric).Counts() {
		t.Fatal("merge is not commutative")
	}
}

func TestComputeMetricsPerExample(t *testing.T) {
	golds := []string{"A", "A", "B", "B"}
	preds := []string{"A", "B", "B", "A"}

	precs, recs, f1s, err := ComputeMetrics(preds, golds, "A")
	if err != nil {
		t.Fatalf("ComputeMetrics: %v", err)
	}
	if len(precs) != 4 || len(recs) != 4 || len(f1s) != 4 {
		t.Fatalf("got %d/%d/%d metrics, want 4 each", len(precs), len(recs), len(f1s))
	}

	// Each example contributes exactly one 0/1 confusion tuple.
	wantCounts := []Counts{
		{TP: 1}, // pred A, gold A
		{FN: 1}, // pred B, gold A
		{TN: 1}, // pred B, gold B
		{FP: 1}, // pred A, gold B
	}
	for i, want := range wantCounts {
		if got := precs[i].Counts(); got != want {
			t.Fatalf("example %d counts = %+v, want %+v", i, got, want)
		}
	}

	// Merging the per-example metrics yields the batch value 0.5 for all
	// three variants.
	for _, ms := range [][]*ConfusionMetric{precs, recs, f1s} {
		asMetrics := make([]Metric, len(ms))
		for i, m := range ms {
			asMetrics[i] = m
		}
		merged, err := MergeAll(asMetrics...)
		if err != nil {
			t.Fatalf("MergeAll: %v", err)
		}
		if v := mustValue(t, merged); !almostEqual(v, 0.5) {
			t.Fatalf("batch %s = %v, want 0.5", merged.(*ConfusionMetric).Variant(), v)
		}
	}
}

func TestComputeMetricsLengthMismatch(t *testing.T) {
	_, _, _, err := ComputeMetrics([]string{"A"}, []string{"A", "B"}, "A")
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestMergeEqualsBatch(t *testing.T) {
	// Splitting a stream into arbitrary chunks and merging the chunk
	// accumulators gives the same counts as one pass over everything.
	golds := []string{"A", "B", "A", "A", "B", "B", "A", "B"}
	preds := []string{"A", "A", "B", "A", "B", "A", "A", "B"}

	_, _, batch, err := ComputeMetrics(preds, golds, "A")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var want Metric
	for _, m := range batch {
		if want, err = mergeInto(want, m); err != nil {
			t.Fatalf("batch fold: %v", err)
		}
	}

	for _, split := range []int{1, 3, 5, 7} {
		_, _, left, err := ComputeMetrics(preds[:split], golds[:split], "A")
		if err != nil {
			t.Fatalf("left: %v", err)
		}
		_, _, right, err := ComputeMetrics(preds[split:], golds[split:], "A")
		if err != nil {
			t.Fatalf("right: %v", err)
		}
		var got Metric
		for _, m := range append(left, right...) {
			if got, err = mergeInto(got, m); err != nil {
				t.Fatalf("split fold: %v", err)
			}
		}
		if got.(*ConfusionMetric).Counts() != want.(*ConfusionMetric).Counts() {
			t.Fatalf("split at %d diverges from batch", split)
		}
	}
}

func mergeInto(acc Metric, m *ConfusionMetric) (Metric, error) {
	if acc == nil {
		return m, nil
	}
	return acc.Merge(m)
}
