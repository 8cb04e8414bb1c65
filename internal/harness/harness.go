// Package harness drives batch-by-batch classifier evaluation: it decides
// predictions from probability rows, scores them against gold labels, and
// accumulates the per-class precision/recall/F1, weighted F1, and ROC-AUC
// metrics into a shard recorder.
package harness

import (
	"fmt"

	"github.com/danielpatrickdp/shardeval/internal/classes"
	"github.com/danielpatrickdp/shardeval/internal/decision"
	"github.com/danielpatrickdp/shardeval/internal/metrics"
	"github.com/danielpatrickdp/shardeval/internal/registry"
)

// #region harness
// Harness evaluates classification batches against a fixed vocabulary.
type Harness struct {
	config   Config
	vocab    *classes.Vocabulary
	rule     *decision.Rule
	rec      *registry.Recorder
	calcAUC  bool
	steps    int
	examples int
}

// New creates a harness from the configuration. AUC tracking is only
// active on binary vocabularies; larger vocabularies silently skip it, the
// confusion metrics still cover every class.
func New(config Config) (*Harness, error) {
	vocab, err := classes.NewVocabulary(config.Classes, config.RefClass)
	if err != nil {
		return nil, fmt.Errorf("building vocabulary: %w", err)
	}
	rule, err := decision.NewRule(vocab, config.Threshold)
	if err != nil {
		return nil, fmt.Errorf("building decision rule: %w", err)
	}
	if config.AUCDecimalPlaces <= 0 {
		return nil, fmt.Errorf("auc decimal places must be positive, got %d", config.AUCDecimalPlaces)
	}
	return &Harness{
		config:  config,
		vocab:   vocab,
		rule:    rule,
		rec:     registry.NewRecorder(),
		calcAUC: config.CalcAUC && vocab.Size() == 2,
	}, nil
}

// Vocabulary returns the harness's class vocabulary.
func (h *Harness) Vocabulary() *classes.Vocabulary { return h.vocab }

// Recorder returns the shard recorder for cross-worker aggregation.
func (h *Harness) Recorder() *registry.Recorder { return h.rec }

// Steps returns the number of batches evaluated so far.
func (h *Harness) Steps() int { return h.steps }

// Examples returns the number of examples evaluated so far.
func (h *Harness) Examples() int { return h.examples }

// Step evaluates one batch: probRows[i] is the probability row for example
// i, ordered to match the vocabulary, and trueLabels[i] its gold label.
// Predictions come from the decision rule; confusion metrics are recorded
// for every class, plus the weighted F1 and, on binary vocabularies with
// AUC enabled, the reference-class ROC accumulator.
func (h *Harness) Step(trueLabels []string, probRows [][]float64) ([]string, error) {
	if len(trueLabels) != len(probRows) {
		return nil, fmt.Errorf("%d labels vs %d probability rows: %w", len(trueLabels), len(probRows), metrics.ErrLengthMismatch)
	}
	if err := h.checkLabels(trueLabels); err != nil {
		return nil, err
	}
	preds, err := h.rule.PredictAll(probRows)
	if err != nil {
		return nil, fmt.Errorf("predicting batch: %w", err)
	}
	if err := h.recordConfusion(preds, trueLabels); err != nil {
		return nil, err
	}
	if h.calcAUC {
		refClass := h.vocab.Labels()[0]
		refProbs := make([]float64, len(probRows))
		for i, row := range probRows {
			refProbs[i] = row[0]
		}
		auc, err := metrics.RawDataToAUC(trueLabels, refProbs, refClass, h.config.AUCDecimalPlaces)
		if err != nil {
			return nil, fmt.Errorf("accumulating auc: %w", err)
		}
		if err := h.rec.Record("auc", auc); err != nil {
			return nil, err
		}
	}
	h.steps++
	h.examples += len(trueLabels)
	return preds, nil
}

// StepLabeled evaluates a batch whose predictions were decided elsewhere.
// Only the confusion metrics are recorded; no probabilities, no AUC.
func (h *Harness) StepLabeled(trueLabels, predLabels []string) error {
	if len(trueLabels) != len(predLabels) {
		return fmt.Errorf("%d gold vs %d predicted labels: %w", len(trueLabels), len(predLabels), metrics.ErrLengthMismatch)
	}
	if err := h.checkLabels(trueLabels); err != nil {
		return err
	}
	if err := h.checkLabels(predLabels); err != nil {
		return err
	}
	if err := h.recordConfusion(predLabels, trueLabels); err != nil {
		return err
	}
	h.steps++
	h.examples += len(trueLabels)
	return nil
}

// Report aggregates this harness's recorder into a scalar report.
func (h *Harness) Report() (registry.Report, error) {
	return registry.Combine(h.rec)
}

// #endregion harness

// #region recording
// recordConfusion scores predictions against gold labels one class at a
// time, recording per-class metrics under class_<name>_prec, _recall, and
// _f1, and the per-example weighted F1 under weighted_f1.
func (h *Harness) recordConfusion(preds, golds []string) error {
	f1PerClass := make(map[string][]*metrics.ConfusionMetric, h.vocab.Size())
	for _, class := range h.vocab.Labels() {
		precs, recs, f1s, err := metrics.ComputeMetrics(preds, golds, class)
		if err != nil {
			return fmt.Errorf("scoring class %q: %w", class, err)
		}
		f1PerClass[class] = f1s
		if err := h.rec.Record(fmt.Sprintf("class_%s_prec", class), asMetrics(precs)...); err != nil {
			return err
		}
		if err := h.rec.Record(fmt.Sprintf("class_%s_recall", class), asMetrics(recs)...); err != nil {
			return err
		}
		if err := h.rec.Record(fmt.Sprintf("class_%s_f1", class), asMetrics(f1s)...); err != nil {
			return err
		}
	}
	weighted, err := metrics.ComputeManyWeightedF1(f1PerClass)
	if err != nil {
		return fmt.Errorf("weighted f1: %w", err)
	}
	ws := make([]metrics.Metric, len(weighted))
	for i, w := range weighted {
		ws[i] = w
	}
	return h.rec.Record("weighted_f1", ws...)
}

// checkLabels rejects labels outside the vocabulary.
func (h *Harness) checkLabels(labels []string) error {
	for i, label := range labels {
		if !h.vocab.Contains(label) {
			return fmt.Errorf("example %d label %q: %w", i, label, classes.ErrUnknownLabel)
		}
	}
	return nil
}

// asMetrics widens a confusion metric slice to the metric interface.
func asMetrics(ms []*metrics.ConfusionMetric) []metrics.Metric {
	out := make([]metrics.Metric, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// #endregion recording
