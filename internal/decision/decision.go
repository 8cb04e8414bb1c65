// Package decision turns per-class probability rows into predicted labels.
package decision

import (
	"fmt"

	"github.com/danielpatrickdp/shardeval/internal/classes"
)

// DefaultThreshold is the reference-class probability cutoff at which the
// threshold rule coincides with argmax for binary vocabularies.
const DefaultThreshold = 0.5

// #region rule
// Rule predicts labels from probability rows over a fixed vocabulary.
// The default rule is argmax. For a binary vocabulary with a non-default
// threshold, the reference class (index 0) is predicted exactly when its
// probability exceeds the threshold.
type Rule struct {
	vocab     *classes.Vocabulary
	threshold float64
	useThresh bool
}

// NewRule creates a decision rule for the vocabulary. The threshold only
// takes effect on binary vocabularies and only when it differs from
// DefaultThreshold; everything else decides by argmax.
func NewRule(vocab *classes.Vocabulary, threshold float64) (*Rule, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1]", threshold)
	}
	return &Rule{
		vocab:     vocab,
		threshold: threshold,
		useThresh: vocab.Size() == 2 && threshold != DefaultThreshold,
	}, nil
}

// Thresholded reports whether the rule decides by the reference-class
// threshold rather than argmax.
func (r *Rule) Thresholded() bool { return r.useThresh }

// Predict maps one probability row to a label. The row must have one entry
// per vocabulary class, ordered to match the vocabulary.
func (r *Rule) Predict(probs []float64) (string, error) {
	if len(probs) != r.vocab.Size() {
		return "", fmt.Errorf("probability row has %d entries, vocabulary has %d", len(probs), r.vocab.Size())
	}
	if r.useThresh {
		// Reference class wins only on strictly greater probability.
		idx := 1
		if probs[0] > r.threshold {
			idx = 0
		}
		return r.vocab.Label(idx)
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return r.vocab.Label(best)
}

// PredictAll maps a batch of probability rows to labels.
func (r *Rule) PredictAll(rows [][]float64) ([]string, error) {
	preds := make([]string, len(rows))
	for i, row := range rows {
		label, err := r.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		preds[i] = label
	}
	return preds, nil
}

// #endregion rule
