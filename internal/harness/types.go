package harness

import "github.com/danielpatrickdp/shardeval/internal/metrics"

// #region config
// Config holds the classification setup for an evaluation harness.
type Config struct {
	Classes          []string // ordered class labels
	RefClass         string   // optional reference class, moved to index 0
	Threshold        float64  // binary only: P(ref) cutoff for predicting ref
	AUCDecimalPlaces int      // threshold-grid precision for the ROC accumulator
	CalcAUC          bool     // track ROC-AUC (binary vocabularies only)
}

// DefaultConfig returns the standard harness setup; callers fill in Classes.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.5,
		AUCDecimalPlaces: metrics.DefaultAUCDecimalPlaces,
		CalcAUC:          true,
	}
}

// #endregion config
