package logging

import "time"

// #region step-entry
// StepEntry is a single row in the step_log table.
type StepEntry struct {
	RunID        string
	Step         int
	ExampleCount int
	BatchJSON    string
	Outcome      string // "scored" | "skipped" | "failed"
	Reason       string
	CreatedAt    time.Time
}

// #endregion step-entry

// #region batch-record
// BatchRecord captures the exact inputs and outputs of one evaluation step.
// Serialized as JSON into step_log.batch_json for deterministic replay.
type BatchRecord struct {
	TrueLabels []string    `json:"true_labels"`
	ProbRows   [][]float64 `json:"prob_rows,omitempty"`
	Preds      []string    `json:"preds,omitempty"`

	// Report values after this step was folded in
	Report map[string]float64 `json:"report,omitempty"`
}

// #endregion batch-record
