package store

import "time"

// #region run-record
// RunRecord identifies one evaluation run and its harness configuration.
type RunRecord struct {
	RunID      string
	ConfigJSON string
	CreatedAt  time.Time
}

// #endregion run-record

// #region report-record
// ReportRecord is one committed metric report: the aggregated scalar values
// after a given evaluation step of a run.
type ReportRecord struct {
	RunID     string
	Step      int
	Values    map[string]float64
	CreatedAt time.Time
}

// #endregion report-record
