// Package logging writes durable per-step provenance for evaluation runs.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-step
// LogStep writes a step entry to the step_log table.
func LogStep(db *sql.DB, entry StepEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO step_log (run_id, step, example_count, batch_json, outcome, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Step,
		entry.ExampleCount,
		nullIfEmpty(entry.BatchJSON),
		entry.Outcome,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log step: %w", err)
	}
	return nil
}

// #endregion log-step

// #region list-steps
// ListSteps returns a run's step entries in order.
func ListSteps(db *sql.DB, runID string) ([]StepEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, step, example_count, batch_json, outcome, reason, created_at
		 FROM step_log WHERE run_id = ? ORDER BY step ASC, id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var entries []StepEntry
	for rows.Next() {
		var entry StepEntry
		var batchJSON, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&entry.RunID, &entry.Step, &entry.ExampleCount, &batchJSON, &entry.Outcome, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if batchJSON.Valid {
			entry.BatchJSON = batchJSON.String
		}
		if reason.Valid {
			entry.Reason = reason.String
		}
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// #endregion list-steps

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
