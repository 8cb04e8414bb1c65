// Package store persists evaluation runs and their metric reports in
// SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS eval_runs (
	run_id       TEXT PRIMARY KEY,
	config_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_reports (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	step         INTEGER NOT NULL,
	report_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES eval_runs(run_id)
);

CREATE TABLE IF NOT EXISTS step_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	example_count INTEGER NOT NULL,
	batch_json    TEXT,
	outcome       TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES eval_runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store manages evaluation runs and reports in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already-opened database. The caller owns the
// connection and is responsible for schema setup.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region create-run
// CreateRun registers a new evaluation run with its configuration.
func (s *Store) CreateRun(configJSON string) (RunRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	rec := RunRecord{
		RunID:      id,
		ConfigJSON: configJSON,
		CreatedAt:  now,
	}

	_, err := s.db.Exec(
		`INSERT INTO eval_runs (run_id, config_json, created_at) VALUES (?, ?, ?)`,
		id, configJSON, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion create-run

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, config_json, created_at FROM eval_runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.ConfigJSON, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion get-run

// #region commit-report
// CommitReport stores the aggregated metric values after a given step.
func (s *Store) CommitReport(runID string, step int, values map[string]float64) error {
	reportJSON, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO metric_reports (run_id, step, report_json, created_at) VALUES (?, ?, ?, ?)`,
		runID, step, string(reportJSON), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// #endregion commit-report

// #region list-reports
// ListReports returns a run's reports in step order.
func (s *Store) ListReports(runID string) ([]ReportRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, step, report_json, created_at
		 FROM metric_reports WHERE run_id = ? ORDER BY step ASC, id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-reports

// #region latest-report
// LatestReport returns the report with the highest step for a run.
func (s *Store) LatestReport(runID string) (ReportRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, step, report_json, created_at
		 FROM metric_reports WHERE run_id = ? ORDER BY step DESC, id DESC LIMIT 1`, runID,
	)
	rec, err := scanReport(row)
	if err != nil {
		return ReportRecord{}, fmt.Errorf("latest report for %s: %w", runID, err)
	}
	return rec, nil
}

// #endregion latest-report

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, config_json, created_at
		 FROM eval_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.ConfigJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-runs

// #region scan
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (ReportRecord, error) {
	var rec ReportRecord
	var reportJSON string
	var createdStr string
	if err := row.Scan(&rec.RunID, &rec.Step, &reportJSON, &createdStr); err != nil {
		return ReportRecord{}, fmt.Errorf("scan report: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &rec.Values); err != nil {
		return ReportRecord{}, fmt.Errorf("unmarshal report: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion scan
