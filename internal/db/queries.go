package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/conveyor-ci/conveyor/internal/engine"
	"github.com/conveyor-ci/conveyor/internal/trigger"
)

// RunRow represents a row in the runs table.
type RunRow struct {
	ID         string
	Pipeline   string
	EventKind  string
	EventRef   string
	Status     string
	Error      string
	DurationMs int64
	StartedAt  string
	FinishedAt string
}

// StepRow represents a row in the step_results table.
type StepRow struct {
	RunID      string
	Position   int
	Name       string
	ExitCode   int
	DurationMs int64
	TimedOut   bool
	SpawnError string
}

// RecordRun inserts a finished run and all of its step results in one
// transaction. The triggering event may be zero for manual runs.
func (d *DB) RecordRun(result *engine.JobResult, ev trigger.Event) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, pipeline, event_kind, event_ref, status, error, duration_ms, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.Pipeline, string(ev.Kind), ev.Ref, string(result.Status), result.Error,
		result.DurationMs(), result.StartedAt.Format(time.RFC3339), result.FinishedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, sr := range result.Steps {
		_, err = tx.Exec(
			`INSERT INTO step_results (run_id, position, name, exit_code, duration_ms, timed_out, spawn_error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			result.ID, i, sr.Name, sr.ExitCode, sr.DurationMs, sr.TimedOut, sr.SpawnError,
		)
		if err != nil {
			return fmt.Errorf("insert step result %q: %w", sr.Name, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(
		`SELECT id, pipeline, event_kind, event_ref, status, error, duration_ms, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var kind, ref, errText sql.NullString
		if err := rows.Scan(&r.ID, &r.Pipeline, &kind, &ref, &r.Status, &errText, &r.DurationMs, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.EventKind = kind.String
		r.EventRef = ref.String
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunSteps returns the step results of one run in execution order.
func (d *DB) GetRunSteps(runID string) ([]StepRow, error) {
	rows, err := d.conn.Query(
		`SELECT run_id, position, name, exit_code, duration_ms, timed_out, spawn_error
		 FROM step_results WHERE run_id = ? ORDER BY position`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get run steps: %w", err)
	}
	defer rows.Close()

	var out []StepRow
	for rows.Next() {
		var s StepRow
		var spawnErr sql.NullString
		if err := rows.Scan(&s.RunID, &s.Position, &s.Name, &s.ExitCode, &s.DurationMs, &s.TimedOut, &spawnErr); err != nil {
			return nil, fmt.Errorf("scan step result: %w", err)
		}
		s.SpawnError = spawnErr.String
		out = append(out, s)
	}
	return out, rows.Err()
}
