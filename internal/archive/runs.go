package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/engine"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// SaveReport archives one finished run: header, per-task outcomes, and
// warnings, all in a single transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *engine.Report) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, elapsed_ms, passes, stalled,
			total_tasks, completed, failed, blocked, cancelled, unfinished)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.RunID, report.StartedAt.UTC(), report.Elapsed.Milliseconds(), report.Passes,
		report.Stalled, report.TotalTasks, report.Completed, report.Failed,
		report.Blocked, report.Cancelled, report.Unfinished)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", report.RunID, err)
	}

	for i, outcome := range report.Outcomes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO task_outcomes (run_id, position, task_id, owner, phase,
				status, attempts, result, error, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.RunID, i, outcome.ID, outcome.Owner, outcome.Phase,
			outcome.Status.String(), outcome.Attempts, outcome.Result,
			outcome.Err, outcome.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("inserting outcome for task %s: %w", outcome.ID, err)
		}
	}

	for _, warning := range report.Warnings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_warnings (run_id, warning) VALUES (?, ?)
		`, report.RunID, warning)
		if err != nil {
			return fmt.Errorf("inserting warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive transaction: %w", err)
	}

	return nil
}

// LoadReport reconstructs a run report from the archive.
func (s *SQLiteStore) LoadReport(ctx context.Context, runID string) (*engine.Report, error) {
	report := &engine.Report{RunID: runID}
	var elapsedMillis int64

	err := s.db.QueryRowContext(ctx, `
		SELECT started_at, elapsed_ms, passes, stalled,
			total_tasks, completed, failed, blocked, cancelled, unfinished
		FROM runs
		WHERE id = ?
	`, runID).Scan(&report.StartedAt, &elapsedMillis, &report.Passes, &report.Stalled,
		&report.TotalTasks, &report.Completed, &report.Failed,
		&report.Blocked, &report.Cancelled, &report.Unfinished)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not in the archive", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	report.Elapsed = time.Duration(elapsedMillis) * time.Millisecond

	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, owner, phase, status, attempts, result, error, duration_ms
		FROM task_outcomes
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes for run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome engine.TaskOutcome
		var statusStr string
		var durationMillis int64

		if err := rows.Scan(&outcome.ID, &outcome.Owner, &outcome.Phase, &statusStr,
			&outcome.Attempts, &outcome.Result, &outcome.Err, &durationMillis); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}

		status, err := taskgraph.ParseStatus(statusStr)
		if err != nil {
			return nil, fmt.Errorf("outcome for task %s: %w", outcome.ID, err)
		}
		outcome.Status = status
		outcome.Duration = time.Duration(durationMillis) * time.Millisecond

		report.Outcomes = append(report.Outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}

	warnRows, err := s.db.QueryContext(ctx, `
		SELECT warning FROM run_warnings WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying warnings for run %s: %w", runID, err)
	}
	defer warnRows.Close()

	for warnRows.Next() {
		var warning string
		if err := warnRows.Scan(&warning); err != nil {
			return nil, fmt.Errorf("scanning warning: %w", err)
		}
		report.Warnings = append(report.Warnings, warning)
	}
	if err := warnRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating warnings: %w", err)
	}

	return report, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit means the default of 20.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, elapsed_ms, total_tasks, completed, failed,
			blocked, cancelled, stalled
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var summary RunSummary
		var elapsedMillis int64

		if err := rows.Scan(&summary.RunID, &summary.StartedAt, &elapsedMillis,
			&summary.TotalTasks, &summary.Completed, &summary.Failed,
			&summary.Blocked, &summary.Cancelled, &summary.Stalled); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		summary.Elapsed = time.Duration(elapsedMillis) * time.Millisecond

		runs = append(runs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}
