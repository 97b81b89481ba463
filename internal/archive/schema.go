package archive

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		passes INTEGER NOT NULL,
		stalled INTEGER NOT NULL,
		total_tasks INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		blocked INTEGER NOT NULL,
		cancelled INTEGER NOT NULL,
		unfinished INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS task_outcomes (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		task_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		phase TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		result TEXT,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		PRIMARY KEY (run_id, task_id),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_task_outcomes_run ON task_outcomes(run_id, position);

	CREATE TABLE IF NOT EXISTS run_warnings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		warning TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_warnings_run ON run_warnings(run_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
