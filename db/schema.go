// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	priority TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'pending',
	due_date DATETIME,
	estimated_time TEXT,
	tags TEXT,
	notes TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	status TEXT NOT NULL DEFAULT 'idle',
	error_message TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	service TEXT NOT NULL,
	task_id TEXT,
	event_id TEXT,
	action TEXT NOT NULL,
	synced_at DATETIME NOT NULL,
	detail TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_log_run_id ON sync_log(run_id);
CREATE INDEX IF NOT EXISTS idx_sync_log_task_id ON sync_log(task_id);
`

// InitSchema creates all tables and indexes if they do not exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
