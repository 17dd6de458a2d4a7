// ABOUTME: Database operations for sync_state and sync_log tables
// ABOUTME: Manages sync status and per-run logging for calendar synchronization
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/synapse-app/calsync/models"
)

// SyncState represents the sync state for a service.
type SyncState struct {
	Service      string
	LastSyncTime *time.Time
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SyncLogEntry records one task/event action during a sync run.
type SyncLogEntry struct {
	ID       string
	RunID    string
	Service  string
	TaskID   string
	EventID  string
	Action   string
	SyncedAt time.Time
	Detail   string
}

// NewSyncRunID generates a sortable identifier for a sync run.
func NewSyncRunID() string {
	return ulid.Make().String()
}

// GetSyncState retrieves the sync state for a service, or nil when the
// service has never synced.
func GetSyncState(db *sql.DB, service string) (*SyncState, error) {
	var state SyncState
	var lastSyncTime sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT service, last_sync_time, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(
		&state.Service,
		&lastSyncTime,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}

	return &state, nil
}

// UpdateSyncStatus updates the sync status for a service.
func UpdateSyncStatus(db *sql.DB, service, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// MarkSyncComplete records a successful sync: status idle, error cleared,
// and the last sync time bumped.
func MarkSyncComplete(db *sql.DB, service string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service)

	if err != nil {
		return fmt.Errorf("failed to mark sync complete: %w", err)
	}

	return nil
}

// CreateSyncLog appends one entry to the sync log.
func CreateSyncLog(db *sql.DB, entry *SyncLogEntry) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}

	_, err := db.Exec(`
		INSERT INTO sync_log (id, run_id, service, task_id, event_id, action, synced_at, detail)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?)
	`, entry.ID, entry.RunID, entry.Service, entry.TaskID, entry.EventID, entry.Action, entry.Detail)

	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}

	return nil
}

// GetImportedTaskID returns the task a previous import created for the
// given event, or "" when the event has never been imported.
func GetImportedTaskID(db *sql.DB, service, eventID string) (string, error) {
	var taskID string
	err := db.QueryRow(`
		SELECT task_id FROM sync_log
		WHERE service = ? AND event_id = ? AND action = ?
		ORDER BY id DESC LIMIT 1
	`, service, eventID, models.SyncActionImport).Scan(&taskID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check sync log: %w", err)
	}

	return taskID, nil
}

// GetSyncLogForRun returns all log entries for a run, oldest first.
func GetSyncLogForRun(db *sql.DB, runID string) ([]SyncLogEntry, error) {
	rows, err := db.Query(`
		SELECT id, run_id, service, task_id, event_id, action, synced_at, detail
		FROM sync_log
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []SyncLogEntry
	for rows.Next() {
		var entry SyncLogEntry
		var taskID, eventID, detail sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.Service,
			&taskID,
			&eventID,
			&entry.Action,
			&entry.SyncedAt,
			&detail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log entry: %w", err)
		}

		entry.TaskID = taskID.String
		entry.EventID = eventID.String
		entry.Detail = detail.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log: %w", err)
	}

	return entries, nil
}
