// ABOUTME: Database operations for the tasks table
// ABOUTME: Task CRUD plus applying patches decoded from imported calendar events
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/synapse-app/calsync/models"
)

// CreateTask inserts a task, assigning a UUID when none is set.
func CreateTask(db *sql.DB, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	tags, err := encodeTags(task.Tags)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO tasks (id, title, description, priority, status, due_date, estimated_time, tags, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Title, task.Description, task.Priority, task.Status,
		nullTime(task.DueDate), task.EstimatedTime, tags, task.Notes, task.CreatedAt, task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by id, or nil when it does not exist.
func GetTask(db *sql.DB, id string) (*models.Task, error) {
	row := db.QueryRow(`
		SELECT id, title, description, priority, status, due_date, estimated_time, tags, notes, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListTasks returns all tasks, soonest due date first, undated tasks last.
func ListTasks(db *sql.DB) ([]models.Task, error) {
	rows, err := db.Query(`
		SELECT id, title, description, priority, status, due_date, estimated_time, tags, notes, created_at, updated_at
		FROM tasks
		ORDER BY due_date IS NULL, due_date, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask persists all mutable fields of a task.
func UpdateTask(db *sql.DB, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(task.Tags)
	if err != nil {
		return err
	}

	result, err := db.Exec(`
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, status = ?, due_date = ?,
			estimated_time = ?, tags = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, task.Title, task.Description, task.Priority, task.Status, nullTime(task.DueDate),
		task.EstimatedTime, tags, task.Notes, task.UpdatedAt, task.ID)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}

	return nil
}

// UpdateTaskStatus sets just the status of a task.
func UpdateTaskStatus(db *sql.DB, id, status string) error {
	result, err := db.Exec(`
		UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}

	return nil
}

// DeleteTask removes a task by id.
func DeleteTask(db *sql.DB, id string) error {
	_, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ApplyPatch merges a patch decoded from a calendar event into the task
// with the given id, updating it in place, or creates a new task when
// taskID is empty or unknown. Returns the resulting task.
func ApplyPatch(db *sql.DB, taskID string, patch models.TaskPatch) (*models.Task, error) {
	var task *models.Task
	if taskID != "" {
		existing, err := GetTask(db, taskID)
		if err != nil {
			return nil, err
		}
		task = existing
	}

	if task == nil {
		task = &models.Task{
			ID:            taskID,
			Title:         patch.Title,
			Description:   patch.Description,
			Priority:      patch.Priority,
			Status:        patch.Status,
			DueDate:       patch.DueDate,
			EstimatedTime: patch.EstimatedTime,
			Tags:          patch.Tags,
			Notes:         patch.Notes,
		}
		if err := CreateTask(db, task); err != nil {
			return nil, err
		}
		return task, nil
	}

	task.Title = patch.Title
	task.Description = patch.Description
	task.Priority = patch.Priority
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.EstimatedTime != "" {
		task.EstimatedTime = patch.EstimatedTime
	}
	if len(patch.Tags) > 0 {
		task.Tags = patch.Tags
	}
	if patch.Notes != "" {
		task.Notes = patch.Notes
	}
	if err := UpdateTask(db, task); err != nil {
		return nil, err
	}
	return task, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var description, estimatedTime, tags, notes sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Priority,
		&task.Status,
		&dueDate,
		&estimatedTime,
		&tags,
		&notes,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.EstimatedTime = estimatedTime.String
	task.Notes = notes.String
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &task, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
