// ABOUTME: Data models for Synapse tasks and calendar synchronization
// ABOUTME: Defines Task, TaskPatch, and the priority/status/sync enumerations
package models

import (
	"time"
)

// Task is a to-do item owned by the Synapse task store.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimatedTime string     `json:"estimated_time,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Priority constants.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Status constants.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// TaskPatch is a partial task decoded from a calendar event. Zero values
// mean the field was absent from the event; the caller decides how to
// merge it into stored tasks.
type TaskPatch struct {
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimatedTime string     `json:"estimated_time,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

// Sync action constants recorded in the sync log.
const (
	SyncActionCreated = "created"
	SyncActionUpdated = "updated"
	SyncActionSkipped = "skipped"
	SyncActionImport  = "imported"
)
