// ABOUTME: Tests for the sync eligibility predicate
// ABOUTME: Verifies due date and cancellation rules across field combinations
package sync

import (
	"testing"
	"time"

	"github.com/synapse-app/calsync/models"
)

func TestCanSyncTask(t *testing.T) {
	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		task     models.Task
		canSync  bool
		reason   string
	}{
		{
			name:    "pending with due date",
			task:    models.Task{Status: models.StatusPending, DueDate: &due},
			canSync: true,
		},
		{
			name:    "in progress with due date",
			task:    models.Task{Status: models.StatusInProgress, DueDate: &due},
			canSync: true,
		},
		{
			name:    "completed tasks stay eligible",
			task:    models.Task{Status: models.StatusCompleted, DueDate: &due},
			canSync: true,
		},
		{
			name:    "missing due date",
			task:    models.Task{Status: models.StatusPending},
			canSync: false,
			reason:  "missing due date",
		},
		{
			name:    "cancelled",
			task:    models.Task{Status: models.StatusCancelled, DueDate: &due},
			canSync: false,
			reason:  "cancelled",
		},
		{
			name:    "missing due date wins over cancelled",
			task:    models.Task{Status: models.StatusCancelled},
			canSync: false,
			reason:  "missing due date",
		},
		{
			name: "priority and metadata never block sync",
			task: models.Task{
				Status:        models.StatusPending,
				Priority:      models.PriorityLow,
				DueDate:       &due,
				EstimatedTime: "45min",
				Tags:          []string{"a", "b"},
				Notes:         "notes",
			},
			canSync: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			check := CanSyncTask(tc.task)
			if check.CanSync != tc.canSync {
				t.Errorf("expected canSync=%v, got %v", tc.canSync, check.CanSync)
			}
			if check.Reason != tc.reason {
				t.Errorf("expected reason %q, got %q", tc.reason, check.Reason)
			}
		})
	}
}

func TestFilterSyncableTasks(t *testing.T) {
	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tasks := []models.Task{
		{ID: "a", Status: models.StatusPending, DueDate: &due},
		{ID: "b", Status: models.StatusPending}, // no due date
		{ID: "c", Status: models.StatusCompleted, DueDate: &due},
		{ID: "d", Status: models.StatusCancelled, DueDate: &due},
		{ID: "e", Status: models.StatusInProgress, DueDate: &due},
	}

	filtered := FilterSyncableTasks(tasks)

	expected := []string{"a", "c", "e"}
	if len(filtered) != len(expected) {
		t.Fatalf("expected %d tasks, got %d", len(expected), len(filtered))
	}
	for i, id := range expected {
		if filtered[i].ID != id {
			t.Errorf("position %d: expected task %s, got %s (order must be preserved)", i, id, filtered[i].ID)
		}
	}
}

func TestFilterSyncableTasks_Empty(t *testing.T) {
	if got := FilterSyncableTasks(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
