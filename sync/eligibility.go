// ABOUTME: Eligibility predicate for task-to-calendar synchronization
// ABOUTME: Decides which tasks are sync candidates and why others are not
package sync

import (
	"github.com/synapse-app/calsync/models"
)

// SyncCheck is the outcome of an eligibility check. Ineligibility is a
// normal result, not an error; Reason explains it for the UI.
type SyncCheck struct {
	CanSync bool
	Reason  string
}

// CanSyncTask reports whether a task may be synchronized. A task needs a
// due date to anchor a calendar event and must not be cancelled. Completed
// tasks remain eligible; whether they should keep a calendar slot is the
// caller's policy.
func CanSyncTask(task models.Task) SyncCheck {
	if task.DueDate == nil {
		return SyncCheck{CanSync: false, Reason: "missing due date"}
	}
	if task.Status == models.StatusCancelled {
		return SyncCheck{CanSync: false, Reason: "cancelled"}
	}
	return SyncCheck{CanSync: true}
}

// FilterSyncableTasks returns the tasks eligible for sync, preserving order.
func FilterSyncableTasks(tasks []models.Task) []models.Task {
	var eligible []models.Task
	for _, task := range tasks {
		if CanSyncTask(task).CanSync {
			eligible = append(eligible, task)
		}
	}
	return eligible
}
