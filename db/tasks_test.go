// ABOUTME: Tests for task persistence
// ABOUTME: Covers CRUD, tag encoding, ordering, and patch application
package db

import (
	"testing"
	"time"

	"github.com/synapse-app/calsync/models"
)

func TestCreateAndGetTask(t *testing.T) {
	database := setupTestDB(t)

	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	task := &models.Task{
		Title:         "Write report",
		Description:   "Quarterly numbers",
		Priority:      models.PriorityHigh,
		Status:        models.StatusPending,
		DueDate:       &due,
		EstimatedTime: "2h",
		Tags:          []string{"work", "urgent"},
		Notes:         "check with Ana",
	}

	if err := CreateTask(database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	got, err := GetTask(database, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected task, got nil")
	}

	if got.Title != task.Title {
		t.Errorf("expected title %q, got %q", task.Title, got.Title)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("expected high priority, got %s", got.Priority)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, got.DueDate)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "urgent" {
		t.Errorf("expected tags [work urgent], got %v", got.Tags)
	}
	if got.EstimatedTime != "2h" {
		t.Errorf("expected estimated time 2h, got %q", got.EstimatedTime)
	}
}

func TestCreateTask_Defaults(t *testing.T) {
	database := setupTestDB(t)

	task := &models.Task{Title: "Bare"}
	if err := CreateTask(database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := GetTask(database, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Priority != models.PriorityMedium {
		t.Errorf("expected default medium priority, got %s", got.Priority)
	}
	if got.Status != models.StatusPending {
		t.Errorf("expected default pending status, got %s", got.Status)
	}
	if got.DueDate != nil {
		t.Errorf("expected nil due date, got %v", got.DueDate)
	}
	if got.Tags != nil {
		t.Errorf("expected nil tags, got %v", got.Tags)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	database := setupTestDB(t)

	got, err := GetTask(database, "missing")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing task, got %+v", got)
	}
}

func TestListTasks_Ordering(t *testing.T) {
	database := setupTestDB(t)

	later := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	sooner := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	noDate := &models.Task{Title: "no date"}
	dueLater := &models.Task{Title: "later", DueDate: &later}
	dueSooner := &models.Task{Title: "sooner", DueDate: &sooner}

	for _, task := range []*models.Task{noDate, dueLater, dueSooner} {
		if err := CreateTask(database, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}

	tasks, err := ListTasks(database)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	if tasks[0].Title != "sooner" || tasks[1].Title != "later" || tasks[2].Title != "no date" {
		t.Errorf("expected [sooner later no date], got [%s %s %s]",
			tasks[0].Title, tasks[1].Title, tasks[2].Title)
	}
}

func TestUpdateTask(t *testing.T) {
	database := setupTestDB(t)

	task := &models.Task{Title: "Original"}
	if err := CreateTask(database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	task.Title = "Renamed"
	task.Priority = models.PriorityLow
	task.Tags = []string{"home"}
	if err := UpdateTask(database, task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, err := GetTask(database, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("expected renamed title, got %q", got.Title)
	}
	if got.Priority != models.PriorityLow {
		t.Errorf("expected low priority, got %s", got.Priority)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "home" {
		t.Errorf("expected tags [home], got %v", got.Tags)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	database := setupTestDB(t)

	err := UpdateTask(database, &models.Task{ID: "missing", Title: "x"})
	if err == nil {
		t.Error("expected error updating a missing task")
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	database := setupTestDB(t)

	task := &models.Task{Title: "To finish"}
	if err := CreateTask(database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := UpdateTaskStatus(database, task.ID, models.StatusCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}

	got, _ := GetTask(database, task.ID)
	if got.Status != models.StatusCompleted {
		t.Errorf("expected completed status, got %s", got.Status)
	}
}

func TestDeleteTask(t *testing.T) {
	database := setupTestDB(t)

	task := &models.Task{Title: "Doomed"}
	if err := CreateTask(database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := DeleteTask(database, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	got, err := GetTask(database, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got != nil {
		t.Error("expected task to be deleted")
	}
}

func TestApplyPatch_CreatesNewTask(t *testing.T) {
	database := setupTestDB(t)

	due := time.Date(2024, 6, 2, 16, 0, 0, 0, time.UTC)
	patch := models.TaskPatch{
		Title:    "Dentist appointment",
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
		DueDate:  &due,
	}

	task, err := ApplyPatch(database, "", patch)
	if err != nil {
		t.Fatalf("ApplyPatch failed: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected a new id to be assigned")
	}

	got, _ := GetTask(database, task.ID)
	if got == nil || got.Title != "Dentist appointment" {
		t.Errorf("expected persisted imported task, got %+v", got)
	}
}

func TestApplyPatch_UpdatesExistingTask(t *testing.T) {
	database := setupTestDB(t)

	task := &models.Task{Title: "Old title", Notes: "keep me"}
	if err := CreateTask(database, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	patch := models.TaskPatch{
		Title:    "New title",
		Priority: models.PriorityHigh,
		Status:   models.StatusPending,
	}

	updated, err := ApplyPatch(database, task.ID, patch)
	if err != nil {
		t.Fatalf("ApplyPatch failed: %v", err)
	}

	if updated.ID != task.ID {
		t.Errorf("expected same task id, got %s", updated.ID)
	}
	if updated.Title != "New title" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.Notes != "keep me" {
		t.Errorf("absent patch fields must not clear stored values, got notes %q", updated.Notes)
	}
}

func TestApplyPatch_UnknownTaskIDCreates(t *testing.T) {
	database := setupTestDB(t)

	// An owned event whose task was deleted locally: the id no longer
	// resolves, so the import recreates the task under that id.
	patch := models.TaskPatch{
		Title:    "Recovered",
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
	}

	task, err := ApplyPatch(database, "ghost-id", patch)
	if err != nil {
		t.Fatalf("ApplyPatch failed: %v", err)
	}
	if task.ID != "ghost-id" {
		t.Errorf("expected task recreated under original id, got %s", task.ID)
	}
}
