// ABOUTME: Task management CLI commands
// ABOUTME: Handles adding, listing, and completing tasks
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/synapse-app/calsync/db"
	"github.com/synapse-app/calsync/models"
	"github.com/synapse-app/calsync/sync"
)

// TaskAddCommand creates a task.
func TaskAddCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	description := fs.String("description", "", "Task description")
	priority := fs.String("priority", models.PriorityMedium, "Priority (high, medium, low)")
	due := fs.String("due", "", "Due date (RFC3339 or YYYY-MM-DD)")
	estimated := fs.String("estimated", "", "Estimated time (e.g. 2h, 30min)")
	tags := fs.String("tags", "", "Comma-separated tags")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: calsync task add [flags] <title>")
	}
	title := strings.Join(fs.Args(), " ")

	task := &models.Task{
		Title:         title,
		Description:   *description,
		Priority:      *priority,
		Status:        models.StatusPending,
		EstimatedTime: *estimated,
		Notes:         *notes,
	}

	if *due != "" {
		dueDate, err := parseDueDate(*due)
		if err != nil {
			return err
		}
		task.DueDate = &dueDate
	}

	if *tags != "" {
		for _, tag := range strings.Split(*tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				task.Tags = append(task.Tags, tag)
			}
		}
	}

	if err := db.CreateTask(database, task); err != nil {
		return err
	}

	fmt.Printf("✓ Created task %s\n", task.ID)
	return nil
}

// TaskListCommand prints all tasks with their sync eligibility.
func TaskListCommand(database *sql.DB, args []string) error {
	tasks, err := db.ListTasks(database)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	for _, task := range tasks {
		fmt.Println(formatTaskLine(task))
	}

	return nil
}

// formatTaskLine renders one task for the list view, flagging tasks the
// calendar sync would skip.
func formatTaskLine(task models.Task) string {
	due := "no due date"
	if task.DueDate != nil {
		due = task.DueDate.Local().Format("2006-01-02 15:04")
	}
	line := fmt.Sprintf("[%s] %s  (%s, %s, due %s)", task.Status, task.Title, task.Priority, task.ID, due)
	if check := sync.CanSyncTask(task); !check.CanSync {
		line += fmt.Sprintf("  (not syncable: %s)", check.Reason)
	}
	return line
}

// TaskDoneCommand marks a task completed. Completed tasks remain sync
// eligible; the event keeps its calendar slot until deleted explicitly.
func TaskDoneCommand(database *sql.DB, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: calsync task done <task-id>")
	}

	if err := db.UpdateTaskStatus(database, args[0], models.StatusCompleted); err != nil {
		return err
	}

	fmt.Printf("✓ Task %s completed\n", args[0])
	return nil
}

func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q (want RFC3339 or YYYY-MM-DD)", value)
}
