// ABOUTME: Calendar sync CLI commands
// ABOUTME: Handles push, import, and sync status operations
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/synapse-app/calsync/db"
	"github.com/synapse-app/calsync/models"
	"github.com/synapse-app/calsync/sync"
)

const calendarService = "calendar"

// newEngine builds a sync engine from the stored token, config, and link index.
func newEngine(ctx context.Context) (*sync.Engine, *sync.LinkIndex, error) {
	token := sync.GetAccessToken()
	if token == nil {
		return nil, nil, sync.ErrNotAuthenticated
	}

	cfg, err := sync.LoadSyncConfig()
	if err != nil {
		return nil, nil, err
	}

	gateway, err := sync.NewCalendarGateway(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	index, err := sync.OpenLinkIndex(sync.DefaultLinkIndexPath())
	if err != nil {
		return nil, nil, err
	}

	return sync.NewEngine(gateway, index, cfg), index, nil
}

// SyncPushCommand pushes all eligible tasks to the calendar.
func SyncPushCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()

	engine, index, err := newEngine(ctx)
	if err != nil {
		return describeSyncError(err)
	}
	defer func() { _ = index.Close() }()

	tasks, err := db.ListTasks(database)
	if err != nil {
		return err
	}

	fmt.Println("Syncing tasks to Google Calendar...")
	if err := db.UpdateSyncStatus(database, calendarService, models.SyncStatusSyncing, nil); err != nil {
		return err
	}

	runID := db.NewSyncRunID()
	summary, err := engine.SyncAll(ctx, tasks)
	if err != nil {
		errMsg := err.Error()
		_ = db.UpdateSyncStatus(database, calendarService, models.SyncStatusError, &errMsg)
		return describeSyncError(err)
	}

	_ = db.CreateSyncLog(database, &db.SyncLogEntry{
		RunID:   runID,
		Service: calendarService,
		Action:  "push",
		Detail:  fmt.Sprintf("created=%d updated=%d skipped=%d", summary.Created, summary.Updated, summary.Skipped),
	})
	if err := db.MarkSyncComplete(database, calendarService); err != nil {
		return err
	}

	fmt.Printf("\n✓ Synced %d tasks (%d created, %d updated)\n",
		summary.Created+summary.Updated, summary.Created, summary.Updated)
	for reason, count := range summary.SkipCounts {
		fmt.Printf("  ✓ Skipped %d: %s\n", count, reason)
	}

	return nil
}

// SyncImportCommand pulls calendar events from a time window and persists
// them as tasks.
func SyncImportCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	days := fs.Int("days", 30, "How many days ahead to import")
	_ = fs.Parse(args)

	ctx := context.Background()

	engine, index, err := newEngine(ctx)
	if err != nil {
		return describeSyncError(err)
	}
	defer func() { _ = index.Close() }()

	now := time.Now()
	fmt.Printf("Importing calendar events (next %d days)...\n", *days)

	imported, err := engine.ImportEvents(ctx, now, now.AddDate(0, 0, *days))
	if err != nil {
		return describeSyncError(err)
	}

	runID := db.NewSyncRunID()
	applied, unlinkable, err := applyImportedEvents(database, runID, imported)
	if err != nil {
		return err
	}

	if err := db.MarkSyncComplete(database, calendarService); err != nil {
		return err
	}

	fmt.Printf("\n✓ Imported %d events\n", applied)
	if unlinkable > 0 {
		fmt.Printf("  ✓ %d owned events had no recoverable task id (created as new tasks)\n", unlinkable)
	}

	return nil
}

// applyImportedEvents persists imported events as tasks. Events with no
// recoverable task id are matched against the sync log first, so importing
// the same window twice updates the tasks the first run created instead of
// duplicating them.
func applyImportedEvents(database *sql.DB, runID string, imported []sync.ImportedEvent) (applied, unlinkable int, err error) {
	for _, item := range imported {
		taskID := item.TaskID
		if taskID == "" {
			taskID, err = db.GetImportedTaskID(database, calendarService, item.EventID)
			if err != nil {
				return applied, unlinkable, err
			}
		}
		if item.Owned && taskID == "" {
			// Owned event whose id paragraph was lost: importable,
			// but not reconcilable with an existing task.
			unlinkable++
		}
		task, err := db.ApplyPatch(database, taskID, item.Patch)
		if err != nil {
			return applied, unlinkable, err
		}
		applied++
		_ = db.CreateSyncLog(database, &db.SyncLogEntry{
			RunID:   runID,
			Service: calendarService,
			TaskID:  task.ID,
			EventID: item.EventID,
			Action:  models.SyncActionImport,
		})
	}
	return applied, unlinkable, nil
}

// SyncStatusCommand prints the current sync state.
func SyncStatusCommand(database *sql.DB, args []string) error {
	state, err := db.GetSyncState(database, calendarService)
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("Never synced.")
		return nil
	}

	fmt.Printf("Status: %s\n", state.Status)
	if state.LastSyncTime != nil {
		fmt.Printf("Last sync: %s\n", state.LastSyncTime.Local().Format(time.RFC1123))
	}
	if state.ErrorMessage != nil {
		fmt.Printf("Last error: %s\n", *state.ErrorMessage)
	}

	return nil
}

// describeSyncError maps engine errors to user-facing messages without
// leaking transport detail.
func describeSyncError(err error) error {
	if errors.Is(err, sync.ErrNotAuthenticated) {
		return fmt.Errorf("not authenticated. Run 'calsync auth init' first")
	}
	if errors.Is(err, sync.ErrRemoteCalendar) {
		fmt.Printf("  (cause: %v)\n", err)
		return fmt.Errorf("could not sync with calendar")
	}
	return err
}
