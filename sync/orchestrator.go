// ABOUTME: Sync orchestration composing eligibility, translation, identity, and gateway
// ABOUTME: Pushes tasks to the calendar and imports events back as task patches
package sync

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/synapse-app/calsync/models"
)

// How far around now the orchestrator scans when the link index has no
// entry for a task and identity must be recovered from the events themselves.
const (
	scanLookback = 30 * 24 * time.Hour
	scanHorizon  = 365 * 24 * time.Hour
)

// EventGateway is the calendar surface the engine drives. *CalendarGateway
// is the production implementation.
type EventGateway interface {
	GetPrimaryCalendar(ctx context.Context) (*calendar.CalendarListEntry, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]*calendar.Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error)
}

// Engine ties the pure translation/identity functions to the gateway and
// link index. It keeps no per-task mutable state; callers that may sync the
// same task concurrently from two sites must serialize those calls.
type Engine struct {
	gateway EventGateway
	index   *LinkIndex
	cfg     *SyncConfig
}

// NewEngine creates a sync engine. The index may be nil, in which case
// every sync resolves identity by scanning events.
func NewEngine(gateway EventGateway, index *LinkIndex, cfg *SyncConfig) *Engine {
	return &Engine{gateway: gateway, index: index, cfg: cfg}
}

// SyncResult describes what happened to one task during a push.
type SyncResult struct {
	Action     string
	SkipReason string
	Event      *calendar.Event
}

// SyncSummary aggregates a push run.
type SyncSummary struct {
	Created    int
	Updated    int
	Skipped    int
	SkipCounts map[string]int
}

// ImportedEvent is one calendar event translated back into task form.
// TaskID is empty for foreign events and for owned events whose id
// paragraph was lost (owned-but-unlinkable).
type ImportedEvent struct {
	EventID string
	TaskID  string
	Owned   bool
	Patch   models.TaskPatch
}

// calendarID resolves the sync target: the configured calendar, else the
// user's primary calendar.
func (e *Engine) calendarID(ctx context.Context) (string, error) {
	if e.cfg != nil && e.cfg.CalendarID != "" {
		return e.cfg.CalendarID, nil
	}
	primary, err := e.gateway.GetPrimaryCalendar(ctx)
	if err != nil {
		return "", err
	}
	return primary.Id, nil
}

func (e *Engine) timeZone() string {
	if e.cfg != nil && e.cfg.TimeZone != "" {
		return e.cfg.TimeZone
	}
	return DefaultTimeZone
}

// SyncTask pushes one task to the calendar, updating its prior event in
// place when one can be found and creating a new one otherwise. Ineligible
// tasks are skipped with a reason, not failed.
func (e *Engine) SyncTask(ctx context.Context, task models.Task) (SyncResult, error) {
	if check := CanSyncTask(task); !check.CanSync {
		return SyncResult{Action: models.SyncActionSkipped, SkipReason: check.Reason}, nil
	}

	calID, err := e.calendarID(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	existing, err := e.findExistingEvent(ctx, calID, task.ID)
	if err != nil {
		return SyncResult{}, err
	}

	if existing != nil {
		payload := UpdateEventFromTask(existing, task, e.timeZone())
		updated, err := e.gateway.UpdateEvent(ctx, calID, existing.Id, payload)
		if err != nil {
			return SyncResult{}, err
		}
		e.recordLink(task.ID, calID, updated.Id)
		return SyncResult{Action: models.SyncActionUpdated, Event: updated}, nil
	}

	payload := EncodeTaskToEvent(task, e.timeZone())
	created, err := e.gateway.CreateEvent(ctx, calID, payload)
	if err != nil {
		return SyncResult{}, err
	}
	e.recordLink(task.ID, calID, created.Id)
	return SyncResult{Action: models.SyncActionCreated, Event: created}, nil
}

// findExistingEvent looks up the task's event, first through the link
// index, then by scanning nearby events for the embedded task id. A stale
// index entry (event deleted, or renamed so it is no longer app-owned)
// is dropped rather than trusted.
func (e *Engine) findExistingEvent(ctx context.Context, calID, taskID string) (*calendar.Event, error) {
	if e.index != nil {
		link, err := e.index.Get(taskID)
		if err != nil {
			return nil, err
		}
		if link != nil {
			event, err := e.gateway.GetEvent(ctx, link.CalendarID, link.EventID)
			if err != nil {
				return nil, err
			}
			if event != nil && ExtractTaskIDFromEvent(event) == taskID {
				return event, nil
			}
			_ = e.index.Delete(taskID)
		}
	}

	now := time.Now()
	events, err := e.gateway.ListEvents(ctx, calID, now.Add(-scanLookback), now.Add(scanHorizon), 0)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		if ExtractTaskIDFromEvent(event) == taskID {
			return event, nil
		}
	}
	return nil, nil
}

// recordLink updates the index; a failed index write never fails the sync.
func (e *Engine) recordLink(taskID, calID, eventID string) {
	if e.index == nil {
		return
	}
	_ = e.index.Set(taskID, Link{CalendarID: calID, EventID: eventID})
}

// SyncAll pushes every eligible task, counting skips by reason. Gateway
// failures abort the run and propagate unchanged; retry policy belongs to
// the caller.
func (e *Engine) SyncAll(ctx context.Context, tasks []models.Task) (SyncSummary, error) {
	summary := SyncSummary{SkipCounts: make(map[string]int)}

	for _, task := range tasks {
		result, err := e.SyncTask(ctx, task)
		if err != nil {
			return summary, fmt.Errorf("sync task %s: %w", task.ID, err)
		}
		switch result.Action {
		case models.SyncActionCreated:
			summary.Created++
		case models.SyncActionUpdated:
			summary.Updated++
		case models.SyncActionSkipped:
			summary.Skipped++
			summary.SkipCounts[result.SkipReason]++
		}
	}

	return summary, nil
}

// ImportEvents pulls events in a time range and translates each into a
// task patch. The patches are returned as values; persisting them is the
// caller's job, this engine never writes task storage directly.
func (e *Engine) ImportEvents(ctx context.Context, timeMin, timeMax time.Time) ([]ImportedEvent, error) {
	calID, err := e.calendarID(ctx)
	if err != nil {
		return nil, err
	}

	events, err := e.gateway.ListEvents(ctx, calID, timeMin, timeMax, 0)
	if err != nil {
		return nil, err
	}

	imported := make([]ImportedEvent, 0, len(events))
	for _, event := range events {
		imported = append(imported, ImportedEvent{
			EventID: event.Id,
			TaskID:  ExtractTaskIDFromEvent(event),
			Owned:   IsSynapseEvent(event),
			Patch:   DecodeEventToTask(event),
		})
	}

	return imported, nil
}
