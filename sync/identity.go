// ABOUTME: Ownership and identity recovery for calendar events
// ABOUTME: Recognizes app-created events and recovers the originating task id
package sync

import (
	"strings"

	"google.golang.org/api/calendar/v3"

	"github.com/synapse-app/calsync/models"
)

// IsSynapseEvent reports whether an event was created by this app. This is
// a summary prefix check only: a user who renames the event back to an
// unmarked title disowns it on the next sync pass.
func IsSynapseEvent(event *calendar.Event) bool {
	return event != nil && strings.HasPrefix(event.Summary, EventMarker)
}

// ExtractTaskIDFromEvent recovers the originating task id from an event
// description. Returns "" when the event is not app-owned, or when the id
// paragraph is missing (an owned-but-unlinkable event, which callers must
// treat as a data anomaly rather than an error).
func ExtractTaskIDFromEvent(event *calendar.Event) string {
	if !IsSynapseEvent(event) {
		return ""
	}
	if m := taskIDRe.FindStringSubmatch(event.Description); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// UpdateEventFromTask re-encodes a task over an existing event, keeping the
// event id so the gateway issues an update rather than a create. Reminders
// the user customized on the calendar side survive the re-sync; only events
// still on the default policy get the standard override set.
func UpdateEventFromTask(existing *calendar.Event, task models.Task, timeZone string) *calendar.Event {
	event := EncodeTaskToEvent(task, timeZone)
	if existing == nil {
		return event
	}
	event.Id = existing.Id
	if existing.Reminders != nil && !existing.Reminders.UseDefault {
		event.Reminders = existing.Reminders
	}
	return event
}
