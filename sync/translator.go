// ABOUTME: Pure translation between Synapse tasks and Google Calendar events
// ABOUTME: Owns the title marker, metadata paragraph format, and color mapping
package sync

import (
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/synapse-app/calsync/models"
)

// EventMarker prefixes the summary of every event this app creates.
const EventMarker = "[Synapse] "

// DefaultTimeZone is used when no timezone has been configured.
const DefaultTimeZone = "America/Mexico_City"

// Metadata labels written into the event description. The calendar API has
// no custom-field channel visible to us, so structured fields travel as
// labeled paragraphs in free text.
const (
	labelEstimatedTime = "⏱️ Tiempo estimado"
	labelTags          = "🏷️ Etiquetas"
	labelNotes         = "📝 Notas"
	labelTaskID        = "🔗 Creado desde Synapse - ID"
)

// untitledEventFallback stands in for imported events with an empty summary.
const untitledEventFallback = "Evento sin título"

var (
	estimatedTimeRe = regexp.MustCompile(`(?m)^` + labelEstimatedTime + `: (.+)$`)
	tagsRe          = regexp.MustCompile(`(?m)^` + labelTags + `: (.+)$`)
	notesRe         = regexp.MustCompile(`(?m)^` + labelNotes + `: (.+)$`)
	taskIDRe        = regexp.MustCompile(`(?m)^` + labelTaskID + `: (.+)$`)
)

// priorityColors maps task priority to a Google Calendar colorId. The
// reverse map must stay a strict one-to-one correspondence.
var priorityColors = map[string]string{
	models.PriorityHigh:   "11", // red
	models.PriorityMedium: "5",  // yellow
	models.PriorityLow:    "10", // green
}

var colorPriorities = map[string]string{
	"11": models.PriorityHigh,
	"5":  models.PriorityMedium,
	"10": models.PriorityLow,
}

// defaultReminders is the explicit override set applied to freshly created
// events; sync never relies on the calendar's own default reminder policy.
func defaultReminders() *calendar.EventReminders {
	return &calendar.EventReminders{
		UseDefault: false,
		Overrides: []*calendar.EventReminder{
			{Method: "popup", Minutes: 15},
			{Method: "email", Minutes: 30},
		},
		ForceSendFields: []string{"UseDefault"},
	}
}

// EncodeTaskToEvent converts a task into a calendar event payload. The
// caller is responsible for eligibility; a task without a due date gets
// the current time as a defensive start. Encoding the same task twice
// produces identical output when a due date is set.
func EncodeTaskToEvent(task models.Task, timeZone string) *calendar.Event {
	if timeZone == "" {
		timeZone = DefaultTimeZone
	}

	start := time.Now()
	if task.DueDate != nil {
		start = *task.DueDate
	}
	end := start.Add(time.Hour)

	summary := task.Title
	if !strings.HasPrefix(summary, EventMarker) {
		summary = EventMarker + summary
	}

	// Description: base text, then one labeled paragraph per metadata
	// field, then the task id paragraph, blank-line separated.
	parts := []string{task.Description}
	if task.EstimatedTime != "" {
		parts = append(parts, labelEstimatedTime+": "+task.EstimatedTime)
	}
	if len(task.Tags) > 0 {
		parts = append(parts, labelTags+": "+strings.Join(task.Tags, ", "))
	}
	if task.Notes != "" {
		parts = append(parts, labelNotes+": "+task.Notes)
	}
	parts = append(parts, labelTaskID+": "+task.ID)

	return &calendar.Event{
		Summary:     summary,
		Description: strings.TrimSpace(strings.Join(parts, "\n\n")),
		ColorId:     priorityToColor(task.Priority),
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		Reminders: defaultReminders(),
	}
}

// DecodeEventToTask converts a calendar event into a partial task. It is
// total: malformed or partially present description text yields best-effort
// fallbacks, never an error. Foreign events produce a minimal patch with
// no metadata extraction.
func DecodeEventToTask(event *calendar.Event) models.TaskPatch {
	patch := models.TaskPatch{
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
	}
	if event == nil {
		patch.Title = untitledEventFallback
		return patch
	}

	patch.DueDate = parseEventStart(event.Start)

	if !IsSynapseEvent(event) {
		patch.Title = event.Summary
		if patch.Title == "" {
			patch.Title = untitledEventFallback
		}
		patch.Description = event.Description
		return patch
	}

	patch.Title = strings.TrimPrefix(event.Summary, EventMarker)
	patch.Description = baseDescription(event.Description)
	if p, ok := colorPriorities[event.ColorId]; ok {
		patch.Priority = p
	}
	if m := estimatedTimeRe.FindStringSubmatch(event.Description); m != nil {
		patch.EstimatedTime = strings.TrimSpace(m[1])
	}
	if m := tagsRe.FindStringSubmatch(event.Description); m != nil {
		for _, tag := range strings.Split(m[1], ", ") {
			if tag = strings.TrimSpace(tag); tag != "" {
				patch.Tags = append(patch.Tags, tag)
			}
		}
	}
	if m := notesRe.FindStringSubmatch(event.Description); m != nil {
		patch.Notes = strings.TrimSpace(m[1])
	}

	return patch
}

func priorityToColor(priority string) string {
	if color, ok := priorityColors[priority]; ok {
		return color
	}
	return priorityColors[models.PriorityMedium]
}

// baseDescription returns the free-text portion preceding the first labeled
// metadata paragraph, or the whole description when no label is present.
func baseDescription(description string) string {
	cut := len(description)
	for _, label := range []string{labelEstimatedTime, labelTags, labelNotes, labelTaskID} {
		if idx := strings.Index(description, label+": "); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(description[:cut])
}

// parseEventStart extracts a timestamp from either a timed or all-day start.
func parseEventStart(start *calendar.EventDateTime) *time.Time {
	if start == nil {
		return nil
	}
	if start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, start.DateTime); err == nil {
			return &t
		}
	}
	if start.Date != "" {
		if t, err := time.Parse("2006-01-02", start.Date); err == nil {
			return &t
		}
	}
	return nil
}
