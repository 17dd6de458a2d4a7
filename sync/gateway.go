// ABOUTME: Gateway around the Google Calendar API for event CRUD
// ABOUTME: Wraps remote failures into a single opaque error kind for callers
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrNotAuthenticated is returned before any remote call is attempted when
// no OAuth token is available.
var ErrNotAuthenticated = errors.New("not authenticated with Google Calendar")

// ErrRemoteCalendar is the single failure kind surfaced for any transport
// or remote-API error; the underlying cause is kept in the message for
// logging. No automatic retry happens at this layer.
var ErrRemoteCalendar = errors.New("remote calendar operation failed")

// Default page size for event listings.
const defaultMaxResults int64 = 100

// CalendarGateway exposes the calendar operations the sync engine needs.
type CalendarGateway struct {
	svc *calendar.Service
}

// NewCalendarGateway creates a gateway from an OAuth token.
func NewCalendarGateway(ctx context.Context, token *oauth2.Token) (*CalendarGateway, error) {
	if token == nil {
		return nil, ErrNotAuthenticated
	}

	config := NewOAuthConfig()
	client := config.Client(ctx, token)

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%w: creating service: %v", ErrRemoteCalendar, err)
	}

	return &CalendarGateway{svc: svc}, nil
}

// ListCalendars returns all calendars visible to the user.
func (g *CalendarGateway) ListCalendars(ctx context.Context) ([]*calendar.CalendarListEntry, error) {
	list, err := g.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list calendars: %v", ErrRemoteCalendar, err)
	}
	return list.Items, nil
}

// GetPrimaryCalendar returns the calendar flagged primary, or the first in
// list order when none is flagged. Used as the default sync target when no
// calendar has been configured.
func (g *CalendarGateway) GetPrimaryCalendar(ctx context.Context) (*calendar.CalendarListEntry, error) {
	calendars, err := g.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}
	if len(calendars) == 0 {
		return nil, fmt.Errorf("%w: no calendars available", ErrRemoteCalendar)
	}
	for _, cal := range calendars {
		if cal.Primary {
			return cal, nil
		}
	}
	return calendars[0], nil
}

// HasCalendarAccess reports whether the given calendar is reachable.
func (g *CalendarGateway) HasCalendarAccess(ctx context.Context, calendarID string) bool {
	_, err := g.svc.CalendarList.Get(calendarID).Context(ctx).Do()
	return err == nil
}

// ListEvents fetches events in a time range, expanded to single instances
// and ordered by start time. Zero time bounds are omitted; maxResults <= 0
// falls back to the default page size.
func (g *CalendarGateway) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]*calendar.Event, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	call := g.svc.Events.List(calendarID).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime")
	if !timeMin.IsZero() {
		call = call.TimeMin(timeMin.Format(time.RFC3339))
	}
	if !timeMax.IsZero() {
		call = call.TimeMax(timeMax.Format(time.RFC3339))
	}

	events, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrRemoteCalendar, err)
	}
	return events.Items, nil
}

// DayEvents lists events for the calendar day containing ref.
func (g *CalendarGateway) DayEvents(ctx context.Context, calendarID string, ref time.Time) ([]*calendar.Event, error) {
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return g.ListEvents(ctx, calendarID, start, start.AddDate(0, 0, 1), 0)
}

// WeekEvents lists events for the Monday-based week containing ref.
func (g *CalendarGateway) WeekEvents(ctx context.Context, calendarID string, ref time.Time) ([]*calendar.Event, error) {
	offset := (int(ref.Weekday()) + 6) % 7
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()).AddDate(0, 0, -offset)
	return g.ListEvents(ctx, calendarID, start, start.AddDate(0, 0, 7), 0)
}

// MonthEvents lists events for the calendar month containing ref.
func (g *CalendarGateway) MonthEvents(ctx context.Context, calendarID string, ref time.Time) ([]*calendar.Event, error) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return g.ListEvents(ctx, calendarID, start, start.AddDate(0, 1, 0), 0)
}

// GetEvent fetches a single event. A remote 404/410 yields (nil, nil) so
// callers never see a half-populated record for a missing event.
func (g *CalendarGateway) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	event, err := g.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get event %s: %v", ErrRemoteCalendar, eventID, err)
	}
	return event, nil
}

// CreateEvent inserts a new event into the calendar.
func (g *CalendarGateway) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: create event: %v", ErrRemoteCalendar, err)
	}
	return created, nil
}

// UpdateEvent replaces an existing event.
func (g *CalendarGateway) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error) {
	updated, err := g.svc.Events.Update(calendarID, eventID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: update event %s: %v", ErrRemoteCalendar, eventID, err)
	}
	return updated, nil
}

// DeleteEvent removes an event from the calendar.
func (g *CalendarGateway) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: delete event %s: %v", ErrRemoteCalendar, eventID, err)
	}
	return nil
}
