// Package calendar lists the day's events from Google Calendar.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is a Google Calendar event as returned by the API.
type Event = gcal.Event

// Collector lists events for the current day of one calendar.
type Collector struct {
	service    *gcal.Service
	calendarID string
	location   *time.Location
	now        func() time.Time
}

// NewCollector wraps an authorised Calendar service. The day window is
// computed in loc.
func NewCollector(service *gcal.Service, calendarID string, loc *time.Location) *Collector {
	if loc == nil {
		loc = time.Local
	}
	return &Collector{
		service:    service,
		calendarID: calendarID,
		location:   loc,
		now:        time.Now,
	}
}

// WithClock returns a copy of the collector reading the time from now.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	cp := *c
	cp.now = now
	return &cp
}

// TodayEvents returns the events between local midnight today and local
// midnight tomorrow, with recurring events expanded and ordered by start.
func (c *Collector) TodayEvents(ctx context.Context) ([]*Event, error) {
	start, end := DayWindow(c.now().In(c.location))
	return c.ListEvents(ctx, start, end)
}

// ListEvents returns every event of the collector's calendar that
// overlaps [start, end), following all result pages.
func (c *Collector) ListEvents(ctx context.Context, start, end time.Time) ([]*Event, error) {
	if c.calendarID == "" {
		return nil, fmt.Errorf("calendar id is not configured")
	}

	call := c.service.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true). // Expand recurring events
		OrderBy("startTime")

	events := []*Event{}
	err := call.Pages(ctx, func(page *gcal.Events) error {
		events = append(events, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing calendar events: %w", err)
	}

	return events, nil
}

// DayWindow returns midnight at the start of t's day and midnight of the
// following day, both in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// NewService builds a read-only Calendar service from an OAuth client
// credentials file (installed or web application) and a previously saved
// token file.
func NewService(ctx context.Context, credentialsFile, tokenFile string) (*gcal.Service, error) {
	credentials, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(credentials, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	service, err := gcal.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("error initializing Calendar service: %w", err)
	}
	return service, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file (run the authorization flow first): %w", err)
	}
	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return &token, nil
}
