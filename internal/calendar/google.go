package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// Google creates events in a Google calendar. When mirror is set, each
// created event is also recorded locally with its Google id so reminders can
// find it.
type Google struct {
	svc        *gcal.Service
	calendarID string
	mirror     repository.CalendarRepository
}

// NewGoogleService builds a Calendar API client from a service account or
// OAuth credentials file.
func NewGoogleService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*gcal.Service, error) {
	opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsFile)}, opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// NewGoogle creates a Google calendar collaborator. mirror may be nil.
func NewGoogle(svc *gcal.Service, calendarID string, mirror repository.CalendarRepository) *Google {
	return &Google{svc: svc, calendarID: calendarID, mirror: mirror}
}

// CreateEvent implements Calendar.
func (g *Google) CreateEvent(ctx context.Context, ev NewEvent) (*models.CalendarEvent, error) {
	if g.calendarID == "" {
		return nil, ErrNoCalendarSelected
	}

	created, err := g.svc.Events.Insert(g.calendarID, toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	event := ev.model()
	event.ExternalID = created.Id
	if g.mirror == nil {
		return event, nil
	}
	stored, err := g.mirror.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to record calendar event %s: %w", created.Id, err)
	}
	return stored, nil
}

func toGoogle(ev NewEvent) *gcal.Event {
	end := ev.EndTime()
	out := &gcal.Event{
		Summary:     ev.Title,
		Location:    ev.Location,
		Description: ev.Description,
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if ev.AllDay {
		out.Start = &gcal.EventDateTime{Date: ev.Start.Format(time.DateOnly)}
		out.End = &gcal.EventDateTime{Date: end.Format(time.DateOnly)}
	} else {
		out.Start = &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)}
		out.End = &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}
	if ev.SmartReminder {
		private := map[string]string{"smartReminder": "true", "savedLocationId": ""}
		if ev.SavedLocationID != nil {
			private["savedLocationId"] = strconv.FormatInt(*ev.SavedLocationID, 10)
		}
		out.ExtendedProperties = &gcal.EventExtendedProperties{Private: private}
	}
	return out
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return fmt.Errorf("failed to create calendar event: %w", err)
}
