// Package calendar creates household calendar events, either in a Google
// calendar or in the local database.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/Kerhoff/hearth/internal/models"
)

var (
	// ErrNoCalendarSelected is returned when no target calendar is configured.
	ErrNoCalendarSelected = errors.New("no calendar selected")
	// ErrUnauthorized is returned when the calendar provider rejects the
	// stored credentials.
	ErrUnauthorized = errors.New("calendar authorization expired")
)

// NewEvent describes an event to create.
type NewEvent struct {
	HouseholdID     int64
	Title           string
	Description     string
	Start           time.Time
	End             *time.Time
	AllDay          bool
	Location        string
	SavedLocationID *int64
	SmartReminder   bool
	CreatedByID     *int64
}

// Calendar creates events.
type Calendar interface {
	CreateEvent(ctx context.Context, ev NewEvent) (*models.CalendarEvent, error)
}

// EndTime returns the explicit end, or start plus one day for all-day events
// and plus one hour otherwise.
func (ev NewEvent) EndTime() time.Time {
	if ev.End != nil {
		return *ev.End
	}
	if ev.AllDay {
		return ev.Start.AddDate(0, 0, 1)
	}
	return ev.Start.Add(time.Hour)
}

func (ev NewEvent) model() *models.CalendarEvent {
	end := ev.EndTime()
	return &models.CalendarEvent{
		HouseholdID:     ev.HouseholdID,
		Title:           ev.Title,
		Description:     ev.Description,
		StartTime:       ev.Start,
		EndTime:         &end,
		AllDay:          ev.AllDay,
		Location:        ev.Location,
		SavedLocationID: ev.SavedLocationID,
		SmartReminder:   ev.SmartReminder,
		CreatedByID:     ev.CreatedByID,
	}
}
