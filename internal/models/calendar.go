package models

import "time"

// CalendarEvent represents a household calendar event
type CalendarEvent struct {
	ID              int64      `json:"id" db:"id"`
	HouseholdID     int64      `json:"household_id" db:"household_id"`
	ExternalID      string     `json:"external_id,omitempty" db:"external_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	StartTime       time.Time  `json:"start_time" db:"start_time"`
	EndTime         *time.Time `json:"end_time" db:"end_time"`
	AllDay          bool       `json:"all_day" db:"all_day"`
	Location        string     `json:"location" db:"location"`
	SavedLocationID *int64     `json:"saved_location_id,omitempty" db:"saved_location_id"`
	SmartReminder   bool       `json:"smart_reminder" db:"smart_reminder"`
	CreatedByID     *int64     `json:"created_by_id" db:"created_by_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsUpcoming returns true if the event hasn't started yet
func (e *CalendarEvent) IsUpcoming(now time.Time) bool {
	return now.Before(e.StartTime)
}

// End returns the event's end, defaulting to one day for all-day events and
// one hour otherwise.
func (e *CalendarEvent) End() time.Time {
	if e.EndTime != nil {
		return *e.EndTime
	}
	if e.AllDay {
		return e.StartTime.AddDate(0, 0, 1)
	}
	return e.StartTime.Add(time.Hour)
}
