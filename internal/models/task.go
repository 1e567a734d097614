package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Frequency is the repeat cadence of a recurring task
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Next advances d by one period of f.
func (f Frequency) Next(d civil.Date) civil.Date {
	switch f {
	case FrequencyWeekly:
		return d.AddDays(7)
	case FrequencyMonthly:
		return civil.DateOf(d.In(time.UTC).AddDate(0, 1, 0))
	default:
		return d.AddDays(1)
	}
}

// Task represents a shared household task
type Task struct {
	ID                int64       `json:"id" db:"id"`
	HouseholdID       int64       `json:"household_id" db:"household_id"`
	Title             string      `json:"title" db:"title"`
	Completed         bool        `json:"completed" db:"completed"`
	CompletedAt       *time.Time  `json:"completed_at" db:"completed_at"`
	DueDate           *civil.Date `json:"due_date" db:"due_date"`
	DueTime           string      `json:"due_time,omitempty" db:"due_time"` // HH:MM
	Recurring         bool        `json:"recurring" db:"recurring"`
	Frequency         Frequency   `json:"frequency,omitempty" db:"frequency"`
	NeedsNotification bool        `json:"needs_notification" db:"needs_notification"`
	NotifiedAt        *time.Time  `json:"notified_at" db:"notified_at"`
	PreviousTaskID    *int64      `json:"previous_task_id,omitempty" db:"previous_task_id"`
	CreatedByID       *int64      `json:"created_by_id" db:"created_by_id"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// IsPending returns true if the task is not completed
func (t *Task) IsPending() bool {
	return !t.Completed
}

// DueAt combines the due date and time in loc. A task without a due time is
// due at the start of its due day.
func (t *Task) DueAt(loc *time.Location) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	hour, minute := 0, 0
	if ct, err := civil.ParseTime(t.DueTime + ":00"); err == nil {
		hour, minute = ct.Hour, ct.Minute
	}
	d := *t.DueDate
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc), true
}

// IsOverdue returns true if the task has a due date and it's passed
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.DueAt(now.Location())
	return ok && now.After(due)
}
