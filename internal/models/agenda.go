package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// AgendaItem is a note pinned to a day
type AgendaItem struct {
	ID          int64      `json:"id" db:"id"`
	HouseholdID int64      `json:"household_id" db:"household_id"`
	Title       string     `json:"title" db:"title"`
	Notes       string     `json:"notes" db:"notes"`
	Date        civil.Date `json:"date" db:"date"`
	Done        bool       `json:"done" db:"done"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
