package models

import "time"

// Household represents a group of people sharing tasks, lists and meals
// (typically mapped to a Telegram group chat)
type Household struct {
	ID        int64     `json:"id" db:"id"`
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	Name      string    `json:"name" db:"name"`
	Timezone  string    `json:"timezone" db:"timezone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Members   []User    `json:"members,omitempty"`
}

// HouseholdMember represents the join table between households and users
type HouseholdMember struct {
	ID          int64     `json:"id" db:"id"`
	HouseholdID int64     `json:"household_id" db:"household_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Role        string    `json:"role" db:"role"` // "admin" or "member"
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// Location returns the household's time zone, falling back to UTC when the
// stored name cannot be loaded.
func (h *Household) Location() *time.Location {
	if h.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
