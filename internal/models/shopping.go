package models

import "time"

// ShoppingItem represents an item on the household shopping list
type ShoppingItem struct {
	ID          int64     `json:"id" db:"id"`
	HouseholdID int64     `json:"household_id" db:"household_id"`
	Name        string    `json:"name" db:"name"`
	Quantity    *float64  `json:"quantity" db:"quantity"`
	Unit        string    `json:"unit,omitempty" db:"unit"`
	Category    string    `json:"category" db:"category"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	Checked     bool      `json:"checked" db:"checked"`
	AddedByID   *int64    `json:"added_by_id" db:"added_by_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
