package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// StorageLocation is where an inventory item is kept
type StorageLocation string

const (
	StorageFreezer      StorageLocation = "Freezer"
	StorageRefrigerator StorageLocation = "Refrigerator"
	StoragePantry       StorageLocation = "Pantry"
)

// Valid reports whether l is one of the known storage locations.
func (l StorageLocation) Valid() bool {
	switch l {
	case StorageFreezer, StorageRefrigerator, StoragePantry:
		return true
	}
	return false
}

// InventoryItem is food on hand. Quantity is always positive while the item
// exists.
type InventoryItem struct {
	ID             int64           `json:"id" db:"id" yaml:"-"`
	HouseholdID    int64           `json:"household_id" db:"household_id" yaml:"-"`
	Name           string          `json:"name" db:"name" yaml:"name"`
	Quantity       float64         `json:"quantity" db:"quantity" yaml:"quantity"`
	Unit           string          `json:"unit,omitempty" db:"unit" yaml:"unit"`
	Category       string          `json:"category" db:"category" yaml:"category"`
	Location       StorageLocation `json:"location" db:"location" yaml:"location"`
	ExpirationDate *civil.Date     `json:"expiration_date" db:"expiration_date" yaml:"expiration_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at" yaml:"-"`
}

// ExpiresWithin reports whether the item expires on or before today+days.
// Already expired items count.
func (i *InventoryItem) ExpiresWithin(today civil.Date, days int) bool {
	if i.ExpirationDate == nil {
		return false
	}
	return !i.ExpirationDate.After(today.AddDays(days))
}
