package models

import "time"

// Ingredient is one line of a recipe. Quantity and Unit are nil when the
// recipe does not state them.
type Ingredient struct {
	Name     string   `json:"name" yaml:"name"`
	Quantity *float64 `json:"quantity" yaml:"quantity"`
	Unit     *string  `json:"unit" yaml:"unit"`
	Category string   `json:"category" yaml:"category"`
}

// Recipe represents a household recipe
type Recipe struct {
	ID           int64        `json:"id" db:"id" yaml:"-"`
	HouseholdID  int64        `json:"household_id" db:"household_id" yaml:"-"`
	Name         string       `json:"name" db:"name" yaml:"name"`
	Ingredients  []Ingredient `json:"ingredients" db:"ingredients" yaml:"ingredients"`
	Instructions string       `json:"instructions" db:"instructions" yaml:"instructions"`
	Servings     int          `json:"servings" db:"servings" yaml:"servings"`
	PrepTime     *int         `json:"prep_time" db:"prep_time" yaml:"prep_time"`
	CookTime     *int         `json:"cook_time" db:"cook_time" yaml:"cook_time"`
	Category     string       `json:"category" db:"category" yaml:"category"`
	Favorite     bool         `json:"favorite" db:"favorite" yaml:"favorite"`
	SourceURL    string       `json:"source_url,omitempty" db:"source_url" yaml:"source_url"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at" yaml:"-"`
}

// TotalTime returns prep plus cook minutes, or false when neither is known.
func (r *Recipe) TotalTime() (int, bool) {
	if r.PrepTime == nil && r.CookTime == nil {
		return 0, false
	}
	total := 0
	if r.PrepTime != nil {
		total += *r.PrepTime
	}
	if r.CookTime != nil {
		total += *r.CookTime
	}
	return total, true
}
