package models

import (
	"strings"
	"time"
)

// SavedLocation is a named place the household refers to by nickname
type SavedLocation struct {
	ID          int64     `json:"id" db:"id" yaml:"-"`
	HouseholdID int64     `json:"household_id" db:"household_id" yaml:"-"`
	Name        string    `json:"name" db:"name" yaml:"name"`
	Address     string    `json:"address" db:"address" yaml:"address"`
	Keywords    []string  `json:"keywords" db:"keywords" yaml:"keywords"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" yaml:"-"`
}

// GenerateKeywords derives lookup keywords from a location name: the whole
// lowercased name, each word longer than two letters, and the name without a
// leading "the".
func GenerateKeywords(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(lower)
	for _, w := range strings.Fields(lower) {
		if len(w) > 2 {
			add(w)
		}
	}
	add(strings.TrimPrefix(lower, "the "))
	return out
}
