package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/civil"
	"gopkg.in/yaml.v3"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/service"
)

// Fixtures is a household's starting data. Meals maps a date to the name of
// a recipe in the same file.
type Fixtures struct {
	Recipes   []*models.Recipe        `yaml:"recipes"`
	Inventory []*models.InventoryItem `yaml:"inventory"`
	Locations []*models.SavedLocation `yaml:"locations"`
	Meals     map[string]string       `yaml:"meals"`
}

// SeedCounts reports what Apply created.
type SeedCounts struct {
	Recipes   int
	Inventory int
	Locations int
	Meals     int
}

// LoadFixtures decodes fixtures, rejecting unknown keys.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}

// Apply creates the fixtures in householdID through the service, so names
// are trimmed and categories guessed the same way as for user input.
func (fx *Fixtures) Apply(ctx context.Context, svc *service.Service, householdID int64) (SeedCounts, error) {
	var n SeedCounts
	byName := make(map[string]*models.Recipe, len(fx.Recipes))
	for _, r := range fx.Recipes {
		r.HouseholdID = householdID
		created, err := svc.CreateRecipe(ctx, r)
		if err != nil {
			return n, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		byName[created.Name] = created
		n.Recipes++
	}
	for _, it := range fx.Inventory {
		it.HouseholdID = householdID
		if _, err := svc.AddInventoryItem(ctx, it); err != nil {
			return n, fmt.Errorf("inventory item %q: %w", it.Name, err)
		}
		n.Inventory++
	}
	for _, loc := range fx.Locations {
		loc.HouseholdID = householdID
		if _, err := svc.AddLocation(ctx, loc); err != nil {
			return n, fmt.Errorf("location %q: %w", loc.Name, err)
		}
		n.Locations++
	}
	for day, name := range fx.Meals {
		date, err := civil.ParseDate(day)
		if err != nil {
			return n, fmt.Errorf("meal date %q: %w", day, err)
		}
		r, ok := byName[name]
		if !ok {
			return n, fmt.Errorf("meal on %s: no recipe %q in fixtures", day, name)
		}
		plan, err := svc.GetOrCreatePlan(ctx, householdID, date)
		if err != nil {
			return n, err
		}
		if _, err := svc.SetMeal(ctx, plan.ID, date, r.ID, models.MealDinner); err != nil {
			return n, err
		}
		n.Meals++
	}
	return n, nil
}
