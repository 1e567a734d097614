package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// MealType names the meal a planned recipe is for
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// PlannedMeal is one filled slot of a meal plan
type PlannedMeal struct {
	RecipeID int64    `json:"recipe_id"`
	MealType MealType `json:"meal_type"`
}

// MealPlan holds one household's meals for the week beginning WeekStart,
// which is always a Sunday. Meals is keyed by ISO date and may be sparse.
type MealPlan struct {
	ID                   int64                  `json:"id" db:"id"`
	HouseholdID          int64                  `json:"household_id" db:"household_id"`
	WeekStart            civil.Date             `json:"week_start" db:"week_start"`
	Meals                map[string]PlannedMeal `json:"meals" db:"meals"`
	MustIncludeRecipes   []int64                `json:"must_include_recipes" db:"must_include_recipes"`
	CategoryRequirements map[string]int         `json:"category_requirements" db:"category_requirements"`
	UseUpItems           []int64                `json:"use_up_items" db:"use_up_items"`
	CreatedAt            time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at" db:"updated_at"`
}

// WeekStartOf returns the Sunday on or before d.
func WeekStartOf(d civil.Date) civil.Date {
	wd := d.In(time.UTC).Weekday()
	return d.AddDays(-int(wd))
}

// NewMealPlan returns an empty plan for the week containing d.
func NewMealPlan(householdID int64, d civil.Date) *MealPlan {
	return &MealPlan{
		HouseholdID:          householdID,
		WeekStart:            WeekStartOf(d),
		Meals:                map[string]PlannedMeal{},
		CategoryRequirements: map[string]int{},
	}
}

// Days returns the seven dates of the plan's week, Sunday first.
func (p *MealPlan) Days() []civil.Date {
	days := make([]civil.Date, 7)
	for i := range days {
		days[i] = p.WeekStart.AddDays(i)
	}
	return days
}

// SetMeal places recipeID on date.
func (p *MealPlan) SetMeal(date civil.Date, recipeID int64, mealType MealType) {
	if p.Meals == nil {
		p.Meals = map[string]PlannedMeal{}
	}
	if mealType == "" {
		mealType = MealDinner
	}
	p.Meals[date.String()] = PlannedMeal{RecipeID: recipeID, MealType: mealType}
}

// RemoveMeal clears date.
func (p *MealPlan) RemoveMeal(date civil.Date) {
	delete(p.Meals, date.String())
}
