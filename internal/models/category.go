package models

// MealCategory is a household-defined recipe category
type MealCategory struct {
	ID          int64  `json:"id" db:"id"`
	HouseholdID int64  `json:"household_id" db:"household_id"`
	Name        string `json:"name" db:"name"`
	SortOrder   int    `json:"sort_order" db:"sort_order"`
}

// DefaultMealCategories are seeded for every new household.
var DefaultMealCategories = []string{
	"Chicken", "Beef", "Pork", "Seafood", "Vegetarian", "Pasta", "Soup", "Salad", "Other",
}
