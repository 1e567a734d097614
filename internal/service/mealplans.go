package service

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/grocery"
	"github.com/Kerhoff/hearth/internal/mealplan"
	"github.com/Kerhoff/hearth/internal/metrics"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// useUpWindowDays is how far ahead expiring items are pulled into suggestions
// when a plan names no use-up items.
const useUpWindowDays = 3

// ErrOutsideWeek is returned when a meal is placed on a day outside the
// plan's week.
var ErrOutsideWeek = errors.New("date is outside the plan's week")

// GetOrCreatePlan returns the household's plan for the week containing date,
// creating an empty one when none exists.
func (s *Service) GetOrCreatePlan(ctx context.Context, householdID int64, date civil.Date) (*models.MealPlan, error) {
	weekStart := models.WeekStartOf(date)
	plan, err := s.MealPlans.GetByWeek(ctx, householdID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan for week %s: %w", weekStart, err)
	}
	if plan != nil {
		return plan, nil
	}
	plan, err = s.MealPlans.Create(ctx, models.NewMealPlan(householdID, weekStart))
	if err != nil {
		return nil, fmt.Errorf("failed to create meal plan for week %s: %w", weekStart, err)
	}
	s.logger.WithFields(logrus.Fields{"household_id": householdID, "plan_id": plan.ID}).
		Infof("Created meal plan for week of %s", weekStart)
	return plan, nil
}

// GetPlan returns a plan by id.
func (s *Service) GetPlan(ctx context.Context, id int64) (*models.MealPlan, error) {
	plan, err := s.MealPlans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan %d: %w", id, err)
	}
	if plan == nil {
		return nil, fmt.Errorf("meal plan %d: %w", id, repository.ErrNotFound)
	}
	return plan, nil
}

// SavePlan stores changes to a plan's constraints and meals.
func (s *Service) SavePlan(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	updated, err := s.MealPlans.Update(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to update meal plan %d: %w", plan.ID, err)
	}
	return updated, nil
}

func inWeek(plan *models.MealPlan, date civil.Date) bool {
	return !date.Before(plan.WeekStart) && date.Before(plan.WeekStart.AddDays(7))
}

// SetMeal places a recipe on a day of the plan's week.
func (s *Service) SetMeal(ctx context.Context, planID int64, date civil.Date, recipeID int64, mealType models.MealType) (*models.MealPlan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !inWeek(plan, date) {
		return nil, fmt.Errorf("%s, week of %s: %w", date, plan.WeekStart, ErrOutsideWeek)
	}
	if _, err := s.recipeInHousehold(ctx, plan.HouseholdID, recipeID); err != nil {
		return nil, err
	}
	plan.SetMeal(date, recipeID, mealType)
	return s.SavePlan(ctx, plan)
}

// RemoveMeal clears a day of the plan.
func (s *Service) RemoveMeal(ctx context.Context, planID int64, date civil.Date) (*models.MealPlan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.RemoveMeal(date)
	return s.SavePlan(ctx, plan)
}

// SuggestWeek proposes recipes for the days of plan that have no meal yet.
// Use-up items default to whatever expires within three days.
func (s *Service) SuggestWeek(ctx context.Context, plan *models.MealPlan) (mealplan.Week, error) {
	recipes, err := s.ListRecipes(ctx, plan.HouseholdID)
	if err != nil {
		return mealplan.Week{}, err
	}
	inventory, err := s.InventoryList(ctx, plan.HouseholdID)
	if err != nil {
		return mealplan.Week{}, err
	}

	var useUp []*models.InventoryItem
	if len(plan.UseUpItems) > 0 {
		wanted := make(map[int64]bool, len(plan.UseUpItems))
		for _, id := range plan.UseUpItems {
			wanted[id] = true
		}
		for _, it := range inventory {
			if wanted[it.ID] {
				useUp = append(useUp, it)
			}
		}
	} else {
		useUp, err = s.ExpiringSoon(ctx, plan.HouseholdID, useUpWindowDays)
		if err != nil {
			return mealplan.Week{}, err
		}
	}

	open := []mealplan.Day{}
	var planned []int64
	for _, d := range mealplan.WeekDays(plan.WeekStart) {
		if meal, ok := plan.Meals[d.Date.String()]; ok {
			planned = append(planned, meal.RecipeID)
			continue
		}
		open = append(open, d)
	}

	week := s.engine.GenerateWeek(mealplan.Constraints{
		Recipes:              recipes,
		Inventory:            inventory,
		UseUp:                useUp,
		MustInclude:          plan.MustIncludeRecipes,
		CategoryRequirements: plan.CategoryRequirements,
		Days:                 open,
		Planned:              planned,
	})
	metrics.ObserveSuggestions(week.Fulfilled)
	return week, nil
}

// AcceptSuggestions writes every suggestion that has a recipe into the plan
// as dinner. Suggestions for days outside the plan's week are ignored; a
// recipe from another household fails the whole call.
func (s *Service) AcceptSuggestions(ctx context.Context, planID int64, suggestions []mealplan.Suggestion) (*models.MealPlan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, sg := range suggestions {
		if sg.Recipe == nil || !inWeek(plan, sg.Day.Date) {
			continue
		}
		if _, err := s.recipeInHousehold(ctx, plan.HouseholdID, sg.Recipe.ID); err != nil {
			return nil, err
		}
		plan.SetMeal(sg.Day.Date, sg.Recipe.ID, models.MealDinner)
		n++
	}
	plan, err = s.SavePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"household_id": plan.HouseholdID, "plan_id": plan.ID}).
		Infof("Accepted %d suggested meals", n)
	return plan, nil
}

// GroceryList derives the shopping list for plan's meals.
func (s *Service) GroceryList(ctx context.Context, plan *models.MealPlan) ([]grocery.Entry, error) {
	recipes, err := s.ListRecipes(ctx, plan.HouseholdID)
	if err != nil {
		return nil, err
	}
	inventory, err := s.InventoryList(ctx, plan.HouseholdID)
	if err != nil {
		return nil, err
	}
	return s.grocery.Generate(plan.Meals, recipes, inventory), nil
}

// CommitGrocery adds plan's grocery entries to the shopping list, optionally
// only the ones not already on hand, and returns how many were added.
func (s *Service) CommitGrocery(ctx context.Context, plan *models.MealPlan, onlyMissing bool, addedBy *int64) (int, error) {
	entries, err := s.GroceryList(ctx, plan)
	if err != nil {
		return 0, err
	}
	if onlyMissing {
		entries = grocery.Missing(entries)
	}
	for i, e := range entries {
		qty := e.Quantity
		_, err := s.AddShoppingItem(ctx, &models.ShoppingItem{
			HouseholdID: plan.HouseholdID,
			Name:        e.Name,
			Quantity:    &qty,
			Unit:        e.Unit,
			Category:    e.Category,
			Notes:       e.Notes(),
			AddedByID:   addedBy,
		})
		if err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

// PlanStats summarizes a plan.
type PlanStats struct {
	PlannedDays       int            `json:"planned_days"`
	CategoryCounts    map[string]int `json:"category_counts"`
	TotalIngredients  int            `json:"total_ingredients"`
	IngredientsOnHand int            `json:"ingredients_on_hand"`
	IngredientsToBuy  int            `json:"ingredients_to_buy"`
}

// Stats counts planned days per category and how much of the grocery list is
// already on hand.
func (s *Service) Stats(ctx context.Context, plan *models.MealPlan) (*PlanStats, error) {
	recipes, err := s.ListRecipes(ctx, plan.HouseholdID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	st := &PlanStats{PlannedDays: len(plan.Meals), CategoryCounts: map[string]int{}}
	for _, m := range plan.Meals {
		if r, ok := byID[m.RecipeID]; ok && r.Category != "" {
			st.CategoryCounts[r.Category]++
		}
	}

	entries, err := s.GroceryList(ctx, plan)
	if err != nil {
		return nil, err
	}
	st.TotalIngredients = len(entries)
	for _, e := range entries {
		if e.Have {
			st.IngredientsOnHand++
		} else {
			st.IngredientsToBuy++
		}
	}
	return st, nil
}
