package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/mealplan"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/recipe"
	"github.com/Kerhoff/hearth/internal/repository/memory"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/pkg/logger"
)

func f(v float64) *float64 { return &v }

func seedKitchen(t *testing.T, svc *service.Service) (a, b *models.Recipe) {
	t.Helper()
	ctx := context.Background()
	a, err := svc.CreateRecipe(ctx, &models.Recipe{HouseholdID: 1, Name: "Pancakes", Category: "Other", Ingredients: []models.Ingredient{
		{Name: "eggs", Quantity: f(2)}, {Name: "flour", Quantity: f(1)},
	}})
	require.NoError(t, err)
	b, err = svc.CreateRecipe(ctx, &models.Recipe{HouseholdID: 1, Name: "Omelette", Category: "Vegetarian", Favorite: true, Ingredients: []models.Ingredient{
		{Name: "eggs", Quantity: f(3)}, {Name: "onion", Quantity: f(1)},
	}})
	require.NoError(t, err)
	_, err = svc.AddInventoryItem(ctx, &models.InventoryItem{HouseholdID: 1, Name: "eggs", Quantity: 4})
	require.NoError(t, err)
	return a, b
}

func TestGetOrCreatePlan(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	plan, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 4, 28), plan.WeekStart)

	same, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 4))
	require.NoError(t, err)
	assert.Equal(t, plan.ID, same.ID)

	next, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 5))
	require.NoError(t, err)
	assert.NotEqual(t, plan.ID, next.ID)
}

func TestSetAndRemoveMeal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	a, _ := seedKitchen(t, svc)

	plan, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 1))
	require.NoError(t, err)

	plan, err = svc.SetMeal(ctx, plan.ID, date(2024, 4, 29), a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.PlannedMeal{RecipeID: a.ID, MealType: models.MealDinner}, plan.Meals["2024-04-29"])

	_, err = svc.SetMeal(ctx, plan.ID, date(2024, 5, 10), a.ID, "")
	assert.Error(t, err)
	_, err = svc.SetMeal(ctx, plan.ID, date(2024, 4, 30), 999, "")
	assert.Error(t, err)

	plan, err = svc.RemoveMeal(ctx, plan.ID, date(2024, 4, 29))
	require.NoError(t, err)
	assert.Empty(t, plan.Meals)
}

func TestSuggestAndAccept(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	a, b := seedKitchen(t, svc)

	plan, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 1))
	require.NoError(t, err)
	plan, err = svc.SetMeal(ctx, plan.ID, date(2024, 4, 28), a.ID, models.MealDinner)
	require.NoError(t, err)
	plan.MustIncludeRecipes = []int64{b.ID}
	plan, err = svc.SavePlan(ctx, plan)
	require.NoError(t, err)

	week, err := svc.SuggestWeek(ctx, plan)
	require.NoError(t, err)
	require.Len(t, week.Suggestions, 6, "Sunday is already planned")

	first := week.Suggestions[0]
	assert.Equal(t, date(2024, 4, 29), first.Day.Date)
	assert.Equal(t, "Mon", first.Day.Label)
	assert.Equal(t, b.ID, first.Recipe.ID)
	assert.True(t, first.Locked)

	// Pancakes is already on Sunday, so the rest of the week stays empty.
	for _, sg := range week.Suggestions[1:] {
		assert.Nil(t, sg.Recipe, sg.Day.Label)
	}

	plan, err = svc.AcceptSuggestions(ctx, plan.ID, week.Suggestions)
	require.NoError(t, err)
	assert.Len(t, plan.Meals, 2)
	assert.Equal(t, a.ID, plan.Meals["2024-04-28"].RecipeID)
	assert.Equal(t, b.ID, plan.Meals["2024-04-29"].RecipeID)

	outside := []mealplan.Suggestion{{Day: mealplan.Day{Label: "Mon"}, Recipe: a}}
	plan, err = svc.AcceptSuggestions(ctx, plan.ID, outside)
	require.NoError(t, err)
	assert.Len(t, plan.Meals, 2)
}

func TestSuggestWeekCountsPlannedMeals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	a, b := seedKitchen(t, svc)

	plan, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 1))
	require.NoError(t, err)
	plan, err = svc.SetMeal(ctx, plan.ID, date(2024, 4, 28), b.ID, models.MealDinner)
	require.NoError(t, err)
	plan.CategoryRequirements = map[string]int{"Vegetarian": 1}
	plan.MustIncludeRecipes = []int64{b.ID}
	plan, err = svc.SavePlan(ctx, plan)
	require.NoError(t, err)

	week, err := svc.SuggestWeek(ctx, plan)
	require.NoError(t, err)
	require.Len(t, week.Suggestions, 6)

	var suggested []int64
	for _, sg := range week.Suggestions {
		if sg.Recipe != nil {
			suggested = append(suggested, sg.Recipe.ID)
		}
	}
	assert.Equal(t, []int64{a.ID}, suggested, "Omelette is already planned")
	assert.Equal(t, 1, week.CategoryUsage["Vegetarian"])
	assert.True(t, week.Fulfilled)

	for _, d := range plan.Days()[1:] {
		plan, err = svc.SetMeal(ctx, plan.ID, d, a.ID, models.MealDinner)
		require.NoError(t, err)
	}
	full, err := svc.SuggestWeek(ctx, plan)
	require.NoError(t, err)
	assert.Empty(t, full.Suggestions)
}

func TestGroceryAndCommit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	a, b := seedKitchen(t, svc)

	plan, err := svc.GetOrCreatePlan(ctx, 1, date(2024, 5, 1))
	require.NoError(t, err)
	_, err = svc.SetMeal(ctx, plan.ID, date(2024, 4, 29), a.ID, "")
	require.NoError(t, err)
	plan, err = svc.SetMeal(ctx, plan.ID, date(2024, 4, 30), b.ID, "")
	require.NoError(t, err)

	list, err := svc.GroceryList(ctx, plan)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "eggs", list[2].Name)
	assert.Equal(t, 5.0, list[2].Quantity)
	assert.True(t, list[2].Have)

	n, err := svc.CommitGrocery(ctx, plan, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := svc.ShoppingList(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "flour", items[0].Name)
	assert.Equal(t, "For: Pancakes", items[0].Notes)
	assert.Equal(t, "onion", items[1].Name)
	assert.Equal(t, "For: Omelette", items[1].Notes)

	stats, err := svc.Stats(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PlannedDays)
	assert.Equal(t, map[string]int{"Other": 1, "Vegetarian": 1}, stats.CategoryCounts)
	assert.Equal(t, 1, stats.IngredientsOnHand)
	assert.Equal(t, 2, stats.IngredientsToBuy)
}

func TestRecipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, b := seedKitchen(t, svc)

	favs, err := svc.FavoriteRecipes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, b.ID, favs[0].ID)

	found, err := svc.FindRecipe(ctx, 1, "omel")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, b.ID, found.ID)

	found, err = svc.FindRecipe(ctx, 1, "lasagna")
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = svc.ImportRecipe(ctx, 1, "https://example.com")
	assert.ErrorIs(t, err, service.ErrImportDisabled)
}

func TestImportRecipe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script type="application/ld+json">
{"@type":"Recipe","name":"Chili","recipeIngredient":["1 lb ground beef","2 cans beans"],"recipeYield":"6"}
</script></head></html>`)
	}))
	defer srv.Close()

	users := memory.NewUserRepository()
	svc := service.New(logger.Discard(), service.Repositories{
		Users:      users,
		Households: memory.NewHouseholdRepository(users),
		Recipes:    memory.NewRecipeRepository(),
	}, service.WithClipper(recipe.NewClipper(5*time.Second)))

	r, err := svc.ImportRecipe(context.Background(), 3, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Chili", r.Name)
	assert.Equal(t, int64(3), r.HouseholdID)
	assert.Equal(t, 6, r.Servings)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "ground beef", r.Ingredients[0].Name)
	assert.Equal(t, srv.URL, r.SourceURL)
}
