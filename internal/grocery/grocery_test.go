package grocery_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/grocery"
	"github.com/Kerhoff/hearth/internal/models"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func planFixture() (map[string]models.PlannedMeal, []*models.Recipe, []*models.InventoryItem) {
	recipes := []*models.Recipe{
		{ID: 1, Name: "Pancakes", Ingredients: []models.Ingredient{
			{Name: "eggs", Quantity: f(2)},
			{Name: "flour", Quantity: f(1), Unit: s("cup")},
		}},
		{ID: 2, Name: "Omelette", Ingredients: []models.Ingredient{
			{Name: "Eggs", Quantity: f(3)},
			{Name: "onion", Quantity: f(1)},
		}},
	}
	meals := map[string]models.PlannedMeal{
		"2024-05-07": {RecipeID: 2, MealType: models.MealDinner},
		"2024-05-06": {RecipeID: 1, MealType: models.MealDinner},
	}
	inventory := []*models.InventoryItem{{ID: 1, Name: "eggs", Quantity: 4}}
	return meals, recipes, inventory
}

func TestGenerateAggregatesAndChecksInventory(t *testing.T) {
	meals, recipes, inventory := planFixture()

	list := grocery.NewGenerator(nil).Generate(meals, recipes, inventory)
	require.Len(t, list, 3)

	byName := map[string]grocery.Entry{}
	for _, e := range list {
		byName[e.Name] = e
	}

	eggs := byName["eggs"]
	assert.Equal(t, 5.0, eggs.Quantity)
	assert.True(t, eggs.Have)
	assert.False(t, eggs.NeedToBuy)
	assert.Equal(t, 4.0, eggs.InventoryQuantity)
	assert.Equal(t, []string{"Pancakes", "Omelette"}, eggs.Recipes)

	flour := byName["flour"]
	assert.True(t, flour.NeedToBuy)
	assert.Equal(t, "cup", flour.Unit)
	assert.True(t, byName["onion"].NeedToBuy)

	assert.False(t, list[2].NeedToBuy, "entries to buy come first")
	assert.Equal(t, "flour", list[0].Name)
	assert.Equal(t, "onion", list[1].Name)
}

func TestGenerateIsIdempotent(t *testing.T) {
	meals, recipes, inventory := planFixture()
	g := grocery.NewGenerator(nil)

	first, err := json.Marshal(g.Generate(meals, recipes, inventory))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(g.Generate(meals, recipes, inventory))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestGenerateDoesNotMutateInputs(t *testing.T) {
	meals, recipes, inventory := planFixture()

	grocery.NewGenerator(nil).Generate(meals, recipes, inventory)

	assert.Equal(t, 2.0, *recipes[0].Ingredients[0].Quantity)
	assert.Equal(t, 4.0, inventory[0].Quantity)
}

func TestFromRecipesDefaults(t *testing.T) {
	recipes := []*models.Recipe{
		{Name: "Salad", Ingredients: []models.Ingredient{{Name: "lettuce"}, {Name: " "}, {Name: "salt", Category: "Spices"}}},
		{Name: "Soup", Ingredients: []models.Ingredient{{Name: "Lettuce", Quantity: f(0)}}},
	}

	list := grocery.NewGenerator(nil).FromRecipes(recipes, nil)
	require.Len(t, list, 2)

	assert.Equal(t, "lettuce", list[0].Name)
	assert.Equal(t, 2.0, list[0].Quantity)
	assert.Equal(t, "Produce", list[0].Category)
	assert.Equal(t, "salt", list[1].Name)
	assert.Equal(t, "Spices", list[1].Category)
}

func TestGenerateSkipsUnknownRecipes(t *testing.T) {
	meals := map[string]models.PlannedMeal{"2024-05-06": {RecipeID: 42}}

	assert.Empty(t, grocery.NewGenerator(nil).Generate(meals, nil, nil))
}

func TestMissingAndNotes(t *testing.T) {
	meals, recipes, inventory := planFixture()
	list := grocery.NewGenerator(nil).Generate(meals, recipes, inventory)

	missing := grocery.Missing(list)
	require.Len(t, missing, 2)
	assert.Equal(t, "For: Pancakes", missing[0].Notes())
	assert.Equal(t, "1 cup flour", missing[0].Label())
	assert.Equal(t, "1 onion", missing[1].Label())
}

func TestRepeatedRecipeCountsEveryMeal(t *testing.T) {
	tacos := &models.Recipe{ID: 1, Name: "Tacos", Ingredients: []models.Ingredient{
		{Name: "tortillas", Quantity: f(8)},
		{Name: "salt"}, {Name: "Salt"},
	}}
	chili := &models.Recipe{ID: 2, Name: "Chili", Ingredients: []models.Ingredient{{Name: "salt"}}}
	meals := map[string]models.PlannedMeal{
		"2024-04-29": {RecipeID: 1},
		"2024-04-30": {RecipeID: 2},
		"2024-05-01": {RecipeID: 1},
	}

	list := grocery.NewGenerator(nil).Generate(meals, []*models.Recipe{tacos, chili}, nil)
	require.Len(t, list, 2)

	byName := map[string]grocery.Entry{}
	for _, e := range list {
		byName[e.Name] = e
	}

	tortillas := byName["tortillas"]
	assert.Equal(t, 16.0, tortillas.Quantity)
	assert.Equal(t, []string{"Tacos", "Tacos"}, tortillas.Recipes)
	assert.Equal(t, "For: Tacos x2", tortillas.Notes())

	salt := byName["salt"]
	assert.Equal(t, 5.0, salt.Quantity)
	assert.Equal(t, []string{"Tacos", "Chili", "Tacos"}, salt.Recipes)
	assert.Equal(t, "For: Tacos x2, Chili", salt.Notes())
}
