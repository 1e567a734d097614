package mealplan

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/models"
)

func intPtr(i int) *int { return &i }

func recipes() []*models.Recipe {
	return []*models.Recipe{
		{
			ID: 1, Name: "Chicken Stir Fry", Category: "Chicken", CookTime: intPtr(20),
			Ingredients: []models.Ingredient{{Name: "chicken"}, {Name: "rice"}, {Name: "onion"}},
		},
		{
			ID: 2, Name: "Beef Tacos", Category: "Beef", Favorite: true, CookTime: intPtr(45),
			Ingredients: []models.Ingredient{{Name: "beef"}, {Name: "tortilla"}},
		},
		{
			ID: 3, Name: "Veggie Pasta", Category: "Vegetarian",
			Ingredients: []models.Ingredient{{Name: "pasta"}, {Name: "tomato"}},
		},
	}
}

func pantry() []*models.InventoryItem {
	return []*models.InventoryItem{
		{ID: 10, Name: "chicken", Quantity: 1},
		{ID: 11, Name: "rice", Quantity: 2},
	}
}

func TestScore(t *testing.T) {
	e := NewEngine(nil)
	rs := recipes()

	s := e.Score(rs[0], ScoreContext{Inventory: pantry()})
	assert.Equal(t, 67, s.Match.Percentage)
	assert.Equal(t, 67*3+20, s.Points)
	assert.Equal(t, []string{"67% ingredients available"}, s.Reasons)

	s = e.Score(rs[0], ScoreContext{Inventory: pantry(), UseUp: pantry()[:1]})
	assert.Equal(t, 67*3+200+20, s.Points)
	assert.Contains(t, s.Reasons, ReasonUsesExpiring)

	s = e.Score(rs[1], ScoreContext{NeededCategories: map[string]bool{"Beef": true}})
	assert.Equal(t, 150+50, s.Points)
	assert.Equal(t, []string{"Matches Beef requirement", "Family favorite"}, s.Reasons)

	// Without inventory the match term is skipped entirely.
	s = e.Score(rs[2], ScoreContext{})
	assert.Zero(t, s.Points)
	assert.Empty(t, s.Reasons)
}

func TestScoreOnHand(t *testing.T) {
	e := NewEngine(nil)
	r := &models.Recipe{ID: 4, Ingredients: []models.Ingredient{{Name: "chicken"}, {Name: "rice"}}}

	s := e.Score(r, ScoreContext{Inventory: pantry()})
	assert.Equal(t, 100, s.Match.Percentage)
	assert.Equal(t, []string{"100% ingredients on hand"}, s.Reasons)
}

func TestScoreMustIncludeAddsExactly1000(t *testing.T) {
	e := NewEngine(nil)
	contexts := []ScoreContext{
		{},
		{Inventory: pantry()},
		{Inventory: pantry(), UseUp: pantry(), NeededCategories: map[string]bool{"Chicken": true}},
	}
	for _, r := range recipes() {
		for _, sc := range contexts {
			base := e.Score(r, sc)
			sc.MustInclude = []int64{r.ID}
			boosted := e.Score(r, sc)
			assert.Equal(t, base.Points+1000, boosted.Points, r.Name)
			assert.Equal(t, ReasonMustInclude, boosted.Reasons[0])
		}
	}
}

func TestRank(t *testing.T) {
	e := NewEngine(nil)

	ranked := e.Rank(recipes(), ScoreContext{Inventory: pantry()}, map[int64]bool{1: true}, 5)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].Recipe.ID)

	ranked = e.Rank(recipes(), ScoreContext{}, nil, 1)
	require.Len(t, ranked, 1)
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	e := NewEngine(nil)
	rs := []*models.Recipe{{ID: 7, Name: "A"}, {ID: 8, Name: "B"}, {ID: 9, Name: "C"}}

	ranked := e.Rank(rs, ScoreContext{}, nil, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, []int64{7, 8, 9}, []int64{ranked[0].Recipe.ID, ranked[1].Recipe.ID, ranked[2].Recipe.ID})
}

func TestGenerateWeek(t *testing.T) {
	e := NewEngine(nil)
	days := DefaultDays()[:3]

	week := e.GenerateWeek(Constraints{
		Recipes:              recipes(),
		Inventory:            pantry(),
		MustInclude:          []int64{3},
		CategoryRequirements: map[string]int{"Beef": 1},
		Days:                 days,
	})

	require.Len(t, week.Suggestions, 3)

	first := week.Suggestions[0]
	assert.Equal(t, "Mon", first.Day.Label)
	assert.Equal(t, int64(3), first.Recipe.ID)
	assert.True(t, first.Locked)
	assert.Equal(t, ReasonMustInclude, first.Reason)

	second := week.Suggestions[1]
	assert.Equal(t, int64(1), second.Recipe.ID)
	assert.False(t, second.Locked)
	assert.Equal(t, "67% ingredients available", second.Reason)
	require.Len(t, second.Alternatives, 1)
	assert.Equal(t, int64(2), second.Alternatives[0].ID)

	third := week.Suggestions[2]
	assert.Equal(t, int64(2), third.Recipe.ID)
	assert.Equal(t, "Matches Beef requirement, Family favorite", third.Reason)

	assert.Equal(t, 1, week.CategoryUsage["Beef"])
	assert.True(t, week.Fulfilled)
}

func TestGenerateWeekNoRepeats(t *testing.T) {
	e := NewEngine(nil)

	week := e.GenerateWeek(Constraints{Recipes: recipes()[:2], Days: DefaultDays()[:3]})

	require.Len(t, week.Suggestions, 3)
	assert.NotEqual(t, week.Suggestions[0].Recipe.ID, week.Suggestions[1].Recipe.ID)
	assert.Nil(t, week.Suggestions[2].Recipe)
	assert.Equal(t, ReasonNoCandidates, week.Suggestions[2].Reason)
	assert.True(t, week.Fulfilled)
}

func TestGenerateWeekSkipsPlannedRecipes(t *testing.T) {
	e := NewEngine(nil)

	week := e.GenerateWeek(Constraints{
		Recipes:              recipes(),
		MustInclude:          []int64{3},
		CategoryRequirements: map[string]int{"Vegetarian": 1},
		Days:                 DefaultDays()[1:4],
		Planned:              []int64{3, 99},
	})

	require.Len(t, week.Suggestions, 3)
	var ids []int64
	for _, s := range week.Suggestions {
		if s.Recipe != nil {
			ids = append(ids, s.Recipe.ID)
			assert.False(t, s.Locked)
		}
	}
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Equal(t, 1, week.CategoryUsage["Vegetarian"])
	assert.True(t, week.Fulfilled)
}

func TestGenerateWeekUnfulfilled(t *testing.T) {
	e := NewEngine(nil)

	week := e.GenerateWeek(Constraints{
		Recipes:              recipes(),
		CategoryRequirements: map[string]int{"Beef": 2},
	})

	require.Len(t, week.Suggestions, 7)
	assert.Equal(t, 1, week.CategoryUsage["Beef"])
	assert.False(t, week.Fulfilled)
}

func TestGenerateWeekMustIncludeOverflow(t *testing.T) {
	e := NewEngine(nil)

	week := e.GenerateWeek(Constraints{
		Recipes:     recipes(),
		MustInclude: []int64{2, 99, 3, 1},
		Days:        DefaultDays()[:2],
	})

	require.Len(t, week.Suggestions, 2)
	assert.Equal(t, int64(2), week.Suggestions[0].Recipe.ID)
	assert.Equal(t, int64(3), week.Suggestions[1].Recipe.ID)
	for _, s := range week.Suggestions {
		assert.True(t, s.Locked)
	}
}

func TestGenerateWeekEmptyCatalog(t *testing.T) {
	week := NewEngine(nil).GenerateWeek(Constraints{})

	require.Len(t, week.Suggestions, 7)
	for _, s := range week.Suggestions {
		assert.Nil(t, s.Recipe)
	}
	assert.True(t, week.Fulfilled)
}

func TestSwapAndToggleLock(t *testing.T) {
	rs := recipes()
	orig := []Suggestion{{Recipe: rs[0], Locked: true, Reason: ReasonMustInclude}, {Recipe: rs[1]}}

	swapped := Swap(orig, 0, rs[2])
	assert.Equal(t, rs[2], swapped[0].Recipe)
	assert.False(t, swapped[0].Locked)
	assert.Equal(t, ReasonManual, swapped[0].Reason)
	assert.Equal(t, "Chicken Stir Fry", swapped[0].SwappedFrom)
	assert.Equal(t, rs[0], orig[0].Recipe, "input must not change")

	assert.Equal(t, orig, Swap(orig, 5, rs[2]))

	locked := ToggleLock(orig, 1)
	assert.True(t, locked[1].Locked)
	assert.False(t, orig[1].Locked)
	assert.False(t, ToggleLock(locked, 1)[1].Locked)
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(civil.Date{Year: 2024, Month: 5, Day: 5})

	require.Len(t, days, 7)
	assert.Equal(t, "Sun", days[0].Label)
	assert.Equal(t, "Sat", days[6].Label)
	assert.Equal(t, civil.Date{Year: 2024, Month: 5, Day: 11}, days[6].Date)
}
