package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/mealplan"
	"github.com/Kerhoff/hearth/pkg/logger"
)

// Wednesday.
var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestApplyFixtures(t *testing.T) {
	fx, err := LoadFixturesFile("testdata/fixtures.yaml")
	require.NoError(t, err)
	require.Len(t, fx.Recipes, 3)
	require.NotNil(t, fx.Inventory[0].ExpirationDate)
	assert.Equal(t, civil.Date{Year: 2024, Month: 5, Day: 3}, *fx.Inventory[0].ExpirationDate)

	ctx := context.Background()
	svc := newMemoryService(logger.Discard(), time.UTC, func() time.Time { return fixedNow })
	hh, err := svc.EnsureHousehold(ctx, 0, "Fixtures")
	require.NoError(t, err)

	n, err := fx.Apply(ctx, svc, hh.ID)
	require.NoError(t, err)
	assert.Equal(t, SeedCounts{Recipes: 3, Inventory: 2, Locations: 1, Meals: 2}, n)

	plan, err := svc.GetOrCreatePlan(ctx, hh.ID, svc.Today())
	require.NoError(t, err)
	assert.Len(t, plan.Meals, 2)

	entries, err := svc.GroceryList(ctx, plan)
	require.NoError(t, err)
	have := map[string]bool{}
	for _, e := range entries {
		have[e.Name] = e.Have
	}
	assert.True(t, have["pasta"])
	assert.False(t, have["tortillas"])

	var out bytes.Buffer
	require.NoError(t, writeGrocery(&out, entries))
	assert.Contains(t, out.String(), "tortillas")
}

func TestLoadFixturesRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFixtures(strings.NewReader("recipes: []\npets: [cat]\n"))
	require.Error(t, err)
}

func TestApplyFixturesUnknownMealRecipe(t *testing.T) {
	fx, err := LoadFixtures(strings.NewReader(`meals: {"2024-04-29": Soup}`))
	require.NoError(t, err)

	ctx := context.Background()
	svc := newMemoryService(logger.Discard(), time.UTC, func() time.Time { return fixedNow })
	hh, err := svc.EnsureHousehold(ctx, 0, "Fixtures")
	require.NoError(t, err)

	_, err = fx.Apply(ctx, svc, hh.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no recipe "Soup"`)
}

func TestWriteSuggestions(t *testing.T) {
	week := mealplan.Week{
		Suggestions: []mealplan.Suggestion{
			{Day: mealplan.Day{Label: "Sun", Date: civil.Date{Year: 2024, Month: 4, Day: 28}}, Reason: mealplan.ReasonNoCandidates},
		},
		Fulfilled: false,
	}
	var out bytes.Buffer
	require.NoError(t, writeSuggestions(&out, week))
	assert.Contains(t, out.String(), "2024-04-28")
	assert.Contains(t, out.String(), "category goals not met")
}

func TestParseCommandRulesOnly(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse", "--rules", "Pay rent every month"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"monthly"`)
	assert.Contains(t, out.String(), `"source": "rules"`)
}
