package handlers

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/pkg/logger"
)

func seedRecipes(t *testing.T, f *fixture, names ...string) []*models.Recipe {
	t.Helper()
	hh := f.household(t, chatID)
	out := make([]*models.Recipe, len(names))
	for i, name := range names {
		r, err := f.svc.CreateRecipe(context.Background(), &models.Recipe{
			HouseholdID: hh.ID,
			Name:        name,
			Category:    "Dinner",
			Ingredients: []models.Ingredient{{Name: "rice", Category: "Pantry"}},
		})
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func TestPlanSwapLockAccept(t *testing.T) {
	f := newFixture(t)
	recipes := seedRecipes(t, f, "Tacos", "Curry", "Pasta")
	p := NewPlanner(f.svc, logger.Discard())

	require.NoError(t, p.Plan(f.bot, message(chatID, "/plan"), nil))
	sent := f.bot.last(t)
	assert.Contains(t, sent.Text, "Dinner ideas for the week of 2024-04-28")
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, sent.ReplyMarkup)

	d := p.draft(chatID)
	require.NotNil(t, d)
	require.Len(t, d.suggestions, 7)
	first := d.suggestions[0].Recipe
	require.NotNil(t, first)

	// Put the first day's recipe on day two as well.
	require.NoError(t, p.Swap(f.bot, message(chatID, ""), []string{"mon", first.Name}))
	assert.Contains(t, f.bot.last(t).Text, "Mon is now *"+first.Name+"*")

	require.NoError(t, p.Lock(f.bot, message(chatID, ""), []string{"2"}))
	assert.Contains(t, f.bot.last(t).Text, "Mon is locked")

	require.NoError(t, p.Swap(f.bot, message(chatID, ""), []string{"9", "Pasta"}))
	assert.Contains(t, f.bot.last(t).Text, "Pick a day from 1 to 7")

	require.NoError(t, p.Accept(f.bot, message(chatID, "/accept"), nil))
	assert.Nil(t, p.draft(chatID))

	plan, err := f.svc.GetOrCreatePlan(context.Background(), f.household(t, chatID).ID, f.svc.Today())
	require.NoError(t, err)
	assert.Len(t, plan.Meals, len(recipes))
	assert.Equal(t, first.ID, plan.Meals["2024-04-29"].RecipeID)
}

func TestPlanAgainKeepsLockedDays(t *testing.T) {
	f := newFixture(t)
	seedRecipes(t, f, "Tacos", "Curry", "Pasta")
	p := NewPlanner(f.svc, logger.Discard())

	require.NoError(t, p.Plan(f.bot, message(chatID, "/plan"), nil))
	third := p.draft(chatID).suggestions[2].Recipe
	require.NotNil(t, third)

	require.NoError(t, p.Swap(f.bot, message(chatID, ""), []string{"1", third.Name}))
	require.NoError(t, p.Lock(f.bot, message(chatID, ""), []string{"1"}))

	query := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: 42, FirstName: "Sam"},
		Message: message(chatID, ""),
		Data:    "plan:again",
	}
	require.NoError(t, p.HandleCallback(f.bot, query, planActionAgain))

	d := p.draft(chatID)
	require.NotNil(t, d)
	assert.True(t, d.suggestions[0].Locked)
	assert.Equal(t, third.ID, d.suggestions[0].Recipe.ID)
	assert.Contains(t, f.bot.last(t).Text, "🔒")
}

func TestPlanCommandsWithoutDraft(t *testing.T) {
	f := newFixture(t)
	p := NewPlanner(f.svc, logger.Discard())

	require.NoError(t, p.Lock(f.bot, message(chatID, ""), []string{"1"}))
	assert.Equal(t, noSuggestionsReply, f.bot.last(t).Text)

	require.NoError(t, p.Accept(f.bot, message(chatID, ""), nil))
	assert.Equal(t, noSuggestionsReply, f.bot.last(t).Text)

	require.NoError(t, p.Grocery(f.bot, message(chatID, ""), nil))
	assert.Contains(t, f.bot.last(t).Text, "Nothing planned")
}

func TestGroceryCommitsMissing(t *testing.T) {
	f := newFixture(t)
	seedRecipes(t, f, "Tacos")
	p := NewPlanner(f.svc, logger.Discard())

	require.NoError(t, p.Plan(f.bot, message(chatID, "/plan"), nil))
	require.NoError(t, p.Accept(f.bot, message(chatID, ""), nil))

	require.NoError(t, p.Grocery(f.bot, message(chatID, ""), nil))
	assert.Contains(t, f.bot.last(t).Text, "rice")

	require.NoError(t, p.Grocery(f.bot, message(chatID, ""), []string{"add"}))
	assert.Contains(t, f.bot.last(t).Text, "Added 1 items")

	items, err := f.svc.ShoppingList(context.Background(), f.household(t, chatID).ID, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rice", items[0].Name)
}
