package recipe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/recipe"
)

const jsonLDPage = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
 {"@type":"WebPage","name":"ignored"},
 {"@type":["Recipe"],"name":"Weeknight Chili",
  "recipeIngredient":["1 lb ground beef","1 onion","2 cans beans"],
  "recipeInstructions":[{"@type":"HowToStep","text":"Brown the beef."},{"@type":"HowToStep","text":"Simmer."}],
  "recipeYield":["6","6 servings"],"prepTime":"PT15M","cookTime":"PT1H","recipeCategory":"Beef"}
]}</script></head><body><h1>Chili</h1></body></html>`

const microdataPage = `<html><body><div itemscope itemtype="https://schema.org/Recipe">
<h2 itemprop="name">Pancakes</h2>
<span itemprop="recipeYield" content="4 servings">Four</span>
<ul><li itemprop="recipeIngredient">2 cups flour</li><li itemprop="recipeIngredient">2 eggs</li></ul>
<p itemprop="recipeInstructions">Whisk and fry.</p>
</div></body></html>`

func TestClip(t *testing.T) {
	pages := map[string]string{
		"/jsonld":    jsonLDPage,
		"/microdata": microdataPage,
		"/plain":     `<html><body><h1>Grandma's Soup</h1><p>Just soup.</p></body></html>`,
		"/empty":     `<html><body><p>Nothing here.</p></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c := recipe.NewClipper(5 * time.Second)
	ctx := context.Background()

	t.Run("json-ld", func(t *testing.T) {
		r, err := c.Clip(ctx, srv.URL+"/jsonld")
		require.NoError(t, err)
		assert.Equal(t, "Weeknight Chili", r.Name)
		assert.Equal(t, 6, r.Servings)
		require.NotNil(t, r.PrepTime)
		require.NotNil(t, r.CookTime)
		assert.Equal(t, 15, *r.PrepTime)
		assert.Equal(t, 60, *r.CookTime)
		assert.Equal(t, "Beef", r.Category)
		assert.Equal(t, "Brown the beef.\nSimmer.", r.Instructions)
		require.Len(t, r.Ingredients, 3)
		assert.Equal(t, "ground beef", r.Ingredients[0].Name)
		assert.Equal(t, "Meat", r.Ingredients[0].Category)
		assert.Equal(t, srv.URL+"/jsonld", r.SourceURL)
	})

	t.Run("microdata", func(t *testing.T) {
		r, err := c.Clip(ctx, srv.URL+"/microdata")
		require.NoError(t, err)
		assert.Equal(t, "Pancakes", r.Name)
		assert.Equal(t, 4, r.Servings)
		assert.Len(t, r.Ingredients, 2)
		assert.Equal(t, "Whisk and fry.", r.Instructions)
	})

	t.Run("heading only", func(t *testing.T) {
		r, err := c.Clip(ctx, srv.URL+"/plain")
		require.NoError(t, err)
		assert.Equal(t, "Grandma's Soup", r.Name)
		assert.Empty(t, r.Ingredients)
	})

	t.Run("no recipe", func(t *testing.T) {
		_, err := c.Clip(ctx, srv.URL+"/empty")
		assert.ErrorIs(t, err, recipe.ErrNoRecipe)
	})

	t.Run("http error", func(t *testing.T) {
		_, err := c.Clip(ctx, srv.URL+"/missing")
		assert.Error(t, err)
	})
}

func TestParseDuration(t *testing.T) {
	tests := map[string]int{"PT30M": 30, "PT1H30M": 90, "PT2H": 120, "P1DT1H": 1500, "pt45m": 45}
	for in, want := range tests {
		got, ok := recipe.ParseDuration(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := recipe.ParseDuration("30 minutes")
	assert.False(t, ok)
}

func TestParseText(t *testing.T) {
	r := recipe.ParseText(`Recipe: Banana Bread
Serves 8

Ingredients:
- 3 bananas
- 1 1/2 cups flour
* 1 tsp baking soda

Instructions
1. Mash the bananas.
2. Mix in the flour and soda.
3. Bake for 60 minutes.`)

	assert.Equal(t, "Banana Bread", r.Name)
	assert.Equal(t, 8, r.Servings)
	require.Len(t, r.Ingredients, 3)
	require.NotNil(t, r.Ingredients[1].Quantity)
	assert.InDelta(t, 1.5, *r.Ingredients[1].Quantity, 1e-9)
	assert.Equal(t, "flour", r.Ingredients[1].Name)
	assert.Equal(t, "Mash the bananas.\nMix in the flour and soda.\nBake for 60 minutes.", r.Instructions)
}

func TestParseTextDefaults(t *testing.T) {
	r := recipe.ParseText("")
	assert.Equal(t, "Imported Recipe", r.Name)
	assert.Equal(t, 4, r.Servings)
}

func TestDecode(t *testing.T) {
	r, err := recipe.Decode([]byte(`{
		"title": "Tacos",
		"ingredients": ["1 lb ground beef", {"item": "tortillas", "amount": "8"}, {"name": " "}],
		"directions": ["Cook beef", "Fill tortillas"],
		"serves": "4 people",
		"prep_time": 10,
		"cookTime": "20"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Tacos", r.Name)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, "Cook beef\nFill tortillas", r.Instructions)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "tortillas", r.Ingredients[1].Name)
	assert.Equal(t, "Bakery", r.Ingredients[1].Category)
	require.NotNil(t, r.Ingredients[1].Quantity)
	assert.InDelta(t, 8, *r.Ingredients[1].Quantity, 1e-9)
	require.NotNil(t, r.PrepTime)
	require.NotNil(t, r.CookTime)
	assert.Equal(t, 10, *r.PrepTime)
	assert.Equal(t, 20, *r.CookTime)
	assert.Equal(t, "Other", r.Category)
}

func TestNormalize(t *testing.T) {
	unit := " Cups "
	r := recipe.Normalize(&models.Recipe{Ingredients: []models.Ingredient{{Name: " milk ", Unit: &unit}}})
	assert.Equal(t, "Untitled Recipe", r.Name)
	assert.Equal(t, 4, r.Servings)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, "milk", r.Ingredients[0].Name)
	assert.Equal(t, "cups", *r.Ingredients[0].Unit)
	assert.Equal(t, "Dairy", r.Ingredients[0].Category)
}
