// Package grocery turns a meal plan into an aggregated shopping list.
package grocery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
)

// Entry is one aggregated ingredient. Name and Unit come from the first
// recipe that mentions it. Recipes holds one name per planned meal, so a
// recipe cooked twice appears twice.
type Entry struct {
	Name              string   `json:"name"`
	Quantity          float64  `json:"quantity"`
	Unit              string   `json:"unit,omitempty"`
	Category          string   `json:"category"`
	Recipes           []string `json:"recipes"`
	Have              bool     `json:"have"`
	NeedToBuy         bool     `json:"need_to_buy"`
	InventoryQuantity float64  `json:"inventory_quantity,omitempty"`
}

// Notes is the shopping-list note naming the recipes that need the entry,
// e.g. "For: Tacos x2, Chili".
func (e Entry) Notes() string {
	counts := make(map[string]int, len(e.Recipes))
	var names []string
	for _, r := range e.Recipes {
		if counts[r] == 0 {
			names = append(names, r)
		}
		counts[r]++
	}
	for i, n := range names {
		if c := counts[n]; c > 1 {
			names[i] = fmt.Sprintf("%s x%d", n, c)
		}
	}
	return "For: " + strings.Join(names, ", ")
}

// Label formats the entry for chat output, e.g. "5 eggs" or "2 cup flour".
func (e Entry) Label() string {
	q := fmt.Sprintf("%g", e.Quantity)
	if e.Unit != "" {
		return q + " " + e.Unit + " " + e.Name
	}
	return q + " " + e.Name
}

// Generator aggregates recipe ingredients and checks them against inventory.
type Generator struct {
	matcher ingredient.Matcher
}

// NewGenerator creates a generator. A nil matcher uses ingredient.NewFuzzy.
func NewGenerator(m ingredient.Matcher) *Generator {
	if m == nil {
		m = ingredient.NewFuzzy()
	}
	return &Generator{matcher: m}
}

// Generate builds the list for every planned meal, visiting dates in order.
// Meals whose recipe is not in recipes are skipped.
func (g *Generator) Generate(meals map[string]models.PlannedMeal, recipes []*models.Recipe, inventory []*models.InventoryItem) []Entry {
	byID := make(map[int64]*models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	dates := make([]string, 0, len(meals))
	for d := range meals {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	planned := make([]*models.Recipe, 0, len(dates))
	for _, d := range dates {
		if r, ok := byID[meals[d].RecipeID]; ok {
			planned = append(planned, r)
		}
	}
	return g.FromRecipes(planned, inventory)
}

// FromRecipes aggregates the ingredients of recipes, in order, by lowercased
// name. A missing quantity counts as one. The result lists entries to buy
// first, then by category and name.
func (g *Generator) FromRecipes(recipes []*models.Recipe, inventory []*models.InventoryItem) []Entry {
	index := make(map[string]int)
	lastMeal := make(map[string]int)
	var entries []Entry

	for meal, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			qty := 1.0
			if ing.Quantity != nil && *ing.Quantity != 0 {
				qty = *ing.Quantity
			}

			key := strings.ToLower(name)
			if i, ok := index[key]; ok {
				entries[i].Quantity += qty
				if lastMeal[key] != meal {
					entries[i].Recipes = append(entries[i].Recipes, r.Name)
					lastMeal[key] = meal
				}
				continue
			}

			e := Entry{
				Name:     name,
				Quantity: qty,
				Category: ing.Category,
				Recipes:  []string{r.Name},
			}
			if ing.Unit != nil {
				e.Unit = *ing.Unit
			}
			if e.Category == "" {
				e.Category = ingredient.GuessCategory(name)
			}
			index[key] = len(entries)
			lastMeal[key] = meal
			entries = append(entries, e)
		}
	}

	for i := range entries {
		if item := ingredient.Find(g.matcher, entries[i].Name, inventory); item != nil {
			entries[i].Have = true
			entries[i].InventoryQuantity = item.Quantity
		}
		entries[i].NeedToBuy = !entries[i].Have
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.NeedToBuy != b.NeedToBuy {
			return a.NeedToBuy
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return entries
}

// Missing returns the entries that still need to be bought.
func Missing(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.NeedToBuy {
			out = append(out, e)
		}
	}
	return out
}
