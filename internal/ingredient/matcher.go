// Package ingredient holds the food-name heuristics shared by inventory,
// meal suggestions and the grocery list: fuzzy name matching, category and
// storage guesses, and ingredient line parsing.
package ingredient

import (
	"strings"

	"github.com/Kerhoff/hearth/internal/models"
)

// Matcher decides whether an ingredient named query is satisfied by an item
// named candidate.
type Matcher interface {
	Matches(query, candidate string) bool
}

// DefaultSynonyms groups common ingredient names with the specific forms a
// household is likely to have on hand.
var DefaultSynonyms = map[string][]string{
	"tomato":  {"tomatoes", "roma tomato", "cherry tomato"},
	"onion":   {"onions", "yellow onion", "white onion", "red onion"},
	"pepper":  {"peppers", "bell pepper", "green pepper", "red pepper"},
	"chicken": {"chicken breast", "chicken thigh", "chicken leg"},
	"beef":    {"ground beef", "beef steak", "stew beef"},
	"pasta":   {"spaghetti", "penne", "fettuccine", "linguine", "noodles"},
	"cheese":  {"cheddar", "mozzarella", "parmesan", "swiss"},
	"milk":    {"whole milk", "2% milk", "skim milk"},
	"oil":     {"olive oil", "vegetable oil", "canola oil", "cooking oil"},
}

// Fuzzy matches on case-insensitive equality, substring containment in either
// direction, a naive singular/plural flip, and a synonym table.
type Fuzzy struct {
	Synonyms map[string][]string
}

// NewFuzzy returns a Fuzzy matcher over DefaultSynonyms.
func NewFuzzy() *Fuzzy {
	return &Fuzzy{Synonyms: DefaultSynonyms}
}

// Matches implements Matcher.
func (f *Fuzzy) Matches(query, candidate string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return false
	}
	if q == c || strings.Contains(c, q) || strings.Contains(q, c) {
		return true
	}
	for _, v := range f.variations(q) {
		if strings.Contains(c, v) || strings.Contains(v, c) {
			return true
		}
	}
	return false
}

func (f *Fuzzy) variations(name string) []string {
	out := []string{name}
	if strings.HasSuffix(name, "s") {
		out = append(out, strings.TrimSuffix(name, "s"))
	} else {
		out = append(out, name+"s")
	}
	for base, alts := range f.Synonyms {
		related := strings.Contains(name, base)
		for _, a := range alts {
			if related {
				break
			}
			related = strings.Contains(name, a)
		}
		if related {
			out = append(out, base)
			out = append(out, alts...)
		}
	}
	return out
}

// Find returns the first inventory item satisfying name, or nil.
func Find(m Matcher, name string, items []*models.InventoryItem) *models.InventoryItem {
	for _, it := range items {
		if m.Matches(name, it.Name) {
			return it
		}
	}
	return nil
}

// MatchCount summarises how many of a recipe's ingredients are on hand.
type MatchCount struct {
	Have       int
	Total      int
	Percentage int
}

// Missing returns the number of ingredients not on hand.
func (c MatchCount) Missing() int {
	return c.Total - c.Have
}

// CountMatches checks every ingredient against items. Percentage is rounded
// to the nearest whole number and is 0 for an empty ingredient list.
func CountMatches(m Matcher, ingredients []models.Ingredient, items []*models.InventoryItem) MatchCount {
	mc := MatchCount{Total: len(ingredients)}
	for _, ing := range ingredients {
		if Find(m, ing.Name, items) != nil {
			mc.Have++
		}
	}
	if mc.Total > 0 {
		mc.Percentage = (mc.Have*200 + mc.Total) / (mc.Total * 2)
	}
	return mc
}
