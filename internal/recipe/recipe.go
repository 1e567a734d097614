// Package recipe imports recipes from AI output, plain text and web pages and
// normalizes them for storage.
package recipe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
)

const (
	defaultName     = "Untitled Recipe"
	defaultServings = 4
	defaultCategory = "Other"
)

// Normalize fills defaults in place: a name, servings of at least one,
// trimmed ingredient names and a guessed category for every ingredient.
// Ingredients without a name are dropped.
func Normalize(r *models.Recipe) *models.Recipe {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		r.Name = defaultName
	}
	if r.Servings < 1 {
		r.Servings = defaultServings
	}
	if strings.TrimSpace(r.Category) == "" {
		r.Category = defaultCategory
	}
	kept := r.Ingredients[:0]
	for _, ing := range r.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			continue
		}
		if ing.Unit != nil {
			u := strings.ToLower(strings.TrimSpace(*ing.Unit))
			ing.Unit = &u
			if u == "" {
				ing.Unit = nil
			}
		}
		if ing.Category == "" {
			ing.Category = ingredient.GuessCategory(ing.Name)
		}
		kept = append(kept, ing)
	}
	r.Ingredients = kept
	return r
}

// draft is the loosely typed recipe shape AI backends return. Field aliases
// cover the variations seen in practice.
type draft struct {
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Ingredients  []draftLine     `json:"ingredients"`
	Instructions json.RawMessage `json:"instructions"`
	Directions   json.RawMessage `json:"directions"`
	Servings     flexInt         `json:"servings"`
	Serves       flexInt         `json:"serves"`
	PrepTime     *flexInt        `json:"prepTime"`
	PrepTimeAlt  *flexInt        `json:"prep_time"`
	CookTime     *flexInt        `json:"cookTime"`
	CookTimeAlt  *flexInt        `json:"cook_time"`
	Category     string          `json:"category"`
	SourceURL    string          `json:"sourceUrl"`
	Source       string          `json:"source"`
}

// draftLine is an ingredient given either as a free-text line or an object.
type draftLine struct {
	models.Ingredient
}

func (l *draftLine) UnmarshalJSON(b []byte) error {
	var line string
	if err := json.Unmarshal(b, &line); err == nil {
		l.Ingredient = ingredient.ParseLine(line)
		return nil
	}
	var obj struct {
		Name       string             `json:"name"`
		Item       string             `json:"item"`
		Ingredient string             `json:"ingredient"`
		Quantity   *ingredient.Amount `json:"quantity"`
		Amount     *ingredient.Amount `json:"amount"`
		Unit       *string            `json:"unit"`
		Category   string             `json:"category"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("failed to decode ingredient: %w", err)
	}
	l.Name = firstNonEmpty(obj.Name, obj.Item, obj.Ingredient)
	l.Quantity = obj.Quantity.Ptr()
	if l.Quantity == nil {
		l.Quantity = obj.Amount.Ptr()
	}
	l.Unit = obj.Unit
	l.Category = obj.Category
	return nil
}

// flexInt accepts 4, "4" or "4 servings".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*f = flexInt(x)
	case string:
		*f = flexInt(leadingInt(x))
	}
	return nil
}

func (f *flexInt) ptr() *int {
	if f == nil || *f <= 0 {
		return nil
	}
	v := int(*f)
	return &v
}

// Decode reads an AI recipe response into a normalized recipe.
func Decode(raw []byte) (*models.Recipe, error) {
	var d draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}

	r := &models.Recipe{
		Name:         firstNonEmpty(d.Name, d.Title),
		Instructions: instructionsText(d.Instructions),
		Servings:     int(d.Servings),
		Category:     d.Category,
		SourceURL:    firstNonEmpty(d.SourceURL, d.Source),
	}
	if r.Instructions == "" {
		r.Instructions = instructionsText(d.Directions)
	}
	if r.Servings == 0 {
		r.Servings = int(d.Serves)
	}
	r.PrepTime = d.PrepTime.ptr()
	if r.PrepTime == nil {
		r.PrepTime = d.PrepTimeAlt.ptr()
	}
	r.CookTime = d.CookTime.ptr()
	if r.CookTime == nil {
		r.CookTime = d.CookTimeAlt.ptr()
	}
	for _, l := range d.Ingredients {
		r.Ingredients = append(r.Ingredients, l.Ingredient)
	}
	return Normalize(r), nil
}

// instructionsText accepts a string or a list of strings.
func instructionsText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var steps []string
	if err := json.Unmarshal(raw, &steps); err == nil {
		return strings.Join(steps, "\n")
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
