// Package mealplan scores recipes and fills a week of dinners from them.
//
// The engine is pure: it reads recipe and inventory snapshots and returns
// suggestions without touching any store.
package mealplan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
)

const (
	mustIncludePoints  = 1000
	inventoryWeight    = 3
	useUpPoints        = 200
	categoryPoints     = 150
	favoritePoints     = 50
	quickPoints        = 20
	quickCookMinutes   = 30
	candidatesPerDay   = 5
	alternativesPerDay = 3
)

const (
	ReasonMustInclude  = "Must include"
	ReasonUsesExpiring = "Uses expiring items"
	ReasonFavorite     = "Family favorite"
	ReasonSuggested    = "Suggested"
	ReasonNoCandidates = "No suggestions available"
	ReasonManual       = "Manually selected"
)

// ScoreContext is what a recipe is scored against.
type ScoreContext struct {
	Inventory []*models.InventoryItem
	// UseUp are inventory items the plan should consume soon.
	UseUp       []*models.InventoryItem
	MustInclude []int64
	// NeededCategories are categories whose weekly quota is not met yet.
	NeededCategories map[string]bool
}

// Score is a recipe's suggestion score with the reasons that contributed to
// it.
type Score struct {
	Points  int                   `json:"score"`
	Reasons []string              `json:"reasons"`
	Match   ingredient.MatchCount `json:"inventory_match"`
}

// Candidate is a scored recipe.
type Candidate struct {
	Recipe *models.Recipe
	Score  Score
}

// Engine scores and places recipes.
type Engine struct {
	matcher ingredient.Matcher
}

// NewEngine creates an engine. A nil matcher uses ingredient.NewFuzzy.
func NewEngine(m ingredient.Matcher) *Engine {
	if m == nil {
		m = ingredient.NewFuzzy()
	}
	return &Engine{matcher: m}
}

// Score adds up the suggestion terms for r.
func (e *Engine) Score(r *models.Recipe, sc ScoreContext) Score {
	var s Score

	for _, id := range sc.MustInclude {
		if id == r.ID {
			s.Points += mustIncludePoints
			s.Reasons = append(s.Reasons, ReasonMustInclude)
			break
		}
	}

	if len(sc.Inventory) > 0 {
		s.Match = ingredient.CountMatches(e.matcher, r.Ingredients, sc.Inventory)
		s.Points += s.Match.Percentage * inventoryWeight

		if e.usesAny(r, sc.UseUp) {
			s.Points += useUpPoints
			s.Reasons = append(s.Reasons, ReasonUsesExpiring)
		}

		switch {
		case s.Match.Percentage >= 80:
			s.Reasons = append(s.Reasons, fmt.Sprintf("%d%% ingredients on hand", s.Match.Percentage))
		case s.Match.Percentage >= 50:
			s.Reasons = append(s.Reasons, fmt.Sprintf("%d%% ingredients available", s.Match.Percentage))
		}
	}

	if r.Category != "" && sc.NeededCategories[r.Category] {
		s.Points += categoryPoints
		s.Reasons = append(s.Reasons, fmt.Sprintf("Matches %s requirement", r.Category))
	}
	if r.Favorite {
		s.Points += favoritePoints
		s.Reasons = append(s.Reasons, ReasonFavorite)
	}
	if r.CookTime != nil && *r.CookTime <= quickCookMinutes {
		s.Points += quickPoints
	}
	return s
}

func (e *Engine) usesAny(r *models.Recipe, items []*models.InventoryItem) bool {
	for _, ing := range r.Ingredients {
		if ingredient.Find(e.matcher, ing.Name, items) != nil {
			return true
		}
	}
	return false
}

// Rank scores every recipe not in exclude and returns the best max, highest
// first. Equal scores keep catalog order.
func (e *Engine) Rank(recipes []*models.Recipe, sc ScoreContext, exclude map[int64]bool, max int) []Candidate {
	out := make([]Candidate, 0, len(recipes))
	for _, r := range recipes {
		if exclude[r.ID] {
			continue
		}
		out = append(out, Candidate{Recipe: r, Score: e.Score(r, sc)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Points > out[j].Score.Points
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Day is one slot to fill. Date is zero for plans not tied to a calendar
// week.
type Day struct {
	Label string     `json:"label"`
	Date  civil.Date `json:"date"`
}

// DefaultDays is Monday to Sunday without dates.
func DefaultDays() []Day {
	labels := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	days := make([]Day, len(labels))
	for i, l := range labels {
		days[i] = Day{Label: l}
	}
	return days
}

// WeekDays returns the seven dated days of the week starting at weekStart.
func WeekDays(weekStart civil.Date) []Day {
	days := make([]Day, 7)
	for i := range days {
		d := weekStart.AddDays(i)
		days[i] = Day{Label: d.In(time.UTC).Weekday().String()[:3], Date: d}
	}
	return days
}

// Suggestion is the proposal for one day. Recipe is nil when nothing could
// be suggested.
type Suggestion struct {
	Day          Day              `json:"day"`
	Recipe       *models.Recipe   `json:"recipe"`
	Locked       bool             `json:"locked"`
	Reason       string           `json:"reason"`
	Alternatives []*models.Recipe `json:"alternatives,omitempty"`
	SwappedFrom  string           `json:"swapped_from,omitempty"`
}

// Constraints drive week generation.
type Constraints struct {
	Recipes              []*models.Recipe
	Inventory            []*models.InventoryItem
	UseUp                []*models.InventoryItem
	MustInclude          []int64
	CategoryRequirements map[string]int
	Days                 []Day
	// Planned are recipe ids already on the week's other days. They are not
	// suggested again and count toward the category quotas.
	Planned []int64
}

// Week is a generated set of suggestions. Fulfilled reports whether every
// category quota was met.
type Week struct {
	Suggestions   []Suggestion   `json:"suggestions"`
	CategoryUsage map[string]int `json:"category_usage"`
	Fulfilled     bool           `json:"fulfilled"`
}

// GenerateWeek places must-include recipes first, one per day in the given
// order, then fills each remaining day with the best-scoring unused recipe.
// Must-include recipes beyond the number of days, or already planned, are
// dropped. Quotas are tracked but never backtracked on.
func (e *Engine) GenerateWeek(c Constraints) Week {
	days := c.Days
	if days == nil {
		days = DefaultDays()
	}

	byID := make(map[int64]*models.Recipe, len(c.Recipes))
	for _, r := range c.Recipes {
		byID[r.ID] = r
	}

	week := Week{CategoryUsage: make(map[string]int, len(c.CategoryRequirements))}
	for cat := range c.CategoryRequirements {
		week.CategoryUsage[cat] = 0
	}
	used := make(map[int64]bool)
	count := func(r *models.Recipe) {
		used[r.ID] = true
		if c.CategoryRequirements[r.Category] > 0 {
			week.CategoryUsage[r.Category]++
		}
	}

	for _, id := range c.Planned {
		if r, ok := byID[id]; ok {
			count(r)
		} else {
			used[id] = true
		}
	}

	for _, id := range c.MustInclude {
		if len(week.Suggestions) >= len(days) {
			break
		}
		r, ok := byID[id]
		if !ok || used[id] {
			continue
		}
		week.Suggestions = append(week.Suggestions, Suggestion{
			Day:    days[len(week.Suggestions)],
			Recipe: r,
			Locked: true,
			Reason: ReasonMustInclude,
		})
		count(r)
	}

	for _, day := range days[len(week.Suggestions):] {
		needed := make(map[string]bool)
		for cat, req := range c.CategoryRequirements {
			if week.CategoryUsage[cat] < req {
				needed[cat] = true
			}
		}

		ranked := e.Rank(c.Recipes, ScoreContext{
			Inventory:        c.Inventory,
			UseUp:            c.UseUp,
			NeededCategories: needed,
		}, used, candidatesPerDay)

		if len(ranked) == 0 {
			week.Suggestions = append(week.Suggestions, Suggestion{Day: day, Reason: ReasonNoCandidates})
			continue
		}

		best := ranked[0]
		reason := strings.Join(best.Score.Reasons, ", ")
		if reason == "" {
			reason = ReasonSuggested
		}
		s := Suggestion{Day: day, Recipe: best.Recipe, Reason: reason}
		for _, alt := range ranked[1:min(len(ranked), 1+alternativesPerDay)] {
			s.Alternatives = append(s.Alternatives, alt.Recipe)
		}
		week.Suggestions = append(week.Suggestions, s)
		count(best.Recipe)
	}

	week.Fulfilled = true
	for cat, req := range c.CategoryRequirements {
		if week.CategoryUsage[cat] < req {
			week.Fulfilled = false
		}
	}
	return week
}

// Swap returns a copy of suggestions with day i set to r, unlocked and
// marked as manually selected. Out-of-range indexes return an unchanged copy.
func Swap(suggestions []Suggestion, i int, r *models.Recipe) []Suggestion {
	out := append([]Suggestion(nil), suggestions...)
	if i < 0 || i >= len(out) {
		return out
	}
	s := out[i]
	s.SwappedFrom = ""
	if s.Recipe != nil {
		s.SwappedFrom = s.Recipe.Name
	}
	s.Recipe = r
	s.Locked = false
	s.Reason = ReasonManual
	out[i] = s
	return out
}

// ToggleLock returns a copy of suggestions with the lock on day i flipped.
func ToggleLock(suggestions []Suggestion, i int) []Suggestion {
	out := append([]Suggestion(nil), suggestions...)
	if i >= 0 && i < len(out) {
		out[i].Locked = !out[i].Locked
	}
	return out
}
