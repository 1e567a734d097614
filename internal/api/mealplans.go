package api

import (
	"net/http"

	"github.com/Kerhoff/hearth/internal/mealplan"
	"github.com/Kerhoff/hearth/internal/models"
)

type constraintsRequest struct {
	MustIncludeRecipes   []int64        `json:"must_include_recipes"`
	CategoryRequirements map[string]int `json:"category_requirements"`
	UseUpItems           []int64        `json:"use_up_items"`
}

type setMealRequest struct {
	RecipeID int64           `json:"recipe_id"`
	MealType models.MealType `json:"meal_type"`
}

type suggestionsRequest struct {
	Suggestions []mealplan.Suggestion `json:"suggestions"`
	Index       int                   `json:"index"`
	RecipeID    int64                 `json:"recipe_id"`
}

type commitGroceryRequest struct {
	OnlyMissing bool `json:"only_missing"`
}

// plan resolves {hid} and {date} to the week's plan, creating it on first
// access.
func (s *Server) plan(w http.ResponseWriter, r *http.Request) *models.MealPlan {
	hh := s.household(w, r)
	if hh == nil {
		return nil
	}
	date, err := pathDate(r, "date")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return nil
	}
	plan, err := s.svc.GetOrCreatePlan(r.Context(), hh.ID, date)
	if err != nil {
		s.respondFailure(w, err, "failed to get meal plan")
		return nil
	}
	return plan
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlanConstraints(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	var req constraintsRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	for cat, n := range req.CategoryRequirements {
		if n < 0 {
			s.respondError(w, http.StatusBadRequest, "category requirement for "+cat+" must not be negative")
			return
		}
	}

	plan.MustIncludeRecipes = req.MustIncludeRecipes
	plan.CategoryRequirements = req.CategoryRequirements
	if plan.CategoryRequirements == nil {
		plan.CategoryRequirements = map[string]int{}
	}
	plan.UseUpItems = req.UseUpItems

	updated, err := s.svc.SavePlan(r.Context(), plan)
	if err != nil {
		s.respondFailure(w, err, "failed to update meal plan")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSetMeal(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	day, err := pathDate(r, "day")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}
	var req setMealRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.svc.SetMeal(r.Context(), plan.ID, day, req.RecipeID, req.MealType)
	if err != nil {
		s.respondFailure(w, err, "failed to set meal")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	day, err := pathDate(r, "day")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}
	updated, err := s.svc.RemoveMeal(r.Context(), plan.ID, day)
	if err != nil {
		s.respondFailure(w, err, "failed to remove meal")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	week, err := s.svc.SuggestWeek(r.Context(), plan)
	if err != nil {
		s.respondFailure(w, err, "failed to suggest meals")
		return
	}
	if week.Suggestions == nil {
		week.Suggestions = []mealplan.Suggestion{}
	}
	s.respondJSON(w, http.StatusOK, week)
}

// handleSwap replaces the recipe of one draft suggestion. Drafts live with
// the client until accepted.
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	var req suggestionsRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Index < 0 || req.Index >= len(req.Suggestions) {
		s.respondError(w, http.StatusBadRequest, "index out of range")
		return
	}
	rec, err := s.svc.GetRecipe(r.Context(), req.RecipeID)
	if err != nil {
		s.respondFailure(w, err, "failed to get recipe")
		return
	}
	if rec == nil || rec.HouseholdID != plan.HouseholdID {
		s.respondError(w, http.StatusNotFound, "recipe not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": mealplan.Swap(req.Suggestions, req.Index, rec),
	})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	if s.plan(w, r) == nil {
		return
	}
	var req suggestionsRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Index < 0 || req.Index >= len(req.Suggestions) {
		s.respondError(w, http.StatusBadRequest, "index out of range")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": mealplan.ToggleLock(req.Suggestions, req.Index),
	})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	var req suggestionsRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	updated, err := s.svc.AcceptSuggestions(r.Context(), plan.ID, req.Suggestions)
	if err != nil {
		s.respondFailure(w, err, "failed to accept suggestions")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleGrocery(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	entries, err := s.svc.GroceryList(r.Context(), plan)
	if err != nil {
		s.respondFailure(w, err, "failed to build grocery list")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(entries))
}

func (s *Server) handleCommitGrocery(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	var req commitGroceryRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	n, err := s.svc.CommitGrocery(r.Context(), plan, req.OnlyMissing, callerID(r))
	if err != nil {
		s.respondFailure(w, err, "failed to add grocery list")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"added": n})
}

func (s *Server) handlePlanStats(w http.ResponseWriter, r *http.Request) {
	plan := s.plan(w, r)
	if plan == nil {
		return
	}
	st, err := s.svc.Stats(r.Context(), plan)
	if err != nil {
		s.respondFailure(w, err, "failed to get meal plan stats")
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}
