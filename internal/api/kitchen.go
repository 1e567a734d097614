package api

import (
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
)

const defaultExpiringDays = 3

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

type addInventoryRequest struct {
	Name           string                 `json:"name"`
	Quantity       float64                `json:"quantity"`
	Unit           string                 `json:"unit"`
	Category       string                 `json:"category"`
	Location       models.StorageLocation `json:"location"`
	ExpirationDate string                 `json:"expiration_date"` // YYYY-MM-DD
}

type useItemRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	items, err := s.svc.InventoryList(r.Context(), hh.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to get inventory")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleAddInventory(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req addInventoryRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	item := &models.InventoryItem{
		HouseholdID: hh.ID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Category:    req.Category,
		Location:    req.Location,
	}
	if req.ExpirationDate != "" {
		d, err := civil.ParseDate(req.ExpirationDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "expiration_date must be YYYY-MM-DD")
			return
		}
		item.ExpirationDate = &d
	}

	created, err := s.svc.AddInventoryItem(r.Context(), item)
	if err != nil {
		s.respondFailure(w, err, "failed to add inventory item")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

// handleUseItem answers with the remaining item, or {"used_up": true} when
// nothing is left.
func (s *Server) handleUseItem(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req useItemRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := s.svc.Inventory.GetByID(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to get inventory item")
		return
	}
	var owner int64
	if item != nil {
		owner = item.HouseholdID
	}
	if !s.owned(w, hh, item != nil, owner, "inventory item") {
		return
	}

	left, err := s.svc.UseItem(r.Context(), id, req.Amount)
	if err != nil {
		s.respondFailure(w, err, "failed to use inventory item")
		return
	}
	if left == nil {
		s.respondJSON(w, http.StatusOK, map[string]bool{"used_up": true})
		return
	}
	s.respondJSON(w, http.StatusOK, left)
}

func (s *Server) handleExpiring(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	days := defaultExpiringDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = v
	}

	items, err := s.svc.ExpiringSoon(r.Context(), hh.ID, days)
	if err != nil {
		s.respondFailure(w, err, "failed to get expiring items")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleClearExpired(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	n, err := s.svc.ClearExpired(r.Context(), hh.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to clear expired items")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// ---------------------------------------------------------------------------
// Recipes
// ---------------------------------------------------------------------------

type importRecipeRequest struct {
	URL string `json:"url"`
}

type parseRecipeRequest struct {
	Text string `json:"text"`
	Save bool   `json:"save"`
}

func (s *Server) handleGetRecipes(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var (
		recipes []*models.Recipe
		err     error
	)
	if r.URL.Query().Get("favorite") == "true" {
		recipes, err = s.svc.FavoriteRecipes(r.Context(), hh.ID)
	} else {
		recipes, err = s.svc.ListRecipes(r.Context(), hh.ID)
	}
	if err != nil {
		s.respondFailure(w, err, "failed to get recipes")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(recipes))
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	rec := s.ownedRecipe(w, r, hh)
	if rec == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var rec models.Recipe
	if ok, msg := s.decodeJSON(r, &rec); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(rec.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	rec.ID = 0
	rec.HouseholdID = hh.ID

	created, err := s.svc.CreateRecipe(r.Context(), &rec)
	if err != nil {
		s.respondFailure(w, err, "failed to create recipe")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	existing := s.ownedRecipe(w, r, hh)
	if existing == nil {
		return
	}
	var rec models.Recipe
	if ok, msg := s.decodeJSON(r, &rec); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	rec.ID = existing.ID
	rec.HouseholdID = hh.ID
	rec.CreatedAt = existing.CreatedAt

	updated, err := s.svc.UpdateRecipe(r.Context(), &rec)
	if err != nil {
		s.respondFailure(w, err, "failed to update recipe")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	rec := s.ownedRecipe(w, r, hh)
	if rec == nil {
		return
	}
	if err := s.svc.DeleteRecipe(r.Context(), rec.ID); err != nil {
		s.respondFailure(w, err, "failed to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportRecipe(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req importRecipeRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		s.respondError(w, http.StatusBadRequest, "url must be http or https")
		return
	}

	created, err := s.svc.ImportRecipe(r.Context(), hh.ID, req.URL)
	if err != nil {
		s.respondFailure(w, err, "failed to import recipe")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

// handleParseRecipe turns pasted text into a recipe, storing it when save is
// set.
func (s *Server) handleParseRecipe(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req parseRecipeRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	rec := s.parser.ParseRecipe(r.Context(), req.Text)
	rec.HouseholdID = hh.ID
	if !req.Save {
		s.respondJSON(w, http.StatusOK, rec)
		return
	}
	created, err := s.svc.CreateRecipe(r.Context(), rec)
	if err != nil {
		s.respondFailure(w, err, "failed to create recipe")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) ownedRecipe(w http.ResponseWriter, r *http.Request, hh *models.Household) *models.Recipe {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid recipe id")
		return nil
	}
	rec, err := s.svc.GetRecipe(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to get recipe")
		return nil
	}
	var owner int64
	if rec != nil {
		owner = rec.HouseholdID
	}
	if !s.owned(w, hh, rec != nil, owner, "recipe") {
		return nil
	}
	return rec
}

// ---------------------------------------------------------------------------
// Saved locations
// ---------------------------------------------------------------------------

type addLocationRequest struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Keywords []string `json:"keywords"`
}

func (s *Server) handleGetLocations(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	locs, err := s.svc.ListLocations(r.Context(), hh.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to get locations")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(locs))
}

func (s *Server) handleAddLocation(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req addLocationRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	created, err := s.svc.AddLocation(r.Context(), &models.SavedLocation{
		HouseholdID: hh.ID,
		Name:        req.Name,
		Address:     req.Address,
		Keywords:    req.Keywords,
	})
	if err != nil {
		s.respondFailure(w, err, "failed to save location")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid location id")
		return
	}
	locs, err := s.svc.ListLocations(r.Context(), hh.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to get locations")
		return
	}
	found := false
	for _, l := range locs {
		if l.ID == id {
			found = true
			break
		}
	}
	if !s.owned(w, hh, found, hh.ID, "location") {
		return
	}
	if err := s.svc.DeleteLocation(r.Context(), id); err != nil {
		s.respondFailure(w, err, "failed to delete location")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
