package api

import (
	"net/http"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
)

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

type createTaskRequest struct {
	Title             string           `json:"title"`
	DueDate           string           `json:"due_date"` // YYYY-MM-DD
	DueTime           string           `json:"due_time"` // HH:MM
	Recurring         bool             `json:"recurring"`
	Frequency         models.Frequency `json:"frequency"`
	NeedsNotification bool             `json:"needs_notification"`
}

// handleGetTasks lists pending tasks. ?grouped=true buckets them by due
// date and ?q= filters by title.
func (s *Server) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}

	q := r.URL.Query()
	switch {
	case q.Get("grouped") == "true":
		groups, err := s.svc.GroupTasks(r.Context(), hh.ID)
		if err != nil {
			s.respondFailure(w, err, "failed to get tasks")
			return
		}
		s.respondJSON(w, http.StatusOK, groups)
	case q.Get("q") != "":
		tasks, err := s.svc.FindTasks(r.Context(), hh.ID, q.Get("q"))
		if err != nil {
			s.respondFailure(w, err, "failed to find tasks")
			return
		}
		s.respondJSON(w, http.StatusOK, nonNil(tasks))
	default:
		tasks, err := s.svc.PendingTasks(r.Context(), hh.ID)
		if err != nil {
			s.respondFailure(w, err, "failed to get tasks")
			return
		}
		s.respondJSON(w, http.StatusOK, nonNil(tasks))
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req createTaskRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	t := &models.Task{
		HouseholdID:       hh.ID,
		Title:             req.Title,
		Recurring:         req.Recurring,
		Frequency:         req.Frequency,
		NeedsNotification: req.NeedsNotification,
		CreatedByID:       callerID(r),
	}
	if req.DueDate != "" {
		d, err := civil.ParseDate(req.DueDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
			return
		}
		t.DueDate = &d
		if req.DueTime != "" {
			if _, err := civil.ParseTime(req.DueTime + ":00"); err != nil {
				s.respondError(w, http.StatusBadRequest, "due_time must be HH:MM")
				return
			}
			t.DueTime = req.DueTime
		}
	}

	created, err := s.svc.CreateTask(r.Context(), t)
	if err != nil {
		s.respondFailure(w, err, "failed to create task")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	if !s.taskOwned(w, r, hh, id) {
		return
	}

	updated, err := s.svc.ToggleTask(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to toggle task")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	if !s.taskOwned(w, r, hh, id) {
		return
	}

	if err := s.svc.DeleteTask(r.Context(), id); err != nil {
		s.respondFailure(w, err, "failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) taskOwned(w http.ResponseWriter, r *http.Request, hh *models.Household, id int64) bool {
	t, err := s.svc.Tasks.GetByID(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to get task")
		return false
	}
	var owner int64
	if t != nil {
		owner = t.HouseholdID
	}
	return s.owned(w, hh, t != nil, owner, "task")
}

// ---------------------------------------------------------------------------
// Shopping list
// ---------------------------------------------------------------------------

type addShoppingRequest struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
	Notes    string   `json:"notes"`
}

func (s *Server) handleGetShopping(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	items, err := s.svc.ShoppingList(r.Context(), hh.ID, r.URL.Query().Get("unchecked") == "true")
	if err != nil {
		s.respondFailure(w, err, "failed to get shopping list")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleAddShopping(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req addShoppingRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	added, err := s.svc.AddShoppingItem(r.Context(), &models.ShoppingItem{
		HouseholdID: hh.ID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Category:    req.Category,
		Notes:       req.Notes,
		AddedByID:   callerID(r),
	})
	if err != nil {
		s.respondFailure(w, err, "failed to add shopping item")
		return
	}
	s.respondJSON(w, http.StatusCreated, added)
}

func (s *Server) handleToggleShopping(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if !s.shoppingOwned(w, r, hh, id) {
		return
	}

	item, err := s.svc.ToggleShoppingItem(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to toggle shopping item")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteShopping(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if !s.shoppingOwned(w, r, hh, id) {
		return
	}

	if err := s.svc.DeleteShoppingItem(r.Context(), id); err != nil {
		s.respondFailure(w, err, "failed to delete shopping item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearChecked(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	n, err := s.svc.ClearCheckedShopping(r.Context(), hh.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to clear shopping list")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int64{"removed": n})
}

func (s *Server) shoppingOwned(w http.ResponseWriter, r *http.Request, hh *models.Household, id int64) bool {
	item, err := s.svc.Shopping.GetByID(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to get shopping item")
		return false
	}
	var owner int64
	if item != nil {
		owner = item.HouseholdID
	}
	return s.owned(w, hh, item != nil, owner, "shopping item")
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
