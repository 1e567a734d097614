package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/realtime"
	"github.com/Kerhoff/hearth/internal/recipe"
	"github.com/Kerhoff/hearth/internal/repository"
	"github.com/Kerhoff/hearth/internal/service"
)

// Server provides the household HTTP API.
type Server struct {
	svc    *service.Service
	parser *intent.Parser
	exec   *executor.Executor
	hub    *realtime.Hub
	logger *logrus.Logger
	router *mux.Router
}

// NewServer creates a Server and registers all routes. hub may be nil, in
// which case the change stream answers 503.
func NewServer(svc *service.Service, parser *intent.Parser, exec *executor.Executor, hub *realtime.Hub, logger *logrus.Logger) *Server {
	s := &Server{
		svc:    svc,
		parser: parser,
		exec:   exec,
		hub:    hub,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.router.Use(Recover(s.logger), requestID, s.logRequests, observe, s.identify)

	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	h := s.router.PathPrefix("/api/households/{hid:[0-9]+}").Subrouter()
	h.HandleFunc("", s.handleGetHousehold).Methods("GET")

	// Tasks
	h.HandleFunc("/tasks", s.handleGetTasks).Methods("GET")
	h.HandleFunc("/tasks", s.handleCreateTask).Methods("POST")
	h.HandleFunc("/tasks/{id:[0-9]+}/toggle", s.handleToggleTask).Methods("PUT")
	h.HandleFunc("/tasks/{id:[0-9]+}", s.handleDeleteTask).Methods("DELETE")

	// Shopping list
	h.HandleFunc("/shopping", s.handleGetShopping).Methods("GET")
	h.HandleFunc("/shopping", s.handleAddShopping).Methods("POST")
	h.HandleFunc("/shopping/checked", s.handleClearChecked).Methods("DELETE")
	h.HandleFunc("/shopping/{id:[0-9]+}/toggle", s.handleToggleShopping).Methods("PUT")
	h.HandleFunc("/shopping/{id:[0-9]+}", s.handleDeleteShopping).Methods("DELETE")

	// Inventory
	h.HandleFunc("/inventory", s.handleGetInventory).Methods("GET")
	h.HandleFunc("/inventory", s.handleAddInventory).Methods("POST")
	h.HandleFunc("/inventory/expiring", s.handleExpiring).Methods("GET")
	h.HandleFunc("/inventory/expired", s.handleClearExpired).Methods("DELETE")
	h.HandleFunc("/inventory/{id:[0-9]+}/use", s.handleUseItem).Methods("POST")

	// Recipes
	h.HandleFunc("/recipes", s.handleGetRecipes).Methods("GET")
	h.HandleFunc("/recipes", s.handleCreateRecipe).Methods("POST")
	h.HandleFunc("/recipes/import", s.handleImportRecipe).Methods("POST")
	h.HandleFunc("/recipes/parse", s.handleParseRecipe).Methods("POST")
	h.HandleFunc("/recipes/{id:[0-9]+}", s.handleGetRecipe).Methods("GET")
	h.HandleFunc("/recipes/{id:[0-9]+}", s.handleUpdateRecipe).Methods("PUT")
	h.HandleFunc("/recipes/{id:[0-9]+}", s.handleDeleteRecipe).Methods("DELETE")

	// Saved locations
	h.HandleFunc("/locations", s.handleGetLocations).Methods("GET")
	h.HandleFunc("/locations", s.handleAddLocation).Methods("POST")
	h.HandleFunc("/locations/{id:[0-9]+}", s.handleDeleteLocation).Methods("DELETE")

	// Meal plans, addressed by any date inside the week
	h.HandleFunc("/mealplans/{date}", s.handleGetPlan).Methods("GET")
	h.HandleFunc("/mealplans/{date}/constraints", s.handlePlanConstraints).Methods("PUT")
	h.HandleFunc("/mealplans/{date}/meals/{day}", s.handleSetMeal).Methods("PUT")
	h.HandleFunc("/mealplans/{date}/meals/{day}", s.handleRemoveMeal).Methods("DELETE")
	h.HandleFunc("/mealplans/{date}/suggest", s.handleSuggest).Methods("POST")
	h.HandleFunc("/mealplans/{date}/suggest/swap", s.handleSwap).Methods("POST")
	h.HandleFunc("/mealplans/{date}/suggest/lock", s.handleLock).Methods("POST")
	h.HandleFunc("/mealplans/{date}/accept", s.handleAccept).Methods("POST")
	h.HandleFunc("/mealplans/{date}/grocery", s.handleGrocery).Methods("GET")
	h.HandleFunc("/mealplans/{date}/grocery/commit", s.handleCommitGrocery).Methods("POST")
	h.HandleFunc("/mealplans/{date}/stats", s.handlePlanStats).Methods("GET")

	// Natural language
	h.HandleFunc("/intents/parse", s.handleParseIntent).Methods("POST")
	h.HandleFunc("/intents/execute", s.handleExecuteIntents).Methods("POST")

	h.HandleFunc("/stream", s.handleStream).Methods("GET")
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps a service error to a status code. Unexpected errors
// are logged and reported as what.
func (s *Server) respondFailure(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidFrequency), errors.Is(err, service.ErrOutsideWeek):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, recipe.ErrNoRecipe):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrImportDisabled):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.WithError(err).Error(what)
		s.respondError(w, http.StatusInternalServerError, what)
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	if raw == "" {
		return 0, fmt.Errorf("missing %s in path", name)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// pathDate extracts a YYYY-MM-DD path variable.
func pathDate(r *http.Request, name string) (civil.Date, error) {
	return civil.ParseDate(mux.Vars(r)[name])
}

// household resolves the {hid} path variable. It writes an error response
// and returns nil when the household does not exist.
func (s *Server) household(w http.ResponseWriter, r *http.Request) *models.Household {
	id, err := pathID(r, "hid")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid household id")
		return nil
	}
	hh, err := s.svc.Households.GetByID(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err, "failed to get household")
		return nil
	}
	if hh == nil {
		s.respondError(w, http.StatusNotFound, "household not found")
		return nil
	}
	return hh
}

// owned reports whether a row with the given household id belongs to hh,
// answering 404 when it does not.
func (s *Server) owned(w http.ResponseWriter, hh *models.Household, found bool, rowHousehold int64, what string) bool {
	if !found || rowHousehold != hh.ID {
		s.respondError(w, http.StatusNotFound, what+" not found")
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Health & household
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	members, err := s.svc.Households.GetMembers(r.Context(), hh.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to get members")
		return
	}
	out := *hh
	out.Members = make([]models.User, 0, len(members))
	for _, m := range members {
		out.Members = append(out.Members, *m)
	}
	s.respondJSON(w, http.StatusOK, out)
}
