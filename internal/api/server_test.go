package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/api"
	"github.com/Kerhoff/hearth/internal/calendar"
	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/realtime"
	"github.com/Kerhoff/hearth/internal/repository/memory"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/pkg/logger"
)

// Wednesday.
var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *service.Service
	hub     *realtime.Hub
	handler http.Handler
	home    *models.Household
	other   *models.Household
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	now := func() time.Time { return fixedNow }

	users := memory.NewUserRepository()
	svc := service.New(log, service.Repositories{
		Users:      users,
		Households: memory.NewHouseholdRepository(users),
		Tasks:      memory.NewTaskRepository(),
		Shopping:   memory.NewShoppingRepository(),
		Inventory:  memory.NewInventoryRepository(),
		Recipes:    memory.NewRecipeRepository(),
		Locations:  memory.NewLocationRepository(),
		MealPlans:  memory.NewMealPlanRepository(),
		Categories: memory.NewCategoryRepository(),
		Agenda:     memory.NewAgendaRepository(),
	}, service.WithClock(now))

	parser := intent.NewParser(nil, log, intent.WithClock(now))
	exec := executor.New(svc, calendar.NewLocal(memory.NewCalendarRepository()), log, time.UTC)
	hub := realtime.NewHub(4, log)

	ctx := context.Background()
	home, err := svc.EnsureHousehold(ctx, -1, "Home")
	require.NoError(t, err)
	other, err := svc.EnsureHousehold(ctx, -2, "Cabin")
	require.NoError(t, err)

	return &fixture{
		svc:     svc,
		hub:     hub,
		handler: api.NewServer(svc, parser, exec, hub, log).Handler(),
		home:    home,
		other:   other,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) path(hh *models.Household, rest string) string {
	return fmt.Sprintf("/api/households/%d%s", hh.ID, rest)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = f.do(t, "GET", "/api/health", nil, "X-Request-ID", "abc")
	assert.Equal(t, "abc", rr.Header().Get("X-Request-ID"))
}

func TestUnknownHousehold(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "GET", "/api/households/999/tasks", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTasksLifecycle(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", f.path(f.home, "/tasks"), map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, "POST", f.path(f.home, "/tasks"), map[string]any{
		"title": "Pay rent", "recurring": true, "frequency": "fortnightly",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, "POST", f.path(f.home, "/tasks"), map[string]any{
		"title": "Pay rent", "due_date": "2024-05-03", "due_time": "09:00",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	task := decode[models.Task](t, rr)
	assert.Equal(t, "09:00", task.DueTime)

	rr = f.do(t, "GET", f.path(f.home, "/tasks"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Task](t, rr), 1)

	rr = f.do(t, "GET", f.path(f.home, "/tasks?q=rent"), nil)
	assert.Len(t, decode[[]models.Task](t, rr), 1)

	rr = f.do(t, "GET", f.path(f.home, "/tasks?grouped=true"), nil)
	groups := decode[service.TaskGroups](t, rr)
	assert.Len(t, groups.Upcoming, 1)

	// Another household cannot touch it.
	rr = f.do(t, "PUT", f.path(f.other, fmt.Sprintf("/tasks/%d/toggle", task.ID)), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, "PUT", f.path(f.home, fmt.Sprintf("/tasks/%d/toggle", task.ID)), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[models.Task](t, rr).Completed)

	rr = f.do(t, "GET", f.path(f.home, "/tasks"), nil)
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = f.do(t, "DELETE", f.path(f.home, fmt.Sprintf("/tasks/%d", task.ID)), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIdentifyAttachesCaller(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.EnsureUser(context.Background(), 7, "sam", "Sam", "")
	require.NoError(t, err)

	rr := f.do(t, "POST", f.path(f.home, "/shopping"), map[string]any{"name": "milk"},
		"X-User-ID", fmt.Sprint(u.ID))
	require.Equal(t, http.StatusCreated, rr.Code)
	item := decode[models.ShoppingItem](t, rr)
	require.NotNil(t, item.AddedByID)
	assert.Equal(t, u.ID, *item.AddedByID)
	assert.Equal(t, "Dairy", item.Category)

	rr = f.do(t, "GET", f.path(f.home, "/shopping"), nil, "X-User-ID", "sam")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShoppingToggleAndClear(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", f.path(f.home, "/shopping"), map[string]any{"name": "bread"})
	require.Equal(t, http.StatusCreated, rr.Code)
	item := decode[models.ShoppingItem](t, rr)

	rr = f.do(t, "PUT", f.path(f.home, fmt.Sprintf("/shopping/%d/toggle", item.ID)), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[models.ShoppingItem](t, rr).Checked)

	rr = f.do(t, "GET", f.path(f.home, "/shopping?unchecked=true"), nil)
	assert.Empty(t, decode[[]models.ShoppingItem](t, rr))

	rr = f.do(t, "DELETE", f.path(f.home, "/shopping/checked"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]int64{"removed": 1}, decode[map[string]int64](t, rr))
}

func TestInventoryUse(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", f.path(f.home, "/inventory"), map[string]any{
		"name": "eggs", "quantity": 2, "expiration_date": "2024-05-02",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	item := decode[models.InventoryItem](t, rr)

	rr = f.do(t, "GET", f.path(f.home, "/inventory/expiring?days=1"), nil)
	assert.Len(t, decode[[]models.InventoryItem](t, rr), 1)

	use := f.path(f.home, fmt.Sprintf("/inventory/%d/use", item.ID))
	rr = f.do(t, "POST", use, map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, "POST", use, map[string]any{"amount": 1})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1.0, decode[models.InventoryItem](t, rr).Quantity)

	rr = f.do(t, "POST", use, map[string]any{"amount": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]bool{"used_up": true}, decode[map[string]bool](t, rr))

	rr = f.do(t, "POST", use, map[string]any{"amount": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMealPlanFlow(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", f.path(f.home, "/recipes"), map[string]any{
		"name":     "Omelette",
		"category": "Breakfast",
		"ingredients": []map[string]any{
			{"name": "eggs", "quantity": 3},
			{"name": "cheese"},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	omelette := decode[models.Recipe](t, rr)

	rr = f.do(t, "POST", f.path(f.other, "/recipes"), map[string]any{"name": "Stew"})
	require.Equal(t, http.StatusCreated, rr.Code)
	stew := decode[models.Recipe](t, rr)

	rr = f.do(t, "GET", f.path(f.home, "/mealplans/2024-05-01"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	plan := decode[models.MealPlan](t, rr)
	assert.Equal(t, "2024-04-28", plan.WeekStart.String())

	rr = f.do(t, "PUT", f.path(f.home, "/mealplans/2024-05-01/meals/2024-05-20"),
		map[string]any{"recipe_id": omelette.ID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, "PUT", f.path(f.home, "/mealplans/2024-05-01/meals/2024-05-02"),
		map[string]any{"recipe_id": stew.ID})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, "PUT", f.path(f.home, "/mealplans/2024-05-01/meals/2024-05-02"),
		map[string]any{"recipe_id": omelette.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[models.MealPlan](t, rr).Meals, 1)

	rr = f.do(t, "GET", f.path(f.home, "/mealplans/2024-05-01/grocery"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []struct {
		Name      string  `json:"name"`
		Quantity  float64 `json:"quantity"`
		NeedToBuy bool    `json:"need_to_buy"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	rr = f.do(t, "POST", f.path(f.home, "/mealplans/2024-05-01/grocery/commit"), map[string]any{"only_missing": true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]int{"added": 2}, decode[map[string]int](t, rr))

	rr = f.do(t, "GET", f.path(f.home, "/mealplans/2024-05-01/stats"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[service.PlanStats](t, rr)
	assert.Equal(t, 1, st.PlannedDays)
	assert.Equal(t, 2, st.IngredientsToBuy)
}

func TestSuggestSwapLockAccept(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Tacos", "Curry"} {
		rr := f.do(t, "POST", f.path(f.home, "/recipes"), map[string]any{"name": name, "category": "Dinner"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	base := f.path(f.home, "/mealplans/2024-05-01")
	rr := f.do(t, "POST", base+"/suggest", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var week struct {
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &week))
	require.Len(t, week.Suggestions, 7)

	rr = f.do(t, "POST", base+"/suggest/lock", map[string]any{"suggestions": week.Suggestions, "index": 0})
	require.Equal(t, http.StatusOK, rr.Code)
	var locked struct {
		Suggestions []struct {
			Locked bool `json:"locked"`
		} `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &locked))
	assert.True(t, locked.Suggestions[0].Locked)

	rr = f.do(t, "POST", base+"/suggest/lock", map[string]any{"suggestions": week.Suggestions, "index": 9})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, "POST", base+"/accept", map[string]any{"suggestions": week.Suggestions})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[models.MealPlan](t, rr).Meals, 2)
}

func TestExecuteIntents(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", f.path(f.home, "/intents/execute"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, "POST", f.path(f.home, "/intents/execute"), map[string]any{"text": "Dentist tomorrow at 3pm"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Parsed struct {
			Source string `json:"source"`
		} `json:"parsed"`
		Report struct {
			ID      string `json:"id"`
			Failed  int    `json:"failed"`
			Results []struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"results"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "rules", resp.Parsed.Source)
	assert.NotEmpty(t, resp.Report.ID)
	require.Len(t, resp.Report.Results, 1)
	assert.Equal(t, "eventCreated", resp.Report.Results[0].Type)

	rr = f.do(t, "POST", f.path(f.home, "/intents/execute"), map[string]any{
		"items": []map[string]any{
			{"type": "shopping", "title": "oat milk"},
			{"type": "todo", "title": "Water plants", "date": "2024-05-02"},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Report.Results, 2)
	assert.Equal(t, "shoppingAdded", resp.Report.Results[0].Type)
	assert.Equal(t, "taskCreated", resp.Report.Results[1].Type)
	assert.Zero(t, resp.Report.Failed)

	tasks, err := f.svc.PendingTasks(context.Background(), f.home.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "20:00", tasks[0].DueTime)
}

func TestParseIntent(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "POST", f.path(f.home, "/intents/parse"), map[string]any{"text": "buy milk"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"items"`)
}

func TestRecoverMiddleware(t *testing.T) {
	h := api.Recover(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+f.path(f.home, "/stream"), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return f.hub.Subscribers(f.home.ID) == 1 }, time.Second, 10*time.Millisecond)
	f.hub.Publish(realtime.Change{Table: "tasks", Op: "INSERT", HouseholdID: f.home.ID})

	var got []string
	for len(got) < 2 {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			got = append(got, line)
		}
	}
	assert.Equal(t, "event: tasks", got[0])
	assert.Equal(t, fmt.Sprintf(`data: {"table":"tasks","op":"INSERT","household_id":%d}`, f.home.ID), got[1])
}
