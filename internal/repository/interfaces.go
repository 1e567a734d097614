package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
)

// ErrNotFound is returned by mutations addressed to a row that does not exist.
// Lookups return nil, nil instead.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// HouseholdRepository defines the interface for household data operations
type HouseholdRepository interface {
	Create(ctx context.Context, household *models.Household) (*models.Household, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Household, error)
	GetByID(ctx context.Context, id int64) (*models.Household, error)
	AddMember(ctx context.Context, householdID, userID int64, role string) error
	GetMembers(ctx context.Context, householdID int64) ([]*models.User, error)
	Update(ctx context.Context, household *models.Household) (*models.Household, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, householdID int64, filters TaskFilters) ([]*models.Task, error)
	// DueForNotification returns pending tasks flagged for notification that
	// have not been notified yet, across all households.
	DueForNotification(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// ShoppingRepository defines the interface for shopping list operations
type ShoppingRepository interface {
	Add(ctx context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error)
	GetByID(ctx context.Context, id int64) (*models.ShoppingItem, error)
	List(ctx context.Context, householdID int64, onlyUnchecked bool) ([]*models.ShoppingItem, error)
	SetChecked(ctx context.Context, id int64, checked bool) error
	Delete(ctx context.Context, id int64) error
	ClearChecked(ctx context.Context, householdID int64) (int64, error)
}

// InventoryRepository defines the interface for inventory operations
type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	GetByID(ctx context.Context, id int64) (*models.InventoryItem, error)
	List(ctx context.Context, householdID int64) ([]*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	Delete(ctx context.Context, id int64) error
}

// RecipeRepository defines the interface for recipe operations
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, householdID int64) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

// LocationRepository defines the interface for saved location operations
type LocationRepository interface {
	Create(ctx context.Context, loc *models.SavedLocation) (*models.SavedLocation, error)
	List(ctx context.Context, householdID int64) ([]*models.SavedLocation, error)
	Delete(ctx context.Context, id int64) error
}

// MealPlanRepository defines the interface for meal plan operations
type MealPlanRepository interface {
	Create(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error)
	GetByWeek(ctx context.Context, householdID int64, weekStart civil.Date) (*models.MealPlan, error)
	GetByID(ctx context.Context, id int64) (*models.MealPlan, error)
	Update(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error)
}

// CategoryRepository defines the interface for meal category operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.MealCategory) (*models.MealCategory, error)
	List(ctx context.Context, householdID int64) ([]*models.MealCategory, error)
}

// AgendaRepository defines the interface for agenda operations
type AgendaRepository interface {
	Create(ctx context.Context, item *models.AgendaItem) (*models.AgendaItem, error)
	ListByDate(ctx context.Context, householdID int64, date civil.Date) ([]*models.AgendaItem, error)
	SetDone(ctx context.Context, id int64, done bool) error
}

// CalendarRepository defines the interface for locally stored calendar events
type CalendarRepository interface {
	Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error)
	GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error)
	List(ctx context.Context, householdID int64, filters CalendarFilters) ([]*models.CalendarEvent, error)
	Delete(ctx context.Context, id int64) error
}

// TaskFilters represents filters for querying tasks
type TaskFilters struct {
	Completed *bool
	Limit     int
}

// CalendarFilters represents filters for querying calendar events
type CalendarFilters struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Pending returns filters selecting incomplete tasks.
func Pending() TaskFilters {
	f := false
	return TaskFilters{Completed: &f}
}
