// Package memory provides in-process implementations of the repository
// interfaces. They back the CLI's dry runs and the service tests; every read
// returns a copy so callers never share state with the store.
package memory

import (
	"sync"
	"time"

	"github.com/Kerhoff/hearth/internal/repository"
)

var (
	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.HouseholdRepository = (*HouseholdRepository)(nil)
	_ repository.TaskRepository      = (*TaskRepository)(nil)
	_ repository.ShoppingRepository  = (*ShoppingRepository)(nil)
	_ repository.InventoryRepository = (*InventoryRepository)(nil)
	_ repository.RecipeRepository    = (*RecipeRepository)(nil)
	_ repository.LocationRepository  = (*LocationRepository)(nil)
	_ repository.MealPlanRepository  = (*MealPlanRepository)(nil)
	_ repository.CategoryRepository  = (*CategoryRepository)(nil)
	_ repository.AgendaRepository    = (*AgendaRepository)(nil)
	_ repository.CalendarRepository  = (*CalendarRepository)(nil)
)

type table[T any] struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*T
	order  []int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[int64]*T{}}
}

func (t *table[T]) insert(row *T, setID func(*T, int64)) int64 {
	t.nextID++
	setID(row, t.nextID)
	t.rows[t.nextID] = row
	t.order = append(t.order, t.nextID)
	return t.nextID
}

func (t *table[T]) remove(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits rows in insertion order.
func (t *table[T]) each(fn func(*T)) {
	for _, id := range t.order {
		fn(t.rows[id])
	}
}

func now() time.Time {
	return time.Now().UTC()
}
