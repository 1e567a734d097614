package memory

import (
	"context"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// ShoppingRepository is an in-memory repository.ShoppingRepository.
type ShoppingRepository struct {
	t *table[models.ShoppingItem]
}

// NewShoppingRepository creates an empty shopping list.
func NewShoppingRepository() *ShoppingRepository {
	return &ShoppingRepository{t: newTable[models.ShoppingItem]()}
}

func (r *ShoppingRepository) Add(_ context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *item
	c.Checked = false
	c.CreatedAt = now()
	r.t.insert(&c, func(i *models.ShoppingItem, id int64) { i.ID = id })
	out := c
	return &out, nil
}

func (r *ShoppingRepository) GetByID(_ context.Context, id int64) (*models.ShoppingItem, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	i, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	c := *i
	return &c, nil
}

func (r *ShoppingRepository) List(_ context.Context, householdID int64, onlyUnchecked bool) ([]*models.ShoppingItem, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.ShoppingItem
	r.t.each(func(i *models.ShoppingItem) {
		if i.HouseholdID != householdID || (onlyUnchecked && i.Checked) {
			return
		}
		c := *i
		out = append(out, &c)
	})
	return out, nil
}

func (r *ShoppingRepository) SetChecked(_ context.Context, id int64, checked bool) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	i, ok := r.t.rows[id]
	if !ok {
		return fmt.Errorf("shopping item %d: %w", id, repository.ErrNotFound)
	}
	i.Checked = checked
	return nil
}

func (r *ShoppingRepository) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return fmt.Errorf("shopping item %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *ShoppingRepository) ClearChecked(_ context.Context, householdID int64) (int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	var ids []int64
	r.t.each(func(i *models.ShoppingItem) {
		if i.HouseholdID == householdID && i.Checked {
			ids = append(ids, i.ID)
		}
	})
	for _, id := range ids {
		r.t.remove(id)
	}
	return int64(len(ids)), nil
}
