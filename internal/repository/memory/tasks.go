package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// TaskRepository is an in-memory repository.TaskRepository.
type TaskRepository struct {
	t *table[models.Task]
}

// NewTaskRepository creates an empty task store.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{t: newTable[models.Task]()}
}

func (r *TaskRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *task
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.t.insert(&c, func(t *models.Task, id int64) { t.ID = id })
	out := c
	return &out, nil
}

func (r *TaskRepository) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	t, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *TaskRepository) List(_ context.Context, householdID int64, filters repository.TaskFilters) ([]*models.Task, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.Task
	r.t.each(func(t *models.Task) {
		if t.HouseholdID != householdID {
			return
		}
		if filters.Completed != nil && t.Completed != *filters.Completed {
			return
		}
		c := *t
		out = append(out, &c)
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *TaskRepository) DueForNotification(_ context.Context) ([]*models.Task, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.Task
	r.t.each(func(t *models.Task) {
		if !t.Completed && t.NeedsNotification && t.NotifiedAt == nil && t.DueDate != nil {
			c := *t
			out = append(out, &c)
		}
	})
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, task *models.Task) (*models.Task, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[task.ID]; !ok {
		return nil, fmt.Errorf("task %d: %w", task.ID, repository.ErrNotFound)
	}
	c := *task
	c.UpdatedAt = now()
	r.t.rows[task.ID] = &c
	out := c
	return &out, nil
}

func (r *TaskRepository) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return fmt.Errorf("task %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
