package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// LocationRepository is an in-memory repository.LocationRepository.
type LocationRepository struct {
	t *table[models.SavedLocation]
}

// NewLocationRepository creates an empty saved-location store.
func NewLocationRepository() *LocationRepository {
	return &LocationRepository{t: newTable[models.SavedLocation]()}
}

func (r *LocationRepository) Create(_ context.Context, loc *models.SavedLocation) (*models.SavedLocation, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *loc
	c.Keywords = append([]string(nil), loc.Keywords...)
	c.CreatedAt = now()
	r.t.insert(&c, func(l *models.SavedLocation, id int64) { l.ID = id })
	out := c
	return &out, nil
}

func (r *LocationRepository) List(_ context.Context, householdID int64) ([]*models.SavedLocation, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.SavedLocation
	r.t.each(func(l *models.SavedLocation) {
		if l.HouseholdID == householdID {
			c := *l
			c.Keywords = append([]string(nil), l.Keywords...)
			out = append(out, &c)
		}
	})
	return out, nil
}

func (r *LocationRepository) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return fmt.Errorf("saved location %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

// AgendaRepository is an in-memory repository.AgendaRepository.
type AgendaRepository struct {
	t *table[models.AgendaItem]
}

// NewAgendaRepository creates an empty agenda.
func NewAgendaRepository() *AgendaRepository {
	return &AgendaRepository{t: newTable[models.AgendaItem]()}
}

func (r *AgendaRepository) Create(_ context.Context, item *models.AgendaItem) (*models.AgendaItem, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *item
	c.CreatedAt = now()
	r.t.insert(&c, func(a *models.AgendaItem, id int64) { a.ID = id })
	out := c
	return &out, nil
}

func (r *AgendaRepository) ListByDate(_ context.Context, householdID int64, date civil.Date) ([]*models.AgendaItem, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.AgendaItem
	r.t.each(func(a *models.AgendaItem) {
		if a.HouseholdID == householdID && a.Date == date {
			c := *a
			out = append(out, &c)
		}
	})
	return out, nil
}

func (r *AgendaRepository) SetDone(_ context.Context, id int64, done bool) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	a, ok := r.t.rows[id]
	if !ok {
		return fmt.Errorf("agenda item %d: %w", id, repository.ErrNotFound)
	}
	a.Done = done
	return nil
}

// CalendarRepository is an in-memory repository.CalendarRepository.
type CalendarRepository struct {
	t *table[models.CalendarEvent]
}

// NewCalendarRepository creates an empty calendar.
func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{t: newTable[models.CalendarEvent]()}
}

func (r *CalendarRepository) Create(_ context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *event
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.t.insert(&c, func(e *models.CalendarEvent, id int64) { e.ID = id })
	out := c
	return &out, nil
}

func (r *CalendarRepository) GetByID(_ context.Context, id int64) (*models.CalendarEvent, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	e, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (r *CalendarRepository) List(_ context.Context, householdID int64, filters repository.CalendarFilters) ([]*models.CalendarEvent, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.CalendarEvent
	r.t.each(func(e *models.CalendarEvent) {
		if e.HouseholdID != householdID || !within(e.StartTime, filters.From, filters.To) {
			return
		}
		c := *e
		out = append(out, &c)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *CalendarRepository) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return fmt.Errorf("calendar event %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func within(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
