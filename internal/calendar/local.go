package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// Local stores events in the household's own calendar table.
type Local struct {
	repo repository.CalendarRepository
}

// NewLocal creates a calendar backed by repo.
func NewLocal(repo repository.CalendarRepository) *Local {
	return &Local{repo: repo}
}

// CreateEvent implements Calendar.
func (l *Local) CreateEvent(ctx context.Context, ev NewEvent) (*models.CalendarEvent, error) {
	created, err := l.repo.Create(ctx, ev.model())
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// Upcoming lists events starting at or after from.
func (l *Local) Upcoming(ctx context.Context, householdID int64, from time.Time, limit int) ([]*models.CalendarEvent, error) {
	return l.repo.List(ctx, householdID, repository.CalendarFilters{From: &from, Limit: limit})
}
