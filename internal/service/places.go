package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
)

// AddLocation saves a named place. Keywords are generated from the name when
// none are given.
func (s *Service) AddLocation(ctx context.Context, loc *models.SavedLocation) (*models.SavedLocation, error) {
	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		return nil, ErrEmptyTitle
	}
	if len(loc.Keywords) == 0 {
		loc.Keywords = models.GenerateKeywords(loc.Name)
	}
	created, err := s.Locations.Create(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to save location %q: %w", loc.Name, err)
	}
	s.logger.WithField("household_id", created.HouseholdID).Infof("Saved location %q", created.Name)
	return created, nil
}

// ListLocations returns the household's saved places.
func (s *Service) ListLocations(ctx context.Context, householdID int64) ([]*models.SavedLocation, error) {
	locs, err := s.Locations.List(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations for household %d: %w", householdID, err)
	}
	return locs, nil
}

// DeleteLocation forgets a saved place.
func (s *Service) DeleteLocation(ctx context.Context, id int64) error {
	if err := s.Locations.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete location %d: %w", id, err)
	}
	return nil
}

// FindLocation resolves free text to a saved place: an exact name first, then
// an exact keyword, then a substring of either. It returns nil when nothing
// matches.
func (s *Service) FindLocation(ctx context.Context, householdID int64, text string) (*models.SavedLocation, error) {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return nil, nil
	}
	locs, err := s.ListLocations(ctx, householdID)
	if err != nil {
		return nil, err
	}

	for _, l := range locs {
		if strings.ToLower(l.Name) == q {
			return l, nil
		}
	}
	for _, l := range locs {
		for _, kw := range l.Keywords {
			if kw == q {
				return l, nil
			}
		}
	}
	for _, l := range locs {
		if strings.Contains(strings.ToLower(l.Name), q) {
			return l, nil
		}
		for _, kw := range l.Keywords {
			if strings.Contains(kw, q) {
				return l, nil
			}
		}
	}
	return nil, nil
}

// AddAgendaItem pins a note to a day.
func (s *Service) AddAgendaItem(ctx context.Context, item *models.AgendaItem) (*models.AgendaItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, ErrEmptyTitle
	}
	if item.Date == (civil.Date{}) {
		item.Date = s.Today()
	}
	created, err := s.Agenda.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create agenda item: %w", err)
	}
	return created, nil
}

// AgendaFor lists the notes pinned to date.
func (s *Service) AgendaFor(ctx context.Context, householdID int64, date civil.Date) ([]*models.AgendaItem, error) {
	items, err := s.Agenda.ListByDate(ctx, householdID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list agenda for %s: %w", date, err)
	}
	return items, nil
}

// SetAgendaDone marks an agenda note done or not done.
func (s *Service) SetAgendaDone(ctx context.Context, id int64, done bool) error {
	if err := s.Agenda.SetDone(ctx, id, done); err != nil {
		return fmt.Errorf("failed to update agenda item %d: %w", id, err)
	}
	return nil
}
