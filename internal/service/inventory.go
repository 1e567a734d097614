package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// ErrInvalidAmount is returned when an inventory amount is not positive.
var ErrInvalidAmount = errors.New("amount must be positive")

// AddInventoryItem stores food on hand. Quantity defaults to one; category
// and storage location are guessed from the name when missing.
func (s *Service) AddInventoryItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, ErrEmptyTitle
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Category == "" {
		item.Category = ingredient.GuessCategory(item.Name)
	}
	if !item.Location.Valid() {
		item.Location = ingredient.GuessLocation(item.Name)
	}

	created, err := s.Inventory.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add inventory item %q: %w", item.Name, err)
	}
	s.logger.WithFields(logrus.Fields{"household_id": created.HouseholdID, "item_id": created.ID}).
		Infof("Added %g %q to %s", created.Quantity, created.Name, created.Location)
	return created, nil
}

// InventoryList returns everything the household has on hand.
func (s *Service) InventoryList(ctx context.Context, householdID int64) ([]*models.InventoryItem, error) {
	items, err := s.Inventory.List(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory for household %d: %w", householdID, err)
	}
	return items, nil
}

// FindInventoryItem returns the first item matching name, or nil.
func (s *Service) FindInventoryItem(ctx context.Context, householdID int64, name string) (*models.InventoryItem, error) {
	items, err := s.InventoryList(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return ingredient.Find(s.matcher, name, items), nil
}

// UseItem consumes amount of an item. The item is deleted once nothing is
// left, in which case UseItem returns nil.
func (s *Service) UseItem(ctx context.Context, id int64, amount float64) (*models.InventoryItem, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	item, err := s.Inventory.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("inventory item %d: %w", id, repository.ErrNotFound)
	}

	log := s.logger.WithFields(logrus.Fields{"household_id": item.HouseholdID, "item_id": id})
	remaining := item.Quantity - amount
	if remaining <= 0 {
		if err := s.Inventory.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete inventory item %d: %w", id, err)
		}
		log.Infof("Used up %q", item.Name)
		return nil, nil
	}

	item.Quantity = remaining
	updated, err := s.Inventory.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item %d: %w", id, err)
	}
	log.Infof("Used %g of %q, %g left", amount, item.Name, remaining)
	return updated, nil
}

// ExpiringSoon returns items expiring within days of today, already expired
// ones included, soonest first.
func (s *Service) ExpiringSoon(ctx context.Context, householdID int64, days int) ([]*models.InventoryItem, error) {
	items, err := s.InventoryList(ctx, householdID)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	var out []*models.InventoryItem
	for _, it := range items {
		if it.ExpiresWithin(today, days) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpirationDate.Before(*out[j].ExpirationDate)
	})
	return out, nil
}

// ClearExpired deletes items whose expiration date has passed.
func (s *Service) ClearExpired(ctx context.Context, householdID int64) (int, error) {
	items, err := s.InventoryList(ctx, householdID)
	if err != nil {
		return 0, err
	}
	today := s.Today()
	n := 0
	for _, it := range items {
		if it.ExpirationDate == nil || !it.ExpirationDate.Before(today) {
			continue
		}
		if err := s.Inventory.Delete(ctx, it.ID); err != nil {
			return n, fmt.Errorf("failed to delete expired item %d: %w", it.ID, err)
		}
		n++
	}
	s.logger.WithField("household_id", householdID).Infof("Cleared %d expired inventory items", n)
	return n, nil
}

// MatchCount reports how many of ingredients the household has on hand.
func (s *Service) MatchCount(ctx context.Context, householdID int64, ingredients []models.Ingredient) (ingredient.MatchCount, error) {
	items, err := s.InventoryList(ctx, householdID)
	if err != nil {
		return ingredient.MatchCount{}, err
	}
	return ingredient.CountMatches(s.matcher, ingredients, items), nil
}
