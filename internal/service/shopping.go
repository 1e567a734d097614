package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// AddShoppingItem puts an item on the list, guessing its aisle when no
// category is given.
func (s *Service) AddShoppingItem(ctx context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, ErrEmptyTitle
	}
	if item.Category == "" {
		item.Category = ingredient.GuessCategory(item.Name)
	}
	item.Checked = false

	added, err := s.Shopping.Add(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add shopping item %q: %w", item.Name, err)
	}
	s.logger.WithFields(logrus.Fields{"household_id": added.HouseholdID, "item_id": added.ID}).
		Infof("Added %q to shopping list", added.Name)
	return added, nil
}

// ShoppingList returns the household's list, optionally only what is still
// to buy.
func (s *Service) ShoppingList(ctx context.Context, householdID int64, onlyUnchecked bool) ([]*models.ShoppingItem, error) {
	items, err := s.Shopping.List(ctx, householdID, onlyUnchecked)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items for household %d: %w", householdID, err)
	}
	return items, nil
}

// ToggleShoppingItem flips an item's checked state.
func (s *Service) ToggleShoppingItem(ctx context.Context, id int64) (*models.ShoppingItem, error) {
	item, err := s.Shopping.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("shopping item %d: %w", id, repository.ErrNotFound)
	}
	item.Checked = !item.Checked
	if err := s.Shopping.SetChecked(ctx, id, item.Checked); err != nil {
		return nil, fmt.Errorf("failed to update shopping item %d: %w", id, err)
	}
	return item, nil
}

// DeleteShoppingItem removes an item from the list.
func (s *Service) DeleteShoppingItem(ctx context.Context, id int64) error {
	if err := s.Shopping.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shopping item %d: %w", id, err)
	}
	return nil
}

// ClearCheckedShopping deletes every checked item and returns how many went.
func (s *Service) ClearCheckedShopping(ctx context.Context, householdID int64) (int64, error) {
	n, err := s.Shopping.ClearChecked(ctx, householdID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear checked items for household %d: %w", householdID, err)
	}
	s.logger.WithField("household_id", householdID).Infof("Cleared %d checked shopping items", n)
	return n, nil
}
