package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/recipe"
	"github.com/Kerhoff/hearth/internal/repository"
)

// ErrImportDisabled is returned by ImportRecipe when no clipper is configured.
var ErrImportDisabled = errors.New("recipe import is not configured")

// CreateRecipe normalizes and stores a recipe.
func (s *Service) CreateRecipe(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	created, err := s.Recipes.Create(ctx, recipe.Normalize(r))
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe %q: %w", r.Name, err)
	}
	s.logger.WithFields(logrus.Fields{"household_id": created.HouseholdID, "recipe_id": created.ID}).
		Infof("Created recipe %q", created.Name)
	return created, nil
}

// UpdateRecipe normalizes and saves changes to an existing recipe.
func (s *Service) UpdateRecipe(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	updated, err := s.Recipes.Update(ctx, recipe.Normalize(r))
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %d: %w", r.ID, err)
	}
	return updated, nil
}

// DeleteRecipe removes a recipe.
func (s *Service) DeleteRecipe(ctx context.Context, id int64) error {
	if err := s.Recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

// GetRecipe returns a recipe, or nil when it does not exist.
func (s *Service) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	r, err := s.Recipes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return r, nil
}

// ListRecipes returns the household's recipe catalog.
func (s *Service) ListRecipes(ctx context.Context, householdID int64) ([]*models.Recipe, error) {
	rs, err := s.Recipes.List(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for household %d: %w", householdID, err)
	}
	return rs, nil
}

// FavoriteRecipes returns the recipes marked as favorites.
func (s *Service) FavoriteRecipes(ctx context.Context, householdID int64) ([]*models.Recipe, error) {
	rs, err := s.ListRecipes(ctx, householdID)
	if err != nil {
		return nil, err
	}
	var out []*models.Recipe
	for _, r := range rs {
		if r.Favorite {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindRecipe returns the recipe named name, falling back to the first whose
// name contains it. It returns nil when nothing matches.
func (s *Service) FindRecipe(ctx context.Context, householdID int64, name string) (*models.Recipe, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return nil, nil
	}
	rs, err := s.ListRecipes(ctx, householdID)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if strings.ToLower(r.Name) == q {
			return r, nil
		}
	}
	for _, r := range rs {
		if strings.Contains(strings.ToLower(r.Name), q) {
			return r, nil
		}
	}
	return nil, nil
}

// ImportRecipe clips a recipe from a web page and stores it.
func (s *Service) ImportRecipe(ctx context.Context, householdID int64, url string) (*models.Recipe, error) {
	if s.clipper == nil {
		return nil, ErrImportDisabled
	}
	r, err := s.clipper.Clip(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to import recipe from %s: %w", url, err)
	}
	r.HouseholdID = householdID
	return s.CreateRecipe(ctx, r)
}

func (s *Service) recipeInHousehold(ctx context.Context, householdID, id int64) (*models.Recipe, error) {
	r, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.HouseholdID != householdID {
		return nil, fmt.Errorf("recipe %d: %w", id, repository.ErrNotFound)
	}
	return r, nil
}
