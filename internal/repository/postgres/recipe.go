package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type recipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new recipe repository. Ingredients are stored
// as a JSONB array to keep their order.
func NewRecipeRepository(db *sql.DB) repository.RecipeRepository {
	return &recipeRepository{db: db}
}

const recipeColumns = `id, household_id, name, ingredients, instructions, servings, prep_time, cook_time,
	category, favorite, source_url, created_at, updated_at`

func scanRecipe(row scanner) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	var ingredients []byte
	err := row.Scan(
		&recipe.ID, &recipe.HouseholdID, &recipe.Name, &ingredients, &recipe.Instructions,
		&recipe.Servings, &recipe.PrepTime, &recipe.CookTime,
		&recipe.Category, &recipe.Favorite, &recipe.SourceURL, &recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients of recipe %d: %w", recipe.ID, err)
		}
	}
	return recipe, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	ingredients, err := jsonArg(recipe.Ingredients)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO recipes (household_id, name, ingredients, instructions, servings, prep_time, cook_time,
			category, favorite, source_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	ts := now()
	recipe.CreatedAt = ts
	recipe.UpdatedAt = ts

	err = r.db.QueryRowContext(ctx, query,
		recipe.HouseholdID, recipe.Name, ingredients, recipe.Instructions, recipe.Servings,
		recipe.PrepTime, recipe.CookTime, recipe.Category, recipe.Favorite, recipe.SourceURL,
		recipe.CreatedAt, recipe.UpdatedAt,
	).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return recipe, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, householdID int64) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE household_id = $1 ORDER BY name ASC, id ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	ingredients, err := jsonArg(recipe.Ingredients)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE recipes
		SET name = $2, ingredients = $3, instructions = $4, servings = $5, prep_time = $6, cook_time = $7,
			category = $8, favorite = $9, source_url = $10, updated_at = $11
		WHERE id = $1
		RETURNING updated_at`

	recipe.UpdatedAt = now()
	err = r.db.QueryRowContext(ctx, query,
		recipe.ID, recipe.Name, ingredients, recipe.Instructions, recipe.Servings,
		recipe.PrepTime, recipe.CookTime, recipe.Category, recipe.Favorite, recipe.SourceURL,
		recipe.UpdatedAt,
	).Scan(&recipe.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recipe %d: %w", recipe.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return recipe, nil
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "recipes", id)
}
