package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new meal category repository
func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *models.MealCategory) (*models.MealCategory, error) {
	query := `
		INSERT INTO meal_categories (household_id, name, sort_order)
		VALUES ($1, $2, $3)
		ON CONFLICT (household_id, name) DO UPDATE SET sort_order = EXCLUDED.sort_order
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, c.HouseholdID, c.Name, c.SortOrder).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("failed to create meal category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context, householdID int64) ([]*models.MealCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, name, sort_order
		FROM meal_categories
		WHERE household_id = $1
		ORDER BY sort_order ASC, name ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal categories: %w", err)
	}
	defer rows.Close()

	var out []*models.MealCategory
	for rows.Next() {
		c := &models.MealCategory{}
		if err := rows.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan meal category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
