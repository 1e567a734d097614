package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type locationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new saved location repository
func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, loc *models.SavedLocation) (*models.SavedLocation, error) {
	query := `
		INSERT INTO saved_locations (household_id, name, address, keywords, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	loc.CreatedAt = now()
	err := r.db.QueryRowContext(ctx, query,
		loc.HouseholdID,
		loc.Name,
		loc.Address,
		pq.Array(loc.Keywords),
		loc.CreatedAt,
	).Scan(&loc.ID, &loc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create saved location: %w", err)
	}
	return loc, nil
}

func (r *locationRepository) List(ctx context.Context, householdID int64) ([]*models.SavedLocation, error) {
	query := `
		SELECT id, household_id, name, address, keywords, created_at
		FROM saved_locations
		WHERE household_id = $1
		ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved locations: %w", err)
	}
	defer rows.Close()

	var locs []*models.SavedLocation
	for rows.Next() {
		loc := &models.SavedLocation{}
		if err := rows.Scan(
			&loc.ID,
			&loc.HouseholdID,
			&loc.Name,
			&loc.Address,
			pq.Array(&loc.Keywords),
			&loc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saved location: %w", err)
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "saved_locations", id)
}
