package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `id, household_id, name, quantity, unit, category, location, expiration_date, created_at, updated_at`

func scanInventoryItem(row scanner) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	var expires sql.NullTime
	err := row.Scan(
		&item.ID,
		&item.HouseholdID,
		&item.Name,
		&item.Quantity,
		&item.Unit,
		&item.Category,
		&item.Location,
		&expires,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.ExpirationDate = dateFromNull(expires)
	return item, nil
}

func (r *inventoryRepository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	query := `
		INSERT INTO inventory_items (household_id, name, quantity, unit, category, location, expiration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	ts := now()
	item.CreatedAt = ts
	item.UpdatedAt = ts

	err := r.db.QueryRowContext(ctx, query,
		item.HouseholdID,
		item.Name,
		item.Quantity,
		item.Unit,
		item.Category,
		item.Location,
		dateArg(item.ExpirationDate),
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	return item, nil
}

func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := scanInventoryItem(r.db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

func (r *inventoryRepository) List(ctx context.Context, householdID int64) ([]*models.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE household_id = $1 ORDER BY name ASC, id ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *inventoryRepository) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	query := `
		UPDATE inventory_items
		SET name = $2, quantity = $3, unit = $4, category = $5, location = $6, expiration_date = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at`

	item.UpdatedAt = now()
	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.Name,
		item.Quantity,
		item.Unit,
		item.Category,
		item.Location,
		dateArg(item.ExpirationDate),
		item.UpdatedAt,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("inventory item %d: %w", item.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "inventory_items", id)
}
