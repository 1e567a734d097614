package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type shoppingRepository struct {
	db *sql.DB
}

// NewShoppingRepository creates a new shopping list repository
func NewShoppingRepository(db *sql.DB) repository.ShoppingRepository {
	return &shoppingRepository{db: db}
}

const shoppingColumns = `id, household_id, name, quantity, unit, category, notes, checked, added_by_id, created_at`

func scanShoppingItem(row scanner) (*models.ShoppingItem, error) {
	item := &models.ShoppingItem{}
	var quantity sql.NullFloat64
	err := row.Scan(
		&item.ID,
		&item.HouseholdID,
		&item.Name,
		&quantity,
		&item.Unit,
		&item.Category,
		&item.Notes,
		&item.Checked,
		&item.AddedByID,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if quantity.Valid {
		item.Quantity = &quantity.Float64
	}
	return item, nil
}

func (r *shoppingRepository) Add(ctx context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error) {
	query := `
		INSERT INTO shopping_items (household_id, name, quantity, unit, category, notes, checked, added_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	item.Checked = false
	item.CreatedAt = now()

	err := r.db.QueryRowContext(ctx, query,
		item.HouseholdID,
		item.Name,
		item.Quantity,
		item.Unit,
		item.Category,
		item.Notes,
		item.Checked,
		item.AddedByID,
		item.CreatedAt,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add shopping item: %w", err)
	}

	return item, nil
}

func (r *shoppingRepository) GetByID(ctx context.Context, id int64) (*models.ShoppingItem, error) {
	item, err := scanShoppingItem(r.db.QueryRowContext(ctx,
		`SELECT `+shoppingColumns+` FROM shopping_items WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping item: %w", err)
	}
	return item, nil
}

func (r *shoppingRepository) List(ctx context.Context, householdID int64, onlyUnchecked bool) ([]*models.ShoppingItem, error) {
	query := `SELECT ` + shoppingColumns + ` FROM shopping_items WHERE household_id = $1`
	if onlyUnchecked {
		query += " AND checked = false"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping items: %w", err)
	}
	defer rows.Close()

	var items []*models.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shopping item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *shoppingRepository) SetChecked(ctx context.Context, id int64, checked bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE shopping_items SET checked = $2 WHERE id = $1`, id, checked)
	if err != nil {
		return fmt.Errorf("failed to update shopping item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("shopping item %d: %w", id, repository.ErrNotFound)
	}

	return nil
}

func (r *shoppingRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "shopping_items", id)
}

func (r *shoppingRepository) ClearChecked(ctx context.Context, householdID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_items WHERE household_id = $1 AND checked = true`, householdID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear checked items: %w", err)
	}
	return result.RowsAffected()
}
