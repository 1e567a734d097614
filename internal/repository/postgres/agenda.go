package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type agendaRepository struct {
	db *sql.DB
}

// NewAgendaRepository creates a new agenda repository
func NewAgendaRepository(db *sql.DB) repository.AgendaRepository {
	return &agendaRepository{db: db}
}

func (r *agendaRepository) Create(ctx context.Context, item *models.AgendaItem) (*models.AgendaItem, error) {
	query := `
		INSERT INTO agenda_items (household_id, title, notes, date, done, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	item.CreatedAt = now()
	err := r.db.QueryRowContext(ctx, query,
		item.HouseholdID, item.Title, item.Notes, item.Date.String(), item.Done, item.CreatedAt,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create agenda item: %w", err)
	}
	return item, nil
}

func (r *agendaRepository) ListByDate(ctx context.Context, householdID int64, date civil.Date) ([]*models.AgendaItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, title, notes, date, done, created_at
		FROM agenda_items
		WHERE household_id = $1 AND date = $2
		ORDER BY created_at ASC`, householdID, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query agenda: %w", err)
	}
	defer rows.Close()

	var items []*models.AgendaItem
	for rows.Next() {
		item := &models.AgendaItem{}
		var d sql.NullTime
		if err := rows.Scan(&item.ID, &item.HouseholdID, &item.Title, &item.Notes, &d, &item.Done, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agenda item: %w", err)
		}
		if cd := dateFromNull(d); cd != nil {
			item.Date = *cd
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *agendaRepository) SetDone(ctx context.Context, id int64, done bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE agenda_items SET done = $2 WHERE id = $1`, id, done)
	if err != nil {
		return fmt.Errorf("failed to update agenda item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("agenda item %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
