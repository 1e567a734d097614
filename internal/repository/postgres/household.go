package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type householdRepository struct {
	db *sql.DB
}

// NewHouseholdRepository creates a new household repository
func NewHouseholdRepository(db *sql.DB) repository.HouseholdRepository {
	return &householdRepository{db: db}
}

func (r *householdRepository) Create(ctx context.Context, h *models.Household) (*models.Household, error) {
	query := `
		INSERT INTO households (chat_id, name, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	ts := now()
	h.CreatedAt = ts
	h.UpdatedAt = ts

	err := r.db.QueryRowContext(ctx, query,
		h.ChatID,
		h.Name,
		h.Timezone,
		h.CreatedAt,
		h.UpdatedAt,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create household: %w", err)
	}

	return h, nil
}

func (r *householdRepository) get(ctx context.Context, where string, arg any) (*models.Household, error) {
	query := `SELECT id, chat_id, name, timezone, created_at, updated_at FROM households WHERE ` + where

	h := &models.Household{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&h.ID,
		&h.ChatID,
		&h.Name,
		&h.Timezone,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return h, nil
}

func (r *householdRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Household, error) {
	return r.get(ctx, "chat_id = $1", chatID)
}

func (r *householdRepository) GetByID(ctx context.Context, id int64) (*models.Household, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *householdRepository) AddMember(ctx context.Context, householdID, userID int64, role string) error {
	query := `
		INSERT INTO household_members (household_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (household_id, user_id) DO UPDATE SET role = $3`

	_, err := r.db.ExecContext(ctx, query, householdID, userID, role, now())
	if err != nil {
		return fmt.Errorf("failed to add household member: %w", err)
	}

	return nil
}

func (r *householdRepository) GetMembers(ctx context.Context, householdID int64) ([]*models.User, error) {
	query := `
		SELECT u.id, u.telegram_id, u.telegram_username, u.first_name, u.last_name, u.is_active, u.created_at, u.updated_at
		FROM users u
		INNER JOIN household_members hm ON hm.user_id = u.id
		WHERE hm.household_id = $1
		ORDER BY hm.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query household members: %w", err)
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan household member: %w", err)
		}
		members = append(members, user)
	}

	return members, rows.Err()
}

func (r *householdRepository) Update(ctx context.Context, h *models.Household) (*models.Household, error) {
	query := `
		UPDATE households
		SET name = $2, timezone = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at`

	h.UpdatedAt = now()
	err := r.db.QueryRowContext(ctx, query, h.ID, h.Name, h.Timezone, h.UpdatedAt).Scan(&h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update household: %w", err)
	}

	return h, nil
}
