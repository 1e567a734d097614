package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type calendarRepository struct {
	db *sql.DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db *sql.DB) repository.CalendarRepository {
	return &calendarRepository{db: db}
}

const calendarColumns = `id, household_id, external_id, title, description, start_time, end_time, all_day,
	location, saved_location_id, smart_reminder, created_by_id, created_at, updated_at`

func scanEvent(row scanner) (*models.CalendarEvent, error) {
	event := &models.CalendarEvent{}
	err := row.Scan(
		&event.ID,
		&event.HouseholdID,
		&event.ExternalID,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.AllDay,
		&event.Location,
		&event.SavedLocationID,
		&event.SmartReminder,
		&event.CreatedByID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	return event, err
}

func (r *calendarRepository) Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	query := `
		INSERT INTO calendar_events (household_id, external_id, title, description, start_time, end_time, all_day,
			location, saved_location_id, smart_reminder, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	ts := now()
	event.CreatedAt = ts
	event.UpdatedAt = ts

	err := r.db.QueryRowContext(ctx, query,
		event.HouseholdID,
		event.ExternalID,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.AllDay,
		event.Location,
		event.SavedLocationID,
		event.SmartReminder,
		event.CreatedByID,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return event, nil
}

func (r *calendarRepository) GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+calendarColumns+` FROM calendar_events WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get calendar event: %w", err)
	}

	return event, nil
}

func (r *calendarRepository) List(ctx context.Context, householdID int64, filters repository.CalendarFilters) ([]*models.CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_events WHERE household_id = $1`
	args := []interface{}{householdID}
	argIdx := 2

	if filters.From != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argIdx)
		args = append(args, *filters.From)
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND start_time <= $%d", argIdx)
		args = append(args, *filters.To)
		argIdx++
	}

	query += " ORDER BY start_time ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []*models.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *calendarRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "calendar_events", id)
}
