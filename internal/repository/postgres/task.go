package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, household_id, title, completed, completed_at, due_date, due_time, recurring, frequency,
	needs_notification, notified_at, previous_task_id, created_by_id, created_at, updated_at`

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{}
	var (
		dueDate   sql.NullTime
		dueTime   sql.NullString
		frequency sql.NullString
	)
	err := row.Scan(
		&task.ID, &task.HouseholdID, &task.Title, &task.Completed, &task.CompletedAt,
		&dueDate, &dueTime, &task.Recurring, &frequency,
		&task.NeedsNotification, &task.NotifiedAt, &task.PreviousTaskID, &task.CreatedByID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.DueDate = dateFromNull(dueDate)
	task.DueTime = dueTime.String
	task.Frequency = models.Frequency(frequency.String)
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `INSERT INTO tasks (household_id, title, completed, completed_at, due_date, due_time, recurring, frequency,
			needs_notification, previous_task_id, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	ts := now()
	task.CreatedAt = ts
	task.UpdatedAt = ts
	err := r.db.QueryRowContext(ctx, query,
		task.HouseholdID, task.Title, task.Completed, task.CompletedAt,
		dateArg(task.DueDate), nullString(task.DueTime), task.Recurring, nullString(string(task.Frequency)),
		task.NeedsNotification, task.PreviousTaskID, task.CreatedByID,
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, householdID int64, filters repository.TaskFilters) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE household_id = $1`
	args := []interface{}{householdID}
	argIdx := 2

	if filters.Completed != nil {
		query += fmt.Sprintf(" AND completed = $%d", argIdx)
		args = append(args, *filters.Completed)
		argIdx++
	}

	query += " ORDER BY due_date ASC NULLS LAST, created_at ASC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	return r.query(ctx, query, args...)
}

func (r *taskRepository) DueForNotification(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = false AND needs_notification = true AND notified_at IS NULL AND due_date IS NOT NULL
		ORDER BY due_date ASC, due_time ASC NULLS FIRST`
	return r.query(ctx, query)
}

func (r *taskRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `UPDATE tasks SET title=$2, completed=$3, completed_at=$4, due_date=$5, due_time=$6, recurring=$7,
			frequency=$8, needs_notification=$9, notified_at=$10, updated_at=$11
		WHERE id=$1 RETURNING updated_at`
	task.UpdatedAt = now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Completed, task.CompletedAt, dateArg(task.DueDate), nullString(task.DueTime),
		task.Recurring, nullString(string(task.Frequency)), task.NeedsNotification, task.NotifiedAt, task.UpdatedAt,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %d: %w", task.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "tasks", id)
}
