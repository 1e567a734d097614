package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// ErrEmptyTitle is returned when a task or item is created without a name.
var ErrEmptyTitle = errors.New("title is required")

// ErrInvalidFrequency is returned for a recurring task with an unknown
// frequency.
var ErrInvalidFrequency = errors.New("invalid frequency")

// CreateTask stores a new pending task.
func (s *Service) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, ErrEmptyTitle
	}
	if t.Recurring && !t.Frequency.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidFrequency, t.Frequency)
	}
	if !t.Recurring {
		t.Frequency = ""
	}
	t.Completed, t.CompletedAt, t.NotifiedAt = false, nil, nil

	created, err := s.Tasks.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"household_id": created.HouseholdID, "task_id": created.ID}).
		Infof("Created task %q", created.Title)
	return created, nil
}

// PendingTasks lists the household's incomplete tasks, earliest due first.
func (s *Service) PendingTasks(ctx context.Context, householdID int64) ([]*models.Task, error) {
	tasks, err := s.Tasks.List(ctx, householdID, repository.Pending())
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for household %d: %w", householdID, err)
	}
	return tasks, nil
}

// FindTasks returns pending tasks whose title contains query or is contained
// in it, ignoring case.
func (s *Service) FindTasks(ctx context.Context, householdID int64, query string) ([]*models.Task, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	pending, err := s.PendingTasks(ctx, householdID)
	if err != nil {
		return nil, err
	}
	var out []*models.Task
	for _, t := range pending {
		title := strings.ToLower(t.Title)
		if strings.Contains(title, q) || strings.Contains(q, title) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ToggleTask flips a task's completion. Completing a recurring task creates
// its next occurrence, due one period after the current due date (or today
// when it had none).
func (s *Service) ToggleTask(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	if t == nil {
		return nil, fmt.Errorf("task %d: %w", id, repository.ErrNotFound)
	}

	t.Completed = !t.Completed
	t.CompletedAt = nil
	if t.Completed {
		now := s.Now()
		t.CompletedAt = &now
	}
	updated, err := s.Tasks.Update(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	log := s.logger.WithFields(logrus.Fields{"household_id": updated.HouseholdID, "task_id": id})
	log.Infof("Task %q completed=%t", updated.Title, updated.Completed)

	if updated.Completed && updated.Recurring {
		next, err := s.createNextOccurrence(ctx, updated)
		if err != nil {
			return nil, err
		}
		log.WithField("next_task_id", next.ID).Infof("Scheduled next occurrence for %s", next.DueDate)
	}
	return updated, nil
}

func (s *Service) createNextOccurrence(ctx context.Context, t *models.Task) (*models.Task, error) {
	from := s.Today()
	if t.DueDate != nil {
		from = *t.DueDate
	}
	due := t.Frequency.Next(from)
	prev := t.ID

	next, err := s.Tasks.Create(ctx, &models.Task{
		HouseholdID:       t.HouseholdID,
		Title:             t.Title,
		DueDate:           &due,
		DueTime:           t.DueTime,
		Recurring:         true,
		Frequency:         t.Frequency,
		NeedsNotification: t.NeedsNotification,
		PreviousTaskID:    &prev,
		CreatedByID:       t.CreatedByID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create next occurrence of task %d: %w", t.ID, err)
	}
	return next, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}

// TaskGroups buckets pending tasks by due date relative to today.
type TaskGroups struct {
	Overdue  []*models.Task `json:"overdue"`
	Today    []*models.Task `json:"today"`
	Upcoming []*models.Task `json:"upcoming"`
	NoDate   []*models.Task `json:"no_date"`
}

// GroupTasks splits the household's pending tasks into overdue, today,
// upcoming and undated.
func (s *Service) GroupTasks(ctx context.Context, householdID int64) (*TaskGroups, error) {
	pending, err := s.PendingTasks(ctx, householdID)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	g := &TaskGroups{}
	for _, t := range pending {
		switch {
		case t.DueDate == nil:
			g.NoDate = append(g.NoDate, t)
		case t.DueDate.Before(today):
			g.Overdue = append(g.Overdue, t)
		case *t.DueDate == today:
			g.Today = append(g.Today, t)
		default:
			g.Upcoming = append(g.Upcoming, t)
		}
	}
	return g, nil
}
