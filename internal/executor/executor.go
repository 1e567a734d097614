// Package executor turns parsed intents into store mutations. Each Execute
// call writes to at most one store and returns exactly one Result.
package executor

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/calendar"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/metrics"
	"github.com/Kerhoff/hearth/internal/models"
)

// Tasks is the task store as the executor sees it.
type Tasks interface {
	CreateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	PendingTasks(ctx context.Context, householdID int64) ([]*models.Task, error)
	FindTasks(ctx context.Context, householdID int64, query string) ([]*models.Task, error)
	ToggleTask(ctx context.Context, id int64) (*models.Task, error)
}

// Shopping is the shopping list store.
type Shopping interface {
	AddShoppingItem(ctx context.Context, item *models.ShoppingItem) (*models.ShoppingItem, error)
}

// Locations resolves free text to a saved place.
type Locations interface {
	FindLocation(ctx context.Context, householdID int64, text string) (*models.SavedLocation, error)
}

// Store is everything the executor mutates or reads.
type Store interface {
	Tasks
	Shopping
	Locations
}

const reasonNoTitle = "no title"

// Executor runs intents against a household's stores.
type Executor struct {
	store    Store
	calendar calendar.Calendar
	logger   logrus.FieldLogger
	loc      *time.Location
}

// New creates an executor. Event intents fail when cal is nil.
func New(store Store, cal calendar.Calendar, logger logrus.FieldLogger, loc *time.Location) *Executor {
	if loc == nil {
		loc = time.UTC
	}
	return &Executor{store: store, calendar: cal, logger: logger, loc: loc}
}

// Execute runs one intent for householdID. Collaborator failures are returned
// as errors and never as a Result.
func (e *Executor) Execute(ctx context.Context, householdID int64, in intent.Intent) (Result, error) {
	res, err := e.execute(ctx, householdID, in)
	log := e.logger.WithFields(logrus.Fields{"household_id": householdID, "intent": in.Kind()})
	if err != nil {
		metrics.Executions.WithLabelValues("error").Inc()
		log.WithField("err", err).Error("Failed to execute intent")
		return nil, err
	}
	metrics.Executions.WithLabelValues(string(res.Kind())).Inc()
	log.WithField("result", res.Kind()).Info("Executed intent")
	return res, nil
}

func (e *Executor) execute(ctx context.Context, householdID int64, in intent.Intent) (Result, error) {
	switch v := in.(type) {
	case *intent.List:
		tasks, err := e.store.PendingTasks(ctx, householdID)
		if err != nil {
			return nil, err
		}
		return &TaskList{Tasks: tasks}, nil

	case *intent.Complete:
		return e.complete(ctx, householdID, v)

	case *intent.Shopping:
		return e.shopping(ctx, householdID, v)

	case *intent.Event:
		if v.Date != nil {
			return e.event(ctx, householdID, v)
		}
		return e.task(ctx, householdID, &intent.Task{
			Title:     v.Title,
			RawText:   v.RawText,
			Recurring: v.Recurring,
			Frequency: v.Frequency,
		})

	case *intent.Task:
		return e.task(ctx, householdID, v)

	case *intent.Unknown:
		return &Unknown{RawText: v.RawText}, nil
	}
	return nil, fmt.Errorf("unsupported intent %T", in)
}

func (e *Executor) complete(ctx context.Context, householdID int64, c *intent.Complete) (Result, error) {
	matches, err := e.store.FindTasks(ctx, householdID, c.Query)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return &NotFound{Query: c.Query}, nil
	case 1:
		t, err := e.store.ToggleTask(ctx, matches[0].ID)
		if err != nil {
			return nil, err
		}
		return &Completed{Task: t}, nil
	default:
		return &Ambiguous{Query: c.Query, Matches: matches}, nil
	}
}

func (e *Executor) shopping(ctx context.Context, householdID int64, s *intent.Shopping) (Result, error) {
	title := intent.Title(s)
	if title == "" {
		return &Skipped{Reason: reasonNoTitle}, nil
	}
	item, err := e.store.AddShoppingItem(ctx, &models.ShoppingItem{
		HouseholdID: householdID,
		Name:        title,
		Quantity:    s.Quantity,
		Unit:        s.Unit,
		Category:    s.Category,
		AddedByID:   callerID(ctx),
	})
	if err != nil {
		return nil, err
	}
	return &ShoppingAdded{Item: item}, nil
}

func (e *Executor) event(ctx context.Context, householdID int64, ev *intent.Event) (Result, error) {
	title := intent.Title(ev)
	if title == "" {
		return &Skipped{Reason: reasonNoTitle}, nil
	}
	if e.calendar == nil {
		return nil, calendar.ErrNoCalendarSelected
	}

	start := ev.Date.In(e.loc)
	if ev.AllDay() {
		start = civil.DateOf(start).In(e.loc)
	}
	ne := calendar.NewEvent{
		HouseholdID: householdID,
		Title:       title,
		Start:       start,
		AllDay:      ev.AllDay(),
		Location:    ev.Location,
		// Events with a place get a leave-by reminder.
		SmartReminder: ev.Location != "",
		CreatedByID:   callerID(ctx),
	}
	if ev.Location != "" {
		saved, err := e.store.FindLocation(ctx, householdID, ev.Location)
		if err != nil {
			return nil, err
		}
		if saved != nil {
			ne.Location = saved.Address
			id := saved.ID
			ne.SavedLocationID = &id
		}
	}

	created, err := e.calendar.CreateEvent(ctx, ne)
	if err != nil {
		return nil, err
	}
	return &EventCreated{Event: created}, nil
}

func (e *Executor) task(ctx context.Context, householdID int64, t *intent.Task) (Result, error) {
	title := intent.Title(t)
	if title == "" {
		return &Skipped{Reason: reasonNoTitle}, nil
	}
	task := &models.Task{
		HouseholdID:       householdID,
		Title:             title,
		DueDate:           t.DueDate,
		Recurring:         t.Recurring && t.Frequency.Valid(),
		Frequency:         t.Frequency,
		NeedsNotification: t.NeedsNotification,
		CreatedByID:       callerID(ctx),
	}
	if t.DueDate != nil && t.DueTime != nil {
		task.DueTime = fmt.Sprintf("%02d:%02d", t.DueTime.Hour, t.DueTime.Minute)
	}
	created, err := e.store.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	return &TaskCreated{Task: created}, nil
}

func callerID(ctx context.Context) *int64 {
	if u := models.UserFromContext(ctx); u != nil {
		id := u.ID
		return &id
	}
	return nil
}
