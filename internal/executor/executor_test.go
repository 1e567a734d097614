package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/calendar"
	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
	"github.com/Kerhoff/hearth/internal/repository/memory"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/pkg/logger"
)

const hid = int64(1)

// Wednesday.
var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *service.Service
	events *memory.CalendarRepository
	exec   *executor.Executor
}

func newFixture(t *testing.T, cal calendar.Calendar) *fixture {
	t.Helper()
	users := memory.NewUserRepository()
	svc := service.New(logger.Discard(), service.Repositories{
		Users:      users,
		Households: memory.NewHouseholdRepository(users),
		Tasks:      memory.NewTaskRepository(),
		Shopping:   memory.NewShoppingRepository(),
		Locations:  memory.NewLocationRepository(),
	}, service.WithClock(func() time.Time { return fixedNow }))
	events := memory.NewCalendarRepository()
	if cal == nil {
		cal = calendar.NewLocal(events)
	}
	return &fixture{svc: svc, events: events, exec: executor.New(svc, cal, logger.Discard(), time.UTC)}
}

func parse(text string) intent.Intent {
	return intent.NewRuleParser().Parse(text, fixedNow)
}

func str(s string) *string { return &s }

type failingCalendar struct{ err error }

func (f failingCalendar) CreateEvent(context.Context, calendar.NewEvent) (*models.CalendarEvent, error) {
	return nil, f.err
}

func TestExecuteEventFromUtterance(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.exec.Execute(context.Background(), hid, parse("Dentist tomorrow at 3pm"))
	require.NoError(t, err)

	created, ok := res.(*executor.EventCreated)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "Dentist", created.Event.Title)
	assert.Equal(t, time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC), created.Event.StartTime)
	assert.False(t, created.Event.AllDay)

	stored, err := fx.events.List(context.Background(), hid, repository.CalendarFilters{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestExecuteTaskWithoutDate(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.exec.Execute(context.Background(), hid, parse("buy milk"))
	require.NoError(t, err)

	created, ok := res.(*executor.TaskCreated)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "Milk", created.Task.Title)
	assert.Nil(t, created.Task.DueDate)
	assert.Empty(t, created.Task.DueTime)
}

func TestExecuteAllDayEventAndSavedLocation(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	gym, err := fx.svc.AddLocation(ctx, &models.SavedLocation{HouseholdID: hid, Name: "The Gym", Address: "1 Main St"})
	require.NoError(t, err)

	day := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	res, err := fx.exec.Execute(ctx, hid, &intent.Event{Title: str("Spin class"), Date: &day, Location: "Gym"})
	require.NoError(t, err)

	ev := res.(*executor.EventCreated).Event
	assert.True(t, ev.AllDay)
	assert.Equal(t, day, ev.StartTime)
	assert.Equal(t, "1 Main St", ev.Location)
	require.NotNil(t, ev.SavedLocationID)
	assert.Equal(t, gym.ID, *ev.SavedLocationID)
	assert.True(t, ev.SmartReminder)
}

func TestExecuteEventWithoutDateBecomesTask(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.exec.Execute(context.Background(), hid, &intent.Event{Title: str("Party"), Location: "Park"})
	require.NoError(t, err)
	assert.Equal(t, executor.KindTaskCreated, res.Kind())
}

func TestExecuteTodoFormatsDueTime(t *testing.T) {
	fx := newFixture(t, nil)
	due := civil.Date{Year: 2024, Month: 5, Day: 2}

	res, err := fx.exec.Execute(context.Background(), hid, &intent.Task{
		Todo: true, Title: str("Call plumber"), DueDate: &due, DueTime: &civil.Time{Hour: 9, Minute: 5},
		Recurring: true, Frequency: models.FrequencyWeekly, NeedsNotification: true,
	})
	require.NoError(t, err)

	task := res.(*executor.TaskCreated).Task
	assert.Equal(t, "09:05", task.DueTime)
	assert.Equal(t, due, *task.DueDate)
	assert.True(t, task.Recurring)
	assert.True(t, task.NeedsNotification)
}

func TestExecuteSkipsMissingTitles(t *testing.T) {
	fx := newFixture(t, nil)
	day := fixedNow

	for _, in := range []intent.Intent{
		&intent.Shopping{},
		&intent.Shopping{Title: str("  ")},
		&intent.Task{},
		&intent.Event{Date: &day},
	} {
		res, err := fx.exec.Execute(context.Background(), hid, in)
		require.NoError(t, err)
		require.IsType(t, &executor.Skipped{}, res)
		assert.Equal(t, "no title", res.(*executor.Skipped).Reason)
	}

	pending, err := fx.svc.PendingTasks(context.Background(), hid)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExecuteShopping(t *testing.T) {
	fx := newFixture(t, nil)
	qty := 2.0

	res, err := fx.exec.Execute(context.Background(), hid, &intent.Shopping{Title: str("Apples"), Quantity: &qty, Unit: "lb"})
	require.NoError(t, err)

	item := res.(*executor.ShoppingAdded).Item
	assert.Equal(t, "Apples", item.Name)
	assert.Equal(t, 2.0, *item.Quantity)
	assert.Equal(t, "lb", item.Unit)
	assert.Equal(t, "Produce", item.Category)
}

func TestExecuteComplete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	for _, title := range []string{"Take out trash", "Take out recycling", "Walk the dog"} {
		_, err := fx.svc.CreateTask(ctx, &models.Task{HouseholdID: hid, Title: title})
		require.NoError(t, err)
	}

	t.Run("ambiguous leaves tasks alone", func(t *testing.T) {
		res, err := fx.exec.Execute(ctx, hid, &intent.Complete{Query: "take out"})
		require.NoError(t, err)
		amb, ok := res.(*executor.Ambiguous)
		require.True(t, ok, "got %T", res)
		assert.Len(t, amb.Matches, 2)

		pending, err := fx.svc.PendingTasks(ctx, hid)
		require.NoError(t, err)
		assert.Len(t, pending, 3)
	})

	t.Run("not found", func(t *testing.T) {
		res, err := fx.exec.Execute(ctx, hid, &intent.Complete{Query: "laundry"})
		require.NoError(t, err)
		assert.Equal(t, executor.KindNotFound, res.Kind())
	})

	t.Run("single match completes", func(t *testing.T) {
		res, err := fx.exec.Execute(ctx, hid, parse("done walk the dog"))
		require.NoError(t, err)
		done, ok := res.(*executor.Completed)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, "Walk the dog", done.Task.Title)
		assert.True(t, done.Task.Completed)

		// Completed tasks are no longer candidates.
		res, err = fx.exec.Execute(ctx, hid, &intent.Complete{Query: "walk the dog"})
		require.NoError(t, err)
		assert.Equal(t, executor.KindNotFound, res.Kind())
	})

	t.Run("list", func(t *testing.T) {
		res, err := fx.exec.Execute(ctx, hid, parse("show my tasks"))
		require.NoError(t, err)
		list, ok := res.(*executor.TaskList)
		require.True(t, ok, "got %T", res)
		assert.Len(t, list.Tasks, 2)
	})
}

func TestExecuteUnknown(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.exec.Execute(context.Background(), hid, &intent.Unknown{RawText: "???"})
	require.NoError(t, err)
	assert.Equal(t, executor.KindUnknown, res.Kind())
}

func TestExecuteCalendarErrorsPropagate(t *testing.T) {
	fx := newFixture(t, failingCalendar{err: calendar.ErrUnauthorized})

	_, err := fx.exec.Execute(context.Background(), hid, parse("Dentist tomorrow at 3pm"))
	assert.ErrorIs(t, err, calendar.ErrUnauthorized)
}

func TestExecuteBatch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, failingCalendar{err: errors.New("calendar down")})

	report := fx.exec.ExecuteBatch(ctx, hid, []intent.Intent{
		&intent.Shopping{Title: str("Eggs")},
		parse("Dentist tomorrow at 3pm"),
		&intent.Shopping{},
		&intent.Shopping{Title: str("Bread")},
	})

	assert.NotEmpty(t, report.ID)
	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, executor.KindShoppingAdded, report.Outcomes[0].Result.Kind())
	assert.Error(t, report.Outcomes[1].Err)
	assert.Nil(t, report.Outcomes[1].Result)
	assert.Equal(t, executor.KindSkipped, report.Outcomes[2].Result.Kind())
	assert.Equal(t, executor.KindShoppingAdded, report.Outcomes[3].Result.Kind())

	var merr *multierror.Error
	require.ErrorAs(t, report.Err(), &merr)
	assert.Len(t, merr.Errors, 1)

	items, err := fx.svc.ShoppingList(ctx, hid, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Eggs", items[0].Name)
	assert.Equal(t, "Bread", items[1].Name)

	msgs := report.Messages()
	assert.Contains(t, msgs[1], "calendar down")
	assert.Contains(t, msgs[2], "no title")
}

func TestExecuteBatchAllSucceed(t *testing.T) {
	fx := newFixture(t, nil)

	report := fx.exec.ExecuteBatch(context.Background(), hid, []intent.Intent{&intent.List{}})
	assert.Zero(t, report.Failed)
	assert.NoError(t, report.Err())
}

func TestResultJSON(t *testing.T) {
	b, err := executor.MarshalResult(&executor.Skipped{Reason: "no title"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"skipped","message":"⚠️ Skipped: no title","data":{"reason":"no title"}}`, string(b))
}
