// Command hearthctl inspects and seeds Hearth households from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/hearth/internal/config"
	"github.com/Kerhoff/hearth/internal/repository/memory"
	"github.com/Kerhoff/hearth/internal/repository/postgres"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/pkg/logger"
)

var (
	dbFlag       string
	tzFlag       string
	logLevelFlag string
	rootCmd      = &cobra.Command{
		Use:           "hearthctl",
		Short:         "Inspect and seed Hearth households",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", os.Getenv("DATABASE_URL"), "Postgres URL (defaults to $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&tzFlag, "tz", "UTC", "Time zone for dates")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	l := logger.New(logLevelFlag, "text")
	l.SetOutput(os.Stderr)
	return l
}

func location() (*time.Location, error) {
	loc, err := time.LoadLocation(tzFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", tzFlag, err)
	}
	return loc, nil
}

// parseWeek reads a YYYY-MM-DD flag, defaulting to today.
func parseWeek(s string, loc *time.Location) (civil.Date, error) {
	if s == "" {
		return civil.DateOf(time.Now().In(loc)), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid --week %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// backend is an open service plus whatever must be closed after it.
type backend struct {
	svc   *service.Service
	close func()
}

func openPostgres(ctx context.Context, l *logrus.Logger, loc *time.Location) (*backend, *config.Database, error) {
	if dbFlag == "" {
		return nil, nil, fmt.Errorf("--db or DATABASE_URL is required")
	}
	db, err := config.NewDatabase(ctx, dbFlag, 10*time.Second, l)
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(l, service.Repositories{
		Users:      postgres.NewUserRepository(db.DB),
		Households: postgres.NewHouseholdRepository(db.DB),
		Tasks:      postgres.NewTaskRepository(db.DB),
		Shopping:   postgres.NewShoppingRepository(db.DB),
		Inventory:  postgres.NewInventoryRepository(db.DB),
		Recipes:    postgres.NewRecipeRepository(db.DB),
		Locations:  postgres.NewLocationRepository(db.DB),
		MealPlans:  postgres.NewMealPlanRepository(db.DB),
		Categories: postgres.NewCategoryRepository(db.DB),
		Agenda:     postgres.NewAgendaRepository(db.DB),
	}, service.WithLocation(loc))
	return &backend{svc: svc, close: func() { db.Close() }}, db, nil
}

func newMemoryService(l *logrus.Logger, loc *time.Location, now func() time.Time) *service.Service {
	users := memory.NewUserRepository()
	return service.New(l, service.Repositories{
		Users:      users,
		Households: memory.NewHouseholdRepository(users),
		Tasks:      memory.NewTaskRepository(),
		Shopping:   memory.NewShoppingRepository(),
		Inventory:  memory.NewInventoryRepository(),
		Recipes:    memory.NewRecipeRepository(),
		Locations:  memory.NewLocationRepository(),
		MealPlans:  memory.NewMealPlanRepository(),
		Categories: memory.NewCategoryRepository(),
		Agenda:     memory.NewAgendaRepository(),
	}, service.WithLocation(loc), service.WithClock(now))
}

// openHousehold resolves the household a read command works on. With a
// fixtures file the data lives in memory and the household id is ignored.
func openHousehold(ctx context.Context, householdID int64, fixtures string) (*backend, int64, error) {
	l := newLogger()
	loc, err := location()
	if err != nil {
		return nil, 0, err
	}

	if fixtures != "" {
		fx, err := LoadFixturesFile(fixtures)
		if err != nil {
			return nil, 0, err
		}
		svc := newMemoryService(l, loc, time.Now)
		hh, err := svc.EnsureHousehold(ctx, 0, "Fixtures")
		if err != nil {
			return nil, 0, err
		}
		if _, err := fx.Apply(ctx, svc, hh.ID); err != nil {
			return nil, 0, err
		}
		return &backend{svc: svc, close: func() {}}, hh.ID, nil
	}

	if householdID == 0 {
		return nil, 0, fmt.Errorf("--household or --fixtures is required")
	}
	b, _, err := openPostgres(ctx, l, loc)
	if err != nil {
		return nil, 0, err
	}
	hh, err := b.svc.Households.GetByID(ctx, householdID)
	if err != nil {
		b.close()
		return nil, 0, err
	}
	if hh == nil {
		b.close()
		return nil, 0, fmt.Errorf("household %d not found", householdID)
	}
	return b, hh.ID, nil
}
