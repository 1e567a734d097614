package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/api"
	"github.com/Kerhoff/hearth/internal/calendar"
	"github.com/Kerhoff/hearth/internal/config"
	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/handlers"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/llm"
	"github.com/Kerhoff/hearth/internal/metrics"
	"github.com/Kerhoff/hearth/internal/realtime"
	"github.com/Kerhoff/hearth/internal/recipe"
	"github.com/Kerhoff/hearth/internal/repository/postgres"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
	"github.com/Kerhoff/hearth/pkg/logger"
)

const webhookPath = "/telegram/webhook"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting Hearth...")

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Database
	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, cfg.DBConnectWait, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	calendarRepo := postgres.NewCalendarRepository(db.DB)
	repos := service.Repositories{
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
	}

	// Service layer
	opts := []service.Option{service.WithLocation(cfg.Location())}
	if cfg.ClipTimeout > 0 {
		opts = append(opts, service.WithClipper(recipe.NewClipper(cfg.ClipTimeout)))
	}
	svc := service.New(l, repos, opts...)

	// Intent parsing and execution
	backend, closeBackend := newBackend(ctx, cfg, l)
	defer closeBackend()
	parser := intent.NewParser(backend, l, intent.WithLocation(cfg.Location()))

	localCal := calendar.NewLocal(calendarRepo)
	var cal calendar.Calendar = localCal
	if cfg.GoogleCalendarEnabled() {
		gsvc, err := calendar.NewGoogleService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			l.Fatalf("Failed to create Google Calendar client: %v", err)
		}
		cal = calendar.NewGoogle(gsvc, cfg.GoogleCalendarID, calendarRepo)
		l.WithField("calendar_id", cfg.GoogleCalendarID).Info("Events go to Google Calendar")
	}
	exec := executor.New(svc, cal, l, cfg.Location())

	// Live updates
	hub := realtime.NewHub(16, l)
	listener, err := realtime.NewListener(cfg.DatabaseURL, l)
	if err != nil {
		l.Warnf("Live updates disabled: %v", err)
		hub = nil
	} else {
		defer listener.Close()
		go hub.Run(ctx, listener)
	}

	root := mux.NewRouter()

	// Telegram bot
	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		registerHandlers(bot, svc, parser, exec, localCal, l)
		if cfg.WebhookURL != "" {
			if err := bot.SetWebhook(cfg.WebhookURL + webhookPath); err != nil {
				l.Fatalf("Failed to set webhook: %v", err)
			}
			root.Handle(webhookPath, bot).Methods(http.MethodPost)
		}
	} else {
		l.Warn("TELEGRAM_TOKEN not set, running the API only")
	}
	root.PathPrefix("/").Handler(api.NewServer(svc, parser, exec, hub, l).Handler())

	// HTTP servers
	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: root, ReadHeaderTimeout: 10 * time.Second}
	metricsServer := &http.Server{Addr: ":" + cfg.PrometheusPort, Handler: metrics.Handler(), ReadHeaderTimeout: 10 * time.Second}
	for _, srv := range []*http.Server{httpServer, metricsServer} {
		go func(srv *http.Server) {
			l.Infof("HTTP server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Errorf("HTTP server error: %v", err)
			}
		}(srv)
	}

	if bot != nil {
		go svc.StartDueNotifier(ctx, cfg.NotifyInterval, bot.Notify)
		if cfg.WebhookURL == "" {
			go func() {
				if err := bot.Start(ctx); err != nil {
					l.Errorf("Bot error: %v", err)
				}
			}()
		}
	}

	l.Info("Hearth started successfully")

	<-ctx.Done()
	l.Info("Received shutdown signal...")

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	l.Info("Shutting down HTTP servers...")
	httpServer.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)
	if bot != nil {
		bot.Wait()
	}

	l.Info("Hearth stopped")
}

// newBackend picks the AI tier: the household worker, then direct Gemini,
// then none, in which case only the rule parser runs.
func newBackend(ctx context.Context, cfg *config.Config, l *logrus.Logger) (llm.Client, func()) {
	switch {
	case cfg.AIWorkerURL != "":
		l.WithField("url", cfg.AIWorkerURL).Info("AI parsing via worker")
		return llm.NewWorkerClient(cfg.AIWorkerURL, cfg.AIWorkerSecret, cfg.AITimeout), func() {}
	case cfg.GeminiAPIKey != "":
		g, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			l.Warnf("Gemini unavailable, using rules only: %v", err)
			return nil, func() {}
		}
		l.WithField("model", cfg.GeminiModel).Info("AI parsing via Gemini")
		return g, func() { g.Close() }
	}
	l.Info("No AI backend configured, using rules only")
	return nil, func() {}
}

func registerHandlers(bot *telegram.Bot, svc *service.Service, parser *intent.Parser, exec *executor.Executor, cal handlers.Upcoming, l *logrus.Logger) {
	bot.RegisterCommand("start", handlers.NewStartHandler(svc, l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))

	// Task handlers
	bot.RegisterCommand("add", handlers.NewAddHandler(svc, parser, exec, l))
	bot.RegisterCommand("tasks", handlers.NewTasksHandler(svc, l))
	bot.RegisterCommand("done", handlers.NewDoneHandler(svc, exec, l))
	bot.RegisterCommand("delete", handlers.NewDeleteHandler(svc, l))
	bot.RegisterCommand("remind", handlers.NewRemindHandler(svc, parser, exec, l))
	bot.RegisterCommand("reminders", handlers.NewRemindersListHandler(svc, l))

	// Calendar handlers
	bot.RegisterCommand("event", handlers.NewCalendarAddHandler(svc, exec, l))
	bot.RegisterCommand("events", handlers.NewCalendarListHandler(svc, cal, l))
	bot.RegisterCommand("place", handlers.NewPlaceAddHandler(svc, l))
	bot.RegisterCommand("places", handlers.NewPlacesHandler(svc, l))

	// Shopping handlers
	bot.RegisterCommand("buy", handlers.NewBuyAddHandler(svc, l))
	bot.RegisterCommand("shop", handlers.NewShopListHandler(svc, l))
	bot.RegisterCommand("bought", handlers.NewBoughtHandler(svc, l))
	bot.RegisterCommand("shopclear", handlers.NewShopClearHandler(svc, l))

	// Kitchen handlers
	recipeHandler := handlers.NewRecipeHandler(svc, parser, l)
	bot.RegisterCommand("have", handlers.NewHaveHandler(svc, l))
	bot.RegisterCommand("use", handlers.NewUseHandler(svc, l))
	bot.RegisterCommand("pantry", handlers.NewPantryHandler(svc, l))
	bot.RegisterCommand("expiring", handlers.NewExpiringHandler(svc, l))
	bot.RegisterCommand("recipe", recipeHandler)
	bot.RegisterCommand("clip", recipeHandler)
	bot.RegisterCommand("recipes", handlers.NewRecipesHandler(svc, l))

	// Meal plan handlers
	planner := handlers.NewPlanner(svc, l)
	bot.RegisterCommand("plan", telegram.CommandFunc(planner.Plan))
	bot.RegisterCommand("swap", telegram.CommandFunc(planner.Swap))
	bot.RegisterCommand("lock", telegram.CommandFunc(planner.Lock))
	bot.RegisterCommand("accept", telegram.CommandFunc(planner.Accept))
	bot.RegisterCommand("grocery", telegram.CommandFunc(planner.Grocery))
	bot.RegisterCallback("plan", planner)

	bot.SetFallback(handlers.NewFreeTextHandler(svc, parser, exec, bot.Username(), l))
}
