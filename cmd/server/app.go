package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tasknest/tasknest-api/internal/api"
	authmiddleware "github.com/tasknest/tasknest-api/internal/api/middleware"
	"github.com/tasknest/tasknest-api/internal/config"
	"github.com/tasknest/tasknest-api/internal/platform/logger"
	"github.com/tasknest/tasknest-api/internal/platform/mailer"
	"github.com/tasknest/tasknest-api/internal/platform/postgres"
	"github.com/tasknest/tasknest-api/internal/scheduler"
	"github.com/tasknest/tasknest-api/internal/service/auth"
	"github.com/tasknest/tasknest-api/internal/store"
)

// application bundles the long-lived pieces of the server: configuration,
// the shared database handle, the HTTP handlers, and the background
// scheduler. newApplication builds it in dependency order.
type application struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB

	authHandler      *api.AuthHandler
	taskHandler      *api.TaskHandler
	subtaskHandler   *api.SubtaskHandler
	analyticsHandler *api.AnalyticsHandler
	authMiddleware   *authmiddleware.AuthMiddleware

	scheduler *scheduler.Scheduler
}

// newApplication loads configuration and wires every component together.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Configuration loaded successfully",
		slog.Int("server_port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, log)
	taskStore := postgres.NewPostgresTaskStore(db, log)
	subtaskStore := postgres.NewPostgresSubtaskStore(db, log)
	statsStore := postgres.NewPostgresStatsStore(db, log)

	jwtService := auth.NewJWTService(cfg.Auth)
	passwordVerifier := auth.NewBcryptVerifier()

	outbound, err := mailer.New(cfg.Mail, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up mailer: %w", err)
	}

	runTx := func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}

	matcher := scheduler.WindowMatcher{Lookahead: cfg.Scheduler.Lookahead}
	clock := scheduler.SystemClock()
	generator := scheduler.NewOccurrenceGenerator(taskStore, userStore, clock, log)
	dispatcher := scheduler.NewReminderDispatcher(taskStore, userStore, outbound, matcher, clock, log)

	app := &application{
		cfg:    cfg,
		logger: log,
		db:     db,

		authHandler:      api.NewAuthHandler(userStore, jwtService, passwordVerifier, outbound, cfg.Auth, cfg.Mail.FrontendURL),
		taskHandler:      api.NewTaskHandler(taskStore),
		subtaskHandler:   api.NewSubtaskHandler(subtaskStore, taskStore, runTx),
		analyticsHandler: api.NewAnalyticsHandler(statsStore),
		authMiddleware:   authmiddleware.NewAuthMiddleware(jwtService),

		scheduler: scheduler.New(cfg.Scheduler, generator, dispatcher, log),
	}
	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
