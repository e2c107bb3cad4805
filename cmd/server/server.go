package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

// run starts the background scheduler and the HTTP server, then blocks until
// a shutdown signal arrives. Shutdown drains in-flight HTTP requests first,
// then waits for any running scheduler cycle to finish.
func (app *application) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		app.logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := app.scheduler.Stop(shutdownCtx); err != nil {
		app.logger.Error("scheduler shutdown incomplete", slog.String("error", err.Error()))
	}

	app.logger.Info("Server stopped")
	return nil
}
