// Package main implements the entry point for the TaskNest API server:
// a personal task manager backend with recurring task generation and
// due-soon reminder delivery.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	app, err := newApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := runMigrations(app.db, app.logger); err != nil {
		app.logger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *migrateOnly {
		fmt.Println("Migrations applied")
		return
	}

	if err := app.run(); err != nil {
		app.logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
