package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tasknest/tasknest-api/internal/api/middleware"
)

// setupRouter configures the HTTP routes. Authentication endpoints that mint
// or redeem credentials stay public; everything else requires a valid access
// token.
func setupRouter(app *application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.authHandler.Register)
			r.Post("/login", app.authHandler.Login)
			r.Post("/refresh", app.authHandler.RefreshToken)
			r.Post("/forgot-password", app.authHandler.ForgotPassword)
			r.Post("/reset-password", app.authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(app.authMiddleware.Authenticate)
				r.Get("/me", app.authHandler.Me)
				r.Put("/preferences", app.authHandler.UpdatePreferences)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", app.taskHandler.Create)
				r.Get("/", app.taskHandler.List)
				r.Get("/{id}", app.taskHandler.Get)
				r.Put("/{id}", app.taskHandler.Update)
				r.Delete("/{id}", app.taskHandler.Delete)

				r.Post("/{id}/subtasks", app.subtaskHandler.Create)
				r.Get("/{id}/subtasks", app.subtaskHandler.List)
			})

			r.Route("/subtasks", func(r chi.Router) {
				r.Put("/{id}", app.subtaskHandler.Update)
				r.Delete("/{id}", app.subtaskHandler.Delete)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/status-summary", app.analyticsHandler.StatusSummary)
				r.Get("/completion-trends", app.analyticsHandler.CompletionTrends)
				r.Get("/priority-breakdown", app.analyticsHandler.PriorityBreakdown)
				r.Get("/overdue-analysis", app.analyticsHandler.OverdueAnalysis)
			})
		})
	})

	return r
}
