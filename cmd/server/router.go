package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paperboy-dev/paperboy-api/internal/api"
	apiMiddleware "github.com/paperboy-dev/paperboy-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceID)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	digestHandler := api.NewDigestHandler(app.subscriberStore, app.pipeline)
	historyHandler := api.NewHistoryHandler(app.digestStore, app.paperStore)
	mailConfigHandler := api.NewMailConfigHandler(app.mailConfigStore, app.db)

	r.Route("/api", func(r chi.Router) {
		// All API routes require a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Manual digest trigger
			r.Post("/digests/test", digestHandler.TriggerDigest)

			// Digest history for the authenticated subscriber
			r.Get("/me/digests", historyHandler.ListDigests)
			r.Get("/me/digests/{digestID}", historyHandler.GetDigest)

			// Mail transport administration
			r.Get("/admin/mail-config", mailConfigHandler.GetMailConfig)
			r.Put("/admin/mail-config", mailConfigHandler.UpdateMailConfig)
		})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
