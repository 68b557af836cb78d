// Package router assembles the HTTP surface of the concierge.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brooklynmaids/sms-concierge/internal/http/handlers"
	httpmiddleware "github.com/brooklynmaids/sms-concierge/internal/http/middleware"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	Webhooks       *handlers.WebhookHandler
	Ops            *handlers.OpsHandler
	MetricsHandler http.Handler
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Post("/webhook/incoming-message", cfg.Webhooks.Incoming)

	r.Get("/health", cfg.Ops.Health)
	r.Get("/test", cfg.Ops.Test)
	r.Post("/test-ai-response", cfg.Ops.TestAIResponse)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
