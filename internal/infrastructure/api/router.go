package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RouterDeps holds everything the HTTP surface needs
type RouterDeps struct {
	Accounts       AccountAuthenticator
	Authorizer     CredentialAuthorizer
	Webhooks       WebhookReceiver
	MetricsHandler http.Handler
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds the chi router for the gateway
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Provider callbacks carry no gateway credentials. The shorter routes let
	// the router reject incomplete paths with missing_webhook_params.
	webhooks := NewWebhookHandler(deps.Webhooks, logger)
	r.Method(http.MethodPost, "/webhook", webhooks)
	r.Method(http.MethodPost, "/webhook/{environmentUuid}", webhooks)
	r.Method(http.MethodPost, "/webhook/{environmentUuid}/{providerConfigKey}", webhooks)

	auth := NewAuthHandler(deps.Authorizer, logger)
	r.Group(func(r chi.Router) {
		r.Use(environmentAuth(deps.Accounts, logger))
		r.Post("/api-auth/api-key", auth.APIKey)
		r.Post("/api-auth/api-key/{providerConfigKey}", auth.APIKey)
		r.Post("/api-auth/basic", auth.Basic)
		r.Post("/api-auth/basic/{providerConfigKey}", auth.Basic)
	})

	return r
}
