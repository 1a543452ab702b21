package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/example/eventd/internal/auth"
	"github.com/example/eventd/internal/config"
	"github.com/example/eventd/internal/http/ratelimit"
	"github.com/example/eventd/internal/metrics"
	"github.com/example/eventd/internal/store"
)

// NewRouter wires all HTTP routes for the events API.
func NewRouter(cfg *config.Config, store *store.Store, authService *auth.Service) http.Handler {
	r := chi.NewRouter()

	// Auth endpoints: 5 requests per second, burst of 10
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)
	// API endpoints: 20 requests per second, burst of 50
	apiRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(20), 50, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	h := NewHandler(store, authService)

	r.Route("/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Post("/register", h.Register)
		r.Post("/token", h.Token)
		r.With(authService.RequireAuth).Get("/me", h.Me)
	})

	r.Route("/events", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(authService.RequireAuth)

		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)

		r.Route("/{id}/share", func(r chi.Router) {
			r.Use(h.requireOwner)
			r.Get("/", h.ListShares)
			r.Post("/{userID}/{permission}", h.ShareEvent)
			r.Delete("/{userID}/{permission}", h.RevokeShare)
		})
	})

	return r
}
