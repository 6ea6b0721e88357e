package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/server/handler"
)

// RequestTimeout bounds a single request, including a full review with retries.
const RequestTimeout = 5 * time.Minute

// NewRouter creates and configures a new HTTP router with middleware and API routes.
// webhook may be nil when the GitHub App is not configured.
func NewRouter(cfg config.ServerConfig, api *handler.APIHandler, webhook *handler.WebhookHandler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(newRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst).Middleware)
		}
		r.Get("/health", api.Health)
		r.Post("/review", api.Review)
		r.Get("/stats", api.Stats)
		r.Get("/reviews", api.Reviews)
	})

	if webhook != nil {
		r.Post("/api/v1/webhook/github", webhook.Handle)
	}

	return r
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
