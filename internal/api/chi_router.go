// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/middleware"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Middleware   *ChiMiddlewareConfig
	MaxBodyBytes int64
}

// NewRouter wires the API routes under /api/v1 and /metrics.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mw := NewChiMiddleware(cfg.Middleware)
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.With(mw.RateLimitLogin()).Post("/auth/login", h.Login)

			r.Post("/users", h.RegisterUser)
			r.Route("/users/{email}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Post("/ratings", h.RateMovie)
				r.Post("/favorite-genres", h.AddFavoriteGenres)
				r.Get("/recommendations", h.GetRecommendations)
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/genres", h.Genres)
				r.Get("/items/{title}/similar", h.SimilarItems)
				r.Post("/reload", h.ReloadCatalog)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}
