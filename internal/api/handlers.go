// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/space"
	"github.com/tomtom215/marquee/internal/service"
)

// Service is the application layer the handlers call.
type Service interface {
	RegisterUser(ctx context.Context, in service.RegisterInput) (*models.UserProfile, error)
	Authenticate(ctx context.Context, in service.LoginInput) (*models.UserProfile, error)
	GetUser(ctx context.Context, email string) (*models.UserProfile, error)
	RateMovie(ctx context.Context, email string, in service.RatingInput) (*models.UserProfile, error)
	AddFavoriteGenres(ctx context.Context, email string, in service.FavoriteGenresInput) (*models.UserProfile, error)
	GetRecommendations(ctx context.Context, email string, req recommend.Request) (*recommend.Response, error)
	SimilarItems(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Genres() []string
	ReloadCatalog(ctx context.Context) (*service.ReloadResult, error)
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	svc       Service
	startTime time.Time
	version   string
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc Service, version string) *Handler {
	return &Handler{svc: svc, startTime: time.Now(), version: version}
}

// emailParam returns the unescaped {email} path segment.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return models.NormalizeEmail(email)
	}
	return models.NormalizeEmail(raw)
}

// RegisterUser handles POST /api/v1/users
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.svc.RegisterUser(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, p.Public(), start)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var in service.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.svc.Authenticate(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, p.Public(), start)
}

// GetUser handles GET /api/v1/users/{email}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, err := h.svc.GetUser(r.Context(), emailParam(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, p.Public(), start)
}

// RateMovie handles POST /api/v1/users/{email}/ratings
func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	email := emailParam(r)
	var in service.RatingInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx := logging.ContextWithUser(r.Context(), email)
	p, err := h.svc.RateMovie(ctx, email, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, p.Public(), start)
}

// AddFavoriteGenres handles POST /api/v1/users/{email}/favorite-genres
func (h *Handler) AddFavoriteGenres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	email := emailParam(r)
	var in service.FavoriteGenresInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx := logging.ContextWithUser(r.Context(), email)
	p, err := h.svc.AddFavoriteGenres(ctx, email, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, p.Public(), start)
}

// GetRecommendations handles
// GET /api/v1/users/{email}/recommendations?mode=&title=&space=&top_n=
//
// mode defaults to by-profile.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	email := emailParam(r)

	req, err := parseRecommendRequest(r, recommend.ModeByProfile)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	ctx := logging.ContextWithUser(r.Context(), email)
	resp, err := h.svc.GetRecommendations(ctx, email, req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, resp, start)
}

// SimilarItems handles GET /api/v1/catalog/items/{title}/similar?space=&top_n=
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := parseRecommendRequest(r, recommend.ModeByItem)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil {
		respondServiceError(w, r, models.NewValidationError("title", chi.URLParam(r, "title"), "invalid path encoding"))
		return
	}
	req.Title = title

	resp, err := h.svc.SimilarItems(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, resp, start)
}

// Genres handles GET /api/v1/catalog/genres
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"genres": h.svc.Genres()}, time.Now())
}

// ReloadCatalog handles POST /api/v1/catalog/reload
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := h.svc.ReloadCatalog(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, res, start)
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime_seconds"`
	Store   string `json:"store"`
	Genres  int    `json:"genres"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  int64(time.Since(h.startTime).Seconds()),
		Store:   "ok",
		Genres:  len(h.svc.Genres()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := http.StatusOK
	if err := h.svc.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("health check: user store unavailable")
		resp.Status = "degraded"
		resp.Store = "unavailable"
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, status, resp, start)
}

// parseRecommendRequest reads mode, title, space and top_n from the query.
func parseRecommendRequest(r *http.Request, defaultMode recommend.Mode) (recommend.Request, error) {
	q := r.URL.Query()
	req := recommend.Request{
		Mode:      defaultMode,
		Title:     q.Get("title"),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	if m := q.Get("mode"); m != "" {
		mode, err := recommend.ParseMode(m)
		if err != nil {
			return req, models.NewValidationError("mode", m, "must be one of by-item, by-profile, by-high-ratings, genre-score")
		}
		req.Mode = mode
	}
	if s := q.Get("space"); s != "" {
		mode, err := space.ParseMode(s)
		if err != nil {
			return req, models.NewValidationError("space", s, "must be %q or %q", space.ModeCategorical, space.ModeLexical)
		}
		req.Space = mode
	}

	topN, err := getIntParam(r, "top_n", 0)
	if err != nil {
		return req, err
	}
	if topN < 0 || (q.Has("top_n") && topN == 0) {
		return req, models.NewValidationError("top_n", topN, "must be at least 1")
	}
	req.TopN = topN

	if req.Mode == recommend.ModeByItem && req.Title == "" && defaultMode != recommend.ModeByItem {
		return req, models.NewValidationError("title", "", "title is required for mode by-item")
	}
	return req, nil
}
