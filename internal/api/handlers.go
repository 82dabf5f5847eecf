// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinemamaya/internal/logging"
	"github.com/tomtom215/cinemamaya/internal/recommend"
	"github.com/tomtom215/cinemamaya/internal/validation"
)

// healthPingTimeout bounds the database check of the health endpoint.
const healthPingTimeout = 2 * time.Second

// Ranker is the engine surface the handlers depend on.
type Ranker interface {
	Rank(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Profile(ctx context.Context, userID int64) (*recommend.Profile, error)
	TrendingAmongFriends(ctx context.Context, userID int64, limit int) ([]recommend.FriendTrend, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerStater reports the signal store circuit breaker state.
type BreakerStater interface {
	State() string
}

// HandlerConfig holds the optional collaborators of a Handler.
type HandlerConfig struct {
	// PosterBaseURL prefixes poster paths in recommendation items.
	PosterBaseURL string

	// Version is reported by the health endpoint.
	Version string

	// DB is pinged by the health endpoint. Nil skips the check.
	DB Pinger

	// Breaker is reported by the health endpoint. Nil skips it.
	Breaker BreakerStater
}

// Handler serves the ranking endpoints.
type Handler struct {
	ranker    Ranker
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates a handler over ranker.
func NewHandler(ranker Ranker, cfg HandlerConfig) *Handler {
	return &Handler{
		ranker:    ranker,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// userQuery is the validated form of the user-scoped path and query parameters.
type userQuery struct {
	UserID int64 `validate:"gt=0"`
	Limit  int   `validate:"gte=0"`
}

// parseUserQuery reads {userID} and ?limit. A missing limit is zero.
func parseUserQuery(r *http.Request) (userQuery, *validation.RequestValidationError) {
	var q userQuery
	var fieldErrs []validation.FieldError

	raw := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fieldErrs = append(fieldErrs, validation.FieldError{
			Field:   "user_id",
			Tag:     "int",
			Value:   raw,
			Message: "user_id must be an integer",
		})
	}
	q.UserID = userID

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrs = append(fieldErrs, validation.FieldError{
				Field:   "limit",
				Tag:     "int",
				Value:   raw,
				Message: "limit must be an integer",
			})
		}
		q.Limit = limit
	}

	if len(fieldErrs) > 0 {
		return q, validation.NewRequestValidationError(fieldErrs...)
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return q, verr
	}
	return q, nil
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, verr := parseUserQuery(r)
	if verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	resp, err := h.ranker.Rank(r.Context(), recommend.Request{
		UserID:    q.UserID,
		TopN:      q.Limit,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, NewRecommendations(resp, h.cfg.PosterBaseURL), start)
}

// TasteProfile handles GET /api/v1/users/{userID}/taste-profile.
func (h *Handler) TasteProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, verr := parseUserQuery(r)
	if verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	profile, err := h.ranker.Profile(r.Context(), q.UserID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, profile, start)
}

// FriendsTrending handles GET /api/v1/users/{userID}/friends/trending.
func (h *Handler) FriendsTrending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, verr := parseUserQuery(r)
	if verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	trends, err := h.ranker.TrendingAmongFriends(r.Context(), q.UserID, q.Limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, trends, start)
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version,omitempty"`
	DatabaseConnected bool    `json:"database_connected"`
	BreakerState      string  `json:"breaker_state,omitempty"`
	Uptime            float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health. A reachable database and a breaker that
// is not open report "healthy", anything else "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := HealthStatus{
		Status:            "healthy",
		Version:           h.cfg.Version,
		DatabaseConnected: true,
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	if h.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.cfg.DB.Ping(ctx); err != nil {
			status.DatabaseConnected = false
			status.Status = "degraded"
			logging.Ctx(r.Context()).Warn().Err(err).Msg("health check: database unreachable")
		}
	}
	if h.cfg.Breaker != nil {
		status.BreakerState = h.cfg.Breaker.State()
		if status.BreakerState == "open" {
			status.Status = "degraded"
		}
	}

	respondSuccess(w, r, status, start)
}

// NotFound is the JSON 404 used by the router.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, &APIError{
		Code:    CodeNotFound,
		Message: "Resource not found",
	}, nil)
}

// MethodNotAllowed is the JSON 405 used by the router.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, &APIError{
		Code:    CodeMethodNotAllowed,
		Message: "Method not allowed",
	}, nil)
}

// rateLimited is the JSON 429 written by httprate.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusTooManyRequests, &APIError{
		Code:    CodeRateLimited,
		Message: "Too many requests",
	}, nil)
}
