// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"

	service "github.com/okian/neodb/internal/app"
	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Inspect finds a NEO by designation or, when designation is empty, by name.
	Inspect(ctx context.Context, designation, name string) (*model.NearEarthObject, error)

	// Query returns the approaches matching c, capped at limit when positive.
	Query(ctx context.Context, c filter.Criteria, limit int) (iter.Seq[*model.CloseApproach], error)

	// MaxLimit is the largest limit Query accepts; zero means uncapped.
	MaxLimit() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	neoHandler        *NEOHandler
	approachesHandler *ApproachesHandler

	rateLimit   RateLimitConfig
	corsOrigins []string
	rateLimiter *RateLimiter
	cors        *CORSMiddleware
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.neoHandler = NewNEOHandler(deps)
	s.approachesHandler = NewApproachesHandler(deps, s.logger)
	if s.rateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(s.rateLimit, s.logger)
	}
	if len(s.corsOrigins) > 0 {
		s.cors = NewCORS(s.corsOrigins, s.logger)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /neos/{designation}", MetricsMiddleware(s.neoHandler.HandleGetByDesignation, "neo"))
	mux.HandleFunc("GET /neos", MetricsMiddleware(s.neoHandler.HandleGetByName, "neos"))
	mux.HandleFunc("GET /approaches", MetricsMiddleware(s.approachesHandler.HandleQuery, "approaches"))
}

// Handler wraps mux with the request-id, rate-limit and CORS middleware
// configured on the server. The rate limiter's client sweep stops with ctx.
func (s *Server) Handler(ctx context.Context, mux *http.ServeMux) http.Handler {
	var h http.Handler = mux
	if s.rateLimiter != nil {
		s.rateLimiter.Start(ctx)
		h = s.rateLimiter.Middleware(h)
	}
	h = RequestID(h)
	if s.cors != nil {
		h = s.cors.Middleware(h)
	}
	return h
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrLimitExceeded):
		writeError(w, http.StatusBadRequest, "limit_exceeded", err)
	case errors.Is(err, service.ErrInvalidLookup):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
