// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/fbstats/internal/adapters/events"
	"github.com/okian/fbstats/internal/domain/model"
)

// StatsSource serves the unified player records.
type StatsSource interface {
	Stats(ctx context.Context) ([]model.Record, error)
}

// EventsSource serves upcoming competitions.
type EventsSource interface {
	Competitions(ctx context.Context) ([]events.Competition, error)
}

// StatusProvider exposes service bookkeeping.
type StatusProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	allowedOrigin string

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	statusHandler *StatusHandler
	eventsHandler *EventsHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigin sets the Access-Control-Allow-Origin value.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.allowedOrigin = origin
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(stats StatsSource, evs EventsSource, status StatusProvider, opts ...Option) *Server {
	s := &Server{
		allowedOrigin: "*",
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(stats),
		statusHandler: NewStatusHandler(status),
		eventsHandler: NewEventsHandler(evs),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	cors := CORSMiddleware(s.allowedOrigin)

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/api/stats", MetricsMiddleware(cors(s.statsHandler.HandleStats), "stats"))
	mux.HandleFunc("/api/status", MetricsMiddleware(cors(s.statusHandler.HandleStatus), "status"))
	mux.HandleFunc("/api/events", MetricsMiddleware(cors(s.eventsHandler.HandleEvents), "events"))
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

// allowGet rejects every method but GET and HEAD with 405.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD, OPTIONS")
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}
