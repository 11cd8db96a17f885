// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/challengeboard/internal/adapters/repository"
	service "github.com/okian/challengeboard/internal/app"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/ranking"
	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/internal/domain/validation"
	"github.com/okian/challengeboard/internal/pipeline"
)

const (
	defaultMaxLeaderboardLimit = 100

	// statusClientClosedRequest is reported when the caller went away first.
	statusClientClosedRequest = 499
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit runs one kiosk submission through the pipeline.
	Submit(ctx context.Context, raw model.RawSubmission) (pipeline.Outcome, error)

	// Read operations expose the session views.
	Snapshot(ctx context.Context) (pipeline.View, error)
	Leaderboard(ctx context.Context, n int) ([]types.Standing, error)
	Session(ctx context.Context) (pipeline.Info, error)

	// Reset starts a new, empty session.
	Reset(ctx context.Context) (pipeline.Info, error)
}

// ChartRenderer draws the chart bars as an image.
type ChartRenderer interface {
	Render(w io.Writer, bars []types.Bar) error
	ContentType() string
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLeaderboardLimit bounds ?limit on GET /leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithDefaultLeaderboardLimit sets the row count when ?limit is absent.
func WithDefaultLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithChartRenderer enables GET /chart.png.
func WithChartRenderer(r ChartRenderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxLimit     int
	defaultLimit int
	renderer     ChartRenderer

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	leaderboardHandler *LeaderboardHandler
	chartHandler       *ChartHandler
	sessionHandler     *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxLimit:     defaultMaxLeaderboardLimit,
		defaultLimit: ranking.DefaultK,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.submissionsHandler = NewSubmissionsHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.defaultLimit, s.maxLimit)
	s.chartHandler = NewChartHandler(deps, s.renderer)
	s.sessionHandler = NewSessionHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/chart", MetricsMiddleware(s.chartHandler.HandleGetChart, "chart"))
	mux.HandleFunc("/chart.png", MetricsMiddleware(s.chartHandler.HandleGetChartPNG, "chart_png"))
	mux.HandleFunc("/entries", MetricsMiddleware(s.sessionHandler.HandleGetEntries, "entries"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleGetSession, "session"))
	mux.HandleFunc("/session/reset", MetricsMiddleware(s.sessionHandler.HandlePostReset, "session_reset"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
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

// writeServiceError maps core and service errors to a status and a stable code.
// Validation messages are shown to the participant verbatim.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		code := "invalid_number"
		if errors.Is(err, validation.ErrMissingField) {
			code = "missing_field"
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: code, Message: verr.Msg, Field: verr.Field})
		return
	}

	switch {
	case errors.Is(err, service.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, repository.ErrCapacityExceeded):
		writeError(w, http.StatusInsufficientStorage, "capacity_exceeded", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	case errors.Is(err, context.Canceled):
		writeError(w, statusClientClosedRequest, "client_closed_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
