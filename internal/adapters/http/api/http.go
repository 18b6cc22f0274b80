// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/chainaudit/internal/adapters/http/site"
	"github.com/okian/chainaudit/internal/adapters/repository"
	"github.com/okian/chainaudit/internal/domain/model"
	"github.com/okian/chainaudit/internal/domain/render"
	"github.com/okian/chainaudit/internal/domain/types"
	"github.com/okian/chainaudit/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Dataset returns the static demo content.
	Dataset(ctx context.Context) model.Dataset
	// DefaultState is the state a new session starts with.
	DefaultState() types.State

	// View renders state; surface labels the caller in metrics.
	View(ctx context.Context, state types.State, surface string) (render.View, error)
	// Cases filters the case library.
	Cases(ctx context.Context, filter types.CaseFilter) []model.CaseRecord

	// Session returns the session for id, creating one when id is unknown.
	Session(ctx context.Context, id string) (repository.Session, bool, error)
	// UpdateSession mutates a session's state.
	UpdateSession(ctx context.Context, id string, fn func(*types.State)) (repository.Session, error)

	// Notice acknowledges a completion notice.
	Notice(ctx context.Context, sessionID, task string) (types.NoticeAck, error)
}

// Server wires HTTP routes for the dashboard and its API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
	v1Handler        *V1Handler
	log              logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverSettings)

type serverSettings struct {
	log          logger.Logger
	secureCookie bool
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *serverSettings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSecureCookie marks the session cookie Secure, for TLS deployments.
func WithSecureCookie(secure bool) ServerOption {
	return func(s *serverSettings) {
		s.secureCookie = secure
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) (*Server, error) {
	settings := serverSettings{log: logger.Nop()}
	for _, opt := range opts {
		opt(&settings)
	}

	pages, err := site.New()
	if err != nil {
		return nil, err
	}

	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: NewDashboardHandler(deps, pages, settings.log.Named("dashboard"), settings.secureCookie),
		v1Handler:        NewV1Handler(deps, settings.log.Named("api")),
		log:              settings.log,
	}, nil
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/notice", MetricsMiddleware(s.dashboardHandler.HandleNotice, "notice"))
	mux.Handle("/api/v1/", s.v1Handler.Router())
	mux.HandleFunc("/", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
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

// writeFailure classifies err and writes it. Internal errors are logged and
// their detail is not returned to the client.
func writeFailure(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.Error(err))
		writeError(w, status, code, ErrInternal)
		return
	}
	writeError(w, status, code, err)
}
