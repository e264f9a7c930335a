// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/freethrow/internal/adapters/repository"
	"github.com/okian/freethrow/internal/domain/deviation"
	"github.com/okian/freethrow/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TrialDependencies
	GroupDependencies
	AnalyzeDependencies
}

// TrialDependencies serves per-trial results of the latest run.
type TrialDependencies interface {
	Trials(ctx context.Context) ([]model.TrialSummary, error)
	Trial(ctx context.Context, trialID string) (model.TrialSummary, error)
	Frames(ctx context.Context, trialID string) ([]deviation.FrameAnalysis, error)
}

// GroupDependencies serves outcome-level views of the latest run.
type GroupDependencies interface {
	Groups(ctx context.Context) (model.Groups, error)
	Profile(ctx context.Context) (map[model.Outcome]map[model.Joint]model.Summary, error)
	Distribution(ctx context.Context) (map[model.Outcome]int, error)
}

// AnalyzeDependencies triggers a new analysis run.
type AnalyzeDependencies interface {
	Analyze(ctx context.Context) (repository.Run, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	trialsHandler  *TrialsHandler
	groupsHandler  *GroupsHandler
	analyzeHandler *AnalyzeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		trialsHandler:  NewTrialsHandler(deps),
		groupsHandler:  NewGroupsHandler(deps),
		analyzeHandler: NewAnalyzeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /trials", MetricsMiddleware(s.trialsHandler.HandleListTrials, "trials"))
	mux.HandleFunc("GET /trials/{id}", MetricsMiddleware(s.trialsHandler.HandleGetTrial, "trial"))
	mux.HandleFunc("GET /trials/{id}/frames", MetricsMiddleware(s.trialsHandler.HandleGetFrames, "frames"))
	mux.HandleFunc("GET /groups", MetricsMiddleware(s.groupsHandler.HandleGroups, "groups"))
	mux.HandleFunc("GET /profile", MetricsMiddleware(s.groupsHandler.HandleProfile, "profile"))
	mux.HandleFunc("GET /distribution", MetricsMiddleware(s.groupsHandler.HandleDistribution, "distribution"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
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

// writeUpstreamError maps not-found errors to 404 and everything else to 500.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
}
