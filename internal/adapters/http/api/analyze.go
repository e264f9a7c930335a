package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/okian/freethrow/internal/adapters/loader"
	"github.com/okian/freethrow/internal/domain/aggregate"
	"github.com/okian/freethrow/internal/domain/model"
)

// AnalyzeHandler triggers analysis runs.
type AnalyzeHandler struct {
	deps AnalyzeDependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

type runResponse struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Spread        string    `json:"spread"`
	CreatedAt     time.Time `json:"created_at"`
	Trials        int       `json:"trials"`
	Made          int       `json:"made"`
	Missed        int       `json:"missed"`
}

// HandleAnalyze handles POST /analyze requests. The run is synchronous.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	run, err := h.deps.Analyze(r.Context())
	if err != nil {
		switch {
		case isInvalidInput(err):
			writeError(w, http.StatusUnprocessableEntity, "malformed_input", wrapKind(op, ErrAnalyze, err))
		case errors.Is(err, loader.ErrNoTrials):
			writeError(w, http.StatusNotFound, "no_trials", wrapKind(op, ErrAnalyze, err))
		default:
			writeError(w, http.StatusInternalServerError, "analysis_failed", wrapKind(op, ErrAnalyze, err))
		}
		return
	}
	g := aggregate.Partition(run.Summaries)
	writeJSON(w, http.StatusOK, runResponse{
		ID:            run.ID.String(),
		ParticipantID: run.ParticipantID,
		Spread:        run.Spread,
		CreatedAt:     run.CreatedAt,
		Trials:        len(run.Summaries),
		Made:          len(g.Made),
		Missed:        len(g.Missed),
	})
}

// isInvalidInput reports whether err comes from trial data rather than the service.
func isInvalidInput(err error) bool {
	for _, kind := range []error{
		loader.ErrMalformedInput,
		model.ErrMissingTrialID,
		model.ErrDuplicateTrial,
		model.ErrEmptyTrial,
		model.ErrUnknownOutcome,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
