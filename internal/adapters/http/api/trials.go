package api

import (
	"net/http"
	"strings"

	"github.com/okian/freethrow/internal/domain/model"
)

// TrialsHandler serves trial summaries and per-frame analyses.
type TrialsHandler struct {
	deps TrialDependencies
}

// NewTrialsHandler creates a new trials handler.
func NewTrialsHandler(deps TrialDependencies) *TrialsHandler {
	return &TrialsHandler{deps: deps}
}

// HandleListTrials handles GET /trials requests. ?result=made|missed filters by outcome.
func (h *TrialsHandler) HandleListTrials(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_trials"
	trials, err := h.deps.Trials(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	if result := strings.TrimSpace(r.URL.Query().Get("result")); result != "" {
		outcome, err := model.ParseOutcome(result)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		var filtered []model.TrialSummary
		for _, ts := range trials {
			if ts.Outcome == outcome {
				filtered = append(filtered, ts)
			}
		}
		trials = filtered
	}
	if trials == nil {
		trials = []model.TrialSummary{}
	}
	writeJSON(w, http.StatusOK, trials)
}

// HandleGetTrial handles GET /trials/{id} requests.
func (h *TrialsHandler) HandleGetTrial(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trial"
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest))
		return
	}
	ts, err := h.deps.Trial(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

// HandleGetFrames handles GET /trials/{id}/frames requests.
func (h *TrialsHandler) HandleGetFrames(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_frames"
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest))
		return
	}
	frames, err := h.deps.Frames(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, frames)
}
