package api

import (
	"net/http"

	"github.com/okian/freethrow/internal/domain/model"
)

// GroupsHandler serves outcome groups, their deviation profile and the
// outcome distribution.
type GroupsHandler struct {
	deps GroupDependencies
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(deps GroupDependencies) *GroupsHandler {
	return &GroupsHandler{deps: deps}
}

// HandleGroups handles GET /groups requests.
func (h *GroupsHandler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	g, err := h.deps.Groups(r.Context())
	if err != nil {
		writeUpstreamError(w, "api.groups", err)
		return
	}
	if g.Made == nil {
		g.Made = []model.TrialSummary{}
	}
	if g.Missed == nil {
		g.Missed = []model.TrialSummary{}
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleProfile handles GET /profile requests.
func (h *GroupsHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Profile(r.Context())
	if err != nil {
		writeUpstreamError(w, "api.profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDistribution handles GET /distribution requests.
func (h *GroupsHandler) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.Distribution(r.Context())
	if err != nil {
		writeUpstreamError(w, "api.distribution", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
