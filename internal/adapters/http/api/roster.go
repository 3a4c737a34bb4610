package api

import (
	"context"
	"net/http"

	"github.com/pixel-phantoms/hud/internal/domain/roster"
	"github.com/pixel-phantoms/hud/internal/domain/types"
)

// RosterDependencies defines the read views derived from the snapshot.
type RosterDependencies interface {
	Roster(ctx context.Context) types.Roster
	Physics(ctx context.Context) roster.PhysicsBars
	Chart(ctx context.Context, n int) []roster.Bar
}

// RosterHandler serves the roster, physics and chart views.
type RosterHandler struct {
	deps     RosterDependencies
	maxLimit int
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies, maxLimit int) *RosterHandler {
	return &RosterHandler{deps: deps, maxLimit: maxLimit}
}

// HandleRoster handles GET /roster requests.
func (h *RosterHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Roster(r.Context()))
}

// HandlePhysics handles GET /physics requests.
func (h *RosterHandler) HandlePhysics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Physics(r.Context()))
}

// HandleChart handles GET /chart?limit=N requests.
func (h *RosterHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := parseLimit(r, min(roster.DefaultChartSize, h.maxLimit), h.maxLimit)
	if err != nil {
		writeLimitError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Chart(r.Context(), n))
}
