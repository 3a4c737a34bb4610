package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/pixel-phantoms/hud/internal/adapters/mq/queue"
	service "github.com/pixel-phantoms/hud/internal/app"
)

// RefreshDependencies defines the interface for requesting a refresh.
type RefreshDependencies interface {
	Enqueue(ctx context.Context, reason string) (queue.Job, error)
}

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id,omitempty"`
}

// HandleRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	job, err := h.deps.Enqueue(r.Context(), service.ReasonManual)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, refreshResponse{Status: "queued", JobID: job.ID.String()})
	case errors.Is(err, service.ErrAlreadyPending):
		writeJSON(w, http.StatusAccepted, refreshResponse{Status: "pending"})
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
