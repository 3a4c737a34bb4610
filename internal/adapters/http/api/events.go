package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pixel-phantoms/hud/internal/adapters/events"
	service "github.com/pixel-phantoms/hud/internal/app"
	"github.com/pixel-phantoms/hud/internal/domain/model"
)

const maxProposalBytes = 16 << 10

// EventDependencies defines the interface for the event feed.
type EventDependencies interface {
	Events(ctx context.Context) service.EventFeed
	ProposeEvent(ctx context.Context, e model.Event) error
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(e.Date) == "":
		return errors.New("missing date")
	}
	return nil
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandleEvents serves GET /events and POST /events.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Events(r.Context()))
	case http.MethodPost:
		h.handlePropose(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *EventsHandler) handlePropose(w http.ResponseWriter, r *http.Request) {
	const op = "api.propose_event"
	var req eventRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxProposalBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err := h.deps.ProposeEvent(r.Context(), model.Event{
		Title:       req.Title,
		Date:        req.Date,
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
		Link:        req.Link,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "pending"})
	case errors.Is(err, events.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrProposalsDisabled), errors.Is(err, events.ErrNoEndpoint):
		writeError(w, http.StatusNotImplemented, "not_configured", Wrap(op, err))
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", Wrap(op, err))
	}
}
