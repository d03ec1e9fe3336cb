// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/fbstats/internal/adapters/events"
)

type competitionsResponse struct {
	Competitions []events.Competition `json:"competitions"`
}

// EventsHandler proxies upcoming competitions.
type EventsHandler struct {
	source EventsSource
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(source EventsSource) *EventsHandler {
	return &EventsHandler{source: source}
}

// HandleEvents handles GET /api/events requests.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	comps, err := h.source.Competitions(r.Context())
	switch {
	case errors.Is(err, events.ErrAPIKeyMissing):
		writeError(w, http.StatusInternalServerError, "events_unconfigured", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", fmt.Errorf("%w: %w", ErrInternal, err))
		return
	}
	if comps == nil {
		comps = []events.Competition{}
	}
	writeJSON(w, http.StatusOK, competitionsResponse{Competitions: comps})
}
