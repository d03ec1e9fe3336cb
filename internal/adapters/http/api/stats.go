// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/fbstats/internal/app"
	"github.com/okian/fbstats/internal/domain/model"
)

// StatsHandler serves the unified player records.
type StatsHandler struct {
	source StatsSource
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// HandleStats handles GET /api/stats requests. Pipeline failures map to 500
// with a code naming the failed stage.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	records, err := h.source.Stats(r.Context())
	if err != nil {
		var pe *service.PipelineError
		if errors.As(err, &pe) {
			writeError(w, http.StatusInternalServerError, pe.Code(), err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", fmt.Errorf("%w: %w", ErrInternal, err))
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// StatusHandler serves scrape run bookkeeping.
type StatusHandler struct {
	provider StatusProvider
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(provider StatusProvider) *StatusHandler {
	return &StatusHandler{provider: provider}
}

// HandleStatus handles GET /api/status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
