// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stagewise/stagewise/internal/domain/analytics"
)

// trendDateLayout is the accepted format for the start and end query
// parameters.
const trendDateLayout = "2006-01-02"

// TrendsHandler handles enrollment trend requests.
type TrendsHandler struct {
	deps Dependencies
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(deps Dependencies) *TrendsHandler {
	return &TrendsHandler{deps: deps}
}

// HandleTrends handles GET /trends?program_id=&start=&end= requests.
// Unparseable dates are a 400; an end before start is accepted and simply
// yields an empty series.
func (h *TrendsHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	filter := analytics.TrendFilter{ProgramID: r.URL.Query().Get("program_id")}

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(trendDateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: start must be YYYY-MM-DD", ErrBadRequest))
			return
		}
		filter.Start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(trendDateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: end must be YYYY-MM-DD", ErrBadRequest))
			return
		}
		filter.End = t
	}

	series, err := h.deps.Trends(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if series == nil {
		series = []analytics.TrendBucket{}
	}
	writeJSON(w, http.StatusOK, series)
}
