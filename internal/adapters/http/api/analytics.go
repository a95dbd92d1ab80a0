// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// AnalyticsHandler handles the per-program analytics listings.
type AnalyticsHandler struct {
	deps Dependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleTimeToCompletion handles GET /time-to-completion requests.
func (h *AnalyticsHandler) HandleTimeToCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := h.deps.TimeToCompletion(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleBottlenecks handles GET /bottlenecks requests.
func (h *AnalyticsHandler) HandleBottlenecks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := h.deps.Bottlenecks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleSatisfaction handles GET /satisfaction requests.
func (h *AnalyticsHandler) HandleSatisfaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := h.deps.Satisfaction(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
