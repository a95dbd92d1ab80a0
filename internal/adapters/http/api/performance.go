// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/perf"
)

// defaultSlowLimit caps the slow-call listings when no limit is given.
const defaultSlowLimit = 20

// PerformanceHandler handles the runtime instrumentation surfaces.
type PerformanceHandler struct {
	deps Dependencies
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(deps Dependencies) *PerformanceHandler {
	return &PerformanceHandler{deps: deps}
}

// HandleSummary handles GET /performance requests.
func (h *PerformanceHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PerformanceSummary(r.Context()))
}

// HandleAlerts handles GET /performance/alerts requests.
func (h *PerformanceHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	alerts := h.deps.PerformanceAlerts(r.Context())
	if alerts == nil {
		alerts = []perf.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func slowLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultSlowLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultSlowLimit
	}
	return n
}

// HandleSlowQueries handles GET /performance/slow-queries?limit=N requests.
func (h *PerformanceHandler) HandleSlowQueries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	samples := h.deps.SlowQueries(r.Context(), slowLimit(r))
	if samples == nil {
		samples = []model.MetricSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

// HandleSlowAPICalls handles GET /performance/slow-api?limit=N requests.
func (h *PerformanceHandler) HandleSlowAPICalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	samples := h.deps.SlowAPICalls(r.Context(), slowLimit(r))
	if samples == nil {
		samples = []model.MetricSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}
