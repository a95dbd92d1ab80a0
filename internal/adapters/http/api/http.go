// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stagewise/stagewise/internal/adapters/repository"
	"github.com/stagewise/stagewise/internal/domain/analytics"
	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/perf"
	"github.com/stagewise/stagewise/internal/domain/report"
)

// Dependencies required by the HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Pipeline analytics surfaces.
	Dashboard(ctx context.Context) (report.DashboardSummary, error)
	Trends(ctx context.Context, filter analytics.TrendFilter) ([]analytics.TrendBucket, error)
	TimeToCompletion(ctx context.Context) ([]analytics.ProgramDuration, error)
	Bottlenecks(ctx context.Context) ([]analytics.StageBottleneck, error)
	Satisfaction(ctx context.Context) ([]analytics.ProgramSatisfaction, error)
	ParticipantReport(ctx context.Context, filter report.ParticipantFilter) ([]report.ParticipantRow, error)
	WriteParticipantsCSV(ctx context.Context, w io.Writer, filter report.ParticipantFilter) error
	ProgramOutcomes(ctx context.Context, programID string) (report.ProgramOutcomes, error)

	// Instrumentation surfaces.
	RecordSample(ctx context.Context, sample model.MetricSample) (bool, error)
	PerformanceSummary(ctx context.Context) perf.Summary
	PerformanceAlerts(ctx context.Context) []perf.Alert
	SlowQueries(ctx context.Context, limit int) []model.MetricSample
	SlowAPICalls(ctx context.Context, limit int) []model.MetricSample

	// Recorder exposes the sample buffer for in-process request timing.
	Recorder() *perf.Recorder
}

// Server wires HTTP routes for the analytics API.
type Server struct {
	healthHandler      *HealthHandler
	dashboardHandler   *DashboardHandler
	trendsHandler      *TrendsHandler
	analyticsHandler   *AnalyticsHandler
	reportsHandler     *ReportsHandler
	samplesHandler     *SamplesHandler
	performanceHandler *PerformanceHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		dashboardHandler:   NewDashboardHandler(deps),
		trendsHandler:      NewTrendsHandler(deps),
		analyticsHandler:   NewAnalyticsHandler(deps),
		reportsHandler:     NewReportsHandler(deps),
		samplesHandler:     NewSamplesHandler(deps),
		performanceHandler: NewPerformanceHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Every business route is
// wrapped in the metrics middleware so request timings land in both the
// Prometheus registry and the sample buffer.
func (s *Server) Register(_ context.Context, mux *http.ServeMux, deps Dependencies) {
	wrap := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(h, endpoint, deps.Recorder())
	}

	mux.HandleFunc("/healthz", s.healthHandler.HandleHealth)
	mux.HandleFunc("/dashboard", wrap(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/trends", wrap(s.trendsHandler.HandleTrends, "trends"))
	mux.HandleFunc("/time-to-completion", wrap(s.analyticsHandler.HandleTimeToCompletion, "time_to_completion"))
	mux.HandleFunc("/bottlenecks", wrap(s.analyticsHandler.HandleBottlenecks, "bottlenecks"))
	mux.HandleFunc("/satisfaction", wrap(s.analyticsHandler.HandleSatisfaction, "satisfaction"))
	mux.HandleFunc("/reports/participants", wrap(s.reportsHandler.HandleParticipants, "participants"))
	mux.HandleFunc("/reports/participants.csv", wrap(s.reportsHandler.HandleParticipantsCSV, "participants_csv"))
	mux.HandleFunc("/programs/", wrap(s.reportsHandler.HandleProgramOutcomes, "outcomes"))
	mux.HandleFunc("/samples", wrap(s.samplesHandler.HandlePostSample, "samples"))
	mux.HandleFunc("/performance", wrap(s.performanceHandler.HandleSummary, "performance"))
	mux.HandleFunc("/performance/alerts", wrap(s.performanceHandler.HandleAlerts, "performance_alerts"))
	mux.HandleFunc("/performance/slow-queries", wrap(s.performanceHandler.HandleSlowQueries, "slow_queries"))
	mux.HandleFunc("/performance/slow-api", wrap(s.performanceHandler.HandleSlowAPICalls, "slow_api"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates upstream errors: a repository not-found
// becomes 404, anything else 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
