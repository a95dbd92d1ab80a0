package perf

import (
	"fmt"

	"github.com/stagewise/stagewise/internal/domain/model"
)

// Alert severities.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// AlertThresholds holds the fixed comparison points for Alerts. All
// comparisons are strict greater-than; a value exactly at the threshold
// does not fire.
type AlertThresholds struct {
	AvgAPIMs   float64 `json:"avg_api_ms"`
	P95APIMs   float64 `json:"p95_api_ms"`
	AvgQueryMs float64 `json:"avg_query_ms"`
	MaxJobMs   float64 `json:"max_job_ms"`
}

// DefaultAlertThresholds returns the stock thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		AvgAPIMs:   1000,
		P95APIMs:   2000,
		AvgQueryMs: 200,
		MaxJobMs:   60000,
	}
}

// Alert is one triggered threshold with a human-readable message.
type Alert struct {
	Severity  string  `json:"severity"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

// Alerts evaluates the fixed thresholds against the current per-type stats
// and returns every triggered alert. An empty slice means all clear.
func (r *Recorder) Alerts() []Alert {
	api := r.StatsFor(model.SampleAPI)
	db := r.StatsFor(model.SampleDatabase)
	job := r.StatsFor(model.SampleJob)
	t := r.thresholds

	var alerts []Alert
	if api.Avg > t.AvgAPIMs {
		alerts = append(alerts, Alert{
			Severity:  SeverityWarning,
			Metric:    "api_avg_response_ms",
			Value:     api.Avg,
			Threshold: t.AvgAPIMs,
			Message:   fmt.Sprintf("average API response time %.0fms exceeds %.0fms", api.Avg, t.AvgAPIMs),
		})
	}
	if api.P95 > t.P95APIMs {
		alerts = append(alerts, Alert{
			Severity:  SeverityError,
			Metric:    "api_p95_response_ms",
			Value:     api.P95,
			Threshold: t.P95APIMs,
			Message:   fmt.Sprintf("p95 API response time %.0fms exceeds %.0fms", api.P95, t.P95APIMs),
		})
	}
	if db.Avg > t.AvgQueryMs {
		alerts = append(alerts, Alert{
			Severity:  SeverityWarning,
			Metric:    "db_avg_query_ms",
			Value:     db.Avg,
			Threshold: t.AvgQueryMs,
			Message:   fmt.Sprintf("average database query time %.0fms exceeds %.0fms", db.Avg, t.AvgQueryMs),
		})
	}
	if job.Max > t.MaxJobMs {
		alerts = append(alerts, Alert{
			Severity:  SeverityWarning,
			Metric:    "job_max_duration_ms",
			Value:     job.Max,
			Threshold: t.MaxJobMs,
			Message:   fmt.Sprintf("longest job ran %.0fms, over the %.0fms limit", job.Max, t.MaxJobMs),
		})
	}
	return alerts
}
