// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars
//   on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"runtime"

	"github.com/stagewise/stagewise/internal/domain/perf"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite pipeline database.
	DBPath string `koanf:"db_path"`

	// MaxMetrics bounds the in-memory sample buffer.
	MaxMetrics int `koanf:"max_metrics"`

	// SampleQueueSize bounds the ingest queue in front of the buffer.
	SampleQueueSize int `koanf:"sample_queue_size"`

	// IngestWorkerCount sets the number of workers draining the queue.
	IngestWorkerCount int `koanf:"ingest_worker_count"`

	// OnTimeWindowDays is the expected completion window for the on-time
	// rate.
	OnTimeWindowDays int `koanf:"on_time_window_days"`

	// SlowQueryMs and SlowAPIMs are the duration floors for the slow-call
	// listings.
	SlowQueryMs float64 `koanf:"slow_query_ms"`
	SlowAPIMs   float64 `koanf:"slow_api_ms"`

	// Alert thresholds; all comparisons are strict greater-than.
	AlertAvgAPIMs   float64 `koanf:"alert_avg_api_ms"`
	AlertP95APIMs   float64 `koanf:"alert_p95_api_ms"`
	AlertAvgQueryMs float64 `koanf:"alert_avg_query_ms"`
	AlertMaxJobMs   float64 `koanf:"alert_max_job_ms"`
}

// AlertThresholds bundles the configured alert limits.
func (c *Config) AlertThresholds() perf.AlertThresholds {
	return perf.AlertThresholds{
		AvgAPIMs:   c.AlertAvgAPIMs,
		P95APIMs:   c.AlertP95APIMs,
		AvgQueryMs: c.AlertAvgQueryMs,
		MaxJobMs:   c.AlertMaxJobMs,
	}
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9090",
		DBPath:            "stagewise.db",
		MaxMetrics:        1000,
		SampleQueueSize:   10_000,
		IngestWorkerCount: runtime.NumCPU(),
		OnTimeWindowDays:  90,
		SlowQueryMs:       100,
		SlowAPIMs:         500,
		AlertAvgAPIMs:     1000,
		AlertP95APIMs:     2000,
		AlertAvgQueryMs:   200,
		AlertMaxJobMs:     60_000,
	}
}
