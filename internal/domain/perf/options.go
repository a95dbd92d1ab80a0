// Package perf provides the bounded runtime-instrumentation buffer.
package perf

import "time"

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithCapacity sets the maximum number of buffered samples.
func WithCapacity(capacity int) Option {
	return func(r *Recorder) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}

// WithClock sets the timestamp source. Tests inject a fixed clock so
// recorded timestamps are deterministic.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithAlertThresholds overrides the stock alert thresholds. Zero fields
// keep their defaults.
func WithAlertThresholds(t AlertThresholds) Option {
	return func(r *Recorder) {
		if t.AvgAPIMs > 0 {
			r.thresholds.AvgAPIMs = t.AvgAPIMs
		}
		if t.P95APIMs > 0 {
			r.thresholds.P95APIMs = t.P95APIMs
		}
		if t.AvgQueryMs > 0 {
			r.thresholds.AvgQueryMs = t.AvgQueryMs
		}
		if t.MaxJobMs > 0 {
			r.thresholds.MaxJobMs = t.MaxJobMs
		}
	}
}
