// Package perf provides the bounded runtime-instrumentation buffer and the
// percentile/alert computations over it.
//
// The Recorder is the one piece of mutable state in the analytics engine.
// It is an injected, explicitly owned component rather than a package
// global, so tests can instantiate isolated recorders. Memory is bounded
// by a fixed-capacity ring buffer: once full, every insert evicts the
// oldest sample (FIFO).
package perf

import (
	"sync"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/stats"
)

// Default recorder configuration constants.
const (
	DefaultCapacity  = 1000
	DefaultSlowQuery = 100.0 // ms floor for SlowQueries
	DefaultSlowAPI   = 500.0 // ms floor for SlowAPICalls
)

// Stats summarizes the current samples of one type. A zero-valued Stats
// means "no samples", not true zero latency.
type Stats struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// Summary is the full performance surface: per-type stats plus buffer bounds.
type Summary struct {
	Stats        map[model.SampleType]Stats `json:"stats"`
	TotalMetrics int                        `json:"total_metrics"`
	OldestMetric *time.Time                 `json:"oldest_metric,omitempty"`
	NewestMetric *time.Time                 `json:"newest_metric,omitempty"`
}

// Recorder is a bounded, mutex-protected sample buffer. Writers record
// concurrently from instrumentation call sites; readers see a consistent
// snapshot. Strict linearizability is not required; this is best-effort
// observability, not a correctness-critical path.
type Recorder struct {
	mu       sync.Mutex
	buf      []model.MetricSample
	start    int // index of the oldest sample
	size     int
	capacity int

	clock      func() time.Time
	thresholds AlertThresholds
}

// NewRecorder creates a recorder with configuration options.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		capacity:   DefaultCapacity,
		clock:      time.Now,
		thresholds: DefaultAlertThresholds(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.buf = make([]model.MetricSample, r.capacity)
	return r
}

// Record stores one sample, evicting the oldest when the buffer is full.
// It never blocks and never rejects a write.
func (r *Recorder) Record(name string, duration float64, typ model.SampleType, metadata map[string]string) {
	s := model.MetricSample{
		Name:      name,
		Duration:  duration,
		Timestamp: r.clock(),
		Type:      typ,
		Metadata:  metadata,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < r.capacity {
		r.buf[(r.start+r.size)%r.capacity] = s
		r.size++
		return
	}
	// Full: overwrite the oldest slot and advance the start.
	r.buf[r.start] = s
	r.start = (r.start + 1) % r.capacity
}

// RecordSample stores a pre-built sample, preserving its timestamp when set.
func (r *Recorder) RecordSample(s model.MetricSample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = r.clock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < r.capacity {
		r.buf[(r.start+r.size)%r.capacity] = s
		r.size++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % r.capacity
}

// Len returns the current number of buffered samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Clear empties the buffer. Intended for tests.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start, r.size = 0, 0
}

// snapshotNewestFirst copies the live samples, newest first. Callers must
// hold r.mu.
func (r *Recorder) snapshotNewestFirst() []model.MetricSample {
	out := make([]model.MetricSample, 0, r.size)
	for i := r.size - 1; i >= 0; i-- {
		out = append(out, r.buf[(r.start+i)%r.capacity])
	}
	return out
}

// Samples returns the buffered samples, newest first.
func (r *Recorder) Samples() []model.MetricSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotNewestFirst()
}

// StatsFor computes avg/min/max and p50/p95/p99 over the current samples of
// one type. No samples of that type yields a zero-valued Stats.
func (r *Recorder) StatsFor(typ model.SampleType) Stats {
	r.mu.Lock()
	var durations []float64
	for i := 0; i < r.size; i++ {
		s := &r.buf[(r.start+i)%r.capacity]
		if s.Type == typ {
			durations = append(durations, s.Duration)
		}
	}
	r.mu.Unlock()

	if len(durations) == 0 {
		return Stats{}
	}
	return Stats{
		Avg:   stats.Mean(durations),
		Min:   stats.Min(durations),
		Max:   stats.Max(durations),
		Count: len(durations),
		P50:   stats.Percentile(durations, 50),
		P95:   stats.Percentile(durations, 95),
		P99:   stats.Percentile(durations, 99),
	}
}

// SlowQueries returns database samples at or above thresholdMs, newest
// first, capped at limit. thresholdMs <= 0 uses DefaultSlowQuery; limit
// <= 0 means no cap.
func (r *Recorder) SlowQueries(thresholdMs float64, limit int) []model.MetricSample {
	if thresholdMs <= 0 {
		thresholdMs = DefaultSlowQuery
	}
	return r.slowSamples(model.SampleDatabase, thresholdMs, limit)
}

// SlowAPICalls returns api samples at or above thresholdMs, newest first,
// capped at limit. thresholdMs <= 0 uses DefaultSlowAPI.
func (r *Recorder) SlowAPICalls(thresholdMs float64, limit int) []model.MetricSample {
	if thresholdMs <= 0 {
		thresholdMs = DefaultSlowAPI
	}
	return r.slowSamples(model.SampleAPI, thresholdMs, limit)
}

func (r *Recorder) slowSamples(typ model.SampleType, thresholdMs float64, limit int) []model.MetricSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.MetricSample
	for i := r.size - 1; i >= 0; i-- {
		s := r.buf[(r.start+i)%r.capacity]
		if s.Type != typ || s.Duration < thresholdMs {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Summary returns per-type stats plus buffer bounds for the performance
// dashboard surface.
func (r *Recorder) Summary() Summary {
	sum := Summary{Stats: make(map[model.SampleType]Stats, 4)}
	for _, typ := range []model.SampleType{model.SampleAPI, model.SampleDatabase, model.SampleJob, model.SampleWebsocket} {
		sum.Stats[typ] = r.StatsFor(typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	sum.TotalMetrics = r.size
	if r.size > 0 {
		oldest := r.buf[r.start].Timestamp
		newest := r.buf[(r.start+r.size-1)%r.capacity].Timestamp
		sum.OldestMetric = &oldest
		sum.NewestMetric = &newest
	}
	return sum
}
