// Package app provides the core business service that implements the
// dependencies required by the HTTP API. It wires the repository, the pure
// analytics components, the report builder, and the bounded performance
// recorder behind one lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	samplequeue "github.com/stagewise/stagewise/internal/adapters/mq/queue"
	workerpool "github.com/stagewise/stagewise/internal/adapters/mq/worker"
	"github.com/stagewise/stagewise/internal/adapters/repository"
	"github.com/stagewise/stagewise/internal/domain/analytics"
	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/perf"
	"github.com/stagewise/stagewise/internal/domain/report"
	"github.com/stagewise/stagewise/pkg/logger"
	"github.com/stagewise/stagewise/pkg/metrics"
)

// Service composes the analytics engine with its collaborators. All
// pipeline analytics are pure functions over snapshots, so Service methods
// are safe to call concurrently from request handlers; the recorder is the
// only mutable state and guards itself.
type Service struct {
	mu sync.Mutex

	store    repository.Store
	recorder *perf.Recorder
	queue    samplequeue.Queue
	pool     *workerpool.Pool

	// Configuration
	dbPath          string
	maxMetrics      int
	queueSize       int
	workerCount     int
	onTimeDays      int
	slowQueryMs     float64
	slowAPIMs       float64
	alertThresholds perf.AlertThresholds

	// clock supplies every "as of" timestamp so computations are
	// deterministic under test.
	clock func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a repository, bypassing the SQLite default. Tests use
// this to run against a store they control.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath sets the SQLite database path opened on Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithMaxMetrics bounds the performance sample buffer.
func WithMaxMetrics(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMetrics = n
		}
	}
}

// WithQueueSize bounds the sample ingest queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithOnTimeWindow sets the expected completion window in days.
func WithOnTimeWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.onTimeDays = days
		}
	}
}

// WithSlowThresholds sets the duration floors for the slow-call listings.
func WithSlowThresholds(queryMs, apiMs float64) Option {
	return func(s *Service) {
		if queryMs > 0 {
			s.slowQueryMs = queryMs
		}
		if apiMs > 0 {
			s.slowAPIMs = apiMs
		}
	}
}

// WithAlertThresholds overrides the performance alert thresholds.
func WithAlertThresholds(t perf.AlertThresholds) Option {
	return func(s *Service) {
		s.alertThresholds = t
	}
}

// WithClock sets the timestamp source for tenure and day computations.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:          "stagewise.db",
		maxMetrics:      perf.DefaultCapacity,
		queueSize:       10_000,
		workerCount:     4,
		onTimeDays:      analytics.DefaultOnTimeWindowDays,
		slowQueryMs:     perf.DefaultSlowQuery,
		slowAPIMs:       perf.DefaultSlowAPI,
		alertThresholds: perf.DefaultAlertThresholds(),
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the repository, recorder, queue, and ingest workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		store, err := repository.NewSQLiteStore(s.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "opened pipeline store", logger.String("path", s.dbPath))
	}

	s.recorder = perf.NewRecorder(
		perf.WithCapacity(s.maxMetrics),
		perf.WithClock(s.clock),
		perf.WithAlertThresholds(s.alertThresholds),
	)
	s.queue = samplequeue.NewInMemoryQueue(samplequeue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.recorder)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("maxMetrics", s.maxMetrics),
		logger.Int("queueSize", s.queueSize),
		logger.Int("workers", s.workerCount),
	)
	return nil
}

// Stop shuts down the ingest pipeline and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping analytics service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

// snapshot is one consistent-enough read of the pipeline state. The engine
// gives no transactional guarantee across the three reads.
type snapshot struct {
	programs    []model.Program
	stages      []model.Stage
	enrollments []model.Enrollment
}

func (s *Service) loadSnapshot(ctx context.Context, programID string) (snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshotLoad(float64(time.Since(start).Milliseconds()))
	}()

	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("load programs: %w", err)
	}
	stages, err := s.store.ListStages(ctx, "")
	if err != nil {
		return snapshot{}, fmt.Errorf("load stages: %w", err)
	}
	enrollments, err := s.store.ListEnrollments(ctx, programID)
	if err != nil {
		return snapshot{}, fmt.Errorf("load enrollments: %w", err)
	}
	return snapshot{programs: programs, stages: stages, enrollments: enrollments}, nil
}

// Dashboard builds the dashboard summary over the current snapshot.
func (s *Service) Dashboard(ctx context.Context) (report.DashboardSummary, error) {
	snap, err := s.loadSnapshot(ctx, "")
	if err != nil {
		return report.DashboardSummary{}, err
	}
	metrics.RecordReportBuild("dashboard")
	return report.BuildDashboardSummary(snap.programs, snap.stages, snap.enrollments, s.onTimeDays), nil
}

// Trends returns the enrollment trend series. A filter naming an unknown
// program yields ErrNotFound rather than a silently empty series.
func (s *Service) Trends(ctx context.Context, filter analytics.TrendFilter) ([]analytics.TrendBucket, error) {
	if filter.ProgramID != "" {
		if _, err := s.store.GetProgram(ctx, filter.ProgramID); err != nil {
			return nil, err
		}
	}
	enrollments, err := s.store.ListEnrollments(ctx, filter.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	metrics.RecordReportBuild("trends")
	return analytics.EnrollmentTrends(enrollments, filter), nil
}

// TimeToCompletion returns the completion-duration distribution per program.
func (s *Service) TimeToCompletion(ctx context.Context) ([]analytics.ProgramDuration, error) {
	snap, err := s.loadSnapshot(ctx, "")
	if err != nil {
		return nil, err
	}
	metrics.RecordReportBuild("time_to_completion")
	return analytics.TimeToCompletion(snap.programs, snap.enrollments), nil
}

// Bottlenecks returns stage bottleneck records, worst first.
func (s *Service) Bottlenecks(ctx context.Context) ([]analytics.StageBottleneck, error) {
	snap, err := s.loadSnapshot(ctx, "")
	if err != nil {
		return nil, err
	}
	metrics.RecordReportBuild("bottlenecks")
	return analytics.Bottlenecks(snap.programs, snap.stages, snap.enrollments, s.clock()), nil
}

// Satisfaction returns the per-program composite metrics.
func (s *Service) Satisfaction(ctx context.Context) ([]analytics.ProgramSatisfaction, error) {
	snap, err := s.loadSnapshot(ctx, "")
	if err != nil {
		return nil, err
	}
	metrics.RecordReportBuild("satisfaction")
	return analytics.Satisfaction(snap.programs, snap.stages, snap.enrollments, s.onTimeDays), nil
}

// ParticipantReport returns one row per filtered enrollment. A filter
// naming an unknown program yields ErrNotFound.
func (s *Service) ParticipantReport(ctx context.Context, filter report.ParticipantFilter) ([]report.ParticipantRow, error) {
	if filter.ProgramID != "" {
		if _, err := s.store.GetProgram(ctx, filter.ProgramID); err != nil {
			return nil, err
		}
	}
	snap, err := s.loadSnapshot(ctx, filter.ProgramID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	metrics.RecordReportBuild("participants")
	return report.BuildParticipantRows(snap.programs, snap.stages, snap.enrollments, candidates, filter, s.clock()), nil
}

// WriteParticipantsCSV streams the filtered participant report as CSV.
func (s *Service) WriteParticipantsCSV(ctx context.Context, w io.Writer, filter report.ParticipantFilter) error {
	rows, err := s.ParticipantReport(ctx, filter)
	if err != nil {
		return err
	}
	metrics.RecordReportBuild("participants_csv")
	return report.WriteParticipantsCSV(w, rows)
}

// ProgramOutcomes builds the outcomes report for one program. An unknown
// id yields ErrNotFound.
func (s *Service) ProgramOutcomes(ctx context.Context, programID string) (report.ProgramOutcomes, error) {
	program, err := s.store.GetProgram(ctx, programID)
	if err != nil {
		return report.ProgramOutcomes{}, err
	}
	stages, err := s.store.ListStages(ctx, programID)
	if err != nil {
		return report.ProgramOutcomes{}, fmt.Errorf("load stages: %w", err)
	}
	enrollments, err := s.store.ListEnrollments(ctx, programID)
	if err != nil {
		return report.ProgramOutcomes{}, fmt.Errorf("load enrollments: %w", err)
	}
	metrics.RecordReportBuild("outcomes")
	return report.BuildProgramOutcomes(program, stages, enrollments, s.onTimeDays), nil
}

// RecordSample validates and enqueues one instrumentation sample. Returns
// false on backpressure; the sample is dropped rather than blocking the
// caller.
func (s *Service) RecordSample(ctx context.Context, sample model.MetricSample) (bool, error) {
	if err := sample.Validate(); err != nil {
		return false, err
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = s.clock()
	}
	return s.queue.Enqueue(ctx, sample), nil
}

// PerformanceSummary returns per-type stats plus buffer bounds.
func (s *Service) PerformanceSummary(_ context.Context) perf.Summary {
	return s.recorder.Summary()
}

// PerformanceAlerts evaluates the fixed thresholds against current stats.
func (s *Service) PerformanceAlerts(_ context.Context) []perf.Alert {
	alerts := s.recorder.Alerts()
	for _, a := range alerts {
		metrics.RecordAlertFired(a.Severity)
	}
	return alerts
}

// SlowQueries lists database samples over the configured floor, newest
// first.
func (s *Service) SlowQueries(_ context.Context, limit int) []model.MetricSample {
	return s.recorder.SlowQueries(s.slowQueryMs, limit)
}

// SlowAPICalls lists api samples over the configured floor, newest first.
func (s *Service) SlowAPICalls(_ context.Context, limit int) []model.MetricSample {
	return s.recorder.SlowAPICalls(s.slowAPIMs, limit)
}

// Recorder exposes the underlying recorder for in-process instrumentation
// (the HTTP middleware records its own request timings through it).
func (s *Service) Recorder() *perf.Recorder {
	return s.recorder
}
