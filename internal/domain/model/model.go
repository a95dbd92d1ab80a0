// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// EnrollmentStatus enumerates the lifecycle states of an enrollment.
type EnrollmentStatus string

// Enrollment lifecycle states.
const (
	StatusActive    EnrollmentStatus = "active"
	StatusCompleted EnrollmentStatus = "completed"
	StatusWithdrawn EnrollmentStatus = "withdrawn"
)

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusWithdrawn:
		return true
	}
	return false
}

// SampleType enumerates the instrumentation categories for metric samples.
type SampleType string

// Metric sample categories.
const (
	SampleAPI       SampleType = "api"
	SampleDatabase  SampleType = "database"
	SampleJob       SampleType = "job"
	SampleWebsocket SampleType = "websocket"
)

// Valid reports whether t is a known sample type.
func (t SampleType) Valid() bool {
	switch t {
	case SampleAPI, SampleDatabase, SampleJob, SampleWebsocket:
		return true
	}
	return false
}

// Program is an ordered multi-stage pipeline (hiring track, onboarding plan).
type Program struct {
	ID     string
	Name   string
	Active bool
}

// Stage is one ordered step within a program's pipeline. Order is 1-based and
// unique per program; relative order is the only ranking signal, contiguity
// is not required.
type Stage struct {
	ID          string
	ProgramID   string
	Order       int
	Name        string
	AutoAdvance bool
}

// Candidate carries the identity fields reports use for enrichment.
type Candidate struct {
	ID    string
	Name  string
	Email string
}

// Enrollment is one candidate's run through one program's pipeline.
// CurrentStageID is empty until the candidate enters the first stage.
// CompletedAt is set if and only if Status is StatusCompleted.
type Enrollment struct {
	ID             string
	ProgramID      string
	CandidateID    string
	CurrentStageID string
	Status         EnrollmentStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// Validate checks the enrollment invariants. Snapshots handed to the
// analytics engine are assumed to satisfy these; the repository enforces
// them on write.
func (e *Enrollment) Validate() error {
	if !e.Status.Valid() {
		return fmt.Errorf("enrollment %s: unknown status %q", e.ID, e.Status)
	}
	if e.Status == StatusCompleted && e.CompletedAt == nil {
		return fmt.Errorf("enrollment %s: completed without completedAt", e.ID)
	}
	if e.Status != StatusCompleted && e.CompletedAt != nil {
		return fmt.Errorf("enrollment %s: completedAt set while status is %s", e.ID, e.Status)
	}
	if e.CompletedAt != nil && e.CompletedAt.Before(e.StartedAt) {
		return fmt.Errorf("enrollment %s: completedAt precedes startedAt", e.ID)
	}
	return nil
}

// Completed reports whether the enrollment finished its program.
func (e *Enrollment) Completed() bool { return e.Status == StatusCompleted }

// MetricSample is one timed instrumentation observation. The JSON shape is
// shared by the ingest request and the slow-call listings.
type MetricSample struct {
	Name      string            `json:"name"`
	Duration  float64           `json:"duration_ms"` // unit is consistent within a run
	Timestamp time.Time         `json:"timestamp"`
	Type      SampleType        `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks the sample invariants.
func (s *MetricSample) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("metric sample: missing name")
	}
	if !s.Type.Valid() {
		return fmt.Errorf("metric sample %s: unknown type %q", s.Name, s.Type)
	}
	if s.Duration < 0 {
		return fmt.Errorf("metric sample %s: negative duration %f", s.Name, s.Duration)
	}
	return nil
}

// DaysBetween returns whole days elapsed from a to b, floored. Negative
// spans floor toward zero days.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
