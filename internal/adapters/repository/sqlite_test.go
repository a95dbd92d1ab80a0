package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustPutProgram(t *testing.T, s *SQLiteStore, p model.Program) model.Program {
	t.Helper()
	out, err := s.PutProgram(context.Background(), p)
	if err != nil {
		t.Fatalf("put program: %v", err)
	}
	return out
}

func mustPutStage(t *testing.T, s *SQLiteStore, st model.Stage) model.Stage {
	t.Helper()
	out, err := s.PutStage(context.Background(), st)
	if err != nil {
		t.Fatalf("put stage: %v", err)
	}
	return out
}

func TestSQLiteStore_Programs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustPutProgram(t, s, model.Program{Name: "Engineering Residency", Active: true})
	if p.ID == "" {
		t.Fatal("expected a generated program id")
	}

	got, err := s.GetProgram(ctx, p.ID)
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if got.Name != "Engineering Residency" || !got.Active {
		t.Errorf("unexpected program: %+v", got)
	}

	// Upsert by id.
	p.Active = false
	if _, err := s.PutProgram(ctx, p); err != nil {
		t.Fatalf("update program: %v", err)
	}
	got, err = s.GetProgram(ctx, p.ID)
	if err != nil {
		t.Fatalf("get program after update: %v", err)
	}
	if got.Active {
		t.Error("expected update to deactivate the program")
	}

	mustPutProgram(t, s, model.Program{Name: "Apprenticeship"})
	all, err := s.ListPrograms(ctx)
	if err != nil {
		t.Fatalf("list programs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(all))
	}
	if all[0].Name != "Apprenticeship" {
		t.Errorf("expected name ordering, got %q first", all[0].Name)
	}
}

func TestSQLiteStore_GetProgramNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProgram(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_PutProgramRequiresName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PutProgram(context.Background(), model.Program{})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestSQLiteStore_Stages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustPutProgram(t, s, model.Program{Name: "Residency", Active: true})
	other := mustPutProgram(t, s, model.Program{Name: "Fellowship", Active: true})

	mustPutStage(t, s, model.Stage{ProgramID: p.ID, Order: 2, Name: "Interview"})
	mustPutStage(t, s, model.Stage{ProgramID: p.ID, Order: 1, Name: "Review", AutoAdvance: true})
	mustPutStage(t, s, model.Stage{ProgramID: other.ID, Order: 1, Name: "Review"})

	stages, err := s.ListStages(ctx, p.ID)
	if err != nil {
		t.Fatalf("list stages: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].Order != 1 || stages[1].Order != 2 {
		t.Errorf("expected order sorting, got %+v", stages)
	}
	if !stages[0].AutoAdvance {
		t.Error("expected auto_advance round-trip")
	}

	all, err := s.ListStages(ctx, "")
	if err != nil {
		t.Fatalf("list all stages: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 stages across programs, got %d", len(all))
	}
}

func TestSQLiteStore_StageOrderConflict(t *testing.T) {
	s := newTestStore(t)

	p := mustPutProgram(t, s, model.Program{Name: "Residency"})
	mustPutStage(t, s, model.Stage{ProgramID: p.ID, Order: 1, Name: "Review"})

	_, err := s.PutStage(context.Background(), model.Stage{ProgramID: p.ID, Order: 1, Name: "Duplicate"})
	if !errors.Is(err, ErrStageConflict) {
		t.Errorf("expected ErrStageConflict, got %v", err)
	}
}

func TestSQLiteStore_Candidates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.PutCandidate(ctx, model.Candidate{Name: "Ada Park", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("put candidate: %v", err)
	}

	got, err := s.GetCandidate(ctx, c.ID)
	if err != nil {
		t.Fatalf("get candidate: %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("unexpected candidate: %+v", got)
	}

	if _, err := s.GetCandidate(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	byID, err := s.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(byID) != 1 || byID[c.ID].Name != "Ada Park" {
		t.Errorf("unexpected candidate map: %+v", byID)
	}
}

func TestSQLiteStore_Enrollments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustPutProgram(t, s, model.Program{Name: "Residency", Active: true})
	st := mustPutStage(t, s, model.Stage{ProgramID: p.ID, Order: 1, Name: "Review"})

	started := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	done := started.AddDate(0, 0, 30)

	e, err := s.PutEnrollment(ctx, model.Enrollment{
		ProgramID:      p.ID,
		CandidateID:    "c1",
		CurrentStageID: st.ID,
		Status:         model.StatusCompleted,
		StartedAt:      started,
		CompletedAt:    &done,
	})
	if err != nil {
		t.Fatalf("put enrollment: %v", err)
	}

	list, err := s.ListEnrollments(ctx, p.ID)
	if err != nil {
		t.Fatalf("list enrollments: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(list))
	}
	got := list[0]
	if got.ID != e.ID || got.CurrentStageID != st.ID {
		t.Errorf("unexpected enrollment: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("started_at round-trip: want %v, got %v", started, got.StartedAt)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("completed_at round-trip: want %v, got %v", done, got.CompletedAt)
	}
}

func TestSQLiteStore_EnrollmentValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustPutProgram(t, s, model.Program{Name: "Residency"})
	other := mustPutProgram(t, s, model.Program{Name: "Fellowship"})
	otherStage := mustPutStage(t, s, model.Stage{ProgramID: other.ID, Order: 1, Name: "Review"})

	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Completed status without a completion time violates the invariant.
	_, err := s.PutEnrollment(ctx, model.Enrollment{
		ProgramID: p.ID, CandidateID: "c1",
		Status: model.StatusCompleted, StartedAt: started,
	})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}

	// A current stage from another program is rejected.
	_, err = s.PutEnrollment(ctx, model.Enrollment{
		ProgramID: p.ID, CandidateID: "c1", CurrentStageID: otherStage.ID,
		Status: model.StatusActive, StartedAt: started,
	})
	if !errors.Is(err, ErrWrongProgram) {
		t.Errorf("expected ErrWrongProgram, got %v", err)
	}

	// An unknown stage id is rejected.
	_, err = s.PutEnrollment(ctx, model.Enrollment{
		ProgramID: p.ID, CandidateID: "c1", CurrentStageID: "missing",
		Status: model.StatusActive, StartedAt: started,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
