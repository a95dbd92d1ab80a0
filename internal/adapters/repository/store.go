// Package repository defines the pipeline persistence interface and its
// SQLite implementation. The analytics engine only reads snapshots from it;
// writes come from the CRUD surfaces and the seed tool.
package repository

import (
	"context"

	"github.com/stagewise/stagewise/internal/domain/model"
)

// Store provides read access to pipeline state snapshots plus the write
// operations the CRUD layer and seeder use. Implementations give no
// transactional guarantee across reads; read skew between fetching
// programs and enrollments is tolerated by the analytics layer.
type Store interface {
	// ListPrograms returns all programs.
	ListPrograms(ctx context.Context) ([]model.Program, error)

	// GetProgram returns one program by id.
	// Returns ErrNotFound if the id is unknown.
	GetProgram(ctx context.Context, id string) (model.Program, error)

	// ListStages returns a program's stages ordered by Order.
	// programID "" lists every stage across programs.
	ListStages(ctx context.Context, programID string) ([]model.Stage, error)

	// ListEnrollments returns enrollments, optionally filtered by program.
	// programID "" lists all enrollments.
	ListEnrollments(ctx context.Context, programID string) ([]model.Enrollment, error)

	// GetCandidate returns one candidate by id.
	// Returns ErrNotFound if the id is unknown.
	GetCandidate(ctx context.Context, id string) (model.Candidate, error)

	// ListCandidates returns all candidates keyed by id, for report
	// enrichment.
	ListCandidates(ctx context.Context) (map[string]model.Candidate, error)

	// PutProgram inserts or updates a program. An empty id gets a
	// generated one; the stored record is returned.
	PutProgram(ctx context.Context, p model.Program) (model.Program, error)

	// PutStage inserts or updates a stage. Order must be unique within
	// the program.
	PutStage(ctx context.Context, s model.Stage) (model.Stage, error)

	// PutCandidate inserts or updates a candidate.
	PutCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error)

	// PutEnrollment inserts or updates an enrollment after validating the
	// model invariants and that any current stage belongs to the same
	// program.
	PutEnrollment(ctx context.Context, e model.Enrollment) (model.Enrollment, error)

	// Close releases the underlying resources.
	Close() error
}
