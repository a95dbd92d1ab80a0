package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stagewise/stagewise/internal/domain/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over a single SQLite database in WAL mode.
// WAL lets the request handlers read snapshots while the CRUD surfaces and
// the seeder write concurrently.
type SQLiteStore struct {
	db *sql.DB
}

// timeLayout stores timestamps as RFC3339 UTC strings.
const timeLayout = time.RFC3339

// NewSQLiteStore opens (or creates) the database at path and initializes
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS programs (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS stages (
		id           TEXT PRIMARY KEY,
		program_id   TEXT NOT NULL REFERENCES programs(id),
		ord          INTEGER NOT NULL,
		name         TEXT NOT NULL,
		auto_advance INTEGER NOT NULL DEFAULT 0
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_stages_program_order ON stages(program_id, ord);
	CREATE TABLE IF NOT EXISTS candidates (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		email TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS enrollments (
		id               TEXT PRIMARY KEY,
		program_id       TEXT NOT NULL REFERENCES programs(id),
		candidate_id     TEXT NOT NULL,
		current_stage_id TEXT,
		status           TEXT NOT NULL,
		started_at       TEXT NOT NULL,
		completed_at     TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_enrollments_program ON enrollments(program_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ListPrograms returns all programs ordered by name.
func (s *SQLiteStore) ListPrograms(ctx context.Context) ([]model.Program, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, active FROM programs ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var out []model.Program
	for rows.Next() {
		var p model.Program
		var active int
		if err := rows.Scan(&p.ID, &p.Name, &active); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		p.Active = active != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return out, nil
}

// GetProgram returns one program by id.
func (s *SQLiteStore) GetProgram(ctx context.Context, id string) (model.Program, error) {
	var p model.Program
	var active int
	err := s.db.QueryRowContext(ctx, `SELECT id, name, active FROM programs WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Program{}, fmt.Errorf("program %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Program{}, fmt.Errorf("get program: %w", err)
	}
	p.Active = active != 0
	return p, nil
}

// ListStages returns stages ordered by (program, order). programID "" lists
// every stage.
func (s *SQLiteStore) ListStages(ctx context.Context, programID string) ([]model.Stage, error) {
	query := `SELECT id, program_id, ord, name, auto_advance FROM stages`
	args := []any{}
	if programID != "" {
		query += ` WHERE program_id = ?`
		args = append(args, programID)
	}
	query += ` ORDER BY program_id, ord`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var out []model.Stage
	for rows.Next() {
		var st model.Stage
		var auto int
		if err := rows.Scan(&st.ID, &st.ProgramID, &st.Order, &st.Name, &auto); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		st.AutoAdvance = auto != 0
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return out, nil
}

// ListEnrollments returns enrollments ordered by start time. programID ""
// lists all enrollments.
func (s *SQLiteStore) ListEnrollments(ctx context.Context, programID string) ([]model.Enrollment, error) {
	query := `SELECT id, program_id, candidate_id, current_stage_id, status, started_at, completed_at FROM enrollments`
	args := []any{}
	if programID != "" {
		query += ` WHERE program_id = ?`
		args = append(args, programID)
	}
	query += ` ORDER BY started_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var out []model.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

func scanEnrollment(rows *sql.Rows) (model.Enrollment, error) {
	var (
		e            model.Enrollment
		currentStage sql.NullString
		status       string
		startedAt    string
		completedAt  sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.ProgramID, &e.CandidateID, &currentStage, &status, &startedAt, &completedAt); err != nil {
		return model.Enrollment{}, fmt.Errorf("scan enrollment: %w", err)
	}
	e.CurrentStageID = currentStage.String
	e.Status = model.EnrollmentStatus(status)

	started, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return model.Enrollment{}, fmt.Errorf("enrollment %s: parse started_at: %w", e.ID, err)
	}
	e.StartedAt = started

	if completedAt.Valid {
		completed, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return model.Enrollment{}, fmt.Errorf("enrollment %s: parse completed_at: %w", e.ID, err)
		}
		e.CompletedAt = &completed
	}
	return e, nil
}

// GetCandidate returns one candidate by id.
func (s *SQLiteStore) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	var c model.Candidate
	err := s.db.QueryRowContext(ctx, `SELECT id, name, email FROM candidates WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Candidate{}, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns all candidates keyed by id.
func (s *SQLiteStore) ListCandidates(ctx context.Context) (map[string]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Candidate)
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}

// PutProgram inserts or updates a program.
func (s *SQLiteStore) PutProgram(ctx context.Context, p model.Program) (model.Program, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Name == "" {
		return model.Program{}, fmt.Errorf("program name required: %w", ErrInvalidRecord)
	}
	err := retryOnContention(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO programs (id, name, active) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active`,
			p.ID, p.Name, boolToInt(p.Active))
		return err
	})
	if err != nil {
		return model.Program{}, fmt.Errorf("put program: %w", err)
	}
	return p, nil
}

// PutStage inserts or updates a stage. A duplicate (program, order) pair
// surfaces as ErrStageConflict.
func (s *SQLiteStore) PutStage(ctx context.Context, st model.Stage) (model.Stage, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.ProgramID == "" || st.Name == "" || st.Order < 1 {
		return model.Stage{}, fmt.Errorf("stage needs program, name, and 1-based order: %w", ErrInvalidRecord)
	}
	err := retryOnContention(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO stages (id, program_id, ord, name, auto_advance) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET program_id = excluded.program_id, ord = excluded.ord,
			 name = excluded.name, auto_advance = excluded.auto_advance`,
			st.ID, st.ProgramID, st.Order, st.Name, boolToInt(st.AutoAdvance))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.Stage{}, fmt.Errorf("program %s order %d: %w", st.ProgramID, st.Order, ErrStageConflict)
		}
		return model.Stage{}, fmt.Errorf("put stage: %w", err)
	}
	return st, nil
}

// PutCandidate inserts or updates a candidate.
func (s *SQLiteStore) PutCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := retryOnContention(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO candidates (id, name, email) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`,
			c.ID, c.Name, c.Email)
		return err
	})
	if err != nil {
		return model.Candidate{}, fmt.Errorf("put candidate: %w", err)
	}
	return c, nil
}

// PutEnrollment inserts or updates an enrollment. The model invariants are
// enforced here so no malformed snapshot can reach the analytics layer,
// and a current stage must belong to the enrollment's program.
func (s *SQLiteStore) PutEnrollment(ctx context.Context, e model.Enrollment) (model.Enrollment, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := e.Validate(); err != nil {
		return model.Enrollment{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if e.CurrentStageID != "" {
		var stageProgram string
		err := s.db.QueryRowContext(ctx, `SELECT program_id FROM stages WHERE id = ?`, e.CurrentStageID).
			Scan(&stageProgram)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Enrollment{}, fmt.Errorf("stage %s: %w", e.CurrentStageID, ErrNotFound)
		}
		if err != nil {
			return model.Enrollment{}, fmt.Errorf("check stage: %w", err)
		}
		if stageProgram != e.ProgramID {
			return model.Enrollment{}, fmt.Errorf("stage %s: %w", e.CurrentStageID, ErrWrongProgram)
		}
	}

	var currentStage, completedAt any
	if e.CurrentStageID != "" {
		currentStage = e.CurrentStageID
	}
	if e.CompletedAt != nil {
		completedAt = e.CompletedAt.UTC().Format(timeLayout)
	}

	err := retryOnContention(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO enrollments (id, program_id, candidate_id, current_stage_id, status, started_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET program_id = excluded.program_id,
			 candidate_id = excluded.candidate_id, current_stage_id = excluded.current_stage_id,
			 status = excluded.status, started_at = excluded.started_at, completed_at = excluded.completed_at`,
			e.ID, e.ProgramID, e.CandidateID, currentStage, string(e.Status),
			e.StartedAt.UTC().Format(timeLayout), completedAt)
		return err
	})
	if err != nil {
		return model.Enrollment{}, fmt.Errorf("put enrollment: %w", err)
	}
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
