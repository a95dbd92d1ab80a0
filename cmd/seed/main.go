// Command seed populates a pipeline database with synthetic programs,
// stages, candidates, and enrollments for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/stagewise/stagewise/internal/adapters/repository"
	"github.com/stagewise/stagewise/internal/domain/model"
)

const (
	defaultPrograms    = 3
	defaultStages      = 5
	defaultEnrollments = 200
	defaultSpanDays    = 180

	completedShare = 0.35
	withdrawnShare = 0.15
)

var stageNames = []string{
	"Application Review",
	"Phone Screen",
	"Technical Interview",
	"Onsite",
	"Offer",
	"Onboarding",
	"Ramp-up",
}

var programNames = []string{
	"Engineering Residency",
	"Data Fellowship",
	"Product Apprenticeship",
	"Design Cohort",
	"Platform Bootcamp",
}

func main() {
	var (
		dbPath      = flag.String("db", "stagewise.db", "Path to the SQLite database")
		programs    = flag.Int("programs", defaultPrograms, "Number of programs to create")
		stages      = flag.Int("stages", defaultStages, "Stages per program")
		enrollments = flag.Int("enrollments", defaultEnrollments, "Enrollments per program")
		spanDays    = flag.Int("span", defaultSpanDays, "Enrollment start dates spread over this many days")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	ctx := context.Background()

	store, err := repository.NewSQLiteStore(*dbPath)
	if err != nil {
		os.Stderr.WriteString("failed to open database: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(*seed))

	total := 0
	for p := 0; p < *programs; p++ {
		n, err := seedProgram(ctx, store, rng, p, *stages, *enrollments, *spanDays)
		if err != nil {
			os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
			os.Exit(1)
		}
		total += n
	}

	fmt.Printf("seeded %d programs with %d enrollments into %s\n", *programs, total, *dbPath)
}

func seedProgram(ctx context.Context, store repository.Store, rng *rand.Rand, idx, stageCount, enrollmentCount, spanDays int) (int, error) {
	program := model.Program{
		ID:     uuid.NewString(),
		Name:   programNames[idx%len(programNames)],
		Active: true,
	}
	if idx >= len(programNames) {
		program.Name = fmt.Sprintf("%s %d", program.Name, idx/len(programNames)+1)
	}
	if _, err := store.PutProgram(ctx, program); err != nil {
		return 0, err
	}

	stages := make([]model.Stage, 0, stageCount)
	for s := 0; s < stageCount; s++ {
		stage := model.Stage{
			ID:        uuid.NewString(),
			ProgramID: program.ID,
			Order:     s + 1,
			Name:      stageNames[s%len(stageNames)],
		}
		if _, err := store.PutStage(ctx, stage); err != nil {
			return 0, err
		}
		stages = append(stages, stage)
	}

	now := time.Now().UTC()
	for e := 0; e < enrollmentCount; e++ {
		candidate := model.Candidate{
			ID:    uuid.NewString(),
			Name:  fmt.Sprintf("Candidate %04d", rng.Intn(10_000)),
			Email: fmt.Sprintf("candidate%d@example.com", rng.Intn(1_000_000)),
		}
		if _, err := store.PutCandidate(ctx, candidate); err != nil {
			return 0, err
		}

		started := now.AddDate(0, 0, -rng.Intn(spanDays+1))
		enrollment := model.Enrollment{
			ID:          uuid.NewString(),
			ProgramID:   program.ID,
			CandidateID: candidate.ID,
			StartedAt:   started,
		}

		switch roll := rng.Float64(); {
		case roll < completedShare:
			enrollment.Status = model.StatusCompleted
			enrollment.CurrentStageID = stages[len(stages)-1].ID
			completed := started.AddDate(0, 0, 7+rng.Intn(spanDays))
			if completed.After(now) {
				completed = now
			}
			enrollment.CompletedAt = &completed
		case roll < completedShare+withdrawnShare:
			enrollment.Status = model.StatusWithdrawn
			enrollment.CurrentStageID = stages[rng.Intn(len(stages))].ID
		default:
			enrollment.Status = model.StatusActive
			enrollment.CurrentStageID = stages[rng.Intn(len(stages))].ID
		}

		if _, err := store.PutEnrollment(ctx, enrollment); err != nil {
			return 0, err
		}
	}

	return enrollmentCount, nil
}
