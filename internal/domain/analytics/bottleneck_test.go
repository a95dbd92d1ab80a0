package analytics_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stagewise/stagewise/internal/domain/analytics"
	"github.com/stagewise/stagewise/internal/domain/model"
)

func TestBottlenecks(t *testing.T) {
	programs := []model.Program{{ID: "p1", Name: "Engineering Residency"}}
	stages := []model.Stage{
		{ID: "s1", ProgramID: "p1", Order: 1, Name: "Application Review"},
		{ID: "s2", ProgramID: "p1", Order: 2, Name: "Technical Interview"},
		{ID: "s3", ProgramID: "p1", Order: 3, Name: "Offer"},
	}
	asOf := day("2026-06-01")

	Convey("Given a stage with one long-tenured outlier", t, func() {
		// Nine occupants at 10 days, one at 100 days. The average is 19,
		// so only the 100-day tenure exceeds twice the average.
		var enrollments []model.Enrollment
		for i := 0; i < 9; i++ {
			enrollments = append(enrollments, model.Enrollment{
				ID: string(rune('a' + i)), ProgramID: "p1", CurrentStageID: "s1",
				Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -10),
			})
		}
		enrollments = append(enrollments, model.Enrollment{
			ID: "old", ProgramID: "p1", CurrentStageID: "s1",
			Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -100),
		})

		Convey("When computing bottlenecks", func() {
			out := analytics.Bottlenecks(programs, stages, enrollments, asOf)

			Convey("Then exactly the outlier counts as stuck", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].StageID, ShouldEqual, "s1")
				So(out[0].ParticipantsStuck, ShouldEqual, 1)
				So(out[0].AverageTimeInStage, ShouldEqual, 19)
			})

			Convey("And unoccupied stages emit no record", func() {
				for _, b := range out {
					So(b.StageID, ShouldNotEqual, "s2")
					So(b.StageID, ShouldNotEqual, "s3")
				}
			})
		})
	})

	Convey("Given a single occupant in a stage", t, func() {
		enrollments := []model.Enrollment{{
			ID: "only", ProgramID: "p1", CurrentStageID: "s2",
			Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -50),
		}}

		Convey("Then no stuck signal is possible", func() {
			out := analytics.Bottlenecks(programs, stages, enrollments, asOf)
			So(out, ShouldHaveLength, 1)
			So(out[0].ParticipantsStuck, ShouldEqual, 0)
			So(out[0].AverageTimeInStage, ShouldEqual, 50)
		})
	})

	Convey("Given occupants across multiple stages", t, func() {
		var enrollments []model.Enrollment
		// Stage s1: a clear outlier among short tenures.
		for i := 0; i < 9; i++ {
			enrollments = append(enrollments, model.Enrollment{
				ID: string(rune('a' + i)), ProgramID: "p1", CurrentStageID: "s1",
				Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -5),
			})
		}
		enrollments = append(enrollments,
			model.Enrollment{
				ID: "stuck1", ProgramID: "p1", CurrentStageID: "s1",
				Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -80),
			},
			model.Enrollment{
				ID: "calm", ProgramID: "p1", CurrentStageID: "s2",
				Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -30),
			},
		)

		Convey("Then results sort worst first by stuck count", func() {
			out := analytics.Bottlenecks(programs, stages, enrollments, asOf)
			So(out, ShouldHaveLength, 2)
			So(out[0].StageID, ShouldEqual, "s1")
			So(out[0].ParticipantsStuck, ShouldBeGreaterThan, out[1].ParticipantsStuck)
		})
	})

	Convey("Given completion progress through the pipeline", t, func() {
		done := day("2026-05-01")
		enrollments := []model.Enrollment{
			{ID: "e1", ProgramID: "p1", CurrentStageID: "s1", Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -10)},
			{ID: "e2", ProgramID: "p1", CurrentStageID: "s2", Status: model.StatusActive, StartedAt: asOf.AddDate(0, 0, -10)},
			{ID: "e3", ProgramID: "p1", CurrentStageID: "s3", Status: model.StatusCompleted, StartedAt: asOf.AddDate(0, 0, -60), CompletedAt: &done},
		}

		Convey("Then a stage's completion rate counts occupants past it", func() {
			out := analytics.Bottlenecks(programs, stages, enrollments, asOf)

			byStage := make(map[string]analytics.StageBottleneck)
			for _, b := range out {
				byStage[b.StageID] = b
			}

			// All three reached s1; e2 moved past, e3 completed the last
			// stage. 2 of 3 rounds to 67.
			So(byStage["s1"].CompletionRate, ShouldEqual, 67)
			// Two reached s2; only the completed last-stage occupant is
			// past it.
			So(byStage["s2"].CompletionRate, ShouldEqual, 50)
			// The final stage counts completions as passed.
			So(byStage["s3"].CompletionRate, ShouldEqual, 100)
		})
	})

	Convey("Given no enrollments at all", t, func() {
		Convey("Then no bottleneck records are produced", func() {
			So(analytics.Bottlenecks(programs, stages, nil, asOf), ShouldBeEmpty)
		})
	})
}
