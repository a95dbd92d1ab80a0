package analytics

import (
	"sort"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/stats"
)

// stuckMultiplier flags occupants whose tenure exceeds this multiple of the
// stage's own average. The threshold is relative and self-referential: it
// detects outliers within a stage's current population, not an absolute SLA.
const stuckMultiplier = 2.0

// StageBottleneck describes accumulation and slowdown at one pipeline stage.
type StageBottleneck struct {
	StageID            string  `json:"stage_id"`
	StageName          string  `json:"stage_name"`
	ProgramID          string  `json:"program_id"`
	ProgramName        string  `json:"program_name"`
	AverageTimeInStage float64 `json:"average_time_in_stage"`
	ParticipantsStuck  int     `json:"participants_stuck"`
	CompletionRate     int     `json:"completion_rate"`
}

// Bottlenecks flags stages where enrollments accumulate or slow down,
// worst first (descending ParticipantsStuck). Stages with no current
// occupants emit no record.
//
// Tenure is measured from StartedAt to asOf: stage-entry history is not
// modeled, so "time in stage" approximates total tenure in the program.
// With a single occupant the average equals that occupant's tenure and no
// stuck signal is possible.
func Bottlenecks(programs []model.Program, allStages []model.Stage, enrollments []model.Enrollment, asOf time.Time) []StageBottleneck {
	var out []StageBottleneck

	for _, p := range programs {
		var progStages []model.Stage
		for _, s := range allStages {
			if s.ProgramID == p.ID {
				progStages = append(progStages, s)
			}
		}
		if len(progStages) == 0 {
			continue
		}

		orderByStage := make(map[string]int, len(progStages))
		maxOrder := 0
		for _, s := range progStages {
			orderByStage[s.ID] = s.Order
			if s.Order > maxOrder {
				maxOrder = s.Order
			}
		}

		var progEnrollments []model.Enrollment
		for i := range enrollments {
			if enrollments[i].ProgramID == p.ID {
				progEnrollments = append(progEnrollments, enrollments[i])
			}
		}

		for _, s := range progStages {
			var tenures []float64
			for i := range progEnrollments {
				if progEnrollments[i].CurrentStageID == s.ID {
					tenures = append(tenures, float64(model.DaysBetween(progEnrollments[i].StartedAt, asOf)))
				}
			}
			if len(tenures) == 0 {
				continue
			}

			avg := stats.Mean(tenures)
			stuck := 0
			for _, t := range tenures {
				if t > stuckMultiplier*avg {
					stuck++
				}
			}

			out = append(out, StageBottleneck{
				StageID:            s.ID,
				StageName:          s.Name,
				ProgramID:          p.ID,
				ProgramName:        p.Name,
				AverageTimeInStage: avg,
				ParticipantsStuck:  stuck,
				CompletionRate:     stageCompletionRate(progEnrollments, orderByStage, s.Order, maxOrder),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ParticipantsStuck > out[j].ParticipantsStuck
	})
	return out
}

// stageCompletionRate is the fraction of enrollments past the stage relative
// to all enrollments that reached its order position or later, as a rounded
// percentage. "Past" means a current stage with a strictly greater order, or
// a completed enrollment when this is the last stage. The formula ranks by
// assigned order index, so reordering stages after enrollments exist can
// skew it; it is kept as-is for report compatibility.
func stageCompletionRate(enrollments []model.Enrollment, orderByStage map[string]int, stageOrder, maxOrder int) int {
	passed, reached := 0, 0
	for i := range enrollments {
		e := &enrollments[i]
		cur := orderByStage[e.CurrentStageID] // 0 when not yet started

		if cur >= stageOrder || e.Completed() {
			reached++
		}
		if cur > stageOrder || (e.Completed() && stageOrder == maxOrder) {
			passed++
		}
	}
	if reached == 0 {
		return 0
	}
	return stats.RoundPercent(float64(passed) / float64(reached) * 100)
}
