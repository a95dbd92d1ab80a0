package analytics

import (
	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/stats"
)

// DefaultOnTimeWindowDays is the expected completion window for the on-time
// rate. It is a single fixed expectation, not a per-program SLA.
const DefaultOnTimeWindowDays = 90

// ProgramSatisfaction carries the composite completion and progress metrics
// for one program. Percentages are rounded integers in [0, 100].
type ProgramSatisfaction struct {
	ProgramID                 string `json:"program_id"`
	ProgramName               string `json:"program_name"`
	TotalParticipants         int    `json:"total_participants"`
	CompletionRate            int    `json:"completion_rate"`
	AverageProgressPercentage int    `json:"average_progress_percentage"`
	OnTimeCompletionRate      int    `json:"on_time_completion_rate"`
}

// Satisfaction computes per-program completion, progress, and on-time
// metrics. onTimeDays bounds an on-time completion; values <= 0 fall back
// to DefaultOnTimeWindowDays. Programs with no enrollments produce zero
// rates, never NaN.
func Satisfaction(programs []model.Program, allStages []model.Stage, enrollments []model.Enrollment, onTimeDays int) []ProgramSatisfaction {
	if onTimeDays <= 0 {
		onTimeDays = DefaultOnTimeWindowDays
	}

	out := make([]ProgramSatisfaction, 0, len(programs))
	for _, p := range programs {
		orderByStage := make(map[string]int)
		totalStages := 0
		for _, s := range allStages {
			if s.ProgramID == p.ID {
				orderByStage[s.ID] = s.Order
				totalStages++
			}
		}

		var (
			total, completed, onTime int
			progressSum              float64
		)
		for i := range enrollments {
			e := &enrollments[i]
			if e.ProgramID != p.ID {
				continue
			}
			total++

			if order, ok := orderByStage[e.CurrentStageID]; ok && totalStages > 0 {
				progressSum += float64(order) / float64(totalStages) * 100
			}

			if e.Completed() && e.CompletedAt != nil {
				completed++
				if model.DaysBetween(e.StartedAt, *e.CompletedAt) <= onTimeDays {
					onTime++
				}
			}
		}

		rec := ProgramSatisfaction{
			ProgramID:         p.ID,
			ProgramName:       p.Name,
			TotalParticipants: total,
		}
		if total > 0 {
			rec.CompletionRate = stats.RoundPercent(float64(completed) / float64(total) * 100)
			rec.AverageProgressPercentage = stats.RoundPercent(progressSum / float64(total))
		}
		if completed > 0 {
			rec.OnTimeCompletionRate = stats.RoundPercent(float64(onTime) / float64(completed) * 100)
		}
		out = append(out, rec)
	}
	return out
}
