package analytics

import (
	"math"
	"sort"

	"github.com/stagewise/stagewise/internal/domain/model"
)

// ProgramDuration summarizes time-to-completion for one program.
type ProgramDuration struct {
	ProgramID      string `json:"program_id"`
	ProgramName    string `json:"program_name"`
	AverageDays    int    `json:"average_days"`
	MedianDays     int    `json:"median_days"`
	MinDays        int    `json:"min_days"`
	MaxDays        int    `json:"max_days"`
	TotalCompleted int    `json:"total_completed"`
}

// TimeToCompletion computes the completion-duration distribution per
// program. A program with no completed enrollments yields an all-zero
// record with TotalCompleted 0, which is a common case rather than an error.
//
// Day counts are floored whole days. The median takes the lower-middle
// element for even-length cohorts; reports depend on this tie-break.
func TimeToCompletion(programs []model.Program, enrollments []model.Enrollment) []ProgramDuration {
	out := make([]ProgramDuration, 0, len(programs))

	for _, p := range programs {
		var days []int
		for i := range enrollments {
			e := &enrollments[i]
			if e.ProgramID != p.ID || !e.Completed() || e.CompletedAt == nil {
				continue
			}
			days = append(days, model.DaysBetween(e.StartedAt, *e.CompletedAt))
		}

		rec := ProgramDuration{ProgramID: p.ID, ProgramName: p.Name}
		if len(days) > 0 {
			sort.Ints(days)
			var sum int
			for _, d := range days {
				sum += d
			}
			rec.AverageDays = int(math.Round(float64(sum) / float64(len(days))))
			rec.MedianDays = days[(len(days)-1)/2]
			rec.MinDays = days[0]
			rec.MaxDays = days[len(days)-1]
			rec.TotalCompleted = len(days)
		}
		out = append(out, rec)
	}
	return out
}
