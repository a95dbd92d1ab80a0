// Package report assembles the compliance reporting shapes from the
// analytics components. It composes trend, duration, bottleneck, and
// satisfaction outputs into dashboard and report payloads and performs no
// I/O of its own; callers fetch the snapshots and render the results.
package report

import (
	"sort"
	"time"

	"github.com/stagewise/stagewise/internal/domain/analytics"
	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/stats"
)

// reportDateLayout renders timestamps as dates in report rows and CSV
// exports. ISO dates keep exports stable across machines.
const reportDateLayout = "2006-01-02"

// DashboardSummary is the aggregate payload behind the main dashboard.
type DashboardSummary struct {
	TotalPrograms        int                   `json:"total_programs"`
	ActivePrograms       int                   `json:"active_programs"`
	TotalEnrollments     int                   `json:"total_enrollments"`
	ActiveEnrollments    int                   `json:"active_enrollments"`
	CompletedEnrollments int                   `json:"completed_enrollments"`
	WithdrawnEnrollments int                   `json:"withdrawn_enrollments"`
	ProgramBreakdown     []ProgramBreakdownRow `json:"program_breakdown"`
}

// ProgramBreakdownRow is one dashboard row per program, combining the
// satisfaction and duration outputs.
type ProgramBreakdownRow struct {
	ProgramID                 string `json:"program_id"`
	ProgramName               string `json:"program_name"`
	Active                    bool   `json:"active"`
	TotalParticipants         int    `json:"total_participants"`
	CompletionRate            int    `json:"completion_rate"`
	AverageProgressPercentage int    `json:"average_progress_percentage"`
	OnTimeCompletionRate      int    `json:"on_time_completion_rate"`
	AverageDays               int    `json:"average_days"`
	MedianDays                int    `json:"median_days"`
	TotalCompleted            int    `json:"total_completed"`
}

// BuildDashboardSummary composes the satisfaction and duration analyses
// into the dashboard-summary shape. Rows come out in program-name order so
// repeated builds over the same snapshot render identically.
func BuildDashboardSummary(programs []model.Program, allStages []model.Stage, enrollments []model.Enrollment, onTimeDays int) DashboardSummary {
	sum := DashboardSummary{
		TotalPrograms:    len(programs),
		TotalEnrollments: len(enrollments),
	}
	for _, p := range programs {
		if p.Active {
			sum.ActivePrograms++
		}
	}
	for i := range enrollments {
		switch enrollments[i].Status {
		case model.StatusCompleted:
			sum.CompletedEnrollments++
		case model.StatusWithdrawn:
			sum.WithdrawnEnrollments++
		default:
			sum.ActiveEnrollments++
		}
	}

	satByProgram := make(map[string]analytics.ProgramSatisfaction)
	for _, s := range analytics.Satisfaction(programs, allStages, enrollments, onTimeDays) {
		satByProgram[s.ProgramID] = s
	}
	durByProgram := make(map[string]analytics.ProgramDuration)
	for _, d := range analytics.TimeToCompletion(programs, enrollments) {
		durByProgram[d.ProgramID] = d
	}

	sum.ProgramBreakdown = make([]ProgramBreakdownRow, 0, len(programs))
	for _, p := range programs {
		sat := satByProgram[p.ID]
		dur := durByProgram[p.ID]
		sum.ProgramBreakdown = append(sum.ProgramBreakdown, ProgramBreakdownRow{
			ProgramID:                 p.ID,
			ProgramName:               p.Name,
			Active:                    p.Active,
			TotalParticipants:         sat.TotalParticipants,
			CompletionRate:            sat.CompletionRate,
			AverageProgressPercentage: sat.AverageProgressPercentage,
			OnTimeCompletionRate:      sat.OnTimeCompletionRate,
			AverageDays:               dur.AverageDays,
			MedianDays:                dur.MedianDays,
			TotalCompleted:            dur.TotalCompleted,
		})
	}
	sort.Slice(sum.ProgramBreakdown, func(i, j int) bool {
		return sum.ProgramBreakdown[i].ProgramName < sum.ProgramBreakdown[j].ProgramName
	})
	return sum
}

// ParticipantRow is one enrollment in the participant report and CSV export.
type ParticipantRow struct {
	EnrollmentID  string `json:"enrollment_id"`
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	Email         string `json:"email"`
	ProgramName   string `json:"program_name"`
	Status        string `json:"status"`
	CurrentStage  string `json:"current_stage"`
	Progress      int    `json:"progress"`
	EnrolledDate  string `json:"enrolled_date"`
	CompletedDate string `json:"completed_date,omitempty"`
	DaysInProgram int    `json:"days_in_program"`
}

// ParticipantFilter narrows the participant report. Zero values mean no
// constraint.
type ParticipantFilter struct {
	ProgramID string
	Status    model.EnrollmentStatus
}

// BuildParticipantRows produces one row per filtered enrollment. Progress is
// stage order over stage count as a rounded percentage; DaysInProgram runs
// to CompletedAt for completed enrollments and to asOf otherwise.
// candidates enriches rows by candidate id; unknown candidates leave the
// name and email blank rather than failing the report.
func BuildParticipantRows(programs []model.Program, allStages []model.Stage, enrollments []model.Enrollment, candidates map[string]model.Candidate, filter ParticipantFilter, asOf time.Time) []ParticipantRow {
	programNames := make(map[string]string, len(programs))
	for _, p := range programs {
		programNames[p.ID] = p.Name
	}
	stageByID := make(map[string]model.Stage, len(allStages))
	stageCount := make(map[string]int, len(programs))
	for _, s := range allStages {
		stageByID[s.ID] = s
		stageCount[s.ProgramID]++
	}

	rows := make([]ParticipantRow, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		if filter.ProgramID != "" && e.ProgramID != filter.ProgramID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}

		row := ParticipantRow{
			EnrollmentID: e.ID,
			CandidateID:  e.CandidateID,
			ProgramName:  programNames[e.ProgramID],
			Status:       string(e.Status),
			EnrolledDate: e.StartedAt.Format(reportDateLayout),
		}
		if c, ok := candidates[e.CandidateID]; ok {
			row.CandidateName = c.Name
			row.Email = c.Email
		}
		if st, ok := stageByID[e.CurrentStageID]; ok {
			row.CurrentStage = st.Name
			if n := stageCount[e.ProgramID]; n > 0 {
				row.Progress = stats.RoundPercent(float64(st.Order) / float64(n) * 100)
			}
		}
		if e.CompletedAt != nil {
			row.CompletedDate = e.CompletedAt.Format(reportDateLayout)
			row.DaysInProgram = model.DaysBetween(e.StartedAt, *e.CompletedAt)
		} else {
			row.DaysInProgram = model.DaysBetween(e.StartedAt, asOf)
		}
		rows = append(rows, row)
	}
	return rows
}

// StageProgressionRow describes one stage in the program outcomes report.
type StageProgressionRow struct {
	StageID     string `json:"stage_id"`
	StageName   string `json:"stage_name"`
	Order       int    `json:"order"`
	CurrentlyAt int    `json:"currently_at"`
	Completed   int    `json:"completed"`
	DropoffRate int    `json:"dropoff_rate"`
}

// ProgramOutcomes is one program's compliance summary plus per-stage
// progression.
type ProgramOutcomes struct {
	ProgramID        string                        `json:"program_id"`
	ProgramName      string                        `json:"program_name"`
	Satisfaction     analytics.ProgramSatisfaction `json:"satisfaction"`
	Duration         analytics.ProgramDuration     `json:"duration"`
	StageProgression []StageProgressionRow         `json:"stage_progression"`
}

// BuildProgramOutcomes assembles the outcomes report for one program.
// Per stage: CurrentlyAt counts enrollments sitting at the stage, Completed
// counts those past it (or completed), and DropoffRate is the rounded
// percentage of withdrawn enrollments that never reached it.
func BuildProgramOutcomes(program model.Program, progStages []model.Stage, enrollments []model.Enrollment, onTimeDays int) ProgramOutcomes {
	var progEnrollments []model.Enrollment
	for i := range enrollments {
		if enrollments[i].ProgramID == program.ID {
			progEnrollments = append(progEnrollments, enrollments[i])
		}
	}

	out := ProgramOutcomes{
		ProgramID:   program.ID,
		ProgramName: program.Name,
	}
	if sats := analytics.Satisfaction([]model.Program{program}, progStages, progEnrollments, onTimeDays); len(sats) == 1 {
		out.Satisfaction = sats[0]
	}
	if durs := analytics.TimeToCompletion([]model.Program{program}, progEnrollments); len(durs) == 1 {
		out.Duration = durs[0]
	}

	orderByStage := make(map[string]int, len(progStages))
	for _, s := range progStages {
		orderByStage[s.ID] = s.Order
	}

	ordered := make([]model.Stage, len(progStages))
	copy(ordered, progStages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	total := len(progEnrollments)
	out.StageProgression = make([]StageProgressionRow, 0, len(ordered))
	for _, s := range ordered {
		row := StageProgressionRow{StageID: s.ID, StageName: s.Name, Order: s.Order}
		dropped := 0
		for i := range progEnrollments {
			e := &progEnrollments[i]
			cur := orderByStage[e.CurrentStageID] // 0 when not yet started
			if e.CurrentStageID == s.ID {
				row.CurrentlyAt++
			}
			if cur > s.Order || e.Completed() {
				row.Completed++
			}
			if e.Status == model.StatusWithdrawn && cur < s.Order {
				dropped++
			}
		}
		if total > 0 {
			row.DropoffRate = stats.RoundPercent(float64(dropped) / float64(total) * 100)
		}
		out.StageProgression = append(out.StageProgression, row)
	}
	return out
}
