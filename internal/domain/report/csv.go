package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvHeader is the documented export column order. Downstream spreadsheet
// imports parse by position, so the order must not change.
var csvHeader = []string{
	"Participant ID",
	"Candidate Name",
	"Email",
	"Program",
	"Status",
	"Current Stage",
	"Progress %",
	"Enrolled Date",
	"Completed Date",
	"Days in Program",
}

// WriteParticipantsCSV writes the participant report as CSV: the fixed
// header row followed by one row per enrollment. Completed Date stays
// empty for enrollments that have not completed.
func WriteParticipantsCSV(w io.Writer, rows []ParticipantRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range rows {
		r := &rows[i]
		record := []string{
			r.EnrollmentID,
			r.CandidateName,
			r.Email,
			r.ProgramName,
			r.Status,
			r.CurrentStage,
			strconv.Itoa(r.Progress),
			r.EnrolledDate,
			r.CompletedDate,
			strconv.Itoa(r.DaysInProgram),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
