// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/report"
)

// ReportsHandler handles participant and program-outcome report requests.
type ReportsHandler struct {
	deps Dependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

func participantFilter(r *http.Request) (report.ParticipantFilter, error) {
	filter := report.ParticipantFilter{ProgramID: r.URL.Query().Get("program_id")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.EnrollmentStatus(raw)
		if !status.Valid() {
			return report.ParticipantFilter{}, fmt.Errorf("%w: unknown status %q", ErrBadRequest, raw)
		}
		filter.Status = status
	}
	return filter, nil
}

// HandleParticipants handles GET /reports/participants requests.
func (h *ReportsHandler) HandleParticipants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	filter, err := participantFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, err := h.deps.ParticipantReport(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rows == nil {
		rows = []report.ParticipantRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleParticipantsCSV handles GET /reports/participants.csv requests.
func (h *ReportsHandler) HandleParticipantsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	filter, err := participantFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Build into a buffer first so errors can still produce a JSON body.
	var buf bytes.Buffer
	if err := h.deps.WriteParticipantsCSV(r.Context(), &buf, filter); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="participants.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleProgramOutcomes handles GET /programs/{id}/outcomes requests.
func (h *ReportsHandler) HandleProgramOutcomes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/programs/")
	programID, ok := strings.CutSuffix(rest, "/outcomes")
	if !ok || programID == "" || strings.Contains(programID, "/") {
		http.NotFound(w, r)
		return
	}

	outcomes, err := h.deps.ProgramOutcomes(r.Context(), programID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}
