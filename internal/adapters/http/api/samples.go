// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
)

// SamplesHandler handles instrumentation sample ingest.
type SamplesHandler struct {
	deps Dependencies
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(deps Dependencies) *SamplesHandler {
	return &SamplesHandler{deps: deps}
}

// sampleRequest mirrors the POST /samples payload.
type sampleRequest struct {
	Name     string            `json:"name"`
	Duration float64           `json:"duration_ms"`
	Type     string            `json:"type"`
	TS       string            `json:"ts,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (s sampleRequest) validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(s.Type) == "":
		return errors.New("missing type")
	case s.Duration < 0:
		return errors.New("duration_ms must be non-negative")
	}
	if !model.SampleType(s.Type).Valid() {
		return fmt.Errorf("unknown type %q", s.Type)
	}
	if s.TS != "" {
		if _, err := time.Parse(time.RFC3339, s.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

type sampleAck struct {
	Status string `json:"status"`
}

// HandlePostSample handles POST /samples requests. A full ingest queue is
// a 429: the buffer never blocks, the queue sheds load instead.
func (h *SamplesHandler) HandlePostSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid json", ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sample := model.MetricSample{
		Name:     req.Name,
		Duration: req.Duration,
		Type:     model.SampleType(req.Type),
		Metadata: req.Metadata,
	}
	if req.TS != "" {
		ts, _ := time.Parse(time.RFC3339, req.TS)
		sample.Timestamp = ts
	}

	accepted, err := h.deps.RecordSample(r.Context(), sample)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if !accepted {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, sampleAck{Status: "accepted"})
}
