// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/perf"
	"github.com/stagewise/stagewise/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics and,
// when a recorder is supplied, an api-typed sample per request. The service
// instruments itself through the same buffer its clients use.
func MetricsMiddleware(next http.HandlerFunc, endpoint string, rec *perf.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCode := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCode)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCode, durationMs)

		if rec != nil {
			rec.Record(endpoint, durationMs, model.SampleAPI, map[string]string{
				"method": r.Method,
				"status": statusCode,
			})
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
