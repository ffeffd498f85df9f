// internal/server/middleware.go
package server

import (
	"net/http"
	"time"

	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withObservability logs each request and feeds the request meter.
func withObservability(next http.Handler, obs *observability.Observability, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		if obs != nil {
			obs.RecordRequest(r.Context(), r.Method+" "+r.URL.Path, rec.status, duration)
		}
		log.Debug("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": duration.String(),
		})
	})
}
