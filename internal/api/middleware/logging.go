package middleware

import (
	"net/http"
	"time"

	"coinwatch/internal/metrics"
	"coinwatch/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler with access logging and request metrics.
// route is the registered pattern, not the raw path, to keep metric
// cardinality bounded.
func Instrument(route string, log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(route, r.Method, rec.status, elapsed)
		log.Debugw("Request served",
			"route", route,
			"method", r.Method,
			"status", rec.status,
			"elapsed", elapsed,
		)
	})
}
