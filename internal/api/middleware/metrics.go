package middleware

import (
	"net/http"
	"strconv"
	"time"

	"hackr_api/internal/platform/metrics"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Metrics records request count by status class and request duration.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status/100)+"xx").Inc()
		metrics.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
