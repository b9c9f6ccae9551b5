package middleware

import (
	"net/http"
	"time"

	"github.com/liflo-ai/liflo/internal/metrics"
)

// Metrics records request counts, latency and in-flight requests.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := wrap(w)

		metrics.RequestStarted()
		defer func() {
			metrics.RequestFinished(r.Method, metrics.CanonicalPath(r.URL.Path), rw.statusCode, time.Since(start))
		}()

		next.ServeHTTP(rw, r)
	})
}
