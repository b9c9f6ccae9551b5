package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "liflo",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liflo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "liflo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	aiEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liflo",
			Subsystem: "ai",
			Name:      "evaluations_total",
			Help:      "AI evaluations by provider and result (success, fallback).",
		},
		[]string{"provider", "result"},
	)

	aiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "liflo",
			Subsystem: "ai",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of AI evaluation calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"provider"},
	)

	auditEnqueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "liflo",
			Subsystem: "audit",
			Name:      "events_enqueued_total",
			Help:      "Audit events accepted by the queue.",
		},
	)

	auditBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liflo",
			Subsystem: "audit",
			Name:      "batches_flushed_total",
			Help:      "Audit batches handed to the sink by result (success, fail).",
		},
		[]string{"sink", "result"},
	)

	auditDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liflo",
			Subsystem: "audit",
			Name:      "events_dropped_total",
			Help:      "Audit events lost by reason (sink_error, overflow, closed).",
		},
		[]string{"reason"},
	)

	auditBuffered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "liflo",
			Subsystem: "audit",
			Name:      "buffered_events",
			Help:      "Audit events waiting for the next flush.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		aiEvaluations,
		aiDuration,
		auditEnqueued,
		auditBatches,
		auditDropped,
		auditBuffered,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RequestStarted() {
	httpInFlight.Inc()
}

// RequestFinished records a completed request and releases its in-flight slot.
func RequestFinished(method, path string, status int, duration time.Duration) {
	httpInFlight.Dec()
	p := CanonicalPath(path)
	httpRequests.WithLabelValues(strings.ToUpper(method), p, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(strings.ToUpper(method), p).Observe(duration.Seconds())
}

// RecordAIEvaluation records one evaluator call. fallback is true when the
// record was saved without AI scores.
func RecordAIEvaluation(provider string, duration time.Duration, fallback bool) {
	result := "success"
	if fallback {
		result = "fallback"
	}
	aiEvaluations.WithLabelValues(provider, result).Inc()
	aiDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func AuditEnqueued(n int) {
	auditEnqueued.Add(float64(n))
}

func AuditBuffered(n int) {
	auditBuffered.Set(float64(n))
}

func AuditBatch(sink string, ok bool) {
	result := "success"
	if !ok {
		result = "fail"
	}
	auditBatches.WithLabelValues(sink, result).Inc()
}

func AuditDropped(reason string, n int) {
	auditDropped.WithLabelValues(reason).Add(float64(n))
}

// CanonicalPath collapses resource ids so label cardinality stays bounded.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	if len(parts) == 3 {
		switch parts[1] {
		case "goals", "records":
			parts[2] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}
