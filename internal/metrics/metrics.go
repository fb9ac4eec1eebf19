package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "energy_communities",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_communities",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "energy_communities",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	applicationsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_communities",
			Subsystem: "applications",
			Name:      "submitted_total",
			Help:      "Total number of community applications submitted.",
		},
		[]string{"type"},
	)

	applicationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_communities",
			Subsystem: "applications",
			Name:      "decisions_total",
			Help:      "Total number of community application decisions.",
		},
		[]string{"status"},
	)

	notificationsEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_communities",
			Subsystem: "notifications",
			Name:      "enqueued_total",
			Help:      "Total number of decision notifications handed to the task queue.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		applicationsSubmitted,
		applicationDecisions,
		notificationsEnqueued,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Requests are labelled with the chi route pattern, so path parameters do not explode cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordApplicationSubmitted counts a stored community application
func RecordApplicationSubmitted(energyType string) {
	applicationsSubmitted.WithLabelValues(energyType).Inc()
}

// RecordApplicationDecision counts an applied decision
func RecordApplicationDecision(status string) {
	applicationDecisions.WithLabelValues(status).Inc()
}

// RecordNotificationEnqueued counts an attempt to enqueue a decision notification
func RecordNotificationEnqueued(success bool) {
	notificationsEnqueued.WithLabelValues(strconv.FormatBool(success)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
