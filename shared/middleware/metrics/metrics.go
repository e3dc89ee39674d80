// Package metrics provides Prometheus HTTP metrics middleware.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// LinksIssued counts update links handed out, labelled reused="true" when
	// an unexpired link was sent again instead of minting a new one.
	LinksIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ajd_presigned_links_issued_total",
			Help: "Presigned update links issued",
		},
		[]string{"reused"},
	)

	LinksConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ajd_presigned_links_consumed_total",
			Help: "Presigned update links used to save an update",
		},
	)

	SignupsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ajd_signups_created_total",
			Help: "New supporter records created",
		},
	)

	// ContactConflicts counts rejected writes by the field that collided.
	ContactConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ajd_contact_conflicts_total",
			Help: "Create or update attempts rejected because the contact is taken",
		},
		[]string{"field"},
	)
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records Prometheus metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		// Use chi's route pattern if available to avoid high cardinality
		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}
