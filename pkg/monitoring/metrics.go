package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code", "service"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	// Admission workflow metrics
	admissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admissions_total",
			Help: "Total number of admissions created, by origin",
		},
		[]string{"origin", "service"},
	)

	admissionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_transitions_total",
			Help: "Total number of admission state transitions",
		},
		[]string{"action", "status", "service"},
	)

	// Room inventory metrics
	roomAllocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_allocations_total",
			Help: "Total number of room allocation attempts",
		},
		[]string{"outcome", "service"},
	)

	roomsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rooms_by_status",
			Help: "Current number of rooms per lifecycle status",
		},
		[]string{"status", "service"},
	)

	// Insurance verification metrics
	insuranceVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurance_verifications_total",
			Help: "Total number of insurance verification calls",
		},
		[]string{"outcome", "service"},
	)

	insuranceVerificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insurance_verification_duration_seconds",
			Help:    "Duration of insurance registry calls in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"service"},
	)

	// Discharge gating metrics
	dischargesBlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discharges_blocked_total",
			Help: "Total number of discharge attempts blocked, by reason",
		},
		[]string{"reason", "service"},
	)

	// Transfer queue metrics
	transferDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_decisions_total",
			Help: "Total number of transfer request decisions, by outcome",
		},
		[]string{"outcome", "service"},
	)

	// Database metrics
	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"query_type", "service"},
	)
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	serviceName string
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(serviceName string) *MetricsCollector {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		admissionsTotal,
		admissionTransitionsTotal,
		roomAllocationsTotal,
		roomsByStatus,
		insuranceVerificationsTotal,
		insuranceVerificationDuration,
		dischargesBlockedTotal,
		transferDecisionsTotal,
		dbQueryDuration,
	)

	return &MetricsCollector{
		serviceName: serviceName,
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode, m.serviceName).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, m.serviceName).Observe(duration.Seconds())
}

// RecordAdmission records a created admission by origin
func (m *MetricsCollector) RecordAdmission(origin string) {
	admissionsTotal.WithLabelValues(origin, m.serviceName).Inc()
}

// RecordAdmissionTransition records an admission state transition attempt
func (m *MetricsCollector) RecordAdmissionTransition(action, status string) {
	admissionTransitionsTotal.WithLabelValues(action, status, m.serviceName).Inc()
}

// RecordRoomAllocation records a room allocation outcome
// (allocated, unavailable, cas_lost)
func (m *MetricsCollector) RecordRoomAllocation(outcome string) {
	roomAllocationsTotal.WithLabelValues(outcome, m.serviceName).Inc()
}

// SetRoomsByStatus sets the room count gauge for a status
func (m *MetricsCollector) SetRoomsByStatus(status string, count int) {
	roomsByStatus.WithLabelValues(status, m.serviceName).Set(float64(count))
}

// RecordInsuranceVerification records an insurance verification outcome
func (m *MetricsCollector) RecordInsuranceVerification(outcome string, duration time.Duration) {
	insuranceVerificationsTotal.WithLabelValues(outcome, m.serviceName).Inc()
	insuranceVerificationDuration.WithLabelValues(m.serviceName).Observe(duration.Seconds())
}

// RecordDischargeBlocked records a blocked discharge attempt by reason
func (m *MetricsCollector) RecordDischargeBlocked(reason string) {
	dischargesBlockedTotal.WithLabelValues(reason, m.serviceName).Inc()
}

// RecordTransferDecision records an approved or rejected transfer request
func (m *MetricsCollector) RecordTransferDecision(outcome string) {
	transferDecisionsTotal.WithLabelValues(outcome, m.serviceName).Inc()
}

// RecordDBQuery records database query metrics
func (m *MetricsCollector) RecordDBQuery(queryType string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(queryType, m.serviceName).Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware creates middleware for HTTP request metrics
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		statusCode := strconv.Itoa(wrapper.statusCode)

		m.RecordHTTPRequest(r.Method, r.URL.Path, statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
