package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medrex/hospital-flow/pkg/logger"
)

// MonitoringMiddleware combines request IDs, metrics, tracing, and access logs
type MonitoringMiddleware struct {
	metrics *MetricsCollector
	tracing *TracingManager
	logger  *logger.Logger
}

// NewMonitoringMiddleware creates a new monitoring middleware. The tracing
// manager may be nil when tracing is disabled.
func NewMonitoringMiddleware(metrics *MetricsCollector, tracing *TracingManager, log *logger.Logger) *MonitoringMiddleware {
	return &MonitoringMiddleware{
		metrics: metrics,
		tracing: tracing,
		logger:  log,
	}
}

// HTTPMiddleware wraps a handler with request-ID propagation, tracing,
// metrics and a structured access log line
func (mm *MonitoringMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logger.ContextWithRequestID(r.Context(), requestID)

		if mm.tracing != nil {
			spanCtx, span := mm.tracing.StartHTTPSpan(ctx, r.Method, r.URL.Path)
			span.SetAttributes(
				attribute.String("http.request_id", requestID),
				attribute.String("http.user_agent", r.UserAgent()),
			)
			ctx = spanCtx
			defer span.End()
		}

		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		duration := time.Since(start)
		mm.metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(wrapper.statusCode), duration)

		mm.logger.WithFields(map[string]interface{}{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapper.statusCode,
			"duration_ms": duration.Milliseconds(),
			"client_ip":   r.RemoteAddr,
		}).Info("HTTP request")
	})
}
