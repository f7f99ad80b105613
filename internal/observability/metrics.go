package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets    = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	gatewayDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
)

// Metrics holds all Prometheus metric instruments for the server.
type Metrics struct {
	// HTTP metrics (SSE and streamable-HTTP transports only).
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Tool metrics.
	ToolInvocationsTotal *prometheus.CounterVec
	ToolDuration         *prometheus.HistogramVec

	// Gateway metrics.
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec
	SessionRefreshesTotal  prometheus.Counter
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbmcp_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mbmcp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		ToolInvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbmcp_tool_invocations_total",
			Help: "Total number of MCP tool invocations.",
		}, []string{"tool", "status"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mbmcp_tool_duration_seconds",
			Help:    "Tool execution duration in seconds.",
			Buckets: gatewayDurationBuckets,
		}, []string{"tool"}),

		GatewayRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mbmcp_gateway_requests_total",
			Help: "Total number of Metabase API requests.",
		}, []string{"method", "status"}),
		GatewayRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mbmcp_gateway_request_duration_seconds",
			Help:    "Metabase API request duration in seconds.",
			Buckets: gatewayDurationBuckets,
		}, []string{"method"}),
		SessionRefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mbmcp_session_refreshes_total",
			Help: "Total number of Metabase session token fetches.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ToolInvocationsTotal,
		m.ToolDuration,
		m.GatewayRequestsTotal,
		m.GatewayRequestDuration,
		m.SessionRefreshesTotal,
	)

	return m
}

// --- Recording helpers ---
// All recorders tolerate a nil receiver so packages can run without
// instruments in tests.

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordToolInvocation records one tool execution.
func (m *Metrics) RecordToolInvocation(tool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ToolInvocationsTotal.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordGatewayRequest records one Metabase API request.
func (m *Metrics) RecordGatewayRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.GatewayRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSessionRefresh records a session token fetch.
func (m *Metrics) RecordSessionRefresh() {
	if m == nil {
		return
	}
	m.SessionRefreshesTotal.Inc()
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics
// using chi's route pattern (not the actual URL path) to avoid label
// cardinality explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}
