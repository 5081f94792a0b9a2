// Package metrics provides Prometheus metrics for the console service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	requestsInFlight   prometheus.Gauge
	apiCallsTotal      *prometheus.CounterVec
	apiCallDuration    *prometheus.HistogramVec
	onboardingTotal    *prometheus.CounterVec
	auditEntriesTotal  *prometheus.CounterVec
	auditStreamClients prometheus.Gauge
}

var (
	globalMetrics *Metrics
	once          sync.Once
)

// NewMetrics creates and registers the collectors once per process.
func NewMetrics() *Metrics {
	once.Do(func() {
		globalMetrics = &Metrics{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "console_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			requestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "console_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
				},
				[]string{"method", "path"},
			),
			requestsInFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "console_http_requests_in_flight",
					Help: "Number of HTTP requests currently being processed",
				},
			),
			apiCallsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "console_api_calls_total",
					Help: "Total number of mock API operations",
				},
				[]string{"operation", "status"},
			),
			apiCallDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "console_api_call_duration_seconds",
					Help:    "Mock API operation duration in seconds, simulated latency included",
					Buckets: []float64{0.001, 0.01, 0.1, 0.3, 0.5, 0.8, 1, 2.5},
				},
				[]string{"operation"},
			),
			onboardingTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "console_tenant_onboardings_total",
					Help: "Total number of tenant onboarding attempts",
				},
				[]string{"status"},
			),
			auditEntriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "console_audit_entries_total",
					Help: "Total number of audit log entries written",
				},
				[]string{"action"},
			),
			auditStreamClients: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "console_audit_stream_clients",
					Help: "Number of connected live audit stream clients",
				},
			),
		}
	})
	return globalMetrics
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRequest records an HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncRequestsInFlight increments the in-flight gauge.
func (m *Metrics) IncRequestsInFlight() {
	m.requestsInFlight.Inc()
}

// DecRequestsInFlight decrements the in-flight gauge.
func (m *Metrics) DecRequestsInFlight() {
	m.requestsInFlight.Dec()
}

// RecordAPICall records one mock API operation.
func (m *Metrics) RecordAPICall(operation string, duration time.Duration, err error) {
	m.apiCallsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
	m.apiCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOnboarding records the outcome of a tenant onboarding.
func (m *Metrics) RecordOnboarding(err error) {
	m.onboardingTotal.WithLabelValues(statusLabel(err)).Inc()
}

// RecordAuditEntry counts an audit entry by action.
func (m *Metrics) RecordAuditEntry(action string) {
	m.auditEntriesTotal.WithLabelValues(action).Inc()
}

// SetAuditStreamClients sets the connected audit stream client count.
func (m *Metrics) SetAuditStreamClients(n int) {
	m.auditStreamClients.Set(float64(n))
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
