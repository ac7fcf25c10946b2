package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestCount      *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestSize       *prometheus.HistogramVec
	ResponseSize      *prometheus.HistogramVec
	ActiveConnections prometheus.Gauge
	HealthStatus      prometheus.Gauge

	// Data provider and view state
	ProviderCalls *prometheus.CounterVec
	ViewUsers     prometheus.Gauge
	ViewLoading   prometheus.Gauge

	registry *prometheus.Registry
	handler  http.Handler
}

// NewMetrics creates the collectors and registers them on a private registry,
// so several instances can live in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status_code"},
		),
		RequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),
		ResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint", "status_code"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		HealthStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_health_status",
				Help: "Application health status (1 = healthy, 0 = unhealthy)",
			},
		),
		ProviderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_demo_provider_calls_total",
				Help: "Calls made to the mock data provider",
			},
			[]string{"operation"},
		),
		ViewUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "user_demo_view_users",
				Help: "Number of users currently held by the view",
			},
		),
		ViewLoading: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "user_demo_view_loading",
				Help: "Whether the view is loading (1) or idle (0)",
			},
		),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.RequestCount,
		m.RequestDuration,
		m.RequestSize,
		m.ResponseSize,
		m.ActiveConnections,
		m.HealthStatus,
		m.ProviderCalls,
		m.ViewUsers,
		m.ViewLoading,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return m
}

func (m *Metrics) RecordRequest(method, endpoint string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	status := strconv.Itoa(statusCode)

	m.RequestCount.WithLabelValues(method, endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.ResponseSize.WithLabelValues(method, endpoint, status).Observe(float64(responseSize))
}

// RecordProviderCall counts one data provider operation.
func (m *Metrics) RecordProviderCall(operation string) {
	m.ProviderCalls.WithLabelValues(operation).Inc()
}

// SetViewState mirrors the view's user count and loading flag.
func (m *Metrics) SetViewState(users int, loading bool) {
	m.ViewUsers.Set(float64(users))
	m.ViewLoading.Set(boolToFloat(loading))
}

func (m *Metrics) SetHealthStatus(healthy bool) {
	m.HealthStatus.Set(boolToFloat(healthy))
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
