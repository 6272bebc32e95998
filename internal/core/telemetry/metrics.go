package telemetry

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type AppMetrics struct {
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	activeConnections prometheus.Gauge
	memoryUsage       prometheus.Gauge
	goroutines        prometheus.Gauge
	projectOperations *prometheus.CounterVec
	todoOperations    *prometheus.CounterVec
	storageOperations *prometheus.CounterVec
	storedProjects    prometheus.Gauge
	storedTodos       prometheus.Gauge
	rateLimitRequests *prometheus.CounterVec
	cacheRequests     *prometheus.CounterVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		memoryUsage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Memory usage in bytes",
			},
		),
		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "goroutines_total",
				Help: "Number of goroutines",
			},
		),
		projectOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "project_operations_total",
				Help: "Total number of project operations",
			},
			[]string{"operation"},
		),
		todoOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_operations_total",
				Help: "Total number of todo operations",
			},
			[]string{"operation"},
		),
		storageOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operations_total",
				Help: "Total number of state storage operations",
			},
			[]string{"operation", "backend", "result"},
		),
		storedProjects: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stored_projects",
				Help: "Number of projects in the last saved or loaded state",
			},
		),
		storedTodos: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stored_todos",
				Help: "Number of todos in the last saved or loaded state",
			},
		),
		rateLimitRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_requests_total",
				Help: "Requests checked by the rate limiter",
			},
			[]string{"path", "result"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_requests_total",
				Help: "GET requests checked against the response cache",
			},
			[]string{"path", "result"},
		),
	}

	registry.MustRegister(
		metrics.requestDuration,
		metrics.requestTotal,
		metrics.activeConnections,
		metrics.memoryUsage,
		metrics.goroutines,
		metrics.projectOperations,
		metrics.todoOperations,
		metrics.storageOperations,
		metrics.storedProjects,
		metrics.storedTodos,
		metrics.rateLimitRequests,
		metrics.cacheRequests,
	)

	return metrics
}

func (m *AppMetrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (m *AppMetrics) IncrementActiveConnections(ctx context.Context) {
	m.activeConnections.Inc()
}

func (m *AppMetrics) DecrementActiveConnections(ctx context.Context) {
	m.activeConnections.Dec()
}

// RecordEntityOperation counts a business event against its entity.
func (m *AppMetrics) RecordEntityOperation(ctx context.Context, entity, operation string) {
	switch entity {
	case "project":
		m.projectOperations.WithLabelValues(operation).Inc()
	case "todo":
		m.todoOperations.WithLabelValues(operation).Inc()
	}
}

func (m *AppMetrics) RecordStorageOperation(ctx context.Context, operation, backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.storageOperations.WithLabelValues(operation, backend, result).Inc()
}

func (m *AppMetrics) SetStoredCounts(projects, todos int) {
	m.storedProjects.Set(float64(projects))
	m.storedTodos.Set(float64(todos))
}

func (m *AppMetrics) RecordRateLimitAllowed(ctx context.Context, path string) {
	m.rateLimitRequests.WithLabelValues(path, "allowed").Inc()
}

func (m *AppMetrics) RecordRateLimitHit(ctx context.Context, path string) {
	m.rateLimitRequests.WithLabelValues(path, "limited").Inc()
}

func (m *AppMetrics) RecordCacheHit(ctx context.Context, path string) {
	m.cacheRequests.WithLabelValues(path, "hit").Inc()
}

func (m *AppMetrics) RecordCacheMiss(ctx context.Context, path string) {
	m.cacheRequests.WithLabelValues(path, "miss").Inc()
}

func (m *AppMetrics) StartSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				var memStats runtime.MemStats
				runtime.ReadMemStats(&memStats)
				m.memoryUsage.Set(float64(memStats.Alloc))

				m.goroutines.Set(float64(runtime.NumGoroutine()))

			case <-ctx.Done():
				return
			}
		}
	}()
}
