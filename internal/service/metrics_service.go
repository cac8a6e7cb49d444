package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the directory.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	dbQueryDuration *prometheus.HistogramVec
	geocodeTotal    *prometheus.CounterVec
	searchFallbacks prometheus.Counter
	prioritiesReset prometheus.Counter
}

// NewMetricsService registers the directory collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of directory queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	geocodeTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_requests_total",
		Help: "Geocode lookups by outcome",
	}, []string{"result"})

	searchFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "instructor_search_fallbacks_total",
		Help: "Proximity searches answered by coverage-list matching",
	})

	prioritiesReset := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "instructor_priorities_expired_total",
		Help: "Priority slots cleared by the sweeper",
	})

	registry.MustRegister(
		requestDuration, requestTotal, cacheLookups, cacheLatency, dbQueryDuration,
		geocodeTotal, searchFallbacks, prioritiesReset,
		collectors.NewGoCollector(),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLookups:    cacheLookups,
		cacheLatency:    cacheLatency,
		dbQueryDuration: dbQueryDuration,
		geocodeTotal:    geocodeTotal,
		searchFallbacks: searchFallbacks,
		prioritiesReset: prioritiesReset,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordGeocode counts a geocode outcome (cached, resolved, not_found, error).
func (m *MetricsService) RecordGeocode(result string) {
	if m == nil {
		return
	}
	m.geocodeTotal.WithLabelValues(result).Inc()
}

// RecordSearchFallback counts a proximity search that fell back to area matching.
func (m *MetricsService) RecordSearchFallback() {
	if m == nil {
		return
	}
	m.searchFallbacks.Inc()
}

// RecordPrioritiesExpired adds n cleared priority slots.
func (m *MetricsService) RecordPrioritiesExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.prioritiesReset.Add(float64(n))
}
