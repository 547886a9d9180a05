package pozeclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the transport and the
// cache coordinator. It is safe for concurrent use and all methods accept a
// nil receiver.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   prometheus.Gauge

	singleFlightAttaches *prometheus.CounterVec
	evictionsTotal       prometheus.Counter
	invalidationsTotal   *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_requests_total",
				Help: "Total number of HTTP requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pozeclient_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pozeclient_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_query_retries_total",
				Help: "Total number of query retry attempts",
			},
			[]string{"key", "attempt"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_cache_hits_total",
				Help: "Total number of fresh cache hits",
			},
			[]string{"key"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_cache_misses_total",
				Help: "Total number of cache misses or stale reads",
			},
			[]string{"key"},
		),
		cacheSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "pozeclient_cache_size",
				Help: "Current number of entries in the query cache",
			},
		),
		singleFlightAttaches: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_singleflight_attaches_total",
				Help: "Total number of subscribers attached to an in-flight fetch",
			},
			[]string{"key"},
		),
		evictionsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "pozeclient_cache_evictions_total",
				Help: "Total number of entries evicted by garbage collection",
			},
		),
		invalidationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_cache_invalidations_total",
				Help: "Total number of targeted invalidations applied",
			},
			[]string{"key"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pozeclient_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type", "method", "endpoint"},
		),
	}

	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordRetry increments retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(key string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(key, strconv.Itoa(attempt)).Inc()
}

// RecordCacheHit increments fresh-hit counter.
func (mc *MetricsCollector) RecordCacheHit(key string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(key).Inc()
}

// RecordCacheMiss increments miss/stale counter.
func (mc *MetricsCollector) RecordCacheMiss(key string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(key).Inc()
}

// RecordCacheSize sets cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(size int) {
	if mc == nil {
		return
	}

	mc.cacheSize.Set(float64(size))
}

// RecordSingleFlightAttach increments the shared in-flight fetch counter.
func (mc *MetricsCollector) RecordSingleFlightAttach(key string) {
	if mc == nil {
		return
	}

	mc.singleFlightAttaches.WithLabelValues(key).Inc()
}

// RecordEviction increments the GC eviction counter.
func (mc *MetricsCollector) RecordEviction() {
	if mc == nil {
		return
	}

	mc.evictionsTotal.Inc()
}

// RecordInvalidation increments the targeted-invalidation counter.
func (mc *MetricsCollector) RecordInvalidation(key string) {
	if mc == nil {
		return
	}

	mc.invalidationsTotal.WithLabelValues(key).Inc()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}

// GetRegistry exposes the underlying prometheus registry when the collector
// was built on one.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	return mc.registry
}
