// Package metrics provides Prometheus metrics for the NEO database service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Dataset metrics
	neosIndexed           prometheus.Gauge
	approachesLoaded      prometheus.Gauge
	approachesLinked      prometheus.Gauge
	approachesUnlinked    prometheus.Gauge
	duplicateDesignations prometheus.Gauge
	loadErrors            *prometheus.CounterVec
	loadDuration          *prometheus.HistogramVec

	// Query metrics
	queries      prometheus.Counter
	queryResults prometheus.Counter
	queryLatency prometheus.Histogram
	lookups      *prometheus.CounterVec
	exportRows   *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "neodb",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.neosIndexed = m.gauge("neos_indexed", "Number of NEOs in the designation index")
	m.approachesLoaded = m.gauge("approaches_loaded", "Number of close approaches held by the database")
	m.approachesLinked = m.gauge("approaches_linked", "Number of close approaches linked to a NEO")
	m.approachesUnlinked = m.gauge("approaches_unlinked", "Number of close approaches with no matching NEO")
	m.duplicateDesignations = m.gauge("duplicate_designations", "Number of NEO records shadowed by a later record with the same designation")
	m.loadErrors = m.counterVec("load_errors_total", "Rows skipped while loading, by source", "source")
	m.loadDuration = m.histogramVec("load_duration_milliseconds", "Time spent loading a source file", "source")

	m.queries = m.counter("queries_total", "Total number of close-approach queries")
	m.queryResults = m.counter("query_results_total", "Total number of close approaches returned by queries")
	m.queryLatency = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "query_latency_milliseconds",
		Help:        "Time to drain a query, in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
	m.lookups = m.counterVec("lookups_total", "NEO lookups by key kind and outcome", "by", "found")
	m.exportRows = m.counterVec("export_rows_total", "Rows written by exporters, by format", "format")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.httpRateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// UpdateDatasetSize sets the indexed NEO and approach counts.
func UpdateDatasetSize(neos, approaches int) {
	if !globalManager.enabled {
		return
	}
	globalManager.neosIndexed.Set(float64(neos))
	globalManager.approachesLoaded.Set(float64(approaches))
}

// UpdateLinkage sets linking outcome gauges.
func UpdateLinkage(linked, unlinked, duplicates int) {
	if !globalManager.enabled {
		return
	}
	globalManager.approachesLinked.Set(float64(linked))
	globalManager.approachesUnlinked.Set(float64(unlinked))
	globalManager.duplicateDesignations.Set(float64(duplicates))
}

// RecordLoadError counts a skipped row for source ("neos" or "approaches").
func RecordLoadError(source string) {
	if !globalManager.enabled {
		return
	}
	globalManager.loadErrors.WithLabelValues(source).Inc()
}

// RecordLoadDuration records how long loading source took.
func RecordLoadDuration(source string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.loadDuration.WithLabelValues(source).Observe(durationMs)
}

// RecordQuery records one drained query with its result count and latency.
func RecordQuery(results int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.queries.Inc()
	globalManager.queryResults.Add(float64(results))
	globalManager.queryLatency.Observe(latencyMs)
}

// RecordLookup counts a NEO lookup. by is "designation" or "name".
func RecordLookup(by string, found bool) {
	if !globalManager.enabled {
		return
	}
	f := "false"
	if found {
		f = "true"
	}
	globalManager.lookups.WithLabelValues(by, f).Inc()
}

// RecordExportRows counts rows written in format.
func RecordExportRows(format string, rows int) {
	if !globalManager.enabled {
		return
	}
	globalManager.exportRows.WithLabelValues(format).Add(float64(rows))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it during start-up, before metrics are recorded or served.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	customRegistry = registry
	globalManager = NewManager(append(opts[:len(opts):len(opts)], WithPrometheusRegistry(registry))...)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
