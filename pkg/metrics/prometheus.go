// Package metrics provides Prometheus metrics for the folio request
// resolution service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Request lifecycle
	requestsReceived  prometheus.Counter
	requestsDuplicate prometheus.Counter
	outcomes          *prometheus.CounterVec
	resolutionLatency prometheus.Histogram

	// Matching quality
	matchScores    *prometheus.HistogramVec
	ambiguousMatch prometheus.Counter

	// Catalog client
	catalogLatency *prometheus.HistogramVec
	catalogErrors  *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter

	// Operational health
	queueSize    prometheus.Gauge
	workerCount  prometheus.Gauge
	inflightSize prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "folio",
		subsystem: "resolver",
		buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	auto := promauto.With(m.registry)

	m.requestsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "requests_received_total",
		Help: "Total number of book requests accepted for resolution",
	})
	m.requestsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "requests_duplicate_total",
		Help: "Requests rejected because the same author/title was already in flight",
	})
	m.outcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "outcomes_total",
		Help: "Terminal outcomes by status (resolved, not-found, error)",
	}, []string{"status"})
	m.resolutionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "resolution_latency_ms",
		Help:    "End-to-end resolution latency in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.matchScores = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "match_score",
		Help:    "Winning candidate scores by kind (author, book)",
		Buckets: []float64{0, 70, 150, 250, 400, 600, 800, 1000},
	}, []string{"kind"})
	m.ambiguousMatch = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ambiguous_matches_total",
		Help: "Selections whose margin over the runner-up was below the confidence margin",
	})

	m.catalogLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "catalog_request_ms",
		Help:    "Acquisition backend request latency in milliseconds",
		Buckets: m.buckets,
	}, []string{"endpoint"})
	m.catalogErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "catalog_errors_total",
		Help: "Acquisition backend errors by endpoint",
	}, []string{"endpoint"})
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "lookup_cache_hits_total",
		Help: "Catalog lookups served from the TTL cache",
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "lookup_cache_misses_total",
		Help: "Catalog lookups that went to the backend",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Requests waiting for a worker",
	})
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Resolution workers running",
	})
	m.inflightSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "inflight_keys",
		Help: "Author/title pairs currently being resolved",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.buckets,
	}, []string{"route"})

	m.memoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "memory_bytes",
		Help: "Allocated heap bytes",
	})
	m.goroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "goroutines",
		Help: "Current goroutine count",
	})
}

// Handler exposes the manager's registry for the /metrics route.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Handler exposes the global manager's registry.
func Handler() http.Handler { return globalManager.Handler() }

// Package-level recording helpers delegating to the global manager.

func RecordRequestReceived()  { globalManager.requestsReceived.Inc() }
func RecordDuplicateRequest() { globalManager.requestsDuplicate.Inc() }

func RecordOutcome(status string) { globalManager.outcomes.WithLabelValues(status).Inc() }

func RecordResolutionLatency(ms float64) { globalManager.resolutionLatency.Observe(ms) }

func RecordMatchScore(kind string, score float64) {
	globalManager.matchScores.WithLabelValues(kind).Observe(score)
}

func RecordAmbiguousMatch() { globalManager.ambiguousMatch.Inc() }

func RecordCatalogLatency(endpoint string, ms float64) {
	globalManager.catalogLatency.WithLabelValues(endpoint).Observe(ms)
}

func RecordCatalogError(endpoint string) {
	globalManager.catalogErrors.WithLabelValues(endpoint).Inc()
}

func RecordCacheHit()  { globalManager.cacheHits.Inc() }
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

func UpdateQueueSize(n int)    { globalManager.queueSize.Set(float64(n)) }
func UpdateWorkerCount(n int)  { globalManager.workerCount.Set(float64(n)) }
func UpdateInflightSize(n int) { globalManager.inflightSize.Set(float64(n)) }

func RecordHTTPRequest(route, code string) {
	globalManager.httpRequests.WithLabelValues(route, code).Inc()
}

func RecordHTTPDuration(route string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(route).Observe(ms)
}

func UpdateMemoryUsage(bytes uint64) { globalManager.memoryUsage.Set(float64(bytes)) }
func UpdateGoroutineCount(n int)     { globalManager.goroutineCount.Set(float64(n)) }
