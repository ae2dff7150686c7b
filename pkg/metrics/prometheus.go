// Package metrics provides Prometheus metrics for the libero match analysis service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Manager manages all Prometheus metrics for the libero service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Simulation
	matchesAnalyzed    prometheus.Counter
	matchesRejected    *prometheus.CounterVec
	matchesIncomplete  prometheus.Counter
	eventsProcessed    prometheus.Counter
	eventsSkipped      *prometheus.CounterVec
	dataQualityIssues  *prometheus.CounterVec
	streaksRecorded    prometheus.Counter
	analysisLatency    prometheus.Histogram
	seasonAggregations *prometheus.CounterVec
	matchesDuplicate   prometheus.Counter

	// Queue and workers
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueueTotal prometheus.Counter
	queueRejected     *prometheus.CounterVec
	workerCount       prometheus.Gauge
	workerErrors      prometheus.Counter

	// Upstream source
	upstreamFetches       *prometheus.CounterVec
	upstreamFetchDuration prometheus.Histogram

	// Repository
	repositoryLatency *prometheus.HistogramVec
	leaderboardSize   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "libero",
		subsystem:        "analysis",
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

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
			Buckets: m.histogramBuckets,
		})
	}

	m.matchesAnalyzed = counter("matches_analyzed_total", "Total number of matches simulated successfully")
	m.matchesRejected = counterVec("matches_rejected_total", "Total number of matches rejected before simulation", "reason")
	m.matchesIncomplete = counter("matches_incomplete_total", "Matches whose statistics may be incomplete due to skipped events")
	m.eventsProcessed = counter("events_processed_total", "Total number of game events dispatched by the simulator")
	m.eventsSkipped = counterVec("events_skipped_total", "Game events skipped after a per-event failure", "reason")
	m.dataQualityIssues = counterVec("data_quality_issues_total", "Non-fatal data quality findings", "kind")
	m.streaksRecorded = counter("serving_streaks_total", "Serving streaks of length two or more extracted")
	m.analysisLatency = histogram("analysis_latency_milliseconds", "Full match analysis latency in milliseconds")
	m.seasonAggregations = counterVec("season_aggregations_total", "Aggregation calls by outcome", "outcome")
	m.matchesDuplicate = counter("matches_duplicate_total", "Matches ignored because the session already aggregated them")

	m.queueSize = gauge("queue_size", "Current number of matches waiting for analysis")
	m.queueCapacity = gauge("queue_capacity", "Maximum match queue capacity")
	m.queueEnqueueTotal = counter("queue_enqueue_total", "Total number of matches enqueued")
	m.queueRejected = counterVec("queue_rejected_total", "Enqueue attempts that were rejected", "reason")
	m.workerCount = gauge("worker_count", "Current number of analysis workers")
	m.workerErrors = counter("worker_errors_total", "Total number of worker errors")

	m.upstreamFetches = counterVec("upstream_fetches_total", "Upstream match fetches by outcome", "outcome")
	m.upstreamFetchDuration = histogram("upstream_fetch_duration_milliseconds", "Upstream fetch latency in milliseconds")

	m.repositoryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("repository_latency_milliseconds"),
		Help: "Repository operation latency in milliseconds", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"operation"})
	m.leaderboardSize = gauge("streak_leaderboard_size", "Players tracked in the serving streak leaderboard")

	m.httpRequests = counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// Simulation

func RecordMatchAnalyzed(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchesAnalyzed.Inc()
	globalManager.analysisLatency.Observe(latencyMs)
}

func RecordMatchRejected(reason string) {
	if globalManager.enabled {
		globalManager.matchesRejected.WithLabelValues(reason).Inc()
	}
}

func RecordMatchIncomplete() {
	if globalManager.enabled {
		globalManager.matchesIncomplete.Inc()
	}
}

func RecordEventsProcessed(n int) {
	if globalManager.enabled {
		globalManager.eventsProcessed.Add(float64(n))
	}
}

func RecordEventSkipped(reason string) {
	if globalManager.enabled {
		globalManager.eventsSkipped.WithLabelValues(reason).Inc()
	}
}

func RecordDataQualityIssue(kind string) {
	if globalManager.enabled {
		globalManager.dataQualityIssues.WithLabelValues(kind).Inc()
	}
}

func RecordStreaks(n int) {
	if globalManager.enabled {
		globalManager.streaksRecorded.Add(float64(n))
	}
}

func RecordSeasonAggregation(outcome string) {
	if globalManager.enabled {
		globalManager.seasonAggregations.WithLabelValues(outcome).Inc()
	}
}

func RecordMatchDuplicate() {
	if globalManager.enabled {
		globalManager.matchesDuplicate.Inc()
	}
}

// Queue and workers

func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueTotal.Inc()
	}
}

func RecordQueueRejected(reason string) {
	if globalManager.enabled {
		globalManager.queueRejected.WithLabelValues(reason).Inc()
	}
}

func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// Upstream

func RecordUpstreamFetch(outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamFetches.WithLabelValues(outcome).Inc()
	globalManager.upstreamFetchDuration.Observe(latencyMs)
}

// Repository

func RecordRepositoryLatency(operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

func UpdateLeaderboardSize(n int) {
	if globalManager.enabled {
		globalManager.leaderboardSize.Set(float64(n))
	}
}

// HTTP

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// System

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(n int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(n))
	}
}

func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(ms)
	}
}

// GetRegistry returns the custom registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Snapshot sums every family of the custom registry across its label sets.
// Histograms report their sample count.
func Snapshot() (map[string]float64, error) {
	return snapshotOf(customRegistry)
}

func snapshotOf(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	out := make(map[string]float64, len(families))
	for _, f := range families {
		var total float64
		for _, m := range f.GetMetric() {
			switch f.GetType() {
			case dto.MetricType_COUNTER:
				total += m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				total += m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM, dto.MetricType_GAUGE_HISTOGRAM:
				total += float64(m.GetHistogram().GetSampleCount())
			case dto.MetricType_SUMMARY:
				total += float64(m.GetSummary().GetSampleCount())
			case dto.MetricType_UNTYPED:
				total += m.GetUntyped().GetValue()
			}
		}
		out[f.GetName()] = total
	}
	return out, nil
}
