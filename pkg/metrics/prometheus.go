// Package metrics provides Prometheus metrics for the command-center leaderboard.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes recorded on the refresh_runs_total counter.
const (
	OutcomeOK       = "ok"
	OutcomePartial  = "partial"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Refresh pipeline
	refreshRuns      *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	refreshLastUnix  prometheus.Gauge
	upstreamErrors   *prometheus.CounterVec
	pullsFetched     prometheus.Counter
	duplicatePulls   prometheus.Counter
	agentsRanked     prometheus.Gauge
	agentsByClass    *prometheus.GaugeVec
	eventsTotal      prometheus.Gauge
	attendanceTotal  prometheus.Gauge
	queueLength      prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueRejected    prometheus.Counter
	duplicateRefresh prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide collectors

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "phantoms",
		subsystem:        "leaderboard",
		histogramBuckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.refreshRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_runs_total",
		Help: "Refresh passes by outcome (ok, partial, fallback, failed)",
	}, []string{"outcome"})

	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "refresh_duration_milliseconds",
		Help:    "Wall time of a full fetch-and-score refresh pass",
		Buckets: m.histogramBuckets,
	})

	m.refreshLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_last_unix_seconds",
		Help: "Unix time of the last snapshot replacement",
	})

	m.upstreamErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "upstream_errors_total",
		Help: "Upstream fetch failures that degraded to empty input, by source",
	}, []string{"source"})

	m.pullsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pull_requests_fetched_total",
		Help: "Pull request records retrieved from GitHub",
	})

	m.duplicatePulls = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pull_requests_duplicate_total",
		Help: "Pull requests seen twice across pagination pages",
	})

	m.agentsRanked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "agents_ranked",
		Help: "Agents in the current snapshot",
	})

	m.agentsByClass = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "agents_by_class",
		Help: "Agents in the current snapshot by tier class",
	}, []string{"class"})

	m.eventsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_total",
		Help: "Distinct community events known to the current snapshot",
	})

	m.attendanceTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "attendance_total",
		Help: "Attendance rows known to the current snapshot",
	})

	m.queueLength = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_queue_length",
		Help: "Pending refresh jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_queue_capacity",
		Help: "Maximum pending refresh jobs",
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_queue_rejected_total",
		Help: "Refresh requests rejected because the queue was full or closed",
	})

	m.duplicateRefresh = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_duplicate_total",
		Help: "Refresh requests coalesced into an already pending job",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request latency in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_usage_bytes",
		Help: "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutines",
		Help: "Number of goroutines",
	})
}

// RecordRefresh records a finished refresh pass.
func RecordRefresh(outcome string, took time.Duration) error {
	switch outcome {
	case OutcomeOK, OutcomePartial, OutcomeFallback, OutcomeFailed:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	globalManager.refreshRuns.WithLabelValues(outcome).Inc()
	globalManager.refreshDuration.Observe(float64(took.Milliseconds()))
	if outcome != OutcomeFailed {
		globalManager.refreshLastUnix.Set(float64(time.Now().Unix()))
	}
	return nil
}

// RecordUpstreamError counts an upstream failure for source.
func RecordUpstreamError(source string) {
	globalManager.upstreamErrors.WithLabelValues(source).Inc()
}

// RecordPullRequestsFetched adds n to the fetched pull request counter.
func RecordPullRequestsFetched(n int) {
	if n > 0 {
		globalManager.pullsFetched.Add(float64(n))
	}
}

// RecordDuplicatePullRequest counts a pull request seen on more than one page.
func RecordDuplicatePullRequest() {
	globalManager.duplicatePulls.Inc()
}

// UpdateAgents publishes the snapshot size and class distribution.
func UpdateAgents(total int, byClass map[string]int) {
	globalManager.agentsRanked.Set(float64(total))
	globalManager.agentsByClass.Reset()
	for class, n := range byClass {
		globalManager.agentsByClass.WithLabelValues(class).Set(float64(n))
	}
}

// UpdateEventStats publishes the attendance totals of the current snapshot.
func UpdateEventStats(totalEvents, totalAttendance int) {
	globalManager.eventsTotal.Set(float64(totalEvents))
	globalManager.attendanceTotal.Set(float64(totalAttendance))
}

// UpdateQueueLength sets the number of pending refresh jobs.
func UpdateQueueLength(n int) {
	globalManager.queueLength.Set(float64(n))
}

// UpdateQueueCapacity sets the refresh queue capacity.
func UpdateQueueCapacity(n int) {
	globalManager.queueCapacity.Set(float64(n))
}

// RecordQueueRejected counts a rejected refresh request.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// RecordDuplicateRefresh counts a coalesced refresh request.
func RecordDuplicateRefresh() {
	globalManager.duplicateRefresh.Inc()
}

// RecordHTTPRequest records an HTTP request and its latency.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
