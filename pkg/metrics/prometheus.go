// Package metrics provides Prometheus metrics for the quiz rewards tooling.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service and the CLIs.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Selection
	selectionsServed prometheus.Counter
	selectionSize    prometheus.Histogram
	selectionErrors  prometheus.Counter

	// Reward planning
	plansBuilt          *prometheus.CounterVec
	cohortParticipants  *prometheus.GaugeVec
	cohortExcluded      *prometheus.GaugeVec
	payoutsPlanned      *prometheus.CounterVec
	payoutAmountPlanned *prometheus.CounterVec
	tournamentAudits    *prometheus.CounterVec

	// Ledger write-back
	payoutsApplied   *prometheus.CounterVec
	payoutsDuplicate prometheus.Counter
	payoutsFailed    prometheus.Counter
	ledgerLatency    prometheus.Histogram
	ledgerRetries    prometheus.Counter

	// Queue and workers
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerActiveCount  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

var disabled atomic.Bool //nolint:gochecknoglobals // runtime switch for the helpers below

// DefaultLatencyBuckets are the millisecond buckets of the latency histograms.
var DefaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only defaults

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager with opts on a fresh registry, which
// GetRegistry returns from then on. Call it once at startup, before the
// registry is served.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(append([]Option{}, opts...), WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// SetEnabled turns the package-level helpers on or off. Collectors stay registered.
func SetEnabled(enabled bool) {
	disabled.Store(!enabled)
}

// Enabled reports whether the package-level helpers record anything.
func Enabled() bool {
	return !disabled.Load()
}

func active() *Manager {
	if disabled.Load() || !globalManager.enabled {
		return nil
	}
	return globalManager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "quiz",
		subsystem:        "rewards",
		histogramBuckets: DefaultLatencyBuckets,
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

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, Buckets: buckets, ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.selectionsServed = m.counter("selections_served_total", "Daily question selections computed")
	m.selectionSize = m.histogram("selection_size", "Number of items returned per daily selection",
		[]float64{0, 1, 2, 5, 10, 20, 50})
	m.selectionErrors = m.counter("selection_errors_total", "Daily selections rejected for invalid input")

	m.plansBuilt = m.counterVec("plans_built_total", "Reward plans computed by kind", "kind")
	m.cohortParticipants = m.gaugeVec("cohort_participants", "Eligible participants in the last plan by kind", "kind")
	m.cohortExcluded = m.gaugeVec("cohort_excluded", "Participants dropped by the lowest-rank policy in the last plan", "kind")
	m.payoutsPlanned = m.counterVec("payouts_planned_total", "Payouts produced by reward strategies", "asset", "strategy")
	m.payoutAmountPlanned = m.counterVec("payout_amount_planned_total", "Sum of planned payout amounts", "asset")
	m.tournamentAudits = m.counterVec("tournament_audits_total", "Tournament payout audits by kind and outcome", "kind", "result")

	m.payoutsApplied = m.counterVec("payouts_applied_total", "Payouts written to the ledger", "asset")
	m.payoutsDuplicate = m.counter("payouts_duplicate_total", "Payouts skipped because their key was already applied")
	m.payoutsFailed = m.counter("payouts_failed_total", "Payouts that exhausted their retries")
	m.ledgerLatency = m.histogram("ledger_write_latency_milliseconds", "Ledger credit latency in milliseconds", m.histogramBuckets)
	m.ledgerRetries = m.counter("ledger_retries_total", "Ledger credit attempts that were retried")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum payout queue capacity")
	m.queueSize = m.gauge("queue_size", "Current payout queue length")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Payout jobs enqueued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Payout jobs rejected by the queue")
	m.workerActiveCount = m.gauge("worker_active_count", "Running payout workers")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", Buckets: m.histogramBuckets, ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
}

// RecordSelection records one served daily selection of the given size.
func RecordSelection(size int) {
	m := active()
	if m == nil {
		return
	}
	m.selectionsServed.Inc()
	m.selectionSize.Observe(float64(size))
}

// RecordSelectionError increments the rejected selection counter.
func RecordSelectionError() {
	m := active()
	if m == nil {
		return
	}
	m.selectionErrors.Inc()
}

// RecordPlan records a computed reward plan.
func RecordPlan(kind string, eligible, excluded int) {
	m := active()
	if m == nil {
		return
	}
	m.plansBuilt.WithLabelValues(kind).Inc()
	m.cohortParticipants.WithLabelValues(kind).Set(float64(eligible))
	m.cohortExcluded.WithLabelValues(kind).Set(float64(excluded))
}

// RecordPayoutPlanned records one payout produced by a strategy.
func RecordPayoutPlanned(asset, strategy string, amount float64) {
	m := active()
	if m == nil {
		return
	}
	m.payoutsPlanned.WithLabelValues(asset, strategy).Inc()
	m.payoutAmountPlanned.WithLabelValues(asset).Add(amount)
}

// RecordTournamentAudit records one tournament audit and whether it balanced.
func RecordTournamentAudit(kind string, balanced bool) {
	m := active()
	if m == nil {
		return
	}
	result := "balanced"
	if !balanced {
		result = "mismatch"
	}
	m.tournamentAudits.WithLabelValues(kind, result).Inc()
}

// RecordPayoutApplied records a successful ledger credit.
func RecordPayoutApplied(asset string) {
	m := active()
	if m == nil {
		return
	}
	m.payoutsApplied.WithLabelValues(asset).Inc()
}

// RecordPayoutDuplicate records a payout skipped by the idempotency check.
func RecordPayoutDuplicate() {
	m := active()
	if m == nil {
		return
	}
	m.payoutsDuplicate.Inc()
}

// RecordPayoutFailed records a payout whose retries were exhausted.
func RecordPayoutFailed() {
	m := active()
	if m == nil {
		return
	}
	m.payoutsFailed.Inc()
}

// RecordLedgerLatency records ledger credit latency in milliseconds.
func RecordLedgerLatency(latencyMs float64) {
	m := active()
	if m == nil {
		return
	}
	m.ledgerLatency.Observe(latencyMs)
}

// RecordLedgerRetry increments the ledger retry counter.
func RecordLedgerRetry() {
	m := active()
	if m == nil {
		return
	}
	m.ledgerRetries.Inc()
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	m := active()
	if m == nil {
		return
	}
	m.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	m := active()
	if m == nil {
		return
	}
	m.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	m := active()
	if m == nil {
		return
	}
	m.queueEnqueued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	m := active()
	if m == nil {
		return
	}
	m.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	m := active()
	if m == nil {
		return
	}
	m.workerActiveCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	m := active()
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	m := active()
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	m := active()
	if m == nil {
		return
	}
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
