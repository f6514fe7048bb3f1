package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avatarctic/bookshelf/internal/core/ports"
)

const namespace = "bookshelf"

// ContentCacheMetrics records content cache outcomes.
type ContentCacheMetrics struct {
	hits            *prometheus.CounterVec
	misses          prometheus.Counter
	rebuilds        *prometheus.CounterVec
	rebuildItems    prometheus.Histogram
	storageFailures *prometheus.CounterVec
}

func NewContentCacheMetrics(reg prometheus.Registerer) *ContentCacheMetrics {
	f := promauto.With(reg)
	return &ContentCacheMetrics{
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_hits_total",
			Help:      "Content cache hits by tier",
		}, []string{"tier"}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_misses_total",
			Help:      "Content cache lookups that required a rebuild",
		}),
		rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_rebuilds_total",
			Help:      "Completed rebuilds, labelled by whether the prior payload was merged in",
		}, []string{"supplemented"}),
		rebuildItems: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_cache_rebuild_items",
			Help:      "Number of items in rebuilt payloads",
			Buckets:   []float64{0, 1, 3, 5, 10, 12, 20, 40},
		}),
		storageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_storage_failures_total",
			Help:      "Durable tier failures by operation",
		}, []string{"op"}),
	}
}

var _ ports.ContentCacheObserver = (*ContentCacheMetrics)(nil)

func (m *ContentCacheMetrics) Hit(tier string) { m.hits.WithLabelValues(tier).Inc() }

func (m *ContentCacheMetrics) Miss() { m.misses.Inc() }

func (m *ContentCacheMetrics) Rebuilt(items int, supplemented bool) {
	m.rebuilds.WithLabelValues(strconv.FormatBool(supplemented)).Inc()
	m.rebuildItems.Observe(float64(items))
}

func (m *ContentCacheMetrics) StorageFailure(op string) { m.storageFailures.WithLabelValues(op).Inc() }

// BreakerMetrics tracks circuit breaker state and request outcomes.
type BreakerMetrics struct {
	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

func NewBreakerMetrics(reg prometheus.Registerer) *BreakerMetrics {
	f := promauto.With(reg)
	return &BreakerMetrics{
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		}, []string{"name", "from", "to"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through the circuit breaker by result",
		}, []string{"name", "result"}),
	}
}

func (m *BreakerMetrics) SetState(name string, state float64) {
	m.state.WithLabelValues(name).Set(state)
}

func (m *BreakerMetrics) Transition(name, from, to string) {
	m.transitions.WithLabelValues(name, from, to).Inc()
}

func (m *BreakerMetrics) Request(name, result string) {
	m.requests.WithLabelValues(name, result).Inc()
}
