// Package metrics holds the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing, which keeps unit tests free
// of registry plumbing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledgersplit"

// Summary outcomes.
const (
	OutcomeSettled    = "settled"
	OutcomeUnsettled  = "unsettled"
	OutcomeImbalanced = "imbalanced"
	OutcomeInvalid    = "invalid"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	summaries       *prometheus.CounterVec
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	snapshotsPruned prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "summaries_total",
			Help:      "Event summaries computed, by outcome.",
		}, []string{"outcome"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Calls to the event backend by operation and status code.",
		}, []string{"op", "code"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Event backend latency.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Event payload cache lookups by result.",
		}, []string{"result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "notifications_total",
			Help:      "Backend change notifications by change type.",
		}, []string{"change_type"}),
		snapshotsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "pruned_total",
			Help:      "Balance snapshots removed by retention.",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.summaries,
		m.backendRequests,
		m.backendDuration,
		m.cacheLookups,
		m.webhooks,
		m.snapshotsPruned,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) Summary(outcome string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(outcome).Inc()
}

// Backend records a backend call. code is 0 when no response was received.
func (m *Metrics) Backend(op string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.backendRequests.WithLabelValues(op, label).Inc()
	m.backendDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) Cache(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) Webhook(changeType string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(changeType).Inc()
}

func (m *Metrics) SnapshotsPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.snapshotsPruned.Add(float64(n))
}
