package pool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeHit      = "hit"
	outcomeMiss     = "miss"
	outcomeFallback = "fallback"
)

// Metrics captures observability instruments for pool operations. A nil
// *Metrics disables instrumentation; all observe methods are nil-safe.
type Metrics struct {
	pullTotal          *prometheus.CounterVec
	attachTotal        *prometheus.CounterVec
	detachTotal        *prometheus.CounterVec
	holdDuration       *prometheus.HistogramVec
	idleObjects        *prometheus.GaugeVec
	doubleReleaseTotal prometheus.Counter
}

// NewMetrics constructs metrics instruments and registers them with the
// provided registerer. A nil registerer falls back to the default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		pullTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repool",
				Subsystem: "pool",
				Name:      "pulls_total",
				Help:      "Total number of pull attempts, labeled by pool and outcome.",
			},
			[]string{"pool", "outcome"},
		),
		attachTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repool",
				Subsystem: "pool",
				Name:      "attaches_total",
				Help:      "Total number of values attached, counting both guard returns and manual reattachment.",
			},
			[]string{"pool"},
		),
		detachTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repool",
				Subsystem: "pool",
				Name:      "detaches_total",
				Help:      "Total number of guards detached, transferring value ownership to the caller.",
			},
			[]string{"pool"},
		),
		holdDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "repool",
				Subsystem: "pool",
				Name:      "hold_duration_seconds",
				Help:      "Time between pulling a value and releasing it.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool"},
		),
		idleObjects: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "repool",
				Subsystem: "pool",
				Name:      "idle_objects",
				Help:      "Number of spare values currently held by the pool.",
			},
			[]string{"pool"},
		),
		doubleReleaseTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "repool",
				Subsystem: "pool",
				Name:      "double_release_total",
				Help:      "Total number of double-release violations detected.",
			},
		),
	}
	reg.MustRegister(m.pullTotal, m.attachTotal, m.detachTotal, m.holdDuration, m.idleObjects, m.doubleReleaseTotal)
	return m
}

func (m *Metrics) observePull(pool, outcome string) {
	if m == nil {
		return
	}
	m.pullTotal.WithLabelValues(pool, outcome).Inc()
}

func (m *Metrics) observeAttach(pool string, size int) {
	if m == nil {
		return
	}
	m.attachTotal.WithLabelValues(pool).Inc()
	m.idleObjects.WithLabelValues(pool).Set(float64(size))
}

func (m *Metrics) observeDetach(pool string) {
	if m == nil {
		return
	}
	m.detachTotal.WithLabelValues(pool).Inc()
}

func (m *Metrics) observeHold(pool string, pulledAt time.Time) {
	if m == nil || pulledAt.IsZero() {
		return
	}
	m.holdDuration.WithLabelValues(pool).Observe(time.Since(pulledAt).Seconds())
}

func (m *Metrics) observeIdle(pool string, size int) {
	if m == nil {
		return
	}
	m.idleObjects.WithLabelValues(pool).Set(float64(size))
}

func (m *Metrics) incDoubleRelease() {
	if m == nil {
		return
	}
	m.doubleReleaseTotal.Inc()
}
