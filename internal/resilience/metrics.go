package resilience

import (
	"github.com/prometheus/client_golang/prometheus"

	"dev.supermcp.debate/internal/models"
)

// Metrics exports resilience counters to Prometheus.
type Metrics struct {
	callsTotal     *prometheus.CounterVec
	fallbacksTotal prometheus.Counter
	circuitState   *prometheus.GaugeVec
	callLatency    *prometheus.HistogramVec
}

// NewMetrics registers the resilience collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chaindebate",
			Subsystem: "resilience",
			Name:      "calls_total",
			Help:      "Provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		fallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chaindebate",
			Subsystem: "resilience",
			Name:      "fallbacks_total",
			Help:      "Calls answered through the fallback chain.",
		}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "chaindebate",
			Subsystem: "resilience",
			Name:      "circuit_state",
			Help:      "Circuit state per provider (0=closed, 1=half_open, 2=open).",
		}, []string{"provider"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chaindebate",
			Subsystem: "resilience",
			Name:      "call_latency_seconds",
			Help:      "Provider call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider"}),
	}
	reg.MustRegister(m.callsTotal, m.fallbacksTotal, m.circuitState, m.callLatency)
	return m
}

func (m *Metrics) observeCall(provider models.Provider, success bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.callsTotal.WithLabelValues(string(provider), outcome).Inc()
	m.callLatency.WithLabelValues(string(provider)).Observe(seconds)
}

func (m *Metrics) observeFallback() {
	if m == nil {
		return
	}
	m.fallbacksTotal.Inc()
}

func (m *Metrics) observeCircuitState(provider models.Provider, state models.CircuitState) {
	if m == nil {
		return
	}
	var v float64
	switch state {
	case models.CircuitHalfOpen:
		v = 1
	case models.CircuitOpen:
		v = 2
	}
	m.circuitState.WithLabelValues(string(provider)).Set(v)
}
