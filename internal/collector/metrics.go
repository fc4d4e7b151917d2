package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

type collectorMetrics struct {
	pullsTotal *prometheus.CounterVec
	events     *prometheus.CounterVec
}

func newCollectorMetrics(registerer prometheus.Registerer) *collectorMetrics {
	pullsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atomstore",
			Subsystem: "collector",
			Name:      "pulls_total",
			Help:      "Pull requests served, by kind and result.",
		},
		[]string{"kind", "result"},
	)
	registerer.MustRegister(pullsTotal)

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atomstore",
			Subsystem: "collector",
			Name:      "events_total",
			Help:      "Wire events returned by successful pulls, by kind.",
		},
		[]string{"kind"},
	)
	registerer.MustRegister(events)

	return &collectorMetrics{pullsTotal: pullsTotal, events: events}
}

func (m *collectorMetrics) pulled(kind string, r Result, n int) {
	m.pullsTotal.WithLabelValues(kind, r.String()).Inc()
	if r == Success {
		m.events.WithLabelValues(kind).Add(float64(n))
	}
}
