package storage

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/atomstore/internal/atoms"
)

type storeMetrics struct {
	addsTotal    *prometheus.CounterVec
	records      *prometheus.GaugeVec
	persistTotal *prometheus.CounterVec
}

func newStoreMetrics(registerer prometheus.Registerer) *storeMetrics {
	addsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atomstore",
			Subsystem: "store",
			Name:      "adds_total",
			Help:      "Records added to the store, by kind and what happened to them.",
		},
		[]string{"kind", "outcome"},
	)
	registerer.MustRegister(addsTotal)

	records := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "atomstore",
			Subsystem: "store",
			Name:      "records",
			Help:      "Records currently held, by kind.",
		},
		[]string{"kind"},
	)
	registerer.MustRegister(records)

	persistTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atomstore",
			Subsystem: "store",
			Name:      "persist_total",
			Help:      "Snapshot write attempts, by result.",
		},
		[]string{"result"},
	)
	registerer.MustRegister(persistTotal)

	return &storeMetrics{
		addsTotal:    addsTotal,
		records:      records,
		persistTotal: persistTotal,
	}
}

func (m *storeMetrics) added(k atoms.Kind, outcome string) {
	m.addsTotal.WithLabelValues(k.String(), outcome).Inc()
}

func (m *storeMetrics) observe(s *atoms.Snapshot) {
	for _, k := range atoms.Kinds() {
		if k.Stored() {
			m.records.WithLabelValues(k.String()).Set(float64(s.Len(k)))
		}
	}
}

func (m *storeMetrics) persisted(err error) {
	if err != nil {
		m.persistTotal.WithLabelValues("error").Inc()
		return
	}
	m.persistTotal.WithLabelValues("ok").Inc()
}
