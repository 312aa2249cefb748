// Package metrics exposes registry activity as Prometheus collectors.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// Metrics bundles unit registry metrics. It implements unit.Observer.
type Metrics struct {
	RegistrationsTotal   prometheus.Counter
	UnregistrationsTotal prometheus.Counter
	LookupsTotal         *prometheus.CounterVec
	ConversionsTotal     *prometheus.CounterVec
	RegistrySize         prometheus.GaugeFunc

	registry atomic.Pointer[unit.Registry]
}

var _ unit.Observer = (*Metrics)(nil)

// New constructs metrics and registers them with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RegistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caliper_units_registered_total",
			Help: "Total units added to the registry",
		}),
		UnregistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caliper_units_unregistered_total",
			Help: "Total units removed from the registry",
		}),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caliper_lookups_total",
				Help: "Registry lookups by index and result",
			},
			[]string{"kind", "result"},
		),
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caliper_conversions_total",
				Help: "Conversion factor resolutions by result",
			},
			[]string{"result"},
		),
	}
	m.RegistrySize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "caliper_registry_units",
		Help: "Units currently held by the tracked registry",
	}, m.size)

	reg.MustRegister(
		m.RegistrationsTotal,
		m.UnregistrationsTotal,
		m.LookupsTotal,
		m.ConversionsTotal,
		m.RegistrySize,
	)
	return m
}

// Track makes r the registry reported by the size gauge.
func (m *Metrics) Track(r *unit.Registry) {
	m.registry.Store(r)
}

func (m *Metrics) size() float64 {
	r := m.registry.Load()
	if r == nil {
		return 0
	}
	return float64(r.Len())
}

func (m *Metrics) UnitRegistered(*unit.Unit) {
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) UnitUnregistered(*unit.Unit) {
	m.UnregistrationsTotal.Inc()
}

func (m *Metrics) Lookup(kind string, hit bool) {
	m.LookupsTotal.WithLabelValues(kind, result(hit)).Inc()
}

func (m *Metrics) ConversionResolved(_, _ *unit.Unit, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ConversionsTotal.WithLabelValues(status).Inc()
}

func result(ok bool) string {
	if ok {
		return "hit"
	}
	return "miss"
}
