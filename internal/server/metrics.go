package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the daemon's Prometheus collectors. Everything is updated
// from the simulation goroutine except Clients, which the hub owns.
type Metrics struct {
	Steps        prometheus.Counter
	Ticks        prometheus.Counter
	Saturated    prometheus.Counter
	Instances    prometheus.Gauge
	Clients      prometheus.Gauge
	TickDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "hemosim_steps_total",
			Help: "Integration steps executed, summed over instances.",
		}),
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "hemosim_ticks_total",
			Help: "Runtime ticks processed.",
		}),
		Saturated: factory.NewCounter(prometheus.CounterOpts{
			Name: "hemosim_ticks_saturated_total",
			Help: "Ticks that hit the per-frame step cap.",
		}),
		Instances: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hemosim_instances",
			Help: "Live simulation instances.",
		}),
		Clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hemosim_ws_clients",
			Help: "Connected websocket clients.",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hemosim_tick_seconds",
			Help:    "Wall time spent advancing the runtime per tick.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 2, 12),
		}),
	}
}
