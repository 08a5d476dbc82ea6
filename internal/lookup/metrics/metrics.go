package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LookupsTotal    *prometheus.CounterVec
	UpstreamLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		LookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "npi_gateway_lookups_total",
			Help: "Total number of NPI lookups by outcome",
		}, []string{"outcome"}),
		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "npi_gateway_upstream_latency_seconds",
			Help:    "Latency of NPPES registry calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveLookup records one finished lookup with its outcome label.
func (m *Metrics) ObserveLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstreamLatency records the duration of a registry call.
func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	m.UpstreamLatency.Observe(d.Seconds())
}
