package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsAllowed prometheus.Counter
	RequestsDenied  prometheus.Counter
	CheckFailures   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RequestsAllowed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "npi_gateway_ratelimit_allowed_total",
			Help: "Total number of requests admitted by the rate limiter",
		}),
		RequestsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "npi_gateway_ratelimit_denied_total",
			Help: "Total number of requests rejected with 429",
		}),
		CheckFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "npi_gateway_ratelimit_check_failures_total",
			Help: "Total number of rate limit store errors (requests fail open)",
		}),
	}
}

func (m *Metrics) IncrementAllowed() {
	m.RequestsAllowed.Inc()
}

func (m *Metrics) IncrementDenied() {
	m.RequestsDenied.Inc()
}

func (m *Metrics) IncrementCheckFailures() {
	m.CheckFailures.Inc()
}
