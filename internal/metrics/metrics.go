// Package metrics holds the prometheus collectors for upstream provider calls
// and profile builds. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics groups all collectors.
type Metrics struct {
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	ProfilesBuiltTotal      *prometheus.CounterVec
	ProfileBuildDuration    prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fininsight_upstream_requests_total",
				Help: "Calls to upstream data providers by outcome",
			},
			[]string{"provider", "outcome"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fininsight_upstream_request_duration_seconds",
				Help:    "Latency of upstream data provider calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
		ProfilesBuiltTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fininsight_profiles_built_total",
				Help: "Country profiles built, labelled by per-section outcome",
			},
			[]string{"currency", "rates", "stocks"},
		),
		ProfileBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fininsight_profile_build_duration_seconds",
				Help:    "End-to-end time to build one country profile",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveProfile records one finished profile build. Each flag is true when
// that section carries an error.
func (m *Metrics) ObserveProfile(currencyErr, ratesErr, stocksErr bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProfilesBuiltTotal.WithLabelValues(label(currencyErr), label(ratesErr), label(stocksErr)).Inc()
	m.ProfileBuildDuration.Observe(elapsed.Seconds())
}

func label(failed bool) string {
	if failed {
		return OutcomeError
	}
	return OutcomeOK
}
