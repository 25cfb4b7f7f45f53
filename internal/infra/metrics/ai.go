package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(correctorCallsTotal, correctorLatency) }

var correctorCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "corrector_calls_total",
		Help: "Calls to external correction providers, labeled by provider and outcome.",
	},
	[]string{"provider", "outcome"}, // 'ok', 'error'
)

var correctorLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "corrector_call_duration_seconds",
		Help:    "Latency of external correction calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	},
	[]string{"provider"},
)

func ObserveCorrectorCall(provider string, seconds float64, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	correctorCallsTotal.WithLabelValues(norm(provider), outcome).Inc()
	correctorLatency.WithLabelValues(norm(provider)).Observe(seconds)
}
