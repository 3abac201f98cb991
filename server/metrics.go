package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the server's Prometheus collectors. Each Server carries its
// own registry so multiple servers can coexist in one process and in tests.
type metrics struct {
	registry *prometheus.Registry

	evaluations *prometheus.CounterVec
	evalSeconds prometheus.Histogram
	requests    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpeph",
			Name:      "evaluations_total",
			Help:      "Point evaluations served, by series and outcome.",
		}, []string{"body", "quantity", "status"}),
		evalSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mpeph",
			Name:      "evaluation_duration_seconds",
			Help:      "Latency of point evaluations.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 10, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpeph",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(m.evaluations, m.evalSeconds, m.requests)

	return m
}
