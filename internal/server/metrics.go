package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests   *prometheus.CounterVec
	assemblies *prometheus.CounterVec
	duration   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routes2swagger_http_requests_total",
				Help: "HTTP requests served, by route and status code.",
			},
			[]string{"route", "code"},
		),
		assemblies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routes2swagger_assemblies_total",
				Help: "Swagger document assemblies, by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routes2swagger_assembly_duration_seconds",
			Help:    "Time spent assembling one Swagger document.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
	reg.MustRegister(m.requests, m.assemblies, m.duration)
	return m
}
