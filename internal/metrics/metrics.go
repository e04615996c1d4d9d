// Package metrics holds the Prometheus collectors for the store and the HTTP
// surface. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "wfdash"

type Metrics struct {
	Registry *prometheus.Registry

	seeds         *prometheus.CounterVec
	saves         *prometheus.CounterVec
	dateFailures  *prometheus.CounterVec
	contributions prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		seeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_total",
			Help:      "Store initialization attempts by outcome.",
		}, []string{"outcome"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_total",
			Help:      "Full-replace saves by outcome.",
		}, []string{"outcome"}),
		dateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "date_parse_failures_total",
			Help:      "Date fields that could not be parsed, by direction.",
		}, []string{"direction"}),
		contributions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contributions",
			Help:      "Rows in the store after the last load or save.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.Registry.MustRegister(
		m.seeds, m.saves, m.dateFailures, m.contributions, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Seed(outcome string) {
	if m == nil {
		return
	}
	m.seeds.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Save(outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DateFailures(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.dateFailures.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) SetContributions(n int) {
	if m == nil {
		return
	}
	m.contributions.Set(float64(n))
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
