// Package metrics exposes the service's Prometheus metrics.
//
// Every collector is registered on a private registry, labelled with the
// service name, so tests can build as many instances as they need.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todo"

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry
	factory  promauto.Factory

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	RateLimitedTotal    *prometheus.CounterVec
}

// New creates the collectors plus the Go runtime and process collectors.
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)
	factory := promauto.With(registerer)

	m := &Metrics{
		registry: registry,
		factory:  factory,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6), // 100B to 10MB
			},
			[]string{"method", "route"},
		),
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordHTTPRequest records one finished request. route is the echo route
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration, responseSize int64) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	if responseSize >= 0 {
		m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(responseSize))
	}
}

func (m *Metrics) RecordRateLimited(route string) {
	m.RateLimitedTotal.WithLabelValues(route).Inc()
}

// RegisterPoolStats exports connection pool gauges read from stat on every scrape.
func (m *Metrics) RegisterPoolStats(stat func() *pgxpool.Stat) {
	gauge := func(name, help string, value func(s *pgxpool.Stat) float64) {
		m.factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stat()) })
	}

	gauge("total_connections", "Total number of connections in the pool",
		func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) })
	gauge("acquired_connections", "Number of connections currently in use",
		func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) })
	gauge("idle_connections", "Number of idle connections",
		func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) })
	gauge("max_connections", "Maximum size of the pool",
		func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) })
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
