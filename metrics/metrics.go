// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TrackedEventsTotal    *prometheus.CounterVec
	TrackingFailuresTotal *prometheus.CounterVec

	RateLimitedTotal   *prometheus.CounterVec
	EmailFailuresTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all collectors on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TrackedEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_tracked_events_total",
				Help: "Tracked events persisted, by kind",
			},
			[]string{"kind"},
		),
		TrackingFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_tracking_failures_total",
				Help: "Tracked events that failed to persist, by kind",
			},
			[]string{"kind"},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_rate_limited_total",
				Help: "Requests denied by a rate limiter",
			},
			[]string{"route"},
		),
		EmailFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "folio_email_failures_total",
				Help: "Notification e-mails that failed to send",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TrackedEventsTotal,
		m.TrackingFailuresTotal,
		m.RateLimitedTotal,
		m.EmailFailuresTotal,
	)
	return m
}

// NewUnregistered returns collectors on a private registry. Used by tests.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
