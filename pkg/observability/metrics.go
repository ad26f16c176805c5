// Package observability holds the Prometheus metrics of the strategy service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// CQRS handler metrics
	HandlerCalls    *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace.
// Each collector owns its registry so tests can build as many as they like.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	handlerCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_calls_total",
			Help:      "Total number of command and query handler calls",
		},
		[]string{"kind", "name", "status"},
	)

	handlerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Command and query handler duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "name"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		handlerCalls,
		handlerDuration,
	)

	return &Collector{
		registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		HandlerCalls:    handlerCalls,
		HandlerDuration: handlerDuration,
	}
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveHandler records one command or query handler call
func (c *Collector) ObserveHandler(kind, name string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.HandlerCalls.WithLabelValues(kind, name, status).Inc()
	c.HandlerDuration.WithLabelValues(kind, name).Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
