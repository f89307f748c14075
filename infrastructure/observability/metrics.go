// Package observability provides Prometheus metrics, OpenTelemetry tracing
// and the HTTP middleware that feeds both.
package observability

import (
	"net/http"

	"studycapture/domain/core/entities"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// Collector holds all Prometheus metrics for the service. Each collector
// owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	Classifications *prometheus.CounterVec
	TopicsCreated   prometheus.Counter
	NotesCaptured   prometheus.Counter
	MirrorOutcomes  *prometheus.CounterVec

	// Dependency health
	BreakerState *prometheus.GaugeVec
}

// NewCollector creates a collector whose metric names carry namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Classifications by the path that produced them",
			},
			[]string{"path"},
		),
		TopicsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "topics_created_total",
				Help:      "Total number of topics created",
			},
		),
		NotesCaptured: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notes_captured_total",
				Help:      "Total number of notes saved to the local store",
			},
		),
		MirrorOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_outcomes_total",
				Help:      "Mirror attempts by outcome",
			},
			[]string{"status"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Classifications,
		c.TopicsCreated,
		c.NotesCaptured,
		c.MirrorOutcomes,
		c.BreakerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ClassificationCompleted(path entities.ClassificationPath) {
	c.Classifications.WithLabelValues(string(path)).Inc()
}

func (c *Collector) TopicCreated() {
	c.TopicsCreated.Inc()
}

func (c *Collector) NoteCaptured() {
	c.NotesCaptured.Inc()
}

func (c *Collector) MirrorOutcome(status string) {
	c.MirrorOutcomes.WithLabelValues(status).Inc()
}

// BreakerStateChanged records the new state of a circuit breaker.
func (c *Collector) BreakerStateChanged(name string, state gobreaker.State) {
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}
