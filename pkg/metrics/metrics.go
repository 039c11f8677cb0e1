// Package metrics holds the Prometheus collectors for the solarcast service.
// All methods are safe on a nil *Metrics so tests and the CLI can run without a registry.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the collectors exported at /metrics.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Estimates        *prometheus.CounterVec
	TrainingRuns     *prometheus.CounterVec
	TrainingDuration prometheus.Histogram
	RateLimited      *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	registry         *prometheus.Registry
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register solarcast metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solarcast_upstream_requests_total",
		Help: "Requests issued to external collaborators by provider, operation and outcome",
	}, []string{"provider", "operation", "outcome"})

	m.UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solarcast_upstream_latency_seconds",
		Help:    "Latency of requests to external collaborators",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"provider", "operation"})

	m.Estimates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solarcast_estimates_total",
		Help: "Energy estimates served, labelled by sun-hour source (live or simulated)",
	}, []string{"source"})

	m.TrainingRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solarcast_training_runs_total",
		Help: "Regressor training runs by outcome",
	}, []string{"outcome"})

	m.TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solarcast_training_duration_seconds",
		Help:    "Wall time spent training the sun-hour regressor",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	m.RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solarcast_rate_limited_total",
		Help: "Calls rejected by a rate limiter",
	}, []string{"scope"})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solarcast_http_requests_total",
		Help: "HTTP requests served by route and status",
	}, []string{"method", "route", "status"})
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.UpstreamRequests.Describe(ch)
	m.UpstreamLatency.Describe(ch)
	m.Estimates.Describe(ch)
	m.TrainingRuns.Describe(ch)
	m.TrainingDuration.Describe(ch)
	m.RateLimited.Describe(ch)
	m.HTTPRequests.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.UpstreamRequests.Collect(ch)
	m.UpstreamLatency.Collect(ch)
	m.Estimates.Collect(ch)
	m.TrainingRuns.Collect(ch)
	m.TrainingDuration.Collect(ch)
	m.RateLimited.Collect(ch)
	m.HTTPRequests.Collect(ch)
}

// ObserveUpstream records one call to an external collaborator.
func (m *Metrics) ObserveUpstream(provider, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(provider, operation, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// IncEstimate counts an estimate by sun-hour source.
func (m *Metrics) IncEstimate(source string) {
	if m == nil {
		return
	}
	m.Estimates.WithLabelValues(source).Inc()
}

// ObserveTraining records a finished training run.
func (m *Metrics) ObserveTraining(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.TrainingRuns.WithLabelValues(outcome).Inc()
	m.TrainingDuration.Observe(elapsed.Seconds())
}

// IncRateLimited counts a rejected call for the given scope.
func (m *Metrics) IncRateLimited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}

// ObserveHTTP counts a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
