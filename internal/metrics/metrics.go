package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

const namespace = "techsaints"

var (
	defaultHTTPRequestDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	defaultProviderDurationBuckets    = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

// Metrics owns a dedicated registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestDurations *prometheus.HistogramVec
	subscriptions        *prometheus.CounterVec
	rateLimitDecisions   *prometheus.CounterVec
	providerRequests     *prometheus.CounterVec
	providerDurations    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "A histogram of the HTTP request durations.",
			Buckets:   defaultHTTPRequestDurationBuckets,
		}, []string{"method", "route_pattern", "status_code"}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_total",
			Help:      "Number of subscription requests by outcome.",
		}, []string{"outcome"}),
		rateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Number of rate limit checks by decision.",
		}, []string{"limiter", "decision"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Number of calls made to the email provider.",
		}, []string{"operation", "status_code"}),
		providerDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "A histogram of the email provider call durations.",
			Buckets:   defaultProviderDurationBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestDurations,
		m.subscriptions,
		m.rateLimitDecisions,
		m.providerRequests,
		m.providerDurations,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTPRequest(method, routePattern string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestDurations.WithLabelValues(method, routePattern, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

func (m *Metrics) IncSubscription(outcome string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRateLimitDecision(limiter string, blocked bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if blocked {
		decision = "blocked"
	}
	m.rateLimitDecisions.WithLabelValues(limiter, decision).Inc()
}

// ObserveRequest satisfies brevo.Observer.
func (m *Metrics) ObserveRequest(operation string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.providerRequests.WithLabelValues(operation, status).Inc()
	m.providerDurations.WithLabelValues(operation).Observe(duration.Seconds())
}
