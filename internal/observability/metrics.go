package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnmatchedRoute is the route label for requests no pattern covered,
// keeping label cardinality bounded by the route table.
const UnmatchedRoute = "unmatched"

// Metrics holds the daemon's Prometheus collectors on a dedicated
// registry, keeping them isolated from anything other code registers
// globally.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestSize     *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	routesLoaded    prometheus.Gauge
	buildInfo       *prometheus.GaugeVec
	startTime       prometheus.Gauge
	registry        *prometheus.Registry
}

// NewMetrics creates a Metrics instance. The namespace prefixes every
// metric name and defaults to "routerd".
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "routerd"
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "route", "status"},
	)

	m.requestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "route"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "route", "status"},
	)

	m.activeRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	m.routesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes_loaded",
			Help: "Number of routes in the active " +
				"routing table",
		},
	)

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information for the daemon",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help: "Start time of the daemon in unix " +
				"seconds",
		},
	)

	m.registerCollectors()
	m.startTime.SetToCurrentTime()

	return m
}

// registerCollectors registers all collectors with the registry. Go
// runtime and process collectors are not registered here; the default
// registry already carries them and Handler merges it in.
func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.requestSize,
		m.responseSize,
		m.activeRequests,
		m.routesLoaded,
		m.buildInfo,
		m.startTime,
	)
}

// RecordRequest records a completed HTTP request. The route label must
// be the matched pattern, not the raw path, so cardinality stays
// bounded; pass UnmatchedRoute for misses.
func (m *Metrics) RecordRequest(
	method, route string,
	status int,
	duration time.Duration,
	requestSize, responseSize int64,
) {
	code := strconv.Itoa(status)

	m.requestsTotal.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route, code).
		Observe(duration.Seconds())
	if requestSize > 0 {
		m.requestSize.WithLabelValues(method, route).
			Observe(float64(requestSize))
	}
	m.responseSize.WithLabelValues(method, route, code).
		Observe(float64(responseSize))
}

// IncActiveRequests increments the in-flight request gauge.
func (m *Metrics) IncActiveRequests() {
	m.activeRequests.Inc()
}

// DecActiveRequests decrements the in-flight request gauge.
func (m *Metrics) DecActiveRequests() {
	m.activeRequests.Dec()
}

// SetRoutesLoaded records the size of the active routing table.
func (m *Metrics) SetRoutesLoaded(n int) {
	m.routesLoaded.Set(float64(n))
}

// SetBuildInfo records build metadata as a constant gauge.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// RequestsTotal returns the request counter, exposed for tests.
func (m *Metrics) RequestsTotal() *prometheus.CounterVec {
	return m.requestsTotal
}

// ActiveRequests returns the in-flight gauge, exposed for tests.
func (m *Metrics) ActiveRequests() prometheus.Gauge {
	return m.activeRequests
}

// RegisterCollector registers an additional collector with the
// dedicated registry.
func (m *Metrics) RegisterCollector(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Registry returns the dedicated registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the dedicated registry merged
// with the default gatherer, so package-level collectors such as the
// router's match counters are exposed on the same endpoint.
func (m *Metrics) Handler() http.Handler {
	gatherers := prometheus.Gatherers{m.registry, prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
