package avrouter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Match outcome label values.
const (
	outcomeMatched          = "matched"
	outcomeNotFound         = "not_found"
	outcomeMethodNotAllowed = "method_not_allowed"
)

// matchMetrics holds the package-level Prometheus collectors shared by
// every metrics-enabled Router. They register with the default registry
// on first use via promauto.
type matchMetrics struct {
	matchTotal       *prometheus.CounterVec
	routesRegistered prometheus.Gauge
}

var (
	matchMetricsOnce     sync.Once
	matchMetricsInstance *matchMetrics
)

// getMatchMetrics returns the shared collectors, creating and
// registering them on first call.
func getMatchMetrics() *matchMetrics {
	matchMetricsOnce.Do(func() {
		matchMetricsInstance = &matchMetrics{
			matchTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avrouter",
					Name:      "match_total",
					Help: "Total number of route lookups " +
						"by outcome",
				},
				[]string{"outcome"},
			),
			routesRegistered: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "avrouter",
					Name:      "routes_registered",
					Help: "Number of routes registered " +
						"across metrics-enabled routers",
				},
			),
		}
	})
	return matchMetricsInstance
}

// recordMatch counts one lookup outcome.
func (r *Router) recordMatch(outcome string) {
	if !r.metricsEnabled {
		return
	}
	getMatchMetrics().matchTotal.WithLabelValues(outcome).Inc()
}

// recordRoute counts one successful registration.
func (r *Router) recordRoute() {
	if !r.metricsEnabled {
		return
	}
	getMatchMetrics().routesRegistered.Inc()
}
