package health

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HealthMetrics holds Prometheus metrics for probe traffic and check
// outcomes.
type HealthMetrics struct {
	probesTotal *prometheus.CounterVec
	checkStatus *prometheus.GaugeVec
}

//nolint:gochecknoglobals
var (
	healthMetricsInstance *HealthMetrics
	healthMetricsOnce     sync.Once
)

// GetHealthMetrics returns the singleton health metrics instance.
// Metrics register on the default Prometheus registry, which the admin
// metrics endpoint gathers alongside the daemon registry.
func GetHealthMetrics() *HealthMetrics {
	healthMetricsOnce.Do(func() {
		healthMetricsInstance = &HealthMetrics{
			probesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "routerd",
					Subsystem: "health",
					Name:      "probes_total",
					Help: "Total number of " +
						"probe requests served",
				},
				[]string{"probe"},
			),
			checkStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "routerd",
					Subsystem: "health",
					Name:      "check_status",
					Help: "Current health check " +
						"status (1=healthy, 0=unhealthy)",
				},
				[]string{"check"},
			),
		}
	})
	return healthMetricsInstance
}

// IncProbe counts one probe request.
func (m *HealthMetrics) IncProbe(probe string) {
	m.probesTotal.WithLabelValues(probe).Inc()
}

// SetCheckStatus records the latest outcome for a check.
func (m *HealthMetrics) SetCheckStatus(check string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.checkStatus.WithLabelValues(check).Set(value)
}

// Init pre-initializes the probe label combinations with zero values
// so the series appear in scrape output immediately after startup.
// Prometheus *Vec types only emit lines after WithLabelValues is
// called at least once. Idempotent.
func (m *HealthMetrics) Init() {
	for _, probe := range []string{probeHealth, probeReadiness, probeLiveness} {
		m.probesTotal.WithLabelValues(probe)
	}
	m.checkStatus.WithLabelValues("overall")
}
