package health

import (
	"net/http"

	"github.com/vyrodovalexey/avrouter"
)

// Probe label values for the probes counter.
const (
	probeHealth    = "health"
	probeReadiness = "readiness"
	probeLiveness  = "liveness"
)

// HealthHandler returns the handler for the full health probe. The
// response carries version, uptime and per-check results; unhealthy
// aggregates map to 503.
func (c *Checker) HealthHandler() avrouter.Handler {
	return avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, _ avrouter.Params) {
		GetHealthMetrics().IncProbe(probeHealth)

		report := c.Health(r.Context())
		c.writeJSON(w, httpStatus(report.Status), report)
	})
}

// ReadinessHandler returns the handler for the readiness probe.
// Draining or a failing critical check maps to 503.
func (c *Checker) ReadinessHandler() avrouter.Handler {
	return avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, _ avrouter.Params) {
		GetHealthMetrics().IncProbe(probeReadiness)

		report := c.Readiness(r.Context())
		c.writeJSON(w, httpStatus(report.Status), report)
	})
}

// LivenessHandler returns the handler for the liveness probe. It only
// reports that the process is up; no checks run.
func (c *Checker) LivenessHandler() avrouter.Handler {
	return avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, _ avrouter.Params) {
		GetHealthMetrics().IncProbe(probeLiveness)

		w.Header().Set(HeaderContentType, ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

// RegisterRoutes mounts the probe handlers on a router.
func (c *Checker) RegisterRoutes(r *avrouter.Router) error {
	if err := r.Handle(http.MethodGet, "/health", c.HealthHandler()); err != nil {
		return err
	}
	if err := r.Handle(http.MethodGet, "/ready", c.ReadinessHandler()); err != nil {
		return err
	}
	return r.Handle(http.MethodGet, "/live", c.LivenessHandler())
}
