// Package health provides health, readiness and liveness probes for
// the routing daemon's admin listener.
//
// The package implements Kubernetes-compatible probe endpoints with
// extensible check registration, concurrent check execution and
// aggregate status reporting.
//
// # Features
//
//   - Liveness probe (process is up, no checks run)
//   - Readiness probe (all registered checks run concurrently)
//   - Health probe (checks plus version and uptime)
//   - Per-check timeout and criticality
//   - Draining mode for graceful shutdown
//   - Prometheus check status metrics
//
// # Usage
//
// Create a checker, register checks and mount the probe handlers:
//
//	checker := health.NewChecker(version, logger)
//
//	checker.RegisterCheck("config", func(ctx context.Context) error {
//	    return watcher.LastError()
//	})
//
//	_ = admin.Handle("GET", "/health", checker.HealthHandler())
//	_ = admin.Handle("GET", "/ready", checker.ReadinessHandler())
//	_ = admin.Handle("GET", "/live", checker.LivenessHandler())
//
// During shutdown, call SetDraining(true) so readiness flips to 503
// before the listener stops accepting connections.
package health
