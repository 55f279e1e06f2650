package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// reloadMetrics tracks configuration reload outcomes.
type reloadMetrics struct {
	reloadsTotal      prometheus.Counter
	reloadFailures    prometheus.Counter
	reloadDuration    prometheus.Histogram
	lastReloadSuccess prometheus.Gauge
}

// newReloadMetrics creates the reload collectors and registers them on
// the daemon's registry. Re-registration returns an error for an
// already present collector; the first registration keeps counting.
func newReloadMetrics(m *observability.Metrics) *reloadMetrics {
	rm := &reloadMetrics{
		reloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "routerd",
			Subsystem: "config",
			Name:      "reloads_total",
			Help:      "Total number of configuration reload attempts",
		}),
		reloadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "routerd",
			Subsystem: "config",
			Name:      "reload_failures_total",
			Help:      "Total number of failed configuration reloads",
		}),
		reloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routerd",
			Subsystem: "config",
			Name:      "reload_duration_seconds",
			Help:      "Time taken to apply a configuration reload",
			Buckets:   prometheus.DefBuckets,
		}),
		lastReloadSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "routerd",
			Subsystem: "config",
			Name:      "last_reload_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful reload",
		}),
	}

	for _, c := range []prometheus.Collector{
		rm.reloadsTotal,
		rm.reloadFailures,
		rm.reloadDuration,
		rm.lastReloadSuccess,
	} {
		_ = m.RegisterCollector(c)
	}

	return rm
}

// reloadState tracks the outcome of the most recent configuration
// reload for the readiness report.
type reloadState struct {
	mu      sync.Mutex
	lastErr error
}

// Record stores the outcome of a reload attempt.
func (s *reloadState) Record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// LastError returns the error of the most recent reload attempt, or
// nil when it succeeded or none has happened yet.
func (s *reloadState) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// startConfigWatcher begins watching the configuration file and wires
// reload outcomes into metrics and health state.
func startConfigWatcher(ctx context.Context, app *application, configPath string) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(configPath,
		func(cfg *config.Config) {
			if err := applyConfig(app, cfg); err != nil {
				app.logger.Error("failed to apply reloaded configuration",
					observability.Error(err),
				)
			}
		},
		config.WithLogger(app.logger),
		config.WithErrorCallback(func(err error) {
			recordReloadFailure(app, err)
		}),
	)
	if err != nil {
		return nil, err
	}

	if err := watcher.Start(ctx); err != nil {
		return nil, err
	}
	return watcher, nil
}

// applyConfig swaps the route table for a validated configuration.
// Static sections are compared and reported but keep their boot-time
// values until restart.
func applyConfig(app *application, cfg *config.Config) error {
	app.reloadMu.Lock()
	defer app.reloadMu.Unlock()

	start := time.Now()
	app.reloadMetrics.reloadsTotal.Inc()

	router, err := buildRouter(cfg)
	if err != nil {
		app.reloadMetrics.reloadFailures.Inc()
		app.reloadState.Record(err)
		return err
	}

	warnStaticChanges(app.config, cfg, app.logger)

	app.router.Store(router)
	app.config = cfg
	app.metrics.SetRoutesLoaded(router.Len())
	app.reloadState.Record(nil)

	elapsed := time.Since(start)
	app.reloadMetrics.reloadDuration.Observe(elapsed.Seconds())
	app.reloadMetrics.lastReloadSuccess.SetToCurrentTime()

	app.logger.Info("route table reloaded",
		observability.Int("routes", router.Len()),
		observability.Duration("elapsed", elapsed),
	)
	return nil
}

// recordReloadFailure accounts for a reload attempt that never reached
// applyConfig, such as a load or validation failure.
func recordReloadFailure(app *application, err error) {
	app.reloadMetrics.reloadsTotal.Inc()
	app.reloadMetrics.reloadFailures.Inc()
	app.reloadState.Record(err)
	app.logger.Error("configuration reload failed",
		observability.Error(err),
	)
}

// warnStaticChanges reports configuration sections that only take
// effect at startup.
func warnStaticChanges(before, after *config.Config, logger observability.Logger) {
	sections := []struct {
		name   string
		before interface{}
		after  interface{}
	}{
		{"listen", before.Listen, after.Listen},
		{"admin", before.Admin, after.Admin},
		{"log", before.Log, after.Log},
		{"metrics", before.Metrics, after.Metrics},
		{"tracing", before.Tracing, after.Tracing},
		{"limits", before.Limits, after.Limits},
		{"timeout", before.Timeout, after.Timeout},
	}

	for _, s := range sections {
		if configSectionChanged(s.before, s.after) {
			logger.Warn("configuration section changed; restart required to apply",
				observability.String("section", s.name),
			)
		}
	}
}

// configSectionChanged reports whether two configuration sections
// differ, comparing marshaled hashes and falling back to
// reflect.DeepEqual when marshaling fails.
func configSectionChanged(before, after interface{}) bool {
	hb, ha := configSectionHash(before), configSectionHash(after)
	if hb == "" || ha == "" {
		return !reflect.DeepEqual(before, after)
	}
	return hb != ha
}

// configSectionHash returns a stable hash of v for change detection,
// or "" when v cannot be marshaled.
func configSectionHash(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
