package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Status represents an aggregate or per-check health status.
type Status string

const (
	// StatusHealthy indicates the service is healthy.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates the service is degraded but operational.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates the service is unhealthy.
	StatusUnhealthy Status = "unhealthy"
)

// DefaultCheckTimeout is the per-check timeout applied when a check is
// registered without an explicit one.
const DefaultCheckTimeout = 5 * time.Second

// CheckFunc performs a single health check. A nil return means the
// check passed.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the outcome of a single check.
type CheckResult struct {
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Report represents an aggregate probe response.
type Report struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// jsonMarshalFunc is replaceable in tests to exercise encode failures.
//
//nolint:gochecknoglobals
var jsonMarshalFunc = json.Marshal

// registeredCheck is a CheckFunc with its registration options.
type registeredCheck struct {
	name     string
	fn       CheckFunc
	critical bool
	timeout  time.Duration
}

// run executes the check, enforcing the per-check timeout. The check
// function runs on its own goroutine so a stuck check cannot block the
// probe past its deadline.
func (rc *registeredCheck) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- rc.fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("health check timed out after %v", rc.timeout)
	}
}

// CheckOption configures a registered check.
type CheckOption func(*registeredCheck)

// WithCritical controls whether a failing check makes the aggregate
// status unhealthy (true, the default) or merely degraded (false).
func WithCritical(critical bool) CheckOption {
	return func(rc *registeredCheck) {
		rc.critical = critical
	}
}

// WithCheckTimeout overrides the per-check timeout.
func WithCheckTimeout(timeout time.Duration) CheckOption {
	return func(rc *registeredCheck) {
		rc.timeout = timeout
	}
}

// Checker runs registered health checks and renders probe responses.
type Checker struct {
	version   string
	logger    observability.Logger
	startTime time.Time

	mu       sync.RWMutex
	checks   []*registeredCheck
	draining bool
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// NewChecker creates a health checker.
func NewChecker(version string, logger observability.Logger, opts ...CheckerOption) *Checker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	c := &Checker{
		version:   version,
		logger:    logger,
		startTime: time.Now(),
		checks:    make([]*registeredCheck, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterCheck registers a named check. Registering a name twice
// replaces the earlier check.
func (c *Checker) RegisterCheck(name string, fn CheckFunc, opts ...CheckOption) {
	rc := &registeredCheck{
		name:     name,
		fn:       fn,
		critical: true,
		timeout:  DefaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(rc)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.checks {
		if existing.name == name {
			c.checks[i] = rc
			return
		}
	}
	c.checks = append(c.checks, rc)
}

// UnregisterCheck removes a check by name.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.checks {
		if existing.name == name {
			c.checks = append(c.checks[:i], c.checks[i+1:]...)
			return
		}
	}
}

// SetDraining marks the checker as draining. While draining, health and
// readiness probes report unhealthy so load balancers stop routing new
// traffic ahead of shutdown.
func (c *Checker) SetDraining(draining bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draining = draining
}

// IsDraining reports whether the checker is draining.
func (c *Checker) IsDraining() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draining
}

// Health runs all checks and returns the full report including version
// and uptime.
func (c *Checker) Health(ctx context.Context) Report {
	report := c.Readiness(ctx)
	report.Version = c.version
	report.Uptime = time.Since(c.startTime).Round(time.Second).String()
	return report
}

// Readiness runs all checks concurrently and returns the aggregate
// report. While draining it short-circuits to unhealthy without
// running any checks.
func (c *Checker) Readiness(ctx context.Context) Report {
	if c.IsDraining() {
		return Report{
			Status:    StatusUnhealthy,
			Timestamp: time.Now().UTC(),
			Checks: map[string]CheckResult{
				"draining": {
					Status: StatusUnhealthy,
					Error:  "server is draining",
				},
			},
		}
	}

	status, results := c.runChecks(ctx)
	return Report{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

// runChecks executes the registered checks concurrently and aggregates
// their statuses. A failing critical check yields unhealthy; failing
// non-critical checks yield degraded.
func (c *Checker) runChecks(ctx context.Context) (Status, map[string]CheckResult) {
	c.mu.RLock()
	checks := make([]*registeredCheck, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	if len(checks) == 0 {
		return StatusHealthy, results
	}

	overall := StatusHealthy
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, check := range checks {
		wg.Add(1)
		go func(rc *registeredCheck) {
			defer wg.Done()

			start := time.Now()
			err := rc.run(ctx)
			duration := time.Since(start)

			result := CheckResult{
				Status:   StatusHealthy,
				Duration: duration.Round(time.Millisecond).String(),
			}
			if err != nil {
				result.Error = err.Error()
				result.Status = StatusDegraded
				if rc.critical {
					result.Status = StatusUnhealthy
				}
				c.logger.Warn("health check failed",
					observability.String("check", rc.name),
					observability.Error(err),
					observability.Duration("duration", duration),
				)
			}

			GetHealthMetrics().SetCheckStatus(rc.name, err == nil)

			mu.Lock()
			results[rc.name] = result
			overall = worseOf(overall, result.Status)
			mu.Unlock()
		}(check)
	}

	wg.Wait()

	GetHealthMetrics().SetCheckStatus("overall", overall != StatusUnhealthy)
	return overall, results
}

// worseOf returns the more severe of two statuses.
func worseOf(a, b Status) Status {
	if a == StatusUnhealthy || b == StatusUnhealthy {
		return StatusUnhealthy
	}
	if a == StatusDegraded || b == StatusDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// httpStatus maps an aggregate status to a probe response code.
// Degraded still serves traffic.
func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// writeJSON renders a probe response.
func (c *Checker) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := jsonMarshalFunc(v)
	if err != nil {
		c.logger.Error("failed to encode health response",
			observability.Error(err),
		)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		c.logger.Error("failed to write health response",
			observability.Error(err),
		)
	}
}
