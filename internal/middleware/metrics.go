package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/avrouter"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// MiddlewareMetrics holds Prometheus metrics for middleware
// operations.
type MiddlewareMetrics struct {
	rateLimitAllowed  prometheus.Counter
	rateLimitRejected prometheus.Counter

	timeoutsTotal *prometheus.CounterVec

	panicsRecovered prometheus.Counter
}

var (
	middlewareMetrics     *MiddlewareMetrics
	middlewareMetricsOnce sync.Once
)

// GetMiddlewareMetrics returns the singleton middleware metrics
// instance.
func GetMiddlewareMetrics() *MiddlewareMetrics {
	middlewareMetricsOnce.Do(func() {
		middlewareMetrics = newMiddlewareMetrics()
	})
	return middlewareMetrics
}

func newMiddlewareMetrics() *MiddlewareMetrics {
	return &MiddlewareMetrics{
		rateLimitAllowed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "routerd",
				Subsystem: "middleware",
				Name:      "rate_limit_allowed_total",
				Help: "Total number of requests " +
					"allowed by rate limiter",
			},
		),
		rateLimitRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "routerd",
				Subsystem: "middleware",
				Name:      "rate_limit_rejected_total",
				Help: "Total number of requests " +
					"rejected by rate limiter",
			},
		),
		timeoutsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routerd",
				Subsystem: "middleware",
				Name:      "request_timeouts_total",
				Help: "Total number of request " +
					"timeouts",
			},
			[]string{"route"},
		),
		panicsRecovered: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "routerd",
				Subsystem: "middleware",
				Name:      "panics_recovered_total",
				Help: "Total number of panics " +
					"recovered",
			},
		),
	}
}

// Metrics returns a middleware that records request metrics into the
// provided collector. Requests are labeled by the matched route
// pattern so that parameterized paths do not explode label
// cardinality.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, recorder := avrouter.ContextWithPatternRecorder(r.Context())
			r = r.WithContext(ctx)

			rw := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			m.IncActiveRequests()
			next.ServeHTTP(rw, r)
			m.DecActiveRequests()

			route := recorder.Pattern()
			if route == "" {
				route = observability.UnmatchedRoute
			}

			requestSize := r.ContentLength
			if requestSize < 0 {
				requestSize = 0
			}

			m.RecordRequest(r.Method, route, rw.status, time.Since(start), requestSize, int64(rw.size))
		})
	}
}
