package main

import (
	"net/http"
	"sync/atomic"

	"github.com/vyrodovalexey/avrouter"
	"github.com/vyrodovalexey/avrouter/internal/middleware"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// middlewareChainResult carries the assembled handler plus the
// components that need lifecycle management during shutdown.
type middlewareChainResult struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// buildMiddlewareChain assembles the request path around the router
// snapshot dispatcher. Recovery wraps everything; request IDs and
// logging run before metrics so log lines and spans carry the ID; the
// timeout guard sits innermost, next to dispatch.
func buildMiddlewareChain(app *application, logger observability.Logger) middlewareChainResult {
	chain := middleware.NewChain()

	chain.Use(middleware.Recovery(logger))
	chain.Use(middleware.RequestID())
	chain.Use(middleware.Logging(logger))
	if app.config.Metrics.Enabled {
		chain.Use(middleware.Metrics(app.metrics))
	}
	if app.config.Tracing.Enabled {
		chain.Use(middleware.Tracing(app.config.Tracing.ServiceName))
	}

	rateLimit, limiter := middleware.RateLimitFromConfig(app.config.Limits, logger)
	chain.Use(rateLimit)

	if t := app.config.Timeout.Duration(); t > 0 {
		chain.Use(middleware.Timeout(t, logger))
	}

	return middlewareChainResult{
		handler:     chain.Build(snapshotDispatcher(&app.router)),
		rateLimiter: limiter,
	}
}

// snapshotDispatcher serves each request against the current router
// snapshot. Reloads swap the pointer atomically, so in-flight requests
// finish on the table they started with.
func snapshotDispatcher(router *atomic.Pointer[avrouter.Router]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := router.Load()
		if current == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "router not ready",
			})
			return
		}
		current.ServeHTTP(w, r)
	})
}
