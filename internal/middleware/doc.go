// Package middleware provides HTTP middleware components for the
// router daemon.
//
// This package implements middleware for request processing,
// observability, and traffic management around the route dispatcher.
//
// # Middleware Components
//
//   - Logging: structured request/response logging with route patterns
//   - Recovery: panic recovery with stack trace logging
//   - Request ID: unique request identifier injection
//   - Metrics: Prometheus request metrics labeled by route pattern
//   - Tracing: OpenTelemetry spans named by route pattern
//   - Rate Limiting: token bucket rate limiter, optionally per client
//   - Timeout: request timeout enforcement
//
// # Usage
//
// Middleware functions follow the standard Go pattern and compose
// through a Chain:
//
//	chain := middleware.NewChain()
//	chain.Use(middleware.Recovery(logger))
//	chain.Use(middleware.RequestID())
//	chain.Use(middleware.Logging(logger))
//	handler := chain.Build(router)
package middleware
