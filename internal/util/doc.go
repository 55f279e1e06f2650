// Package util provides shared utilities for the router daemon.
//
// This package contains context helpers and validation functions used
// across the daemon's packages.
//
// # Context Helpers
//
// Context utilities for request-scoped data:
//
//	ctx = util.ContextWithRequestID(ctx, "req-123")
//	requestID := util.RequestIDFromContext(ctx)
//
// # Validation
//
// Input validation helpers for listen addresses, HTTP methods,
// status codes, and durations:
//
//	err := util.ValidateListenAddress(":8080")
//	err := util.ValidateHTTPMethod("GET")
package util
