// Package observability provides logging, metrics, and tracing for the
// routing daemon.
//
// # Features
//
//   - Structured logging through a zap-backed Logger interface with
//     re-exported field constructors
//   - Prometheus metrics on a dedicated registry, with an HTTP handler
//     that merges in the default registry so runtime and library-level
//     collectors appear alongside
//   - OpenTelemetry tracing with an OTLP gRPC exporter and ratio-based
//     sampling
//
// # Usage
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = logger.Sync() }()
//
//	metrics := observability.NewMetrics("routerd")
//	http.Handle("/metrics", metrics.Handler())
package observability
