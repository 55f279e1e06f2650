package avrouter

// Option configures a Router.
type Option func(*Router)

// WithNotFoundHandler sets the fallback handler invoked when no route
// matches, for both unknown paths and method misses. The fallback
// receives empty Params. On a method miss the Allow header is set
// before the fallback runs.
func WithNotFoundHandler(h Handler) Option {
	return func(r *Router) {
		r.notFound = h
	}
}

// WithMetrics enables or disables the package's Prometheus match
// counters for this router. Enabled by default; the collectors register
// with the default registry on first use, so a router built with
// WithMetrics(false) never touches it.
func WithMetrics(enabled bool) Option {
	return func(r *Router) {
		r.metricsEnabled = enabled
	}
}
