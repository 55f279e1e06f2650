package avrouter

import "net/http"

// Handler responds to a routed HTTP request. The matched route's
// parameter bindings arrive as the third argument; they are also stored
// in the request context for code that cannot change its signature.
type Handler interface {
	ServeRoute(w http.ResponseWriter, r *http.Request, ps Params)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, ps Params)

// ServeRoute calls f(w, r, ps).
func (f HandlerFunc) ServeRoute(w http.ResponseWriter, r *http.Request, ps Params) {
	f(w, r, ps)
}

// WrapHandler adapts a plain http.Handler. The wrapped handler reads
// its bindings with ParamsFromContext(r.Context()).
func WrapHandler(h http.Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request, _ Params) {
		h.ServeHTTP(w, r)
	})
}

// WrapHandlerFunc adapts a plain http.HandlerFunc.
func WrapHandlerFunc(f http.HandlerFunc) Handler {
	return WrapHandler(f)
}
