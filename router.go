package avrouter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avrouter/pathtree"
)

// Route describes one registered method and pattern pair.
type Route = pathtree.RouteInfo

// Match is the result of a successful Lookup: the stored handler, its
// parameter bindings, and the winning pattern's original spelling.
type Match struct {
	Handler Handler
	Params  Params
	Pattern string
}

// Router matches HTTP requests against registered patterns and
// dispatches to their handlers.
//
// A Router is built then frozen: register every route before serving
// starts, or synchronize registration externally. Once registration
// stops, Lookup and ServeHTTP are safe for unlimited concurrency with
// no locking. To change the route table of a live server, build a new
// Router and swap it in through an atomic pointer.
type Router struct {
	tree           *pathtree.Tree[Handler]
	notFound       Handler
	metricsEnabled bool
}

// New creates an empty Router.
func New(opts ...Option) *Router {
	r := &Router{
		tree:           pathtree.New[Handler](),
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers h for the given method and pattern. The method is
// canonicalized to upper case; any non-empty method is accepted,
// standard or not. Registration is all-or-nothing: on error, matching
// ErrInvalidPattern or ErrDuplicateRoute, the router is unchanged.
func (r *Router) Handle(method, pattern string, h Handler) error {
	if h == nil {
		return pathtree.NewInvalidPatternError(pattern, "handler must not be nil")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if err := r.tree.Insert(method, pattern, h); err != nil {
		return err
	}
	r.recordRoute()
	return nil
}

// HandleFunc registers an ordinary function for the method and pattern.
func (r *Router) HandleFunc(method, pattern string, f HandlerFunc) error {
	return r.Handle(method, pattern, f)
}

// Get registers h for GET requests on pattern.
func (r *Router) Get(pattern string, h Handler) error {
	return r.Handle(http.MethodGet, pattern, h)
}

// Post registers h for POST requests on pattern.
func (r *Router) Post(pattern string, h Handler) error {
	return r.Handle(http.MethodPost, pattern, h)
}

// Put registers h for PUT requests on pattern.
func (r *Router) Put(pattern string, h Handler) error {
	return r.Handle(http.MethodPut, pattern, h)
}

// Delete registers h for DELETE requests on pattern.
func (r *Router) Delete(pattern string, h Handler) error {
	return r.Handle(http.MethodDelete, pattern, h)
}

// Patch registers h for PATCH requests on pattern.
func (r *Router) Patch(pattern string, h Handler) error {
	return r.Handle(http.MethodPatch, pattern, h)
}

// Head registers h for HEAD requests on pattern.
func (r *Router) Head(pattern string, h Handler) error {
	return r.Handle(http.MethodHead, pattern, h)
}

// Options registers h for OPTIONS requests on pattern.
func (r *Router) Options(pattern string, h Handler) error {
	return r.Handle(http.MethodOptions, pattern, h)
}

// NotFound sets the fallback handler invoked when no route matches,
// covering both unknown paths and method misses. Equivalent to the
// WithNotFoundHandler option.
func (r *Router) NotFound(h Handler) {
	r.notFound = h
}

// Lookup resolves method and path against the route table. On a miss
// the error matches ErrNotFound or ErrMethodNotAllowed; the latter
// carries the allowed methods, sorted. Lookup does not consult the
// fallback handler.
func (r *Router) Lookup(method, path string) (*Match, error) {
	m, err := r.tree.Lookup(strings.ToUpper(method), path)
	if err != nil {
		if errors.Is(err, ErrMethodNotAllowed) {
			r.recordMatch(outcomeMethodNotAllowed)
		} else {
			r.recordMatch(outcomeNotFound)
		}
		return nil, err
	}
	r.recordMatch(outcomeMatched)
	return &Match{
		Handler: m.Value,
		Params:  newParams(m.Names, m.Values),
		Pattern: m.Pattern,
	}, nil
}

// Allowed reports the sorted union of methods registered on every
// pattern covering path, or nil when no pattern covers it.
func (r *Router) Allowed(path string) []string {
	return r.tree.Methods(path)
}

// Routes lists every registered route sorted by pattern, then method.
func (r *Router) Routes() []Route {
	return r.tree.Routes()
}

// Len reports the number of registered routes.
func (r *Router) Len() int {
	return r.tree.Len()
}

// ServeHTTP implements http.Handler. On a match it records the pattern
// into any PatternRecorder carried by the request context, stores the
// bindings in the context, and invokes the handler with them. On a
// method miss it sets the Allow header, then delegates to the fallback
// handler when set, else writes a plain 405; unknown paths get the
// fallback or a plain 404.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m, err := r.Lookup(req.Method, req.URL.Path)
	if err == nil {
		if pr := patternRecorderFromContext(req.Context()); pr != nil {
			pr.set(m.Pattern)
		}
		req = req.WithContext(ContextWithParams(req.Context(), m.Params))
		m.Handler.ServeRoute(w, req, m.Params)
		return
	}

	var mna *MethodNotAllowedError
	if errors.As(err, &mna) && len(mna.Allowed) > 0 {
		w.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
	}

	if r.notFound != nil {
		r.notFound.ServeRoute(w, req, Params{})
		return
	}
	if errors.Is(err, ErrMethodNotAllowed) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
		return
	}
	http.NotFound(w, req)
}
