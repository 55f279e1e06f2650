package avrouter

import (
	"context"
	"sync"
)

// Params holds the parameter bindings of a matched route: one entry per
// ":name" segment plus the wildcard capture, in pattern order. The zero
// value is an empty, usable set. Params is immutable after creation and
// safe to share across goroutines.
type Params struct {
	names  []string
	values []string
}

// newParams pairs binding names with captured values. An unnamed
// wildcard contributes an empty name and stays unreachable through
// named lookup.
func newParams(names, values []string) Params {
	return Params{names: names, values: values}
}

// Find returns the value bound to name. The second return reports
// whether the name is bound; it is false for unknown names and always
// false for the empty string.
func (p Params) Find(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for i, n := range p.names {
		if n == name {
			return p.values[i], true
		}
	}
	return "", false
}

// Get returns the value bound to name, or "" when unbound.
func (p Params) Get(name string) string {
	v, _ := p.Find(name)
	return v
}

// Len reports the number of named bindings. An unnamed wildcard capture
// does not count.
func (p Params) Len() int {
	n := 0
	for _, name := range p.names {
		if name != "" {
			n++
		}
	}
	return n
}

// Context keys.
type ctxKey string

const (
	ctxKeyParams  ctxKey = "route_params"
	ctxKeyPattern ctxKey = "route_pattern"
)

// ContextWithParams adds route parameters to the context. ServeHTTP
// does this before invoking the matched handler, so handlers adapted
// from plain http.Handler values can recover their bindings.
func ContextWithParams(ctx context.Context, p Params) context.Context {
	return context.WithValue(ctx, ctxKeyParams, p)
}

// ParamsFromContext extracts route parameters from the context,
// returning an empty set when none are stored.
func ParamsFromContext(ctx context.Context) Params {
	if p, ok := ctx.Value(ctxKeyParams).(Params); ok {
		return p
	}
	return Params{}
}

// PatternRecorder receives the matched pattern during ServeHTTP.
// Middleware installs one before delegating to the router and reads it
// afterwards, typically to label metrics or log lines without a second
// lookup. It is synchronized because timeout-style middleware may run
// the handler on another goroutine.
type PatternRecorder struct {
	mu      sync.Mutex
	pattern string
}

// NewPatternRecorder creates an empty PatternRecorder.
func NewPatternRecorder() *PatternRecorder {
	return &PatternRecorder{}
}

// set stores the matched pattern.
func (pr *PatternRecorder) set(pattern string) {
	pr.mu.Lock()
	pr.pattern = pattern
	pr.mu.Unlock()
}

// Pattern returns the recorded pattern, or "" when no match happened.
func (pr *PatternRecorder) Pattern() string {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.pattern
}

// ContextWithPatternRecorder adds a PatternRecorder to the context,
// reusing one already present so stacked middleware shares a single
// recorder. It returns the recorder to read after the request.
func ContextWithPatternRecorder(ctx context.Context) (context.Context, *PatternRecorder) {
	if pr := patternRecorderFromContext(ctx); pr != nil {
		return ctx, pr
	}
	pr := NewPatternRecorder()
	return context.WithValue(ctx, ctxKeyPattern, pr), pr
}

func patternRecorderFromContext(ctx context.Context) *PatternRecorder {
	if pr, ok := ctx.Value(ctxKeyPattern).(*PatternRecorder); ok {
		return pr
	}
	return nil
}
