package pathtree

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors checked with errors.Is(). Registration failures are
// ErrInvalidPattern and ErrDuplicateRoute; lookup misses are ErrNotFound
// and ErrMethodNotAllowed. Every structured error type below matches its
// sentinel through Is().
var (
	ErrInvalidPattern   = errors.New("invalid route pattern")
	ErrDuplicateRoute   = errors.New("duplicate route")
	ErrNotFound         = errors.New("no matching route")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// InvalidPatternError reports a pattern rejected at registration time.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid route pattern %q: %s", e.Pattern, e.Reason)
}

// Is checks if the error matches the target.
func (e *InvalidPatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// NewInvalidPatternError creates a new InvalidPatternError.
func NewInvalidPatternError(pattern, reason string) *InvalidPatternError {
	return &InvalidPatternError{Pattern: pattern, Reason: reason}
}

// DuplicateRouteError reports a registration whose method and pattern
// shape collide with an existing route. Existing holds the spelling the
// colliding route was registered with, which may differ from Pattern in
// its binding names.
type DuplicateRouteError struct {
	Method   string
	Pattern  string
	Existing string
}

// Error implements the error interface.
func (e *DuplicateRouteError) Error() string {
	if e.Existing != "" && e.Existing != e.Pattern {
		return fmt.Sprintf("duplicate route %s %s: conflicts with %s",
			e.Method, e.Pattern, e.Existing)
	}
	return fmt.Sprintf("duplicate route %s %s", e.Method, e.Pattern)
}

// Is checks if the error matches the target.
func (e *DuplicateRouteError) Is(target error) bool {
	return target == ErrDuplicateRoute
}

// NewDuplicateRouteError creates a new DuplicateRouteError.
func NewDuplicateRouteError(method, pattern, existing string) *DuplicateRouteError {
	return &DuplicateRouteError{Method: method, Pattern: pattern, Existing: existing}
}

// RouteNotFoundError reports a lookup whose path matched no registered
// pattern.
type RouteNotFoundError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no matching route for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Method: method, Path: path}
}

// MethodNotAllowedError reports a lookup whose path matched at least one
// registered pattern, none of which covers the requested method. Allowed
// lists the methods that would have matched, sorted.
type MethodNotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("method %s not allowed for %s (allowed: %s)",
			e.Method, e.Path, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("method %s not allowed for %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *MethodNotAllowedError) Is(target error) bool {
	return target == ErrMethodNotAllowed
}

// NewMethodNotAllowedError creates a new MethodNotAllowedError.
func NewMethodNotAllowedError(method, path string, allowed []string) *MethodNotAllowedError {
	return &MethodNotAllowedError{Method: method, Path: path, Allowed: allowed}
}
