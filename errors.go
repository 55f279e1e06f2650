package avrouter

import "github.com/vyrodovalexey/avrouter/pathtree"

// Errors originate in the pathtree package and are re-exported here so
// callers work entirely against this package. Sentinels are shared
// values and structured types are aliases, so errors.Is and errors.As
// behave identically whichever package the caller imports.
var (
	// ErrInvalidPattern reports a registration whose pattern violates
	// the grammar.
	ErrInvalidPattern = pathtree.ErrInvalidPattern

	// ErrDuplicateRoute reports a registration colliding with an
	// existing method and pattern shape.
	ErrDuplicateRoute = pathtree.ErrDuplicateRoute

	// ErrNotFound reports a lookup whose path matched no registered
	// pattern.
	ErrNotFound = pathtree.ErrNotFound

	// ErrMethodNotAllowed reports a lookup whose path is registered,
	// but not for the requested method.
	ErrMethodNotAllowed = pathtree.ErrMethodNotAllowed
)

// Structured error types carrying the failing route's details.
type (
	InvalidPatternError   = pathtree.InvalidPatternError
	DuplicateRouteError   = pathtree.DuplicateRouteError
	RouteNotFoundError    = pathtree.RouteNotFoundError
	MethodNotAllowedError = pathtree.MethodNotAllowedError
)
