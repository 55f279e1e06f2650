// Package pathtree implements a segment trie for HTTP path routing.
//
// Patterns are slash-delimited paths whose segments are literals,
// parameters (":name"), or a terminal wildcard ("*name" or bare "*").
// The tree stores one handler value per (method, pattern shape) pair
// and resolves lookups with a depth-first walk that prefers literal
// edges over parameter edges and parameter edges over wildcard edges,
// backtracking on dead ends.
//
// # Features
//
//   - Literal, parameter, and multi-segment wildcard patterns
//   - Deterministic literal > parameter > wildcard precedence
//   - Full backtracking, including past method mismatches
//   - Per-route binding names, so same-shape patterns registered for
//     different methods keep independent parameter names
//   - Distinct not-found and method-not-allowed lookup outcomes
//   - Allowed-method enumeration across every pattern covering a path
//
// # Usage
//
// Build the tree, then freeze it before serving:
//
//	t := pathtree.New[http.Handler]()
//	if err := t.Insert(http.MethodGet, "/users/:id", h); err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := t.Lookup(http.MethodGet, "/users/42")
//	if err == nil {
//	    // m.Value is h, m.Names = ["id"], m.Values = ["42"]
//	}
//
// The tree is not synchronized. Register every route before the first
// Lookup, or guard registration externally; once registration stops the
// tree is immutable and any number of goroutines may call Lookup
// concurrently without locking.
package pathtree
