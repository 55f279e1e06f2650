// Package avrouter is an HTTP request router built on a segment trie.
//
// Routes are registered as method and pattern pairs before serving
// starts; after that the router is immutable and matches concurrently
// without locking. Patterns mix literal segments, single-segment
// parameters (":name"), and a terminal multi-segment wildcard ("*name"
// or bare "*"). Matching prefers literals over parameters and
// parameters over wildcards, backtracking through the trie until a
// route covers the whole path.
//
// # Features
//
//   - Literal, parameter, and wildcard patterns with deterministic
//     precedence and full backtracking
//   - Handlers invoked with their bound parameters as an explicit
//     argument, plus context access for adapted http.Handler values
//   - Distinct not-found and method-not-allowed outcomes, with the
//     Allow header populated on 405 responses
//   - Registration errors surfaced eagerly: invalid patterns and
//     duplicate method/shape registrations never reach serving
//   - Configurable fallback handler covering both miss outcomes
//   - Prometheus counters for match outcomes and registered routes
//
// # Usage
//
// Register routes, then serve:
//
//	r := avrouter.New()
//	if err := r.Get("/users/:id", avrouter.HandlerFunc(showUser)); err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.Get("/files/*filepath", avrouter.HandlerFunc(serveFile)); err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := &http.Server{Addr: ":8080", Handler: r}
//	log.Fatal(srv.ListenAndServe())
//
// Handlers receive the bound parameters directly:
//
//	func showUser(w http.ResponseWriter, req *http.Request, ps avrouter.Params) {
//	    id, _ := ps.Find("id")
//	    fmt.Fprintf(w, "user %s", id)
//	}
//
// Live route-table replacement is done by building a new Router and
// swapping an atomic pointer; in-flight requests finish on the router
// they started with. See cmd/routerd for a complete example.
package avrouter
