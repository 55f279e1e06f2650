package pathtree

import (
	"sort"
	"strings"
)

// Match is the result of a successful Lookup. Names and Values have
// equal length and pair positionally: one entry per parameter segment
// of the winning pattern, the wildcard capture last. An unnamed
// wildcard contributes an empty Name.
type Match[V any] struct {
	Value   V
	Pattern string
	Names   []string
	Values  []string
}

// Lookup resolves method and path against the tree. The path is split
// exactly like a pattern: empty segments collapse and nothing else is
// normalized, so literals compare byte-exact and case-sensitive.
//
// On success it returns the stored value with its captured bindings.
// Otherwise the error matches ErrMethodNotAllowed when at least one
// registered pattern covers the path, and ErrNotFound when none does.
// Captures from branches abandoned during backtracking never leak into
// the result.
func (t *Tree[V]) Lookup(method, path string) (Match[V], error) {
	segs := splitPath(path)
	rt, values, covered := walk(t.root, segs, method, nil)
	if rt != nil {
		return Match[V]{
			Value:   rt.value,
			Pattern: rt.pattern,
			Names:   rt.names,
			Values:  values,
		}, nil
	}
	if covered {
		return Match[V]{}, NewMethodNotAllowedError(method, path, t.Methods(path))
	}
	return Match[V]{}, NewRouteNotFoundError(method, path)
}

// walk is the recursive matcher. It tries the literal edge first, then
// the parameter edge, then the wildcard edge, backtracking on failure.
// values accumulates parameter captures down the current branch; a
// failed branch simply abandons its appends. covered reports whether
// any terminus was reached regardless of method, which distinguishes a
// method miss from an unknown path. A method miss at one terminus does
// not stop the walk: a sibling branch may still match.
func walk[V any](n *node[V], segs []string, method string, values []string) (rt *route[V], out []string, covered bool) {
	if len(segs) == 0 {
		if len(n.routes) == 0 {
			return nil, nil, false
		}
		if r, ok := n.routes[method]; ok {
			return r, values, true
		}
		return nil, nil, true
	}

	head, rest := segs[0], segs[1:]

	if child, ok := n.children[head]; ok {
		r, v, c := walk(child, rest, method, values)
		if r != nil {
			return r, v, true
		}
		covered = covered || c
	}

	if n.param != nil {
		r, v, c := walk(n.param, rest, method, append(values, head))
		if r != nil {
			return r, v, true
		}
		covered = covered || c
	}

	// A wildcard consumes every remaining segment and needs at least
	// one, which holds here since segs is non-empty.
	if w := n.wildcard; w != nil && len(w.routes) > 0 {
		covered = true
		if r, ok := w.routes[method]; ok {
			return r, append(values, strings.Join(segs, "/")), true
		}
	}

	return nil, nil, covered
}

// Methods reports the sorted union of methods registered on every
// pattern covering the path. An empty result means no pattern covers
// the path at all.
func (t *Tree[V]) Methods(path string) []string {
	set := make(map[string]struct{})
	collectMethods(t.root, splitPath(path), set)
	if len(set) == 0 {
		return nil
	}
	methods := make([]string, 0, len(set))
	for m := range set {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// collectMethods visits every branch that can cover the remaining
// segments, without the first-match cutoff Lookup applies.
func collectMethods[V any](n *node[V], segs []string, set map[string]struct{}) {
	if len(segs) == 0 {
		for m := range n.routes {
			set[m] = struct{}{}
		}
		return
	}
	if child, ok := n.children[segs[0]]; ok {
		collectMethods(child, segs[1:], set)
	}
	if n.param != nil {
		collectMethods(n.param, segs[1:], set)
	}
	if n.wildcard != nil {
		for m := range n.wildcard.routes {
			set[m] = struct{}{}
		}
	}
}
