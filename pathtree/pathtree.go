package pathtree

import "sort"

// Tree is a segment trie mapping (method, pattern) pairs to values of
// type V. The zero value is not usable; construct with New.
//
// Tree is not synchronized. All Insert calls must complete before the
// first Lookup, or callers must synchronize externally. After the last
// Insert the tree is immutable and safe for unlimited concurrent reads.
type Tree[V any] struct {
	root *node[V]
	size int
}

// node is a single trie level. Literal edges live in children keyed by
// segment text; at most one parameter edge and one wildcard edge exist
// per node. A wildcard node is always a leaf. routes is non-nil only at
// pattern termini.
type node[V any] struct {
	children map[string]*node[V]
	param    *node[V]
	wildcard *node[V]
	routes   map[string]*route[V]
}

// route is one registered (method, pattern) entry. names holds the
// binding names in segment order, the wildcard name last and "" for a
// bare "*". Keeping names here rather than on trie nodes lets
// same-shape patterns registered for different methods bind different
// names.
type route[V any] struct {
	value   V
	names   []string
	pattern string
}

// RouteInfo describes one registered route for introspection.
type RouteInfo struct {
	Method  string
	Pattern string
}

// New creates an empty Tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{root: &node[V]{}}
}

// Insert registers value v for the given method and pattern. The method
// is taken verbatim and must be non-empty; canonicalization is the
// caller's concern. Insert fails with an error matching
// ErrInvalidPattern when the pattern violates the grammar and with one
// matching ErrDuplicateRoute when the method and pattern shape are
// already registered. A failed Insert leaves the tree untouched.
func (t *Tree[V]) Insert(method, pattern string, v V) error {
	if method == "" {
		return NewInvalidPatternError(pattern, "method must not be empty")
	}
	segs, names, err := parsePattern(pattern)
	if err != nil {
		return err
	}

	// Probe before mutating so a duplicate leaves no trace.
	if n := t.root.locate(segs); n != nil {
		if existing, ok := n.routes[method]; ok {
			return NewDuplicateRouteError(method, pattern, existing.pattern)
		}
	}

	n := t.root
	for _, seg := range segs {
		switch seg.kind {
		case segParam:
			if n.param == nil {
				n.param = &node[V]{}
			}
			n = n.param
		case segWildcard:
			if n.wildcard == nil {
				n.wildcard = &node[V]{}
			}
			n = n.wildcard
		default:
			if n.children == nil {
				n.children = make(map[string]*node[V])
			}
			child, ok := n.children[seg.text]
			if !ok {
				child = &node[V]{}
				n.children[seg.text] = child
			}
			n = child
		}
	}

	if n.routes == nil {
		n.routes = make(map[string]*route[V])
	}
	n.routes[method] = &route[V]{value: v, names: names, pattern: pattern}
	t.size++
	return nil
}

// locate follows parsed segments along existing edges only, returning
// the terminus node or nil when any edge is missing.
func (n *node[V]) locate(segs []segment) *node[V] {
	for _, seg := range segs {
		switch seg.kind {
		case segParam:
			n = n.param
		case segWildcard:
			n = n.wildcard
		default:
			n = n.children[seg.text]
		}
		if n == nil {
			return nil
		}
	}
	return n
}

// Len reports the number of registered (method, pattern) routes.
func (t *Tree[V]) Len() int {
	return t.size
}

// Routes lists every registered route sorted by pattern, then method.
func (t *Tree[V]) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, t.size)
	t.root.appendRoutes(&infos)
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Pattern != infos[j].Pattern {
			return infos[i].Pattern < infos[j].Pattern
		}
		return infos[i].Method < infos[j].Method
	})
	return infos
}

func (n *node[V]) appendRoutes(infos *[]RouteInfo) {
	for method, rt := range n.routes {
		*infos = append(*infos, RouteInfo{Method: method, Pattern: rt.pattern})
	}
	for _, child := range n.children {
		child.appendRoutes(infos)
	}
	if n.param != nil {
		n.param.appendRoutes(infos)
	}
	if n.wildcard != nil {
		n.wildcard.appendRoutes(infos)
	}
}
