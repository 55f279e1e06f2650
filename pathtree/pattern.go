package pathtree

import (
	"fmt"
	"strings"
)

// segKind classifies a pattern segment.
type segKind uint8

const (
	segLiteral segKind = iota
	segParam
	segWildcard
)

// segment is one parsed pattern segment. For literals, text is the
// segment verbatim; for params and wildcards it is the binding name,
// empty for a bare "*".
type segment struct {
	kind segKind
	text string
}

// splitPath splits a slash-delimited path into its non-empty segments.
// Leading, trailing, and repeated slashes collapse away, so "/a//b/"
// and "/a/b" split identically and "/" splits to nothing. No other
// normalization is applied.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	segs := make([]string, 0, strings.Count(path, "/")+1)
	for len(path) > 0 {
		i := strings.IndexByte(path, '/')
		if i < 0 {
			segs = append(segs, path)
			break
		}
		if i > 0 {
			segs = append(segs, path[:i])
		}
		path = path[i+1:]
	}
	return segs
}

// parsePattern validates a route pattern and returns its segments along
// with the binding names in match order. A named or unnamed wildcard
// contributes the final name; for an unnamed wildcard the entry is "".
func parsePattern(pattern string) ([]segment, []string, error) {
	if pattern == "" {
		return nil, nil, NewInvalidPatternError(pattern, "pattern must not be empty")
	}
	if pattern[0] != '/' {
		return nil, nil, NewInvalidPatternError(pattern, "pattern must begin with '/'")
	}

	raw := splitPath(pattern)
	segs := make([]segment, 0, len(raw))
	names := make([]string, 0, len(raw))

	for i, s := range raw {
		switch {
		case s[0] == ':':
			name := s[1:]
			if name == "" {
				return nil, nil, NewInvalidPatternError(pattern,
					"parameter segment is missing a name")
			}
			segs = append(segs, segment{kind: segParam, text: name})
			names = append(names, name)

		case s[0] == '*':
			if i != len(raw)-1 {
				return nil, nil, NewInvalidPatternError(pattern,
					"wildcard segment must be the final segment")
			}
			name := s[1:]
			segs = append(segs, segment{kind: segWildcard, text: name})
			names = append(names, name)

		default:
			segs = append(segs, segment{kind: segLiteral, text: s})
		}
	}

	if name, ok := duplicateName(names); ok {
		return nil, nil, NewInvalidPatternError(pattern,
			fmt.Sprintf("binding name %q used more than once", name))
	}
	return segs, names, nil
}

// duplicateName returns the first non-empty name that appears twice.
func duplicateName(names []string) (string, bool) {
	if len(names) < 2 {
		return "", false
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			return n, true
		}
		seen[n] = struct{}{}
	}
	return "", false
}
