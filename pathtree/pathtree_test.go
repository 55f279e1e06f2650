package pathtree

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tr := New[string]()
	assert.NotNil(t, tr)
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Routes())
}

func TestTree_Insert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		pattern string
	}{
		{"root", http.MethodGet, "/"},
		{"single literal", http.MethodGet, "/users"},
		{"nested literal", http.MethodGet, "/api/v1/users"},
		{"param", http.MethodGet, "/users/:id"},
		{"param with tail", http.MethodGet, "/users/:id/posts"},
		{"multiple params", http.MethodGet, "/users/:uid/posts/:pid"},
		{"named wildcard", http.MethodGet, "/files/*filepath"},
		{"unnamed wildcard", http.MethodGet, "/static/*"},
		{"wildcard at root", http.MethodGet, "/*rest"},
		{"trailing slash", http.MethodGet, "/users/"},
		{"custom method", "PURGE", "/cache/:key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := New[string]()
			err := tr.Insert(tt.method, tt.pattern, "h")
			require.NoError(t, err)
			assert.Equal(t, 1, tr.Len())
		})
	}
}

func TestTree_Insert_InvalidPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		pattern string
		reason  string
	}{
		{"empty pattern", http.MethodGet, "", "must not be empty"},
		{"no leading slash", http.MethodGet, "users/:id", "must begin with"},
		{"bare colon", http.MethodGet, "/users/:", "missing a name"},
		{"wildcard mid pattern", http.MethodGet, "/a/*w/b", "final segment"},
		{"unnamed wildcard mid pattern", http.MethodGet, "/a/*/b", "final segment"},
		{"duplicate param names", http.MethodGet, "/:id/x/:id", "used more than once"},
		{"param and wildcard share name", http.MethodGet, "/:id/*id", "used more than once"},
		{"empty method", "", "/users", "method must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := New[string]()
			err := tr.Insert(tt.method, tt.pattern, "h")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPattern)
			assert.Contains(t, err.Error(), tt.reason)

			var ipe *InvalidPatternError
			require.True(t, errors.As(err, &ipe))
			assert.Equal(t, tt.pattern, ipe.Pattern)
			assert.Equal(t, 0, tr.Len())
		})
	}
}

func TestTree_Insert_ColonPrefixedName(t *testing.T) {
	t.Parallel()

	// Only the first byte classifies a segment, so "::x" is a
	// parameter whose name is ":x".
	tr := New[string]()
	require.NoError(t, tr.Insert(http.MethodGet, "/a/::x", "h"))

	m, err := tr.Lookup(http.MethodGet, "/a/val")
	require.NoError(t, err)
	assert.Equal(t, []string{":x"}, m.Names)
	assert.Equal(t, []string{"val"}, m.Values)
}

func TestTree_Insert_Duplicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		first   string
		second  string
		method  string
		wantDup bool
	}{
		{"identical literal", "/users", "/users", http.MethodGet, true},
		{"trailing slash same shape", "/users", "/users/", http.MethodGet, true},
		{"param shape different names", "/users/:id", "/users/:uid", http.MethodGet, true},
		{"wildcard shape different names", "/f/*a", "/f/*b", http.MethodGet, true},
		{"named vs unnamed wildcard", "/f/*a", "/f/*", http.MethodGet, true},
		{"root twice", "/", "/", http.MethodGet, true},
		{"literal vs param", "/users/list", "/users/:id", http.MethodGet, false},
		{"param vs wildcard", "/f/:name", "/f/*rest", http.MethodGet, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := New[string]()
			require.NoError(t, tr.Insert(tt.method, tt.first, "first"))

			err := tr.Insert(tt.method, tt.second, "second")
			if !tt.wantDup {
				require.NoError(t, err)
				assert.Equal(t, 2, tr.Len())
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDuplicateRoute)

			var dre *DuplicateRouteError
			require.True(t, errors.As(err, &dre))
			assert.Equal(t, tt.method, dre.Method)
			assert.Equal(t, tt.second, dre.Pattern)
			assert.Equal(t, tt.first, dre.Existing)
			assert.Equal(t, 1, tr.Len())
		})
	}
}

func TestTree_Insert_SameShapeDifferentMethods(t *testing.T) {
	t.Parallel()

	tr := New[string]()
	require.NoError(t, tr.Insert(http.MethodGet, "/users/:id", "get"))
	require.NoError(t, tr.Insert(http.MethodPost, "/users/:uid", "post"))

	m, err := tr.Lookup(http.MethodGet, "/users/7")
	require.NoError(t, err)
	assert.Equal(t, "get", m.Value)
	assert.Equal(t, []string{"id"}, m.Names)

	m, err = tr.Lookup(http.MethodPost, "/users/7")
	require.NoError(t, err)
	assert.Equal(t, "post", m.Value)
	assert.Equal(t, []string{"uid"}, m.Names)
}

func TestTree_Insert_FailureLeavesTreeIntact(t *testing.T) {
	t.Parallel()

	tr := New[string]()
	require.NoError(t, tr.Insert(http.MethodGet, "/users/:id", "h"))

	err := tr.Insert(http.MethodGet, "/users/:other", "clobber")
	require.ErrorIs(t, err, ErrDuplicateRoute)

	require.Equal(t, 1, tr.Len())
	m, err := tr.Lookup(http.MethodGet, "/users/42")
	require.NoError(t, err)
	assert.Equal(t, "h", m.Value)
	assert.Equal(t, "/users/:id", m.Pattern)
	assert.Equal(t, []string{"id"}, m.Names)
}

func TestTree_Routes(t *testing.T) {
	t.Parallel()

	tr := New[string]()
	require.NoError(t, tr.Insert(http.MethodPost, "/users", "h"))
	require.NoError(t, tr.Insert(http.MethodGet, "/users", "h"))
	require.NoError(t, tr.Insert(http.MethodGet, "/files/*filepath", "h"))
	require.NoError(t, tr.Insert(http.MethodGet, "/users/:id", "h"))

	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Pattern: "/files/*filepath"},
		{Method: http.MethodGet, Pattern: "/users"},
		{Method: http.MethodPost, Pattern: "/users"},
		{Method: http.MethodGet, Pattern: "/users/:id"},
	}, tr.Routes())
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"/a", []string{"a"}},
		{"a", []string{"a"}},
		{"/a/", []string{"a"}},
		{"/a/b/c", []string{"a", "b", "c"}},
		{"//a//b//", []string{"a", "b"}},
	}

	for _, tt := range tests {
		got := splitPath(tt.path)
		if tt.want == nil {
			assert.Empty(t, got, "path %q", tt.path)
			continue
		}
		assert.Equal(t, tt.want, got, "path %q", tt.path)
	}
}
