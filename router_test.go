package avrouter

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler writes "pattern-tag:param" so tests can tell which route
// ran and what it bound.
func echoHandler(tag, param string) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request, ps Params) {
		fmt.Fprintf(w, "%s:%s", tag, ps.Get(param))
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	r := New()
	assert.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Routes())
}

func TestRouter_Handle(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Handle("get", "/users/:id", echoHandler("u", "id")))
	require.NoError(t, r.Handle("POST", "/users", echoHandler("c", "")))
	require.NoError(t, r.Handle("PURGE", "/cache/*key", echoHandler("p", "key")))

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []Route{
		{Method: "PURGE", Pattern: "/cache/*key"},
		{Method: http.MethodPost, Pattern: "/users"},
		{Method: http.MethodGet, Pattern: "/users/:id"},
	}, r.Routes())
}

func TestRouter_Handle_Errors(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users/:id", echoHandler("u", "id")))

	tests := []struct {
		name     string
		register func() error
		sentinel error
	}{
		{
			"invalid pattern",
			func() error { return r.Get("users", echoHandler("x", "")) },
			ErrInvalidPattern,
		},
		{
			"wildcard not last",
			func() error { return r.Get("/a/*w/b", echoHandler("x", "")) },
			ErrInvalidPattern,
		},
		{
			"empty method",
			func() error { return r.Handle("  ", "/a", echoHandler("x", "")) },
			ErrInvalidPattern,
		},
		{
			"nil handler",
			func() error { return r.Get("/a", nil) },
			ErrInvalidPattern,
		},
		{
			"duplicate shape",
			func() error { return r.Get("/users/:uid", echoHandler("x", "")) },
			ErrDuplicateRoute,
		},
		{
			"duplicate via lower case method",
			func() error { return r.Handle("get", "/users/:id", echoHandler("x", "")) },
			ErrDuplicateRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.register()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}

	// Failed registrations left the router untouched.
	assert.Equal(t, 1, r.Len())
}

func TestRouter_Lookup(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users/:id", echoHandler("u", "id")))

	m, err := r.Lookup(http.MethodGet, "/users/42")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "/users/:id", m.Pattern)
	assert.Equal(t, "42", m.Params.Get("id"))
	assert.NotNil(t, m.Handler)

	// Method canonicalization applies on lookup too.
	m, err = r.Lookup("get", "/users/42")
	require.NoError(t, err)
	assert.Equal(t, "/users/:id", m.Pattern)
}

func TestRouter_Lookup_Misses(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users/:id", echoHandler("u", "id")))
	require.NoError(t, r.Delete("/users/:id", echoHandler("d", "id")))

	_, err := r.Lookup(http.MethodGet, "/posts")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Lookup(http.MethodPost, "/users/42")
	require.ErrorIs(t, err, ErrMethodNotAllowed)

	var mna *MethodNotAllowedError
	require.ErrorAs(t, err, &mna)
	assert.Equal(t, []string{http.MethodDelete, http.MethodGet}, mna.Allowed)

	assert.Equal(t, []string{http.MethodDelete, http.MethodGet}, r.Allowed("/users/42"))
	assert.Nil(t, r.Allowed("/posts"))
}

func TestRouter_ServeHTTP(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users/:id", echoHandler("user", "id")))
	require.NoError(t, r.Get("/files/*filepath", echoHandler("file", "filepath")))

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{"param route", "/users/42", "user:42"},
		{"wildcard route", "/files/a/b.txt", "file:a/b.txt"},
		{"trailing slash", "/users/42/", "user:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRouter_ServeHTTP_NotFound(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users", echoHandler("u", "")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ServeHTTP_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users", echoHandler("g", "")))
	require.NoError(t, r.Post("/users", echoHandler("p", "")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestRouter_ServeHTTP_FallbackHandler(t *testing.T) {
	t.Parallel()

	fallback := HandlerFunc(func(w http.ResponseWriter, r *http.Request, ps Params) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "custom miss, params=%d", ps.Len())
	})

	r := New(WithMetrics(false), WithNotFoundHandler(fallback))
	require.NoError(t, r.Get("/users", echoHandler("g", "")))

	// Unknown path goes to the fallback.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "custom miss, params=0", rec.Body.String())

	// Method miss goes to the fallback too, with Allow already set.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestRouter_ServeHTTP_ParamsInContext(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	plain := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ps := ParamsFromContext(req.Context())
		fmt.Fprintf(w, "ctx:%s", ps.Get("id"))
	})
	require.NoError(t, r.Get("/users/:id", WrapHandlerFunc(plain)))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	assert.Equal(t, "ctx:42", rec.Body.String())
}

func TestRouter_ServeHTTP_PatternRecorder(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/users/:id", echoHandler("u", "id")))

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	ctx, pr := ContextWithPatternRecorder(req.Context())
	r.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	assert.Equal(t, "/users/:id", pr.Pattern())

	// A miss leaves the recorder empty.
	req = httptest.NewRequest(http.MethodGet, "/none", nil)
	ctx, pr = ContextWithPatternRecorder(req.Context())
	r.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	assert.Empty(t, pr.Pattern())
}

func TestRouter_Verbs(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	require.NoError(t, r.Get("/r", echoHandler("get", "")))
	require.NoError(t, r.Post("/r", echoHandler("post", "")))
	require.NoError(t, r.Put("/r", echoHandler("put", "")))
	require.NoError(t, r.Delete("/r", echoHandler("delete", "")))
	require.NoError(t, r.Patch("/r", echoHandler("patch", "")))
	require.NoError(t, r.Head("/r", echoHandler("head", "")))
	require.NoError(t, r.Options("/r", echoHandler("options", "")))

	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodPatch, http.MethodHead,
		http.MethodOptions,
	} {
		m, err := r.Lookup(method, "/r")
		require.NoError(t, err, "method %s", method)
		rec := httptest.NewRecorder()
		m.Handler.ServeRoute(rec, httptest.NewRequest(method, "/r", nil), m.Params)
		assert.Equal(t, strings.ToLower(method)+":", rec.Body.String())
	}
}

func TestRouter_ConcurrentServe(t *testing.T) {
	t.Parallel()

	r := New(WithMetrics(false))
	for i := 0; i < 20; i++ {
		require.NoError(t, r.Get(fmt.Sprintf("/res%d/:id", i), echoHandler(fmt.Sprintf("r%d", i), "id")))
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				n := (g + i) % 20
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
					fmt.Sprintf("/res%d/%d", n, i), nil))
				assert.Equal(t, fmt.Sprintf("r%d:%d", n, i), rec.Body.String())
			}
		}(g)
	}
	wg.Wait()
}

func BenchmarkRouter_ServeHTTP(b *testing.B) {
	r := New(WithMetrics(false))
	_ = r.Get("/api/v1/users/:id", HandlerFunc(func(w http.ResponseWriter, req *http.Request, ps Params) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42", nil)
	rec := httptest.NewRecorder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.ServeHTTP(rec, req)
	}
}
