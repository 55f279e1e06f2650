package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avrouter"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

func TestGetMiddlewareMetrics_Singleton(t *testing.T) {
	t.Parallel()

	m1 := GetMiddlewareMetrics()
	m2 := GetMiddlewareMetrics()
	require.NotNil(t, m1)
	assert.Same(t, m1, m2)
}

func TestMetrics_RecordsMatchedRoute(t *testing.T) {
	t.Parallel()

	obs := observability.NewMetrics("mw_matched")

	router := avrouter.New(avrouter.WithMetrics(false))
	_ = router.Get("/orders/:id", avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, ps avrouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	handler := Metrics(obs)(router)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := testutil.ToFloat64(obs.RequestsTotal().WithLabelValues("GET", "/orders/:id", "200"))
	assert.Equal(t, float64(1), got)
}

func TestMetrics_RecordsUnmatchedRoute(t *testing.T) {
	t.Parallel()

	obs := observability.NewMetrics("mw_unmatched")

	router := avrouter.New(avrouter.WithMetrics(false))
	handler := Metrics(obs)(router)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	got := testutil.ToFloat64(obs.RequestsTotal().WithLabelValues("GET", observability.UnmatchedRoute, "404"))
	assert.Equal(t, float64(1), got)
}

func TestMetrics_ActiveRequestsReturnsToZero(t *testing.T) {
	t.Parallel()

	obs := observability.NewMetrics("mw_active")

	handler := Metrics(obs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, float64(0), testutil.ToFloat64(obs.ActiveRequests()))
}
