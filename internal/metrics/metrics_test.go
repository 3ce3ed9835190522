package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/console/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/console/items/:id", "200"))

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodGet, "/console/items/"+id, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/console/items/:id", "200"))
	assert.Equal(t, before+2, after, "同一路由模板应累计计数")
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(apiRequests.WithLabelValues(http.MethodGet, "/health", "ok"))
	RecordAPIRequest(http.MethodGet, "/health", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(apiRequests.WithLabelValues(http.MethodGet, "/health", "ok")))

	beforeFailed := testutil.ToFloat64(storeActions.WithLabelValues("users", "failed"))
	RecordStoreAction("users", false)
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(storeActions.WithLabelValues("users", "failed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordStoreAction("health", true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eripotter_console_store_actions_total")
}
