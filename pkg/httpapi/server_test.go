package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
	"storefront/pkg/otel"
	"storefront/pkg/product"
	productmem "storefront/pkg/product/memory"
)

func TestSwaggerDocServed(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	rr := f.do(t, http.MethodGet, SwaggerDocPath, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2.0", gjson.Get(rr.Body.String(), "swagger").String())
	assert.True(t, gjson.Get(rr.Body.String(), `paths./api/products.post`).Exists())
}

func TestSwaggerUIServed(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	rr := f.do(t, http.MethodGet, "/swagger/index.html", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, strings.ToLower(rr.Body.String()), "swagger")
}

func TestHealthz(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	rr := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t, 1)
	f.do(t, http.MethodPost, "/api/products", `{"name":"a","price":1}`)
	f.do(t, http.MethodPost, "/api/products", `{"name":"b","price":1}`)

	rr := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `storefront_store_rejections_total{store="products"} 1`)
	assert.Contains(t, body, `route="/api/products"`)
}

func TestRequestIDHeader(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	rr := f.do(t, http.MethodGet, "/healthz", "")
	assert.Len(t, rr.Header().Get("X-Request-Id"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "given")
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, "given", rr.Header().Get("X-Request-Id"))
}

func TestAccessLogCarriesTraceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "storefront", otel.GetTraceID)
	tp, shutdown, err := otel.InitTracing(log, otel.Config{ServiceName: "test", Probability: 1})
	require.NoError(t, err)
	defer shutdown(context.Background())

	products := productmem.New(product.DefaultCapacity)
	srv, err := NewServer(Deps{
		Products: products,
		Orders:   order.NewService(ordermem.New(order.DefaultCapacity), products),
		Log:      log,
		Tracer:   tp.Tracer("test"),
	})
	require.NoError(t, err)
	buf.Reset()

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("X-Request-Id", "req-1")
	srv.Routes().ServeHTTP(httptest.NewRecorder(), req)

	line := strings.TrimSpace(buf.String())
	require.True(t, gjson.Valid(line), line)
	assert.Equal(t, "http_request", gjson.Get(line, "msg").String())
	assert.Equal(t, "req-1", gjson.Get(line, "request_id").String())
	assert.Equal(t, int64(200), gjson.Get(line, "status").Int())
	assert.Len(t, gjson.Get(line, "trace_id").String(), 32)
}

func TestRateLimiter(t *testing.T) {
	products := productmem.New(product.DefaultCapacity)
	srv, err := NewServer(Deps{
		Products: products,
		Orders:   order.NewService(ordermem.New(order.DefaultCapacity), products),
		Limiter:  NewRateLimiter(0.001, 2),
	})
	require.NoError(t, err)
	h := srv.Routes()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// pages are not throttled
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiterCleanupEvictsOnlyIdleClients(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(0.001, 1)
	rl.now = func() time.Time { return now }

	idle := httptest.NewRequest(http.MethodGet, "/", nil)
	idle.RemoteAddr = "1.1.1.1:1"
	active := httptest.NewRequest(http.MethodGet, "/", nil)
	active.RemoteAddr = "2.2.2.2:1"

	rl.limiter(clientKey(idle))
	require.True(t, rl.limiter(clientKey(active)).Allow())

	now = now.Add(5 * time.Minute)
	rl.limiter(clientKey(active))
	rl.Cleanup(time.Minute)

	assert.NotContains(t, rl.clients, "1.1.1.1")
	require.Contains(t, rl.clients, "2.2.2.2")
	// the active client keeps its spent bucket
	assert.False(t, rl.limiter(clientKey(active)).Allow())
}
