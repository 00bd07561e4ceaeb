package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradecalc/internal/api/handlers"
	"github.com/wonny/tradecalc/internal/observability"
	"github.com/wonny/tradecalc/internal/performance"
	"github.com/wonny/tradecalc/internal/profile"
	"github.com/wonny/tradecalc/pkg/logger"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Enabled() bool                  { return true }
func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func newTestRouter(t *testing.T, limiter *ClientLimiter, redis Pinger) (http.Handler, *observability.Metrics) {
	t.Helper()
	holder, err := profile.NewHolder("", performance.DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	analyzer := performance.NewAnalyzer(holder, logger.Nop())

	return NewRouter(RouterDeps{
		Performance: handlers.NewPerformanceHandler(analyzer, holder, nil, metrics, logger.Nop()),
		Indicators:  handlers.NewIndicatorHandler(holder, nil, metrics, logger.Nop()),
		Profiles:    holder,
		Redis:       redis,
		Metrics:     metrics,
		Limiter:     limiter,
		Logger:      logger.Nop(),
	}), metrics
}

const winsBody = `{"trade_data":[{"order_type":"BUY","entry_time":1,"exit_time":2,"entry_price":1,"exit_price":2}]}`

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "tradecalc", body["service"])
	assert.Len(t, body["profile_hash"], 64)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRouter_HealthDegradedRedis(t *testing.T) {
	router, _ := newTestRouter(t, nil, fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["redis"])
}

func TestRouter_Routes(t *testing.T) {
	router, metrics := newTestRouter(t, nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/calc-wins", bytes.NewBufferString(winsBody))
		req.Header.Set(RequestIDHeader, "req-123")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/calc-wins", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calc-macd", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/calc-wins", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/calc-wins", "POST", "200")))
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calc-wins", bytes.NewBufferString(winsBody)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tradecalc_http_requests_total{method="POST",route="/api/calc-wins",status="200"} 1`)
}

func TestRouter_RateLimit(t *testing.T) {
	limiter := NewClientLimiter(0.001, 2, nil)
	router, metrics := newTestRouter(t, limiter, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/calc-wins", bytes.NewBufferString(winsBody))
		req.RemoteAddr = "10.1.1.1:5000"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimited))

	// a forged X-Forwarded-For does not reset the budget
	spoofed := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/calc-wins", bytes.NewBufferString(winsBody))
	req.RemoteAddr = "10.1.1.1:5000"
	req.Header.Set("X-Forwarded-For", "198.51.100.77")
	router.ServeHTTP(spoofed, req)
	assert.Equal(t, http.StatusTooManyRequests, spoofed.Code)

	// another client has its own bucket
	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/calc-wins", bytes.NewBufferString(winsBody))
	req.RemoteAddr = "10.1.1.2:5000"
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health is not throttled
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestClientLimiter(t *testing.T) {
	assert.Nil(t, NewClientLimiter(0, 10, nil))

	l := NewClientLimiter(1, 1, nil)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)

	_, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, l.Clients())

	assert.Equal(t, 0, l.Sweep(time.Hour))
	assert.Equal(t, 2, l.Sweep(-time.Second))
	assert.Equal(t, 0, l.Clients())
}

func TestClientLimiter_ClientID(t *testing.T) {
	l := NewClientLimiter(1, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", l.ClientID(req))

	// spoofed header from an untrusted peer is ignored
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", l.ClientID(req))

	require.NoError(t, l.TrustProxies([]string{"192.0.2.1", "10.0.0.0/8"}))
	assert.Equal(t, "203.0.113.7", l.ClientID(req))

	// a client-supplied leftmost hop cannot override the hop the proxy saw
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 198.51.100.9, 10.0.0.1")
	assert.Equal(t, "198.51.100.9", l.ClientID(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.1", l.ClientID(req))

	assert.Error(t, l.TrustProxies([]string{"not-an-ip"}))
	assert.Error(t, l.TrustProxies([]string{"10.0.0.0/99"}))
}

func TestClientLimiter_SharedLimit(t *testing.T) {
	assert.Equal(t, 5, NewClientLimiter(5, 20, nil).sharedLimit())
	assert.Equal(t, 3, NewClientLimiter(2.5, 1, nil).sharedLimit())
	assert.Equal(t, 1, NewClientLimiter(0.001, 2, nil).sharedLimit())
}
