package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"dorebell/internal/config"
	"dorebell/internal/contact"
	"dorebell/internal/diagnostics"
	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	"dorebell/internal/engagement"
	"dorebell/internal/event"
	"dorebell/internal/infrastructure/automation"
	"dorebell/internal/order"
	"dorebell/internal/ratelimit"
	"dorebell/internal/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (c *captureSink) Name() string {
	return "capture"
}

func (c *captureSink) Deliver(_ context.Context, evt domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *captureSink) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Event(nil), c.events...)
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }

func (failingSink) Deliver(context.Context, domain.Event) error {
	return errors.New("webhook down")
}

func newTestRouter(t *testing.T, health *HealthHandler, sinks ...dispatch.Sink) http.Handler {
	t.Helper()
	return newProxiedTestRouter(t, health, nil, sinks...)
}

func newProxiedTestRouter(t *testing.T, health *HealthHandler, trusted []netip.Prefix, sinks ...dispatch.Sink) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	store := ratelimit.NewMemoryStore()
	policies := ratelimit.DefaultPolicies()
	limiter := func(scope string) *ratelimit.Limiter {
		return ratelimit.New(scope, policies[scope], store, logger)
	}

	fan := dispatch.NewFanOut(logger, sinks...)
	auto := automation.NewClient(
		dispatch.NewDispatcher(nil, dispatch.Config{}, logger),
		automation.Config{},
		event.DefaultLocale(""),
		logger,
	)

	if health == nil {
		health = NewHealthHandler(logger)
	}

	return NewRouter(
		order.NewModule(fan, limiter(ratelimit.ScopeOrder), 64<<10, time.Second, logger),
		contact.NewModule(fan, limiter(ratelimit.ScopeContact), 64<<10, time.Second, logger),
		engagement.NewModule(tracking.NewNop("tiktok"), limiter(ratelimit.ScopeButton), limiter(ratelimit.ScopeSearch), 64<<10, time.Second, logger),
		diagnostics.NewModule(auto, config.ProductConfig{Name: "جرس الباب الذكي بالكاميرا", Price: "1999"}, 64<<10, logger),
		health,
		trusted,
		logger,
	)
}

const orderBody = `{
	"fullName": "أحمد",
	"phoneNumber": "01012345678",
	"whatsappNumber": "01012345678",
	"city": "القاهرة",
	"area": "مدينة نصر",
	"address": "شارع 1",
	"quantity": 2,
	"productName": "جرس الباب الذكي بالكاميرا",
	"price": "1999"
}`

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_OrderAccepted(t *testing.T) {
	sink := &captureSink{}
	router := newTestRouter(t, nil, sink)

	rec := do(router, http.MethodPost, "/api/order", orderBody)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, resp.OrderID, events[0].Order.ID)
	assert.Equal(t, "3998", events[0].Order.Product.TotalPrice.String())
}

func TestRouter_OrderHoneypot(t *testing.T) {
	sink := &captureSink{}
	router := newTestRouter(t, nil, sink)

	body := strings.Replace(orderBody, `"price": "1999"`, `"price": "1999", "honeypot": "bot"`, 1)
	rec := do(router, http.MethodPost, "/api/order", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Validation failed","details":["Spam detected"]}`, rec.Body.String())
	assert.Empty(t, sink.Events())
}

func TestRouter_OrderRateLimit(t *testing.T) {
	router := newTestRouter(t, nil)

	for i := 0; i < 5; i++ {
		rec := do(router, http.MethodPost, "/api/order", orderBody)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := do(router, http.MethodPost, "/api/order", orderBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, rec.Body.String())

	// Other endpoints keep their own counters.
	rec = do(router, http.MethodPost, "/api/contact", `{"name":"منى","phone":"01112345678","subject":"s","message":"m"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

const contactBody = `{"name":"منى","phone":"01112345678","subject":"s","message":"m"}`

func sendFrom(router http.Handler, path, body, remote string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouter_RateLimitPerClient(t *testing.T) {
	router := newTestRouter(t, nil)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, sendFrom(router, "/api/contact", contactBody, "203.0.113.1:4000", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(router, "/api/contact", contactBody, "203.0.113.1:4001", nil))
	assert.Equal(t, http.StatusOK, sendFrom(router, "/api/contact", contactBody, "203.0.113.2:4000", nil))
}

func TestRouter_ForwardedHeadersDoNotResetLimit(t *testing.T) {
	router := newTestRouter(t, nil)

	var codes []int
	for i := 0; i < 10; i++ {
		codes = append(codes, sendFrom(router, "/api/order", orderBody, "198.51.100.7:5000", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
			"X-Real-IP":       fmt.Sprintf("10.0.1.%d", i),
		}))
	}

	assert.Equal(t, []int{200, 200, 200, 200, 200, 429, 429, 429, 429, 429}, codes)
}

func TestRouter_TrustedProxyForwardsClient(t *testing.T) {
	router := newProxiedTestRouter(t, nil, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")})
	viaProxy := func(xff string) int {
		return sendFrom(router, "/api/contact", contactBody, "10.1.2.3:443", map[string]string{"X-Forwarded-For": xff})
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, viaProxy("203.0.113.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, viaProxy("203.0.113.1"))
	// A spoofed leading hop does not change the client the proxy saw.
	assert.Equal(t, http.StatusTooManyRequests, viaProxy("192.0.2.99, 203.0.113.1"))
	assert.Equal(t, http.StatusOK, viaProxy("203.0.113.2"))
}

func TestRouter_ContactMessageTooLong(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"name":"منى","phone":"01112345678","subject":"استفسار","message":"` + strings.Repeat("a", 1001) + `"}`
	rec := do(router, http.MethodPost, "/api/contact", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "Message too long (max 1000 characters)")
}

func TestRouter_SinkFailureDoesNotFailOrder(t *testing.T) {
	sink := &captureSink{}
	router := newTestRouter(t, nil, failingSink{}, sink)

	rec := do(router, http.MethodPost, "/api/order", orderBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sink.Events(), 1)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/order"},
		{http.MethodPut, "/api/order"},
		{http.MethodDelete, "/api/contact"},
		{http.MethodGet, "/api/tiktok-button"},
		{http.MethodPut, "/api/test-make"},
	} {
		rec := do(router, tc.method, tc.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	}
}

func TestRouter_NotFound(t *testing.T) {
	rec := do(newTestRouter(t, nil), http.MethodGet, "/api/unknown", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestRouter_TrackingDisabled(t *testing.T) {
	rec := do(newTestRouter(t, nil), http.MethodPost, "/api/tiktok-button", `{"button_text":"اطلب الآن"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.TrackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Tracked)
}

func TestRouter_WebhookCheckNotConfigured(t *testing.T) {
	rec := do(newTestRouter(t, nil), http.MethodGet, "/api/test-make", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	health := NewHealthHandler(zap.NewNop())
	health.Register("broker", func(context.Context) error { return nil })
	router := newTestRouter(t, health)

	rec := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"broker":"ok"}}`, rec.Body.String())

	do(router, http.MethodPost, "/api/order", orderBody)
	rec = do(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dorebell_http_requests_total")
	assert.Contains(t, rec.Body.String(), "dorebell_submissions_total")
}

func TestHealthHandler_Degraded(t *testing.T) {
	health := NewHealthHandler(zap.NewNop())
	health.Register("database", func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"connection refused"}}`, rec.Body.String())
}
