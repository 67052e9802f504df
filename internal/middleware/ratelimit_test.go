package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	h := RateLimit(testContext(t), 0.001, 2)(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
	req.RemoteAddr = "10.0.0.1:5678"
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())

	// Other clients keep their own budget.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_Evict(t *testing.T) {
	rl := &ipRateLimiter{visitors: make(map[string]*visitor), rps: 1, burst: 1}
	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * visitorTTL)

	rl.evict(time.Now())

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestIPRateLimiter_CleanupStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rl := newIPRateLimiter(ctx, 1, 1)

	cancel()

	select {
	case <-rl.done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine still running after context was cancelled")
	}
}

// testContext mirrors testing.T.Context (Go 1.24+): a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
