package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeClock подменяет время limiter'а
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, rate int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(rate, window)
	limiter.now = clock.now
	t.Cleanup(limiter.Stop)
	return limiter, clock
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("requests within limit are allowed", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 5, time.Minute)

		for i := 0; i < 5; i++ {
			allowed, _ := limiter.Allow("192.168.1.1")
			assert.True(t, allowed, fmt.Sprintf("request %d should be allowed", i+1))
		}
	})

	t.Run("requests over limit are denied with retry hint", func(t *testing.T) {
		limiter, clock := newTestLimiter(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			allowed, _ := limiter.Allow("192.168.1.2")
			require.True(t, allowed)
		}

		clock.t = clock.t.Add(20 * time.Second)
		allowed, retryAfter := limiter.Allow("192.168.1.2")
		assert.False(t, allowed, "request over limit should be denied")
		assert.Equal(t, 40*time.Second, retryAfter)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 2, time.Minute)

		for _, key := range []string{"10.0.0.1", "10.0.0.2"} {
			ok1, _ := limiter.Allow(key)
			ok2, _ := limiter.Allow(key)
			ok3, _ := limiter.Allow(key)
			assert.True(t, ok1)
			assert.True(t, ok2)
			assert.False(t, ok3, "%s over limit", key)
		}
	})

	t.Run("tokens refill after window", func(t *testing.T) {
		limiter, clock := newTestLimiter(t, 1, time.Minute)

		allowed, _ := limiter.Allow("10.0.0.3")
		require.True(t, allowed)
		allowed, _ = limiter.Allow("10.0.0.3")
		require.False(t, allowed)

		clock.t = clock.t.Add(time.Minute)
		allowed, _ = limiter.Allow("10.0.0.3")
		assert.True(t, allowed)
	})
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(t, 1, time.Minute)

	limiter.Allow("stale")
	clock.t = clock.t.Add(90 * time.Second)
	limiter.Allow("fresh")
	clock.t = clock.t.Add(40 * time.Second)

	limiter.cleanupOldBuckets()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	assert.NotContains(t, limiter.buckets, "stale")
	assert.Contains(t, limiter.buckets, "fresh")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestPathRateLimiter_Middleware(t *testing.T) {
	prl := NewPathRateLimiter([]PathRateLimit{
		{Pattern: "/api/v1/providers/*/sync", Rate: 1, Window: time.Minute},
	}, 3, time.Minute, setupTestLogger())
	t.Cleanup(prl.Stop)

	handler := prl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Строгий лимит на sync
	assert.Equal(t, http.StatusOK, do("/api/v1/providers/google/sync", "10.0.0.1:5000").Code)
	w := do("/api/v1/providers/google/sync", "10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "rate limit exceeded", errResp.Error)

	// Другой провайдер попадает в тот же шаблон
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/providers/todoist/sync", "10.0.0.1:5002").Code)

	// Другой клиент считается отдельно
	assert.Equal(t, http.StatusOK, do("/api/v1/providers/google/sync", "10.0.0.2:5000").Code)

	// Остальные пути используют дефолтный лимит
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("/api/v1/tasks", "10.0.0.1:5003").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/tasks", "10.0.0.1:5003").Code)
}

func TestMatchSegments(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{name: "exact", pattern: "/api/v1/actions", path: "/api/v1/actions", want: true},
		{name: "wildcard", pattern: "/api/v1/providers/*/sync", path: "/api/v1/providers/google/sync", want: true},
		{name: "trailing slash", pattern: "/api/v1/actions", path: "/api/v1/actions/", want: true},
		{name: "different segment", pattern: "/api/v1/providers/*/sync", path: "/api/v1/providers/google/conflicts", want: false},
		{name: "longer path", pattern: "/api/v1/providers/*", path: "/api/v1/providers/google/sync", want: false},
		{name: "wildcard needs a segment", pattern: "/api/v1/*", path: "/api/v1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchSegments(splitPath(tt.pattern), splitPath(tt.path)))
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		headers        map[string]string
		name           string
		remoteAddr     string
		expected       string
		trustForwarded bool
	}{
		{
			name:       "remote addr without port",
			remoteAddr: "192.168.1.1:12345",
			expected:   "192.168.1.1",
		},
		{
			name:       "unparseable remote addr kept as is",
			remoteAddr: "pipe",
			expected:   "pipe",
		},
		{
			name:       "forwarded headers ignored by default",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			expected:   "192.168.1.1",
		},
		{
			name:           "first X-Forwarded-For entry when trusted",
			remoteAddr:     "192.168.1.1:12345",
			headers:        map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"},
			trustForwarded: true,
			expected:       "203.0.113.1",
		},
		{
			name:           "X-Real-IP when trusted",
			remoteAddr:     "192.168.1.1:12345",
			headers:        map[string]string{"X-Real-IP": "203.0.113.5"},
			trustForwarded: true,
			expected:       "203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, clientIP(req, tt.trustForwarded))
		})
	}
}
