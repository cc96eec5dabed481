package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/tasksync/pkg/api"
)

// RateLimiter представляет rate limiter на основе токен-бакета (token bucket)
type RateLimiter struct {
	now      func() time.Time
	buckets  map[string]*bucket
	cleanupC chan struct{}
	stopOnce sync.Once
	rate     int
	window   time.Duration
	mu       sync.RWMutex
}

// bucket представляет bucket для конкретного IP/ключа
type bucket struct {
	lastRefill time.Time
	tokens     int
	mu         sync.Mutex
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов в единицу времени
// window - временное окно (например, 1 минута)
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		now:      time.Now,
		buckets:  make(map[string]*bucket),
		rate:     rate,
		window:   window,
		cleanupC: make(chan struct{}),
	}

	// Запускаем периодическую очистку старых buckets
	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets для экономии памяти
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldBuckets()
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, которые не использовались дольше двух окон
func (rl *RateLimiter) cleanupOldBuckets() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > rl.window*2 {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop останавливает cleanup goroutine. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow проверяет, разрешен ли запрос для данного ключа (обычно IP адрес).
// При отказе возвращает время до пополнения бакета.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Повторная проверка: bucket мог создать другой запрос
		if b, exists = rl.buckets[key]; !exists {
			b = &bucket{tokens: rl.rate, lastRefill: now}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Пополняем токены на основе прошедшего времени
	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}

	return false, b.lastRefill.Add(rl.window).Sub(now)
}

// PathRateLimit задает отдельный лимит для путей, совпадающих с Pattern.
// Сегмент "*" в шаблоне совпадает с любым одним сегментом пути,
// например "/api/v1/providers/*/sync".
type PathRateLimit struct {
	Pattern string
	Rate    int
	Window  time.Duration
}

type pathLimiter struct {
	limiter  *RateLimiter
	segments []string
}

// PathRateLimiter применяет первый подходящий лимит из списка, иначе дефолтный.
// Каждый лимит считается отдельно для каждого клиента.
type PathRateLimiter struct {
	logger         *slog.Logger
	defaultLimiter *RateLimiter
	limits         []pathLimiter
	// TrustForwarded включает определение IP по X-Forwarded-For / X-Real-IP
	TrustForwarded bool
}

// NewPathRateLimiter создает limiter с кастомными лимитами для путей
func NewPathRateLimiter(limits []PathRateLimit, defaultRate int, defaultWindow time.Duration, logger *slog.Logger) *PathRateLimiter {
	prl := &PathRateLimiter{
		logger:         logger,
		defaultLimiter: NewRateLimiter(defaultRate, defaultWindow),
	}
	for _, limit := range limits {
		prl.limits = append(prl.limits, pathLimiter{
			segments: splitPath(limit.Pattern),
			limiter:  NewRateLimiter(limit.Rate, limit.Window),
		})
	}
	return prl
}

// Stop останавливает все cleanup goroutine
func (prl *PathRateLimiter) Stop() {
	prl.defaultLimiter.Stop()
	for _, l := range prl.limits {
		l.limiter.Stop()
	}
}

func (prl *PathRateLimiter) limiterFor(path string) *RateLimiter {
	segments := splitPath(path)
	for _, l := range prl.limits {
		if matchSegments(l.segments, segments) {
			return l.limiter
		}
	}
	return prl.defaultLimiter
}

// Middleware возвращает 429 с заголовком Retry-After при превышении лимита
func (prl *PathRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r, prl.TrustForwarded)

		allowed, retryAfter := prl.limiterFor(r.URL.Path).Allow(key)
		if !allowed {
			prl.logger.Warn("Rate limit exceeded",
				"ip", key,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestID(r.Context()),
			)

			seconds := int(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{
				Error:   "rate limit exceeded",
				Message: "please try again later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return true
}

// clientIP извлекает IP адрес клиента из запроса.
// Заголовки прокси учитываются только при trustForwarded.
func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		// Берем первый IP из списка (реальный клиент)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
