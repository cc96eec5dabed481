// Package middleware holds the HTTP middleware chain of tasksync-server:
// recovery, request logging, rate limiting and bearer token auth.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader несет id запроса в ответе
const RequestIDHeader = "X-Request-ID"

type requestInfoKey struct{}

// requestInfo is filled by inner middleware and read by Logging after the handler returns
type requestInfo struct {
	id     string
	userID int64
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

// setUser records the authenticated user for the access log
func setUser(ctx context.Context, userID int64) {
	if info := infoFrom(ctx); info != nil {
		info.userID = userID
	}
}

// RequestID returns the id Logging assigned to the request, or ""
func RequestID(ctx context.Context) string {
	if info := infoFrom(ctx); info != nil {
		return info.id
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the number of bytes written
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging создает middleware для логирования HTTP запросов.
// Логирует метод, путь, статус, время выполнения, размер ответа и пользователя.
// Query string и заголовки не логируются: в них могут быть токены.
// Запросы к skipPaths (например, health check) не логируются.
func Logging(logger *slog.Logger, skipPaths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &requestInfo{id: r.Header.Get(RequestIDHeader)}
			if info.id == "" || len(info.id) > 64 {
				info.id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, info.id)
			r = r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info))

			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(wrapped, r)

			// Уровень зависит от статуса
			logLevel := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if wrapped.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			attrs := []any{
				"request_id", info.id,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes_written", wrapped.written,
			}
			if info.userID > 0 {
				attrs = append(attrs, "user_id", info.userID)
			}
			logger.Log(r.Context(), logLevel, "HTTP request", attrs...)
		})
	}
}
