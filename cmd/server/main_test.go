package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/server/actions"
	"github.com/iudanet/tasksync/internal/server/handlers"
	"github.com/iudanet/tasksync/internal/server/middleware"
	"github.com/iudanet/tasksync/internal/server/storage/sqlite"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupStore(t *testing.T) *sqlite.Storage {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRouter(t *testing.T) {
	logger := setupTestLogger()
	store := setupStore(t)
	jwtConfig := handlers.JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}

	user, err := store.CreateUser(context.Background(), "alice")
	require.NoError(t, err)
	token, _, err := handlers.GenerateAccessToken(jwtConfig, user.ID, user.Username)
	require.NoError(t, err)

	router := newRouter(routerDeps{
		sync:   handlers.NewSyncHandler(logger, actions.NewRegistry(store, logger), store),
		auth:   handlers.NewAuthHandler(logger, store),
		health: handlers.NewHealthHandler(logger, "test", store.DB()),
	}, middleware.Auth(logger, jwtConfig))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		withToken  bool
	}{
		{name: "health without token", method: http.MethodGet, path: "/api/v1/health", wantStatus: http.StatusOK},
		{name: "tasks without token", method: http.MethodGet, path: "/api/v1/tasks", wantStatus: http.StatusUnauthorized},
		{name: "tasks with token", method: http.MethodGet, path: "/api/v1/tasks", withToken: true, wantStatus: http.StatusOK},
		{name: "me with token", method: http.MethodGet, path: "/api/v1/me", withToken: true, wantStatus: http.StatusOK},
		{name: "wrong method", method: http.MethodDelete, path: "/api/v1/lists", withToken: true, wantStatus: http.StatusMethodNotAllowed},
		{name: "provider routes disabled", method: http.MethodPost, path: "/api/v1/providers/google/sync", withToken: true, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.withToken {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	jwtConfig := handlers.JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}

	var first bytes.Buffer
	require.NoError(t, issueToken(ctx, store, jwtConfig, "alice", &first))

	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	require.Len(t, lines, 2)
	claims, err := handlers.ValidateAccessToken(jwtConfig, lines[0])
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Contains(t, lines[1], "expires")

	// Повторный вызов не создает второго пользователя
	var second bytes.Buffer
	require.NoError(t, issueToken(ctx, store, jwtConfig, " Alice", &second))
	again, err := handlers.ValidateAccessToken(jwtConfig, strings.SplitN(second.String(), "\n", 2)[0])
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, again.UserID)

	var noExpiry bytes.Buffer
	require.NoError(t, issueToken(ctx, store, handlers.JWTConfig{Secret: []byte("test-secret")}, "bob", &noExpiry))
	assert.Contains(t, noExpiry.String(), "no expiry")

	assert.Error(t, issueToken(ctx, store, jwtConfig, "a", io.Discard))
	assert.Error(t, issueToken(ctx, store, jwtConfig, "bad name!", io.Discard))
}
