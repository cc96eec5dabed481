package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/server/handlers"
	"github.com/iudanet/tasksync/pkg/api"
)

func TestAuth(t *testing.T) {
	cfg := handlers.JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}

	valid, _, err := handlers.GenerateAccessToken(cfg, 42, "alice")
	require.NoError(t, err)

	otherSecret, _, err := handlers.GenerateAccessToken(handlers.JWTConfig{Secret: []byte("other"), AccessTokenTTL: time.Hour}, 42, "alice")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    api.TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID:   42,
		Username: "alice",
	}).SignedString(cfg.Secret)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
		wantStatus  int
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantMessage: "missing token"},
		{name: "basic scheme", header: "Basic YWxpY2U6cHc=", wantStatus: http.StatusUnauthorized, wantMessage: "invalid token format"},
		{name: "bearer without token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantMessage: "invalid token format"},
		{name: "garbage token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "wrong secret", header: "Bearer " + otherSecret, wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotID   int64
				gotName string
				called  bool
			)
			handler := Auth(setupTestLogger(), cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotID, _ = handlers.GetUserID(r.Context())
				gotName, _ = handlers.GetUsername(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, called)
				assert.Equal(t, int64(42), gotID)
				assert.Equal(t, "alice", gotName)
				return
			}

			assert.False(t, called, "next handler must not run")
			assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
			var errResp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
			assert.Equal(t, "unauthorized", errResp.Error)
			assert.Equal(t, tt.wantMessage, errResp.Message)
		})
	}
}

func TestAuth_AnnotatesAccessLog(t *testing.T) {
	cfg := handlers.JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}
	token, _, err := handlers.GenerateAccessToken(cfg, 7, "bob")
	require.NoError(t, err)

	logger, buf := captureLogger()
	handler := Logging(logger)(Auth(setupTestLogger(), cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/providers/google/credentials", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := decodeLogLines(t, buf)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 7, lines[0]["user_id"])
	assert.NotContains(t, buf.String(), token)
}
