package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/client/api"
	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/client/storage/boltdb"
	pkgapi "github.com/iudanet/tasksync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeVerifier struct {
	me    *pkgapi.MeResponse
	err   error
	token string
}

func (f *fakeVerifier) SetToken(token string) { f.token = token }

func (f *fakeVerifier) Me(context.Context) (*pkgapi.MeResponse, error) {
	return f.me, f.err
}

func signToken(t *testing.T, userID int64, username string, expiresAt time.Time) string {
	t.Helper()

	claims := pkgapi.TokenClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: pkgapi.TokenIssuer,
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newTestService(t *testing.T, verifier *fakeVerifier) (Service, storage.AuthStorage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewService(store, verifier, setupTestLogger()), store
}

func TestLogin(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name     string
		verifier *fakeVerifier
		token    func(t *testing.T) string
		wantErr  error
		want     *storage.AuthData
	}{
		{
			name:     "verified by server",
			verifier: &fakeVerifier{me: &pkgapi.MeResponse{UserID: 7, Username: "alice"}},
			token:    func(t *testing.T) string { return signToken(t, 7, "alice", expires) },
			want:     &storage.AuthData{UserID: 7, Username: "alice", ExpiresAt: expires.Unix()},
		},
		{
			name:     "server offline uses claims",
			verifier: &fakeVerifier{err: errors.New("connection refused")},
			token:    func(t *testing.T) string { return signToken(t, 8, "bob", time.Time{}) },
			want:     &storage.AuthData{UserID: 8, Username: "bob"},
		},
		{
			name:     "rejected by server",
			verifier: &fakeVerifier{err: api.ErrUnauthorized},
			token:    func(t *testing.T) string { return signToken(t, 7, "alice", expires) },
			wantErr:  ErrTokenRejected,
		},
		{
			name:     "expired",
			verifier: &fakeVerifier{},
			token:    func(t *testing.T) string { return signToken(t, 7, "alice", time.Now().Add(-time.Minute)) },
			wantErr:  ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, store := newTestService(t, tt.verifier)
			token := tt.token(t)

			got, err := svc.Login(ctx, token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, err := store.GetAuth(ctx)
				assert.ErrorIs(t, err, storage.ErrAuthNotFound)
				return
			}
			require.NoError(t, err)

			tt.want.Token = token
			assert.Equal(t, tt.want, got)
			assert.Equal(t, token, tt.verifier.token)

			saved, err := svc.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, saved)

			ok, err := svc.IsAuthenticated(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestLogin_Malformed(t *testing.T) {
	svc, _ := newTestService(t, &fakeVerifier{})

	_, err := svc.Login(context.Background(), "not-a-jwt")
	assert.ErrorContains(t, err, "malformed token")

	_, err = svc.Login(context.Background(), "   ")
	assert.Error(t, err)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{me: &pkgapi.MeResponse{UserID: 7, Username: "alice"}}
	svc, _ := newTestService(t, verifier)

	_, err := svc.Login(ctx, signToken(t, 7, "alice", time.Time{}))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.Empty(t, verifier.token)

	ok, err := svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}
