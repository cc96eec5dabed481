package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/tasksync/internal/client/api"
	"github.com/iudanet/tasksync/internal/client/storage"
	pkgapi "github.com/iudanet/tasksync/pkg/api"
)

var (
	// ErrTokenExpired is returned by Login for a token past its exp claim
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenRejected is returned by Login when the server refuses the token
	ErrTokenRejected = errors.New("token rejected by server")
)

type service struct {
	storage  storage.AuthStorage
	verifier Verifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(authStorage storage.AuthStorage, verifier Verifier, logger *slog.Logger) Service {
	return &service{
		storage:  authStorage,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Login reads the token claims, confirms them with the server and saves the session.
// The client cannot check the signature; the server is the only judge of it.
// When the server is unreachable the session is saved from the claims alone
// so offline work can start.
func (s *service) Login(ctx context.Context, token string) (*storage.AuthData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	claims := &pkgapi.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}

	auth := &storage.AuthData{
		Username: claims.Username,
		UserID:   claims.UserID,
		Token:    token,
	}
	if claims.ExpiresAt != nil {
		if !claims.ExpiresAt.After(s.now()) {
			return nil, ErrTokenExpired
		}
		auth.ExpiresAt = claims.ExpiresAt.Unix()
	}

	s.verifier.SetToken(token)
	me, err := s.verifier.Me(ctx)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return nil, ErrTokenRejected
	case err != nil:
		s.logger.Warn("Server unreachable, token accepted without verification", "error", err)
	default:
		auth.Username = me.Username
		auth.UserID = me.UserID
	}

	if err := s.storage.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	s.logger.Info("Logged in", "username", auth.Username, "user_id", auth.UserID)
	return auth, nil
}

func (s *service) Current(ctx context.Context) (*storage.AuthData, error) {
	return s.storage.GetAuth(ctx)
}

func (s *service) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.storage.IsAuthenticated(ctx)
}

func (s *service) Logout(ctx context.Context) error {
	if err := s.storage.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete auth data: %w", err)
	}
	s.verifier.SetToken("")
	return nil
}
