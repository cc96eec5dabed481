package auth

import (
	"context"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service manages the bearer token of the local session.
// Tokens are issued by the server operator; there is no password login.
type Service interface {
	// Login проверяет токен и сохраняет сессию
	Login(ctx context.Context, token string) (*storage.AuthData, error)

	// Current returns the saved session.
	// Returns storage.ErrAuthNotFound when nobody is logged in
	Current(ctx context.Context) (*storage.AuthData, error)

	// IsAuthenticated checks if a saved, not expired token exists
	IsAuthenticated(ctx context.Context) (bool, error)

	// Logout удаляет локальную сессию
	Logout(ctx context.Context) error
}

// Verifier asks the server who owns a token.
type Verifier interface {
	SetToken(token string)
	Me(ctx context.Context) (*api.MeResponse, error)
}
