package storage

import (
	"context"

	"github.com/iudanet/tasksync/internal/models"
)

// UserStorage persists the accounts that own lists, tasks and provider links.
// Users are created by the server's token command; the HTTP API only reads them.
type UserStorage interface {
	// CreateUser returns ErrUserAlreadyExists if the username is taken
	CreateUser(ctx context.Context, username string) (*models.User, error)
	// GetUserByUsername returns ErrUserNotFound for an unknown username
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByID returns ErrUserNotFound when the token owner no longer exists
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}
