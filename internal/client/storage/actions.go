package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/models"
)

//go:generate moq -out actionlog_mock.go . ActionLog

// ActionLog is the durable, ordered queue of not yet confirmed mutations.
// Every method has a batched variant so that a large drain costs one
// transaction instead of one per action.
type ActionLog interface {
	// EnqueueActions stores actions atomically. Existing ids are overwritten.
	EnqueueActions(ctx context.Context, actions []*models.PendingAction) error

	// GetAction returns ErrActionNotFound if the action doesn't exist
	GetAction(ctx context.Context, id uuid.UUID) (*models.PendingAction, error)

	// ListActions returns all queued actions in timestamp order
	ListActions(ctx context.Context) ([]*models.PendingAction, error)

	// UpdateAction replaces a stored action
	UpdateAction(ctx context.Context, action *models.PendingAction) error

	// UpdateActions replaces several actions in one transaction
	UpdateActions(ctx context.Context, actions []*models.PendingAction) error

	// RemoveAction deletes an action. Missing ids are not an error.
	RemoveAction(ctx context.Context, id uuid.UUID) error

	// RemoveActions deletes several actions in one transaction
	RemoveActions(ctx context.Context, ids []uuid.UUID) error

	// CountActions returns the number of queued actions
	CountActions(ctx context.Context) (int, error)
}
