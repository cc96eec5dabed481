package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/models"
)

// EntityStorage persists the authoritative lists, tasks and labels.
// Get methods return ErrNotFound regardless of owner; ownership is checked
// by the caller through the UserID field.
type EntityStorage interface {
	InsertList(ctx context.Context, list *models.List) error
	GetList(ctx context.Context, id int64) (*models.List, error)
	UpdateList(ctx context.Context, list *models.List) error
	// DeleteList removes the list together with its tasks
	DeleteList(ctx context.Context, id int64) error
	ListLists(ctx context.Context, userID int64) ([]*models.List, error)

	InsertTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	// DeleteTask removes the task together with its subtasks
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, userID int64) ([]*models.Task, error)

	InsertLabel(ctx context.Context, label *models.Label) error
	GetLabel(ctx context.Context, id int64) (*models.Label, error)
	UpdateLabel(ctx context.Context, label *models.Label) error
	// DeleteLabel removes the label and detaches it from tasks
	DeleteLabel(ctx context.Context, id int64) error
	ListLabels(ctx context.Context, userID int64) ([]*models.Label, error)
}

// AppliedAction is the stored outcome of an executed action.
type AppliedAction struct {
	AppliedAt time.Time
	Kind      models.ActionKind
	Result    json.RawMessage
	UserID    int64
	ID        uuid.UUID
}

// Transactor runs several storage calls atomically. Calls made with the ctx
// handed to fn are part of the transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActionStorage records executed actions so replays return the first result.
type ActionStorage interface {
	// GetAppliedAction returns ErrActionNotApplied if the id was never executed by the user
	GetAppliedAction(ctx context.Context, userID int64, id uuid.UUID) (*AppliedAction, error)
	SaveAppliedAction(ctx context.Context, action *AppliedAction) error
}
