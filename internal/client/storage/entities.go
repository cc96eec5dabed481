package storage

import (
	"context"

	"github.com/iudanet/tasksync/internal/models"
)

//go:generate moq -out entitystore_mock.go . EntityStore

// EntityStore is the local cache of tasks, lists and labels, upserted by Ref.
type EntityStore interface {
	UpsertTasks(ctx context.Context, tasks []*models.Task) error
	UpsertLists(ctx context.Context, lists []*models.List) error
	UpsertLabels(ctx context.Context, labels []*models.Label) error

	// DeleteEntities removes entities of one kind. Missing refs are ignored.
	DeleteEntities(ctx context.Context, kind models.EntityKind, refs []models.Ref) error

	// GetTask returns ErrEntityNotFound if the task doesn't exist
	GetTask(ctx context.Context, ref models.Ref) (*models.Task, error)

	ListTasks(ctx context.Context) ([]*models.Task, error)
	ListLists(ctx context.Context) ([]*models.List, error)
	ListLabels(ctx context.Context) ([]*models.Label, error)

	// ReplaceSnapshot drops every cached entity and stores the given server snapshot
	ReplaceSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// Snapshot is a full set of confirmed entities.
type Snapshot struct {
	Tasks  []*models.Task
	Lists  []*models.List
	Labels []*models.Label
}
