package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

func TestEntities_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tmp := models.NewLocalRef()
	tasks := []*models.Task{
		{ID: models.RemoteRef(1), ListID: models.RemoteRef(10), Title: "Buy milk", UpdatedAt: now},
		{ID: tmp, ListID: models.RemoteRef(10), Title: "Offline task", UpdatedAt: now},
	}
	require.NoError(t, store.UpsertTasks(ctx, tasks))

	got, err := store.GetTask(ctx, tmp)
	require.NoError(t, err)
	assert.Equal(t, "Offline task", got.Title)
	assert.Equal(t, tmp, got.ID)

	// Upsert перезаписывает по ключу
	tasks[0].Title = "Buy oat milk"
	require.NoError(t, store.UpsertTasks(ctx, tasks[:1]))
	got, err = store.GetTask(ctx, models.RemoteRef(1))
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)

	require.NoError(t, store.DeleteEntities(ctx, models.EntityTask, []models.Ref{tmp}))
	_, err = store.GetTask(ctx, tmp)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)

	all, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEntities_ReplaceSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	require.NoError(t, store.UpsertLists(ctx, []*models.List{{ID: models.RemoteRef(1), Name: "Old"}}))
	require.NoError(t, store.UpsertLabels(ctx, []*models.Label{{ID: models.RemoteRef(5), Name: "stale"}}))

	snapshot := &storage.Snapshot{
		Lists:  []*models.List{{ID: models.RemoteRef(2), Name: "Work"}},
		Labels: []*models.Label{{ID: models.RemoteRef(6), Name: "urgent", Color: "red"}},
		Tasks:  []*models.Task{{ID: models.RemoteRef(3), ListID: models.RemoteRef(2), Title: "Report"}},
	}
	require.NoError(t, store.ReplaceSnapshot(ctx, snapshot))

	lists, err := store.ListLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Work", lists[0].Name)

	labels, err := store.ListLabels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "red", labels[0].Color)

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.RemoteRef(2), tasks[0].ListID)
}

func TestEntities_UnknownKind(t *testing.T) {
	store := newTestStorage(t)
	err := store.DeleteEntities(context.Background(), "board", []models.Ref{models.RemoteRef(1)})
	assert.Error(t, err)
}
