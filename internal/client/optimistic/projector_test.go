package optimistic

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

var baseTime = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T, p models.Payload, at time.Time) *models.PendingAction {
	t.Helper()
	raw, err := models.EncodePayload(p)
	require.NoError(t, err)
	return &models.PendingAction{
		ID:        uuid.New(),
		Kind:      p.Kind(),
		Payload:   raw,
		Timestamp: at.UnixNano(),
		Status:    models.ActionPending,
	}
}

func TestProjector_CreateUpdateToggleMove(t *testing.T) {
	store := NewStore()
	proj := NewProjector(store)

	list := models.NewLocalRef()
	task := models.NewLocalRef()

	require.NoError(t, proj.Apply(newPending(t, &models.CreateListPayload{Ref: list, Name: "Groceries"}, baseTime)))
	require.NoError(t, proj.Apply(newPending(t, &models.CreateTaskPayload{Ref: task, ListID: list, Title: "Buy milk"}, baseTime.Add(time.Second))))

	got, ok := store.Task(task)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, list, got.ListID)

	title := "Buy oat milk"
	require.NoError(t, proj.Apply(newPending(t, &models.UpdateTaskPayload{ID: task, Patch: models.TaskPatch{Title: &title}}, baseTime.Add(2*time.Second))))

	doneAt := baseTime.Add(3 * time.Second)
	require.NoError(t, proj.Apply(newPending(t, &models.ToggleTaskPayload{ID: task, Completed: true}, doneAt)))

	got, _ = store.Task(task)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, doneAt, *got.CompletedAt)
	assert.Equal(t, doneAt, got.UpdatedAt)

	other := models.RemoteRef(77)
	require.NoError(t, proj.Apply(newPending(t, &models.MoveTaskPayload{ID: task, ListID: other}, baseTime.Add(4*time.Second))))
	got, _ = store.Task(task)
	assert.Equal(t, other, got.ListID)
}

func TestProjector_DeletesCascade(t *testing.T) {
	list := models.RemoteRef(1)
	parent := models.RemoteRef(10)
	label := models.RemoteRef(5)

	store := NewStore()
	proj := NewProjector(store)
	proj.Rebase(&storage.Snapshot{
		Lists:  []*models.List{{ID: list, Name: "Work"}},
		Labels: []*models.Label{{ID: label, Name: "urgent"}},
		Tasks: []*models.Task{
			{ID: parent, ListID: list, Title: "Parent", LabelIDs: []models.Ref{label}},
			{ID: models.RemoteRef(11), ListID: list, ParentID: &parent, Title: "Child"},
			{ID: models.RemoteRef(12), ListID: models.RemoteRef(2), Title: "Elsewhere", LabelIDs: []models.Ref{label}},
		},
	}, nil)

	require.NoError(t, proj.Apply(newPending(t, &models.DeleteLabelPayload{ID: label}, baseTime)))
	snap := store.Snapshot()
	assert.Empty(t, snap.Labels)
	for _, task := range snap.Tasks {
		assert.NotContains(t, task.LabelIDs, label)
	}

	require.NoError(t, proj.Apply(newPending(t, &models.DeleteTaskPayload{ID: parent}, baseTime)))
	_, ok := store.Task(models.RemoteRef(11))
	assert.False(t, ok, "subtasks are deleted with their parent")

	require.NoError(t, proj.Apply(newPending(t, &models.DeleteListPayload{ID: models.RemoteRef(2)}, baseTime)))
	assert.Empty(t, store.Snapshot().Tasks)
}

func TestProjector_UpdateMissingTarget(t *testing.T) {
	proj := NewProjector(NewStore())
	title := "x"
	err := proj.Apply(newPending(t, &models.UpdateTaskPayload{ID: models.RemoteRef(404), Patch: models.TaskPatch{Title: &title}}, baseTime))
	assert.ErrorIs(t, err, ErrTargetMissing)
}

func TestProjector_RebaseReplaysQueue(t *testing.T) {
	store := NewStore()
	proj := NewProjector(store)

	tmp := models.NewLocalRef()
	require.NoError(t, proj.Apply(newPending(t, &models.CreateListPayload{Ref: tmp, Name: "Stale optimistic"}, baseTime)))

	title := "Renamed offline"
	queued := []*models.PendingAction{
		newPending(t, &models.UpdateTaskPayload{ID: models.RemoteRef(3), Patch: models.TaskPatch{Title: &title}}, baseTime),
		newPending(t, &models.ToggleTaskPayload{ID: models.RemoteRef(999), Completed: true}, baseTime),
		{ID: uuid.New(), Kind: "task.archive", Payload: []byte(`{}`)},
	}

	skipped := proj.Rebase(&storage.Snapshot{
		Tasks: []*models.Task{{ID: models.RemoteRef(3), ListID: models.RemoteRef(1), Title: "Server title"}},
		Lists: []*models.List{{ID: models.RemoteRef(1), Name: "Inbox"}},
	}, queued)
	assert.Equal(t, 2, skipped)

	snap := store.Snapshot()
	require.Len(t, snap.Lists, 1)
	assert.Equal(t, "Inbox", snap.Lists[0].Name, "projection of removed actions disappears")
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "Renamed offline", snap.Tasks[0].Title)
}

func TestStore_SubscribeNotifiesOncePerChange(t *testing.T) {
	store := NewStore()
	proj := NewProjector(store)

	calls := 0
	cancel := store.Subscribe(func() { calls++ })

	require.NoError(t, proj.Apply(newPending(t, &models.CreateLabelPayload{Ref: models.NewLocalRef(), Name: "home"}, baseTime)))
	proj.Rebase(nil, nil)
	assert.Equal(t, 2, calls)

	cancel()
	proj.Rebase(nil, nil)
	assert.Equal(t, 2, calls)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	proj := NewProjector(store)
	proj.Rebase(&storage.Snapshot{Tasks: []*models.Task{{ID: models.RemoteRef(1), Title: "Original"}}}, nil)

	got, ok := store.Task(models.RemoteRef(1))
	require.True(t, ok)
	got.Title = "Changed by caller"

	again, _ := store.Task(models.RemoteRef(1))
	assert.Equal(t, "Original", again.Title)
}
