package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

var testNow = time.Date(2026, 3, 1, 12, 30, 0, 123456789, time.UTC)

func createTestList(t *testing.T, ctx context.Context, s *Storage, userID int64, name string) *models.List {
	list := &models.List{UserID: userID, Name: name, CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, s.InsertList(ctx, list))
	return list
}

func TestEntityStorage_Lists(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	bob := createTestUser(t, ctx, s, "bob")

	inbox := createTestList(t, ctx, s, alice, "Inbox")
	createTestList(t, ctx, s, alice, "Work")
	createTestList(t, ctx, s, bob, "Groceries")
	assert.Positive(t, inbox.ID.Remote)

	got, err := s.GetList(ctx, inbox.ID.Remote)
	require.NoError(t, err)
	assert.Equal(t, "Inbox", got.Name)
	assert.Equal(t, alice, got.UserID)
	// наносекунды сохраняются без потерь
	assert.True(t, got.UpdatedAt.Equal(testNow))

	got.Name = "Personal"
	got.UpdatedAt = testNow.Add(time.Minute)
	require.NoError(t, s.UpdateList(ctx, got))

	lists, err := s.ListLists(ctx, alice)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Personal", lists[0].Name)
	assert.Equal(t, "Work", lists[1].Name)

	require.NoError(t, s.DeleteList(ctx, inbox.ID.Remote))
	_, err = s.GetList(ctx, inbox.ID.Remote)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteList(ctx, inbox.ID.Remote), storage.ErrNotFound)

	missing := &models.List{ID: models.RemoteRef(999), Name: "x", UpdatedAt: testNow}
	assert.ErrorIs(t, s.UpdateList(ctx, missing), storage.ErrNotFound)
}

func TestEntityStorage_Labels(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")

	label := &models.Label{UserID: alice, Name: "home", Color: "green", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, s.InsertLabel(ctx, label))

	got, err := s.GetLabel(ctx, label.ID.Remote)
	require.NoError(t, err)
	assert.Equal(t, "home", got.Name)
	assert.Equal(t, "green", got.Color)

	got.Color = ""
	require.NoError(t, s.UpdateLabel(ctx, got))

	labels, err := s.ListLabels(ctx, alice)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Empty(t, labels[0].Color)

	require.NoError(t, s.DeleteLabel(ctx, label.ID.Remote))
	_, err = s.GetLabel(ctx, label.ID.Remote)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEntityStorage_Tasks(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	inbox := createTestList(t, ctx, s, alice, "Inbox")
	work := createTestList(t, ctx, s, alice, "Work")

	home := &models.Label{UserID: alice, Name: "home", CreatedAt: testNow, UpdatedAt: testNow}
	urgent := &models.Label{UserID: alice, Name: "urgent", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, s.InsertLabel(ctx, home))
	require.NoError(t, s.InsertLabel(ctx, urgent))

	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	parent := &models.Task{
		UserID:      alice,
		ListID:      inbox.ID,
		Title:       "Buy milk",
		Description: "2 liters",
		Priority:    2,
		DueAt:       &due,
		LabelIDs:    []models.Ref{urgent.ID, home.ID},
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	require.NoError(t, s.InsertTask(ctx, parent))

	child := &models.Task{
		UserID:    alice,
		ListID:    inbox.ID,
		ParentID:  &parent.ID,
		Title:     "Check the fridge",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, s.InsertTask(ctx, child))

	got, err := s.GetTask(ctx, parent.ID.Remote)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, 2, got.Priority)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))
	assert.False(t, got.DueHasTime)
	// порядок меток сохраняется
	assert.Equal(t, []models.Ref{urgent.ID, home.ID}, got.LabelIDs)

	got.ListID = work.ID
	got.LabelIDs = []models.Ref{home.ID}
	got.SetCompleted(true, testNow.Add(time.Hour))
	got.UpdatedAt = testNow.Add(time.Hour)
	require.NoError(t, s.UpdateTask(ctx, got))

	tasks, err := s.ListTasks(ctx, alice)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, work.ID, tasks[0].ListID)
	assert.True(t, tasks[0].Completed)
	require.NotNil(t, tasks[0].CompletedAt)
	assert.Equal(t, []models.Ref{home.ID}, tasks[0].LabelIDs)
	require.NotNil(t, tasks[1].ParentID)
	assert.Equal(t, parent.ID, *tasks[1].ParentID)

	// Удаление метки отвязывает ее от задач
	require.NoError(t, s.DeleteLabel(ctx, home.ID.Remote))
	got, err = s.GetTask(ctx, parent.ID.Remote)
	require.NoError(t, err)
	assert.Empty(t, got.LabelIDs)

	// Удаление родителя удаляет подзадачи
	require.NoError(t, s.DeleteTask(ctx, parent.ID.Remote))
	_, err = s.GetTask(ctx, child.ID.Remote)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEntityStorage_DeleteListCascadesTasks(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	inbox := createTestList(t, ctx, s, alice, "Inbox")

	task := &models.Task{UserID: alice, ListID: inbox.ID, Title: "t", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, s.InsertTask(ctx, task))

	require.NoError(t, s.DeleteList(ctx, inbox.ID.Remote))

	tasks, err := s.ListTasks(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestActionStorage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	bob := createTestUser(t, ctx, s, "bob")
	id := uuid.New()

	_, err := s.GetAppliedAction(ctx, alice, id)
	assert.ErrorIs(t, err, storage.ErrActionNotApplied)

	first := &storage.AppliedAction{
		ID:        id,
		UserID:    alice,
		Kind:      models.ActionListCreate,
		Result:    json.RawMessage(`{"success":true,"data":{"id":1}}`),
		AppliedAt: testNow,
	}
	require.NoError(t, s.SaveAppliedAction(ctx, first))

	// Повторное сохранение не перезаписывает первый результат
	second := *first
	second.Result = json.RawMessage(`{"success":false}`)
	require.NoError(t, s.SaveAppliedAction(ctx, &second))

	got, err := s.GetAppliedAction(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, models.ActionListCreate, got.Kind)
	assert.JSONEq(t, string(first.Result), string(got.Result))
	assert.True(t, got.AppliedAt.Equal(testNow))

	// идентификаторы действий изолированы по пользователям
	_, err = s.GetAppliedAction(ctx, bob, id)
	assert.ErrorIs(t, err, storage.ErrActionNotApplied)
}

func TestInTx(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	failure := errors.New("handler failed")

	err := s.InTx(ctx, func(ctx context.Context) error {
		list := createTestList(t, ctx, s, alice, "Inbox")
		// Вложенная транзакция присоединяется к внешней
		task := &models.Task{UserID: alice, ListID: list.ID, Title: "X", CreatedAt: testNow, UpdatedAt: testNow}
		require.NoError(t, s.InsertTask(ctx, task))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	lists, err := s.ListLists(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, lists)
	tasks, err := s.ListTasks(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, s.InTx(ctx, func(ctx context.Context) error {
		createTestList(t, ctx, s, alice, "Work")
		return s.SaveAppliedAction(ctx, &storage.AppliedAction{
			ID: uuid.New(), UserID: alice, Kind: models.ActionListCreate,
			Result: json.RawMessage(`{}`), AppliedAt: testNow,
		})
	}))
	lists, err = s.ListLists(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}
