package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage, username string) int64 {
	user, err := s.CreateUser(ctx, username)
	require.NoError(t, err)
	return user.ID
}

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first, err := s.CreateUser(ctx, "alice")
	require.NoError(t, err)
	assert.Positive(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.CreateUser(ctx, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Повторное имя
	_, err = s.CreateUser(ctx, "alice")
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_GetUserByUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := createTestUser(t, ctx, s, "findme")

	tests := []struct {
		wantError error
		name      string
		username  string
	}{
		{
			name:     "get existing user",
			username: "findme",
		},
		{
			name:      "get non-existent user",
			username:  "notfound",
			wantError: storage.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retrieved, err := s.GetUserByUsername(ctx, tt.username)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, retrieved)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, retrieved.ID)
			assert.Equal(t, tt.username, retrieved.Username)
		})
	}
}

func TestUserStorage_GetUserByID(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := createTestUser(t, ctx, s, "byid")

	retrieved, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "byid", retrieved.Username)

	_, err = s.GetUserByID(ctx, id+100)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
