package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// authed returns r with alice (id 42) as the authenticated user
func authed(r *http.Request) *http.Request {
	return r.WithContext(WithUser(r.Context(), 42, "alice"))
}

func TestSyncHandler_Execute(t *testing.T) {
	actionID := uuid.New()
	validBody, err := json.Marshal(api.ActionRequest{
		ID:      actionID,
		Kind:    models.ActionTaskCreate,
		Payload: json.RawMessage(`{"title":"Buy milk","list_id":1}`),
	})
	require.NoError(t, err)

	tests := []struct {
		result     models.Result
		name       string
		body       []byte
		wantCode   int
		wantCalls  int
		anonymous  bool
		wantResult bool
	}{
		{
			name:       "success",
			body:       validBody,
			result:     models.OK(map[string]int64{"id": 7}),
			wantCode:   http.StatusOK,
			wantCalls:  1,
			wantResult: true,
		},
		{
			name:       "domain failure is still 200",
			body:       validBody,
			result:     models.Fail(models.CodeNotFound, "list not found", nil),
			wantCode:   http.StatusOK,
			wantCalls:  1,
			wantResult: true,
		},
		{
			name:     "invalid json",
			body:     []byte("{not json"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing id",
			body:     []byte(`{"kind":"task.create","payload":{}}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing kind",
			body:     []byte(`{"id":"` + actionID.String() + `","payload":{}}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "no user in context",
			body:      validBody,
			anonymous: true,
			wantCode:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &ActionExecutorMock{
				ExecuteFunc: func(ctx context.Context, userID int64, req api.ActionRequest) models.Result {
					return tt.result
				},
			}
			handler := NewSyncHandler(setupTestLogger(), executor, &SnapshotStorageMock{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/actions", bytes.NewReader(tt.body))
			if !tt.anonymous {
				req = authed(req)
			}
			w := httptest.NewRecorder()
			handler.Execute(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			calls := executor.ExecuteCalls()
			require.Len(t, calls, tt.wantCalls)
			if tt.wantCalls > 0 {
				assert.Equal(t, int64(42), calls[0].UserID)
				assert.Equal(t, actionID, calls[0].Req.ID)
				assert.JSONEq(t, `{"title":"Buy milk","list_id":1}`, string(calls[0].Req.Payload))
			}
			if tt.wantResult {
				var got models.Result
				require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.Equal(t, tt.result.Success, got.Success)
				if tt.result.Error != nil {
					require.NotNil(t, got.Error)
					assert.Equal(t, tt.result.Error.Code, got.Error.Code)
				}
			}
		})
	}
}

func TestSyncHandler_Snapshots(t *testing.T) {
	snapshots := &SnapshotStorageMock{
		ListListsFunc: func(ctx context.Context, userID int64) ([]*models.List, error) {
			return []*models.List{{ID: models.RemoteRef(1), Name: "Inbox"}}, nil
		},
		ListTasksFunc: func(ctx context.Context, userID int64) ([]*models.Task, error) {
			return nil, nil
		},
		ListLabelsFunc: func(ctx context.Context, userID int64) ([]*models.Label, error) {
			return nil, errors.New("database is locked")
		},
	}
	handler := NewSyncHandler(setupTestLogger(), &ActionExecutorMock{}, snapshots)

	t.Run("lists", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Lists(w, authed(httptest.NewRequest(http.MethodGet, "/api/v1/lists", nil)))

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.ListsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Lists, 1)
		assert.Equal(t, "Inbox", resp.Lists[0].Name)
		assert.Equal(t, int64(42), snapshots.ListListsCalls()[0].UserID)
	})

	t.Run("empty tasks encode as an empty array", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Tasks(w, authed(httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tasks":[]}`, w.Body.String())
	})

	t.Run("storage error", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Labels(w, authed(httptest.NewRequest(http.MethodGet, "/api/v1/labels", nil)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "database is locked")
	})

	t.Run("unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Lists(w, httptest.NewRequest(http.MethodGet, "/api/v1/lists", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserID(t *testing.T) {
	ctx := WithUser(context.Background(), 42, "alice")

	userID, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)

	username, ok := GetUsername(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	_, ok = GetUserID(context.Background())
	assert.False(t, ok)

	// Строковый id из чужого контекста не принимается
	_, ok = GetUserID(context.WithValue(context.Background(), UserIDKey, "42"))
	assert.False(t, ok)
}
