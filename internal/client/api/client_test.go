package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Execute(t *testing.T) {
	actionID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/actions", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var req api.ActionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, actionID, req.ID)
		assert.Equal(t, models.ActionListCreate, req.Kind)
		assert.JSONEq(t, `{"name":"Inbox","ref":"tmp:`+actionID.String()+`"}`, string(req.Payload))

		_ = json.NewEncoder(w).Encode(models.OK(&models.List{ID: models.RemoteRef(7), Name: "Inbox"}))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("secret-token")

	result, err := client.Execute(context.Background(), &models.PendingAction{
		ID:      actionID,
		Kind:    models.ActionListCreate,
		Payload: json.RawMessage(`{"name":"Inbox","ref":"tmp:` + actionID.String() + `"}`),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	var list models.List
	require.NoError(t, json.Unmarshal(result.Data, &list))
	assert.Equal(t, models.RemoteRef(7), list.ID)
}

func TestClient_Execute_DomainFailureIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Fail(models.CodeConflict, "stale", models.ConflictDetails{ServerData: json.RawMessage(`{"id":1}`)}))
	}))
	defer server.Close()

	result, err := NewClient(server.URL).Execute(context.Background(), &models.PendingAction{ID: uuid.New(), Kind: models.ActionTaskDelete})
	require.NoError(t, err)
	assert.True(t, result.IsConflict())
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		statusCode int
		wantUnauth bool
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, body: `{"error":"invalid token"}`, wantUnauth: true},
		{name: "json error", statusCode: http.StatusBadRequest, body: `{"error":"bad request","message":"kind is required"}`, wantMsg: "bad request: kind is required"},
		{name: "plain error", statusCode: http.StatusInternalServerError, body: "oops", wantMsg: "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).FetchTasks(context.Background())
			require.Error(t, err)
			if tt.wantUnauth {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.statusCode, statusErr.Status)
			assert.Equal(t, tt.wantMsg, statusErr.Message)
		})
	}
}

func TestClient_FetchEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/api/v1/lists":
			_ = json.NewEncoder(w).Encode(api.ListsResponse{Lists: []*models.List{{ID: models.RemoteRef(1), Name: "Inbox"}}})
		case "/api/v1/tasks":
			_ = json.NewEncoder(w).Encode(api.TasksResponse{Tasks: []*models.Task{{ID: models.RemoteRef(2), ListID: models.RemoteRef(1), Title: "Buy milk"}}})
		case "/api/v1/labels":
			_ = json.NewEncoder(w).Encode(api.LabelsResponse{Labels: []*models.Label{{ID: models.RemoteRef(3), Name: "home"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	lists, err := client.FetchLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Inbox", lists[0].Name)

	tasks, err := client.FetchTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.RemoteRef(1), tasks[0].ListID)

	labels, err := client.FetchLabels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "home", labels[0].Name)
}

func TestClient_ProviderEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/providers/google/sync":
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "already in progress"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/providers/google/conflicts":
			_ = json.NewEncoder(w).Encode(api.ConflictsResponse{Conflicts: []*models.ExternalSyncConflict{{ID: 9, ExternalID: "abc"}}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/providers/google/conflicts/9/resolve":
			var req api.ResolveConflictRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, models.ResolveKeepRemote, req.Resolution)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	_, err := client.SyncProvider(ctx, models.ProviderGoogle)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.Status)
	assert.Equal(t, "already in progress", statusErr.Message)

	conflicts, err := client.ListConflicts(ctx, models.ProviderGoogle)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "abc", conflicts[0].ExternalID)

	require.NoError(t, client.ResolveConflict(ctx, models.ProviderGoogle, 9, api.ResolveConflictRequest{Resolution: models.ResolveKeepRemote}))
}
