package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/credentials"
	"github.com/iudanet/tasksync/internal/server/providersync"
	"github.com/iudanet/tasksync/internal/server/storage"
	"github.com/iudanet/tasksync/pkg/api"
)

// newProviderMux routes requests the way the server does, so path values are set
func newProviderMux(h *ProviderHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/providers/{provider}/sync", h.Sync)
	mux.HandleFunc("GET /api/v1/providers/{provider}/conflicts", h.Conflicts)
	mux.HandleFunc("POST /api/v1/providers/{provider}/conflicts/{id}/resolve", h.Resolve)
	mux.HandleFunc("PUT /api/v1/providers/{provider}/credentials", h.Link)
	mux.HandleFunc("DELETE /api/v1/providers/{provider}/credentials", h.Unlink)
	return mux
}

func serve(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, authed(req))
	return w
}

func TestProviderHandler_Sync(t *testing.T) {
	synced := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		outcome  *providersync.Outcome
		name     string
		path     string
		want     api.ProviderSyncResponse
		wantCode int
	}{
		{
			name:     "success",
			path:     "/api/v1/providers/google/sync",
			outcome:  &providersync.Outcome{Status: providersync.StatusOK, LastSyncedAt: &synced, Pulled: 2, Pushed: 1, ConflictCount: 1},
			wantCode: http.StatusOK,
			want:     api.ProviderSyncResponse{Status: "ok", LastSyncedAt: &synced, Pulled: 2, Pushed: 1, ConflictCount: 1},
		},
		{
			name:     "already in progress",
			path:     "/api/v1/providers/todoist/sync",
			outcome:  &providersync.Outcome{Status: providersync.StatusError, Error: storage.ErrSyncInProgress.Error(), Busy: true},
			wantCode: http.StatusConflict,
			want:     api.ProviderSyncResponse{Status: "error", Error: "already in progress"},
		},
		{
			name:     "failed pass",
			path:     "/api/v1/providers/google/sync",
			outcome:  &providersync.Outcome{Status: providersync.StatusError, Error: "failed to fetch snapshot: 503"},
			wantCode: http.StatusOK,
			want:     api.ProviderSyncResponse{Status: "error", Error: "failed to fetch snapshot: 503"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &ProviderEngineMock{
				SyncForUserFunc: func(ctx context.Context, userID int64, provider models.Provider) *providersync.Outcome {
					return tt.outcome
				},
			}
			mux := newProviderMux(NewProviderHandler(setupTestLogger(), engine, &CredentialLinkerMock{}))

			w := serve(mux, http.MethodPost, tt.path, "")

			assert.Equal(t, tt.wantCode, w.Code)
			var got api.ProviderSyncResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Error, got.Error)
			assert.Equal(t, tt.want.Pulled, got.Pulled)
			assert.Equal(t, tt.want.Pushed, got.Pushed)
			assert.Equal(t, tt.want.ConflictCount, got.ConflictCount)
			if tt.want.LastSyncedAt != nil {
				require.NotNil(t, got.LastSyncedAt)
				assert.True(t, tt.want.LastSyncedAt.Equal(*got.LastSyncedAt))
			}

			calls := engine.SyncForUserCalls()
			require.Len(t, calls, 1)
			assert.Equal(t, int64(42), calls[0].UserID)
		})
	}
}

func TestProviderHandler_UnknownProvider(t *testing.T) {
	engine := &ProviderEngineMock{}
	mux := newProviderMux(NewProviderHandler(setupTestLogger(), engine, &CredentialLinkerMock{}))

	w := serve(mux, http.MethodPost, "/api/v1/providers/trello/sync", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, engine.SyncForUserCalls())
}

func TestProviderHandler_Conflicts(t *testing.T) {
	engine := &ProviderEngineMock{
		ListConflictsFunc: func(ctx context.Context, userID int64, provider models.Provider) ([]*models.ExternalSyncConflict, error) {
			if provider == models.ProviderTodoist {
				return nil, errors.New("database is locked")
			}
			return []*models.ExternalSyncConflict{{
				ID:              3,
				Provider:        provider,
				LocalID:         7,
				ExternalID:      "T-call",
				ConflictType:    models.ConflictTypeBothModified,
				LocalPayload:    json.RawMessage(`{"title":"Call dentist"}`),
				ExternalPayload: json.RawMessage(`{"task":{"title":"Call doctor"}}`),
				Status:          models.ConflictPending,
			}}, nil
		},
	}
	mux := newProviderMux(NewProviderHandler(setupTestLogger(), engine, &CredentialLinkerMock{}))

	w := serve(mux, http.MethodGet, "/api/v1/providers/google/conflicts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp api.ConflictsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, int64(3), resp.Conflicts[0].ID)
	assert.JSONEq(t, `{"title":"Call dentist"}`, string(resp.Conflicts[0].LocalPayload))

	w = serve(mux, http.MethodGet, "/api/v1/providers/todoist/conflicts", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProviderHandler_Resolve(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		path     string
		body     string
		wantCode int
		called   bool
	}{
		{
			name:     "keep local",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"keep_local"}`,
			wantCode: http.StatusOK,
			called:   true,
		},
		{
			name:     "merge passes merged data",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"merge","merged":{"title":"Call both"}}`,
			wantCode: http.StatusOK,
			called:   true,
		},
		{
			name:     "invalid resolution",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"keep_both"}`,
			err:      fmt.Errorf("%w: %q", providersync.ErrInvalidResolution, "keep_both"),
			wantCode: http.StatusBadRequest,
			called:   true,
		},
		{
			name:     "conflict not found",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"keep_local"}`,
			err:      storage.ErrConflictNotFound,
			wantCode: http.StatusNotFound,
			called:   true,
		},
		{
			name:     "sync running",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"keep_local"}`,
			err:      storage.ErrSyncInProgress,
			wantCode: http.StatusConflict,
			called:   true,
		},
		{
			name:     "provider unlinked",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"keep_remote"}`,
			err:      credentials.ErrNotLinked,
			wantCode: http.StatusPreconditionFailed,
			called:   true,
		},
		{
			name:     "provider failure",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `{"resolution":"keep_local"}`,
			err:      errors.New("failed to push resolved task: 500"),
			wantCode: http.StatusInternalServerError,
			called:   true,
		},
		{
			name:     "bad id",
			path:     "/api/v1/providers/google/conflicts/abc/resolve",
			body:     `{"resolution":"keep_local"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad body",
			path:     "/api/v1/providers/google/conflicts/3/resolve",
			body:     `resolution=keep_local`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &ProviderEngineMock{
				ResolveConflictFunc: func(ctx context.Context, userID int64, provider models.Provider, conflictID int64, resolution models.ConflictResolution, merged json.RawMessage) (*models.Task, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &models.Task{ID: models.RemoteRef(7), Title: "Call dentist"}, nil
				},
			}
			mux := newProviderMux(NewProviderHandler(setupTestLogger(), engine, &CredentialLinkerMock{}))

			w := serve(mux, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			calls := engine.ResolveConflictCalls()
			if !tt.called {
				assert.Empty(t, calls)
				return
			}
			require.Len(t, calls, 1)
			assert.Equal(t, int64(3), calls[0].ConflictID)
			assert.Equal(t, models.ProviderGoogle, calls[0].Provider)
			if tt.err == nil {
				var resp api.ResolveConflictResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				require.NotNil(t, resp.Task)
				assert.Equal(t, "Call dentist", resp.Task.Title)
			}
		})
	}
}

func TestProviderHandler_Resolve_MergedPayload(t *testing.T) {
	engine := &ProviderEngineMock{
		ResolveConflictFunc: func(ctx context.Context, userID int64, provider models.Provider, conflictID int64, resolution models.ConflictResolution, merged json.RawMessage) (*models.Task, error) {
			return &models.Task{}, nil
		},
	}
	mux := newProviderMux(NewProviderHandler(setupTestLogger(), engine, &CredentialLinkerMock{}))

	w := serve(mux, http.MethodPost, "/api/v1/providers/google/conflicts/3/resolve",
		`{"resolution":"merge","merged":{"title":"Call both"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	calls := engine.ResolveConflictCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.ResolveMerge, calls[0].Resolution)
	assert.JSONEq(t, `{"title":"Call both"}`, string(calls[0].Merged))
}

func TestProviderHandler_Link(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		saveErr  error
		name     string
		body     string
		wantCode int
		called   bool
	}{
		{
			name:     "success",
			body:     `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expiry":"2026-03-01T14:00:00Z"}`,
			wantCode: http.StatusNoContent,
			called:   true,
		},
		{
			name:     "no tokens",
			body:     `{"token_type":"Bearer"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid json",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "storage error",
			body:     `{"access_token":"at"}`,
			saveErr:  errors.New("disk full"),
			wantCode: http.StatusInternalServerError,
			called:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linker := &CredentialLinkerMock{
				SaveFunc: func(ctx context.Context, userID int64, provider models.Provider, tok *oauth2.Token) error {
					return tt.saveErr
				},
			}
			mux := newProviderMux(NewProviderHandler(setupTestLogger(), &ProviderEngineMock{}, linker))

			w := serve(mux, http.MethodPut, "/api/v1/providers/todoist/credentials", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			calls := linker.SaveCalls()
			if !tt.called {
				assert.Empty(t, calls)
				return
			}
			require.Len(t, calls, 1)
			assert.Equal(t, int64(42), calls[0].UserID)
			assert.Equal(t, models.ProviderTodoist, calls[0].Provider)
			if tt.saveErr == nil {
				assert.Equal(t, "at", calls[0].Tok.AccessToken)
				assert.Equal(t, "rt", calls[0].Tok.RefreshToken)
				assert.True(t, calls[0].Tok.Expiry.Equal(expiry))
			}
		})
	}
}

func TestProviderHandler_Unlink(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantCode int
	}{
		{name: "success", wantCode: http.StatusNoContent},
		{name: "not linked", err: credentials.ErrNotLinked, wantCode: http.StatusNotFound},
		{name: "storage error", err: errors.New("database is locked"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linker := &CredentialLinkerMock{
				DeleteFunc: func(ctx context.Context, userID int64, provider models.Provider) error {
					return tt.err
				},
			}
			mux := newProviderMux(NewProviderHandler(setupTestLogger(), &ProviderEngineMock{}, linker))

			w := serve(mux, http.MethodDelete, "/api/v1/providers/google/credentials", "")

			assert.Equal(t, tt.wantCode, w.Code)
			require.Len(t, linker.DeleteCalls(), 1)
		})
	}
}
