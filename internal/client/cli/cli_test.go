package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/client/auth"
	"github.com/iudanet/tasksync/internal/client/iocli"
	"github.com/iudanet/tasksync/internal/client/optimistic"
	"github.com/iudanet/tasksync/internal/client/storage"
	clientsync "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/client/tasks"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

var inbox = models.RemoteRef(1)

type testEnv struct {
	cli     *Cli
	out     *bytes.Buffer
	manager *clientsync.ManagerMock
	remote  *RemoteMock
	queue   []*models.PendingAction
}

// newTestEnv builds a Cli over mocks with an authenticated session and one list
func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()

	store := optimistic.NewStore()
	optimistic.NewProjector(store).Rebase(&storage.Snapshot{
		Lists:  []*models.List{{ID: inbox, Name: "Inbox"}},
		Labels: []*models.Label{{ID: models.RemoteRef(30), Name: "home"}},
		Tasks: []*models.Task{
			{ID: models.RemoteRef(10), ListID: inbox, Title: "Buy milk", Priority: 2, LabelIDs: []models.Ref{models.RemoteRef(30)}},
		},
	}, nil)

	env := &testEnv{out: &bytes.Buffer{}, remote: &RemoteMock{}}
	env.manager = &clientsync.ManagerMock{
		StoreFunc: func() *optimistic.Store { return store },
		DispatchFunc: func(ctx context.Context, payload models.Payload) (*models.PendingAction, error) {
			action := &models.PendingAction{ID: uuid.New(), Kind: payload.Kind(), Status: models.ActionPending}
			if models.IsCreate(payload.Kind()) {
				ref := models.NewLocalRef()
				action.TempRef = &ref
			}
			return action, nil
		},
		ProcessQueueFunc: func(ctx context.Context) (*clientsync.DrainResult, error) {
			return &clientsync.DrainResult{}, nil
		},
		QueueFunc: func(ctx context.Context) ([]*models.PendingAction, error) {
			return env.queue, nil
		},
		RefreshFunc: func(ctx context.Context, force bool) (bool, error) {
			return true, nil
		},
		StateFunc: func() clientsync.Status {
			return clientsync.Status{State: clientsync.StateIdle}
		},
	}
	authService := &auth.ServiceMock{
		IsAuthenticatedFunc: func(ctx context.Context) (bool, error) { return true, nil },
		CurrentFunc: func(ctx context.Context) (*storage.AuthData, error) {
			return &storage.AuthData{Username: "alice", UserID: 7}, nil
		},
	}

	io := iocli.New(strings.NewReader(input), env.out)
	env.cli = New(io, authService, tasks.NewService(env.manager), env.manager, env.remote)
	return env
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetToken_Priority(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		file    string
		args    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "env wins over everything", env: "env-token", file: "file-token", args: "arg-token", want: "env-token"},
		{name: "file wins over args", file: "file-token\n", args: "arg-token", want: "file-token"},
		{name: "args", args: "arg-token", want: "arg-token"},
		{name: "interactive prompt", input: "typed-token\n", want: "typed-token"},
		{name: "empty prompt", input: "\n", wantErr: true},
		{name: "empty file", file: "  \n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(TokenEnv, tt.env)
			c := &Cli{io: iocli.New(strings.NewReader(tt.input), &bytes.Buffer{})}

			sources := TokenSources{FromArgs: tt.args}
			if tt.file != "" {
				sources.FromFile = writeTemp(t, tt.file)
			}

			got, err := c.getToken(sources)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetToken_MissingFile(t *testing.T) {
	t.Setenv(TokenEnv, "")
	c := &Cli{io: iocli.New(strings.NewReader(""), &bytes.Buffer{})}

	_, err := c.getToken(TokenSources{FromFile: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "failed to read token file")
}

func TestParseDue(t *testing.T) {
	day, hasTime, err := parseDue("2026-05-01")
	require.NoError(t, err)
	assert.False(t, hasTime)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), day)

	at, hasTime, err := parseDue("2026-05-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, hasTime)
	assert.Equal(t, time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC), at)

	_, _, err = parseDue("tomorrow")
	assert.Error(t, err)
}

func TestRunTaskAdd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")

	err := env.cli.runTaskAdd(ctx, taskOptions{
		list:     "inbox",
		title:    "Water plants",
		due:      "2026-05-02",
		labels:   []string{"home"},
		priority: 1,
	})
	require.NoError(t, err)

	calls := env.manager.DispatchCalls()
	require.Len(t, calls, 1)
	payload, ok := calls[0].Payload.(*models.CreateTaskPayload)
	require.True(t, ok)
	assert.Equal(t, inbox, payload.ListID)
	assert.Equal(t, "Water plants", payload.Title)
	assert.Equal(t, []models.Ref{models.RemoteRef(30)}, payload.LabelIDs)
	require.NotNil(t, payload.DueAt)
	assert.False(t, payload.DueHasTime)

	// После мутации очередь сразу отправляется
	assert.Len(t, env.manager.ProcessQueueCalls(), 1)
	assert.Contains(t, env.out.String(), "✓ Task added: tmp:")

	err = env.cli.runTaskAdd(ctx, taskOptions{title: "No list"})
	assert.ErrorContains(t, err, "missing list")

	err = env.cli.runTaskAdd(ctx, taskOptions{list: "nope", title: "Lost"})
	assert.ErrorIs(t, err, tasks.ErrNotFound)
}

func TestRunTaskEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to change", func(t *testing.T) {
		env := newTestEnv(t, "")
		err := env.cli.runTaskEdit(ctx, "10", taskOptions{})
		assert.ErrorContains(t, err, "nothing to change")
		assert.Empty(t, env.manager.DispatchCalls())
	})

	t.Run("clear labels and set priority", func(t *testing.T) {
		env := newTestEnv(t, "")
		err := env.cli.runTaskEdit(ctx, "10", taskOptions{labels: []string{}, priority: 0, setPriority: true})
		require.NoError(t, err)

		calls := env.manager.DispatchCalls()
		require.Len(t, calls, 1)
		update := calls[0].Payload.(*models.UpdateTaskPayload)
		require.NotNil(t, update.Patch.LabelIDs)
		assert.Empty(t, *update.Patch.LabelIDs)
		require.NotNil(t, update.Patch.Priority)
		assert.Equal(t, 0, *update.Patch.Priority)
		assert.Nil(t, update.Patch.Title)
	})

	t.Run("unknown task", func(t *testing.T) {
		env := newTestEnv(t, "")
		title := "x"
		err := env.cli.runTaskEdit(ctx, "404", taskOptions{title: title})
		assert.ErrorContains(t, err, "task not found: 404")
	})
}

func TestRunTaskListAndShow(t *testing.T) {
	env := newTestEnv(t, "")

	require.NoError(t, env.cli.runTaskList("", "", false))
	assert.Contains(t, env.out.String(), "Buy milk  (P2, #home)")

	env.out.Reset()
	require.NoError(t, env.cli.runTaskShow("10"))
	out := env.out.String()
	assert.Contains(t, out, "Title:     Buy milk")
	assert.Contains(t, out, "List:      Inbox")
	assert.Contains(t, out, "Labels:    home")
	assert.NotContains(t, out, "Not yet confirmed")
}

func TestAfterMutation_Offline(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")
	env.manager.ProcessQueueFunc = func(ctx context.Context) (*clientsync.DrainResult, error) {
		return nil, errors.New("connection refused")
	}

	require.NoError(t, env.cli.runTaskDone(ctx, "10", true))
	assert.Contains(t, env.out.String(), "✓ Task completed")
	assert.Contains(t, env.out.String(), "Queued offline: connection refused")
}

func TestRunListDelete_AsksForConfirmation(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, "n\n")
	require.NoError(t, env.cli.runListDelete(ctx, "Inbox", false))
	assert.Empty(t, env.manager.DispatchCalls())
	assert.Contains(t, env.out.String(), "Cancelled.")

	env = newTestEnv(t, "y\n")
	require.NoError(t, env.cli.runListDelete(ctx, "Inbox", false))
	require.Len(t, env.manager.DispatchCalls(), 1)
	assert.Equal(t, models.ActionListDelete, env.manager.DispatchCalls()[0].Payload.Kind())
}

func TestRunSync(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the pass", func(t *testing.T) {
		env := newTestEnv(t, "")
		stopped := uuid.New()
		env.manager.ProcessQueueFunc = func(ctx context.Context) (*clientsync.DrainResult, error) {
			return &clientsync.DrainResult{Succeeded: 3, Conflicts: 1, StoppedAt: &stopped}, nil
		}

		require.NoError(t, env.cli.runSync(ctx, true))
		out := env.out.String()
		assert.Contains(t, out, "Delivered:  3 action(s)")
		assert.Contains(t, out, "Conflicts:  1")
		assert.Contains(t, out, "Stopped at action "+stopped.String())
		assert.Contains(t, out, "✓ Synchronization completed")

		require.Len(t, env.manager.RefreshCalls(), 1)
		assert.True(t, env.manager.RefreshCalls()[0].Force)
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.manager.ProcessQueueFunc = func(ctx context.Context) (*clientsync.DrainResult, error) {
			return &clientsync.DrainResult{Skipped: true}, nil
		}

		require.NoError(t, env.cli.runSync(ctx, false))
		assert.Contains(t, env.out.String(), "Another tasksync process is syncing")
		assert.Empty(t, env.manager.RefreshCalls())
	})

	t.Run("not authenticated", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.cli.authService = &auth.ServiceMock{
			IsAuthenticatedFunc: func(ctx context.Context) (bool, error) { return false, nil },
		}
		assert.ErrorContains(t, env.cli.runSync(ctx, false), "not authenticated")
		assert.Empty(t, env.manager.ProcessQueueCalls())
	})
}

func TestRunStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")
	env.queue = []*models.PendingAction{
		{ID: uuid.New(), Kind: models.ActionTaskCreate, Status: models.ActionPending},
		{ID: uuid.New(), Kind: models.ActionTaskUpdate, Status: models.ActionFailed, Error: "boom"},
		{ID: uuid.New(), Kind: models.ActionTaskToggle, Status: models.ActionFailed, Conflict: &models.ConflictInfo{}},
	}
	env.manager.StateFunc = func() clientsync.Status {
		return clientsync.Status{State: clientsync.StateError, LastError: "server unavailable"}
	}

	require.NoError(t, env.cli.runStatus(ctx))
	out := env.out.String()
	assert.Contains(t, out, "Username: alice")
	assert.Contains(t, out, "Queued: 1 pending, 1 failed, 1 conflict(s)")
	assert.Contains(t, out, "Last sync error: server unavailable")
}

func TestRunQueueResolve(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("5b0c6a4e-1111-4c55-9d2f-0d7e1e1f6a11")

	tests := []struct {
		name    string
		use     string
		merged  string
		want    clientsync.Resolution
		wantErr string
	}{
		{name: "server", use: "server", want: clientsync.Resolution{Choice: clientsync.ChooseServer}},
		{name: "local", use: "local", want: clientsync.Resolution{Choice: clientsync.ChooseLocal}},
		{name: "merge", use: "merge", merged: `{"title":"both"}`, want: clientsync.Resolution{Choice: clientsync.ChooseMerge, Merged: []byte(`{"title":"both"}`)}},
		{name: "merge without data", use: "merge", wantErr: "--merged is required"},
		{name: "unknown", use: "mine", wantErr: "unknown choice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.queue = []*models.PendingAction{{ID: id, Kind: models.ActionTaskUpdate, Status: models.ActionFailed, Conflict: &models.ConflictInfo{}}}
			env.manager.ResolveConflictFunc = func(ctx context.Context, id uuid.UUID, resolution clientsync.Resolution) error {
				return nil
			}

			mergedFile := ""
			if tt.merged != "" {
				mergedFile = writeTemp(t, tt.merged)
			}

			// Достаточно префикса идентификатора
			err := env.cli.runQueueResolve(ctx, "5b0c6a4e", tt.use, mergedFile)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Empty(t, env.manager.ResolveConflictCalls())
				return
			}
			require.NoError(t, err)

			calls := env.manager.ResolveConflictCalls()
			require.Len(t, calls, 1)
			assert.Equal(t, id, calls[0].ID)
			assert.Equal(t, tt.want, calls[0].Resolution)
		})
	}
}

func TestFindAction_AmbiguousPrefix(t *testing.T) {
	env := newTestEnv(t, "")
	env.queue = []*models.PendingAction{
		{ID: uuid.MustParse("aaaa0000-0000-4000-8000-000000000001")},
		{ID: uuid.MustParse("aaaa0000-0000-4000-8000-000000000002")},
	}

	_, err := env.cli.findAction(context.Background(), "aaaa")
	assert.ErrorContains(t, err, "ambiguous")

	a, err := env.cli.findAction(context.Background(), "aaaa0000-0000-4000-8000-000000000002")
	require.NoError(t, err)
	assert.Equal(t, env.queue[1], a)

	_, err = env.cli.findAction(context.Background(), "bbbb")
	assert.ErrorContains(t, err, "action not found")
}

func TestRunProviderSync(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.remote.SyncProviderFunc = func(ctx context.Context, provider models.Provider) (*api.ProviderSyncResponse, error) {
			return &api.ProviderSyncResponse{Status: "ok", Pulled: 2, Pushed: 1, ConflictCount: 1}, nil
		}

		require.NoError(t, env.cli.runProviderSync(ctx, "Todoist"))
		require.Len(t, env.remote.SyncProviderCalls(), 1)
		assert.Equal(t, models.ProviderTodoist, env.remote.SyncProviderCalls()[0].Provider)
		assert.Contains(t, env.out.String(), "2 pulled, 1 pushed, 0 deleted")
		assert.Contains(t, env.out.String(), "1 conflict(s) need a decision")
		// Очередь доставляется до синхронизации, снимок обновляется после
		assert.Len(t, env.manager.ProcessQueueCalls(), 1)
		assert.Len(t, env.manager.RefreshCalls(), 1)
	})

	t.Run("failed pass", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.remote.SyncProviderFunc = func(ctx context.Context, provider models.Provider) (*api.ProviderSyncResponse, error) {
			return &api.ProviderSyncResponse{Status: "error", Error: "token revoked"}, nil
		}
		assert.ErrorContains(t, env.cli.runProviderSync(ctx, "google"), "token revoked")
	})

	t.Run("unknown provider", func(t *testing.T) {
		env := newTestEnv(t, "")
		assert.ErrorContains(t, env.cli.runProviderSync(ctx, "trello"), "unknown provider")
		assert.Empty(t, env.remote.SyncProviderCalls())
	})
}

func TestRunProviderResolve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "")
	env.remote.ResolveConflictFunc = func(ctx context.Context, provider models.Provider, id int64, req api.ResolveConflictRequest) error {
		return nil
	}

	require.NoError(t, env.cli.runProviderResolve(ctx, "google", 5, "remote", ""))
	require.NoError(t, env.cli.runProviderResolve(ctx, "google", 6, "merge", writeTemp(t, `{"title":"merged"}`)))
	assert.ErrorContains(t, env.cli.runProviderResolve(ctx, "google", 7, "merge", writeTemp(t, `not json`)), "not valid JSON")

	calls := env.remote.ResolveConflictCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, int64(5), calls[0].ID)
	assert.Equal(t, models.ResolveKeepRemote, calls[0].Req.Resolution)
	assert.Equal(t, models.ResolveMerge, calls[1].Req.Resolution)
	assert.JSONEq(t, `{"title":"merged"}`, string(calls[1].Req.Merged))
}

func TestCommands_Tree(t *testing.T) {
	env := newTestEnv(t, "")

	names := make(map[string]bool)
	for _, cmd := range env.cli.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"login", "logout", "status", "sync", "task", "list", "label", "queue", "provider"} {
		assert.True(t, names[want], want)
	}
}
