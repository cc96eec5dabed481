package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
)

// fakeAPI is an in-memory tasks API that pages one item at a time
type fakeAPI struct {
	lists   []TaskList
	tasks   map[string][]Task // list id -> tasks
	moves   []string
	queries []string
	nextID  int
	mu      sync.Mutex
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tasks: make(map[string][]Task)}
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[2] == "lists" && r.Method == http.MethodGet:
		// Пагинация по одному элементу
		start := 0
		if tok := r.URL.Query().Get("pageToken"); tok != "" {
			_, _ = fmt.Sscanf(tok, "%d", &start)
		}
		page := listsPage{}
		if start < len(f.lists) {
			page.Items = f.lists[start : start+1]
			if start+1 < len(f.lists) {
				page.NextPageToken = fmt.Sprint(start + 1)
			}
		}
		writeJSON(w, page)

	case len(parts) == 3 && parts[2] == "lists" && r.Method == http.MethodPost:
		var in TaskList
		_ = json.NewDecoder(r.Body).Decode(&in)
		in.ID = f.id("L")
		in.Updated = "2026-03-01T10:00:00.000Z"
		f.lists = append(f.lists, in)
		writeJSON(w, in)

	case len(parts) == 4 && parts[2] == "lists" && r.Method == http.MethodPatch:
		var in TaskList
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i := range f.lists {
			if f.lists[i].ID == parts[3] {
				f.lists[i].Title = in.Title
				writeJSON(w, f.lists[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	case len(parts) == 3 && parts[0] == "lists" && r.Method == http.MethodGet:
		f.queries = append(f.queries, r.URL.RawQuery)
		writeJSON(w, tasksPage{Items: f.tasks[parts[1]]})

	case len(parts) == 3 && parts[0] == "lists" && r.Method == http.MethodPost:
		var in Task
		_ = json.NewDecoder(r.Body).Decode(&in)
		in.ID = f.id("T")
		in.Parent = r.URL.Query().Get("parent")
		in.Updated = "2026-03-01T10:00:00.000Z"
		f.tasks[parts[1]] = append(f.tasks[parts[1]], in)
		writeJSON(w, in)

	case len(parts) == 5 && parts[4] == "move":
		f.moves = append(f.moves, r.URL.RawQuery)
		dest := r.URL.Query().Get("destinationTasklist")
		for i, task := range f.tasks[parts[1]] {
			if task.ID != parts[3] {
				continue
			}
			task.Parent = r.URL.Query().Get("parent")
			if dest != "" {
				f.tasks[parts[1]] = append(f.tasks[parts[1]][:i], f.tasks[parts[1]][i+1:]...)
				f.tasks[dest] = append(f.tasks[dest], task)
			} else {
				f.tasks[parts[1]][i] = task
			}
			writeJSON(w, task)
			return
		}
		w.WriteHeader(http.StatusNotFound)

	case len(parts) == 4 && r.Method == http.MethodPatch:
		var in taskPatch
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i, task := range f.tasks[parts[1]] {
			if task.ID == parts[3] {
				task.Title, task.Notes, task.Status, task.Due, task.Completed = in.Title, in.Notes, in.Status, in.Due, in.Completed
				task.Updated = "2026-03-01T11:00:00.000Z"
				f.tasks[parts[1]][i] = task
				writeJSON(w, task)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	case len(parts) == 4 && r.Method == http.MethodDelete:
		for i, task := range f.tasks[parts[1]] {
			if task.ID == parts[3] {
				f.tasks[parts[1]] = append(f.tasks[parts[1]][:i], f.tasks[parts[1]][i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func setupAdapter(t *testing.T) (*Adapter, *fakeAPI) {
	api := newFakeAPI()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return NewFactory(server.URL)(server.Client()).(*Adapter), api
}

func TestAdapter_FetchSnapshot(t *testing.T) {
	ctx := context.Background()
	a, api := setupAdapter(t)

	api.lists = []TaskList{
		{ID: "L1", Title: "Inbox", Updated: "2026-03-01T09:00:00Z"},
		{ID: "L2", Title: "Work", Updated: "2026-03-01T09:00:00Z"},
	}
	api.tasks["L1"] = []Task{
		{ID: "T1", Title: "Buy milk", Status: StatusNeedsAction, Updated: "2026-03-01T12:00:00Z"},
		{ID: "T2", Title: "Old", Status: StatusNeedsAction, Updated: "2026-03-01T12:00:00Z", Deleted: true},
	}
	api.tasks["L2"] = []Task{
		{ID: "T3", Title: "Report", Parent: "T9", Status: StatusCompleted, Updated: "2026-03-01T12:00:00Z"},
	}

	since := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snap, err := a.FetchSnapshot(ctx, &since)
	require.NoError(t, err)

	require.Len(t, snap.Lists, 2)
	assert.Equal(t, "Inbox", snap.Lists[0].Name)
	assert.Equal(t, "Work", snap.Lists[1].Name)

	require.Len(t, snap.Tasks, 3)
	assert.Equal(t, "L1", snap.Tasks[0].ListExternalID)
	assert.Equal(t, "Buy milk", snap.Tasks[0].Fields.Title)
	assert.True(t, snap.Tasks[1].Deleted)
	assert.Equal(t, "T9", snap.Tasks[2].ParentExternalID)
	assert.True(t, snap.Tasks[2].Fields.Completed)
	assert.NotEmpty(t, snap.Tasks[0].Raw)

	require.Len(t, api.queries, 2)
	assert.Contains(t, api.queries[0], "updatedMin=2026-03-01T10%3A00%3A00Z")
	assert.Contains(t, api.queries[0], "showDeleted=true")
}

func TestAdapter_ListAndTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	a, api := setupAdapter(t)

	inbox, err := a.CreateList(ctx, &models.List{Name: "Inbox"})
	require.NoError(t, err)
	work, err := a.CreateList(ctx, &models.List{Name: "Work"})
	require.NoError(t, err)

	renamed, err := a.UpdateList(ctx, inbox.ExternalID, &models.List{Name: "Personal"})
	require.NoError(t, err)
	assert.Equal(t, "Personal", renamed.Name)

	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	created, err := a.CreateTask(ctx, providers.TaskLocation{ListExternalID: inbox.ExternalID},
		&models.Task{Title: "Buy milk", DueAt: &due}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ExternalID)
	require.NotNil(t, created.Fields.DueAt)
	assert.True(t, created.Fields.DueAt.Equal(due))

	// Перемещение в другой список и обновление полей
	from := providers.TaskLocation{ListExternalID: inbox.ExternalID}
	to := providers.TaskLocation{ListExternalID: work.ExternalID}
	updated, err := a.UpdateTask(ctx, created.ExternalID, from, to, &models.Task{Title: "Buy oat milk", Completed: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, work.ExternalID, updated.ListExternalID)
	assert.Equal(t, "Buy oat milk", updated.Fields.Title)
	assert.True(t, updated.Fields.Completed)
	assert.Nil(t, updated.Fields.DueAt)
	require.Len(t, api.moves, 1)
	assert.Contains(t, api.moves[0], "destinationTasklist="+work.ExternalID)

	// Без изменения положения move не вызывается
	_, err = a.UpdateTask(ctx, created.ExternalID, to, to, &models.Task{Title: "Buy oat milk"}, nil)
	require.NoError(t, err)
	assert.Len(t, api.moves, 1)

	require.NoError(t, a.DeleteTask(ctx, work.ExternalID, created.ExternalID))
	err = a.DeleteTask(ctx, work.ExternalID, created.ExternalID)
	assert.ErrorIs(t, err, providers.ErrNotFound)
}
