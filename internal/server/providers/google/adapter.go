package google

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
)

// Adapter exposes the tasks API to the sync engine. The API has no labels
// and no priorities; both stay local-only.
type Adapter struct {
	client *Client
}

// NewAdapter creates an adapter over client
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// NewFactory returns a providers.Factory for baseURL
func NewFactory(baseURL string) providers.Factory {
	return func(httpClient *http.Client) providers.Adapter {
		return NewAdapter(NewClient(httpClient, baseURL))
	}
}

// Provider implements providers.Adapter
func (a *Adapter) Provider() models.Provider {
	return models.ProviderGoogle
}

// Capabilities implements providers.Adapter
func (a *Adapter) Capabilities() providers.Capabilities {
	return providers.Capabilities{}
}

// FetchSnapshot implements providers.Adapter
func (a *Adapter) FetchSnapshot(ctx context.Context, updatedMin *time.Time) (*providers.Snapshot, error) {
	lists, err := a.client.ListTaskLists(ctx)
	if err != nil {
		return nil, err
	}

	snap := &providers.Snapshot{Lists: make([]providers.RemoteList, 0, len(lists))}
	for i := range lists {
		snap.Lists = append(snap.Lists, *remoteList(&lists[i]))

		tasks, err := a.client.ListTasks(ctx, lists[i].ID, updatedMin, true)
		if err != nil {
			return nil, err
		}
		for j := range tasks {
			snap.Tasks = append(snap.Tasks, *remoteTask(&tasks[j], lists[i].ID))
		}
	}
	return snap, nil
}

// CreateList implements providers.Adapter
func (a *Adapter) CreateList(ctx context.Context, list *models.List) (*providers.RemoteList, error) {
	created, err := a.client.InsertTaskList(ctx, list.Name)
	if err != nil {
		return nil, err
	}
	return remoteList(created), nil
}

// UpdateList implements providers.Adapter
func (a *Adapter) UpdateList(ctx context.Context, externalID string, list *models.List) (*providers.RemoteList, error) {
	patched, err := a.client.PatchTaskList(ctx, externalID, list.Name)
	if err != nil {
		return nil, err
	}
	return remoteList(patched), nil
}

// DeleteList implements providers.Adapter
func (a *Adapter) DeleteList(ctx context.Context, externalID string) error {
	return a.client.DeleteTaskList(ctx, externalID)
}

// CreateTask implements providers.Adapter
func (a *Adapter) CreateTask(ctx context.Context, at providers.TaskLocation, task *models.Task, _ []string) (*providers.RemoteTask, error) {
	created, err := a.client.InsertTask(ctx, at.ListExternalID, at.ParentExternalID, MapLocalToRemote(task))
	if err != nil {
		return nil, err
	}
	return remoteTask(created, at.ListExternalID), nil
}

// UpdateTask implements providers.Adapter
func (a *Adapter) UpdateTask(ctx context.Context, externalID string, from, to providers.TaskLocation, task *models.Task, _ []string) (*providers.RemoteTask, error) {
	if from != to {
		// Перемещение возвращает задачу, id сохраняется и в другом списке
		if _, err := a.client.MoveTask(ctx, from.ListExternalID, externalID, to.ParentExternalID, "", to.ListExternalID); err != nil {
			return nil, err
		}
	}
	patched, err := a.client.PatchTask(ctx, to.ListExternalID, externalID, MapLocalToRemote(task))
	if err != nil {
		return nil, err
	}
	return remoteTask(patched, to.ListExternalID), nil
}

// DeleteTask implements providers.Adapter
func (a *Adapter) DeleteTask(ctx context.Context, listExternalID, externalID string) error {
	return a.client.DeleteTask(ctx, listExternalID, externalID)
}

func remoteList(list *TaskList) *providers.RemoteList {
	name, updated := MapRemoteList(list)
	raw, _ := json.Marshal(list)
	return &providers.RemoteList{
		ExternalID: list.ID,
		Name:       name,
		Etag:       list.Etag,
		UpdatedAt:  updated,
		Raw:        raw,
	}
}

func remoteTask(task *Task, listID string) *providers.RemoteTask {
	fields := MapRemoteToLocal(task, models.Ref{})
	raw, _ := json.Marshal(task)
	return &providers.RemoteTask{
		ExternalID:       task.ID,
		ListExternalID:   listID,
		ParentExternalID: task.Parent,
		Etag:             task.Etag,
		UpdatedAt:        fields.UpdatedAt,
		Deleted:          task.Deleted,
		Fields:           fields,
		Raw:              raw,
	}
}
