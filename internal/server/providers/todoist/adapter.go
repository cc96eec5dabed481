package todoist

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
)

// Adapter exposes the REST API to the sync engine: projects are lists,
// labels are labels and are referenced from tasks by name.
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

var _ providers.LabelAdapter = (*Adapter)(nil)

// Provider implements providers.Adapter
func (a *Adapter) Provider() models.Provider {
	return models.ProviderTodoist
}

// Capabilities implements providers.Adapter
func (a *Adapter) Capabilities() providers.Capabilities {
	return providers.Capabilities{Priority: true, PriorityFloor: 1, Labels: true, DueTime: true}
}

// FetchSnapshot implements providers.Adapter
func (a *Adapter) FetchSnapshot(ctx context.Context, updatedMin *time.Time) (*providers.Snapshot, error) {
	projects, err := a.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := a.client.ListLabels(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := a.client.ListTasks(ctx, updatedMin)
	if err != nil {
		return nil, err
	}

	snap := &providers.Snapshot{}
	for i := range projects {
		// Удаленные проекты отсутствуют в снимке, как и в выдаче Google
		if projects[i].IsDeleted {
			continue
		}
		snap.Lists = append(snap.Lists, *remoteList(&projects[i]))
	}
	for i := range labels {
		snap.Labels = append(snap.Labels, *remoteLabel(&labels[i]))
	}
	for i := range tasks {
		snap.Tasks = append(snap.Tasks, *remoteTask(&tasks[i]))
	}
	return snap, nil
}

// CreateList implements providers.Adapter
func (a *Adapter) CreateList(ctx context.Context, list *models.List) (*providers.RemoteList, error) {
	p, err := a.client.CreateProject(ctx, list.Name)
	if err != nil {
		return nil, err
	}
	return remoteList(p), nil
}

// UpdateList implements providers.Adapter
func (a *Adapter) UpdateList(ctx context.Context, externalID string, list *models.List) (*providers.RemoteList, error) {
	p, err := a.client.UpdateProject(ctx, externalID, list.Name)
	if err != nil {
		return nil, err
	}
	return remoteList(p), nil
}

// DeleteList implements providers.Adapter
func (a *Adapter) DeleteList(ctx context.Context, externalID string) error {
	return a.client.DeleteProject(ctx, externalID)
}

// CreateTask implements providers.Adapter
func (a *Adapter) CreateTask(ctx context.Context, at providers.TaskLocation, task *models.Task, labels []string) (*providers.RemoteTask, error) {
	body := MapLocalToRemote(task, labels)
	body.ProjectID = at.ListExternalID
	body.ParentID = at.ParentExternalID
	if body.DueString == noDate {
		body.DueString = ""
	}

	created, err := a.client.CreateTask(ctx, body)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		if err := a.client.CloseTask(ctx, created.ID); err != nil {
			return nil, err
		}
		if created, err = a.client.GetTask(ctx, created.ID); err != nil {
			return nil, err
		}
	}
	return remoteTask(created), nil
}

// UpdateTask implements providers.Adapter
func (a *Adapter) UpdateTask(ctx context.Context, externalID string, from, to providers.TaskLocation, task *models.Task, labels []string) (*providers.RemoteTask, error) {
	if from != to {
		if err := a.client.MoveTask(ctx, externalID, to.ListExternalID, to.ParentExternalID); err != nil {
			return nil, err
		}
	}

	updated, err := a.client.UpdateTask(ctx, externalID, MapLocalToRemote(task, labels))
	if err != nil {
		return nil, err
	}
	if updated.Checked != task.Completed {
		if task.Completed {
			err = a.client.CloseTask(ctx, externalID)
		} else {
			err = a.client.ReopenTask(ctx, externalID)
		}
		if err != nil {
			return nil, err
		}
		if updated, err = a.client.GetTask(ctx, externalID); err != nil {
			return nil, err
		}
	}
	return remoteTask(updated), nil
}

// DeleteTask implements providers.Adapter
func (a *Adapter) DeleteTask(ctx context.Context, _, externalID string) error {
	return a.client.DeleteTask(ctx, externalID)
}

// CreateLabel implements providers.LabelAdapter
func (a *Adapter) CreateLabel(ctx context.Context, label *models.Label) (*providers.RemoteLabel, error) {
	created, err := a.client.CreateLabel(ctx, &Label{Name: label.Name, Color: label.Color})
	if err != nil {
		return nil, err
	}
	return remoteLabel(created), nil
}

// UpdateLabel implements providers.LabelAdapter
func (a *Adapter) UpdateLabel(ctx context.Context, externalID string, label *models.Label) (*providers.RemoteLabel, error) {
	updated, err := a.client.UpdateLabel(ctx, externalID, &Label{Name: label.Name, Color: label.Color})
	if err != nil {
		return nil, err
	}
	return remoteLabel(updated), nil
}

// DeleteLabel implements providers.LabelAdapter
func (a *Adapter) DeleteLabel(ctx context.Context, externalID string) error {
	return a.client.DeleteLabel(ctx, externalID)
}

func remoteList(p *Project) *providers.RemoteList {
	raw, _ := json.Marshal(p)
	rl := &providers.RemoteList{ExternalID: p.ID, Name: p.Name, Raw: raw}
	if p.UpdatedAt != nil {
		if t, ok := parseTime(*p.UpdatedAt); ok {
			rl.UpdatedAt = &t
		}
	}
	return rl
}

func remoteLabel(l *Label) *providers.RemoteLabel {
	raw, _ := json.Marshal(l)
	return &providers.RemoteLabel{ExternalID: l.ID, Name: l.Name, Color: l.Color, Raw: raw}
}

func remoteTask(task *Task) *providers.RemoteTask {
	fields := MapRemoteToLocal(task, models.Ref{})
	raw, _ := json.Marshal(task)
	rt := &providers.RemoteTask{
		ExternalID:     task.ID,
		ListExternalID: task.ProjectID,
		UpdatedAt:      fields.UpdatedAt,
		Deleted:        task.IsDeleted,
		LabelNames:     task.Labels,
		Fields:         fields,
		Raw:            raw,
	}
	if task.ParentID != nil {
		rt.ParentExternalID = *task.ParentID
	}
	return rt
}
