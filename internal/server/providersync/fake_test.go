package providersync

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
)

// fakeAdapter is an in-memory provider. Every write is stamped with stamp.
type fakeAdapter struct {
	stamp    time.Time
	fetchErr error
	lists    []*providers.RemoteList
	labels   []*providers.RemoteLabel
	tasks    []*providers.RemoteTask
	calls    []string
	nextID   int
	caps     providers.Capabilities
	mu       sync.Mutex
}

var (
	_ providers.Adapter      = (*fakeAdapter)(nil)
	_ providers.LabelAdapter = (*fakeAdapter)(nil)
)

func newFakeAdapter(caps providers.Capabilities, stamp time.Time) *fakeAdapter {
	return &fakeAdapter{caps: caps, stamp: stamp}
}

func (f *fakeAdapter) record(call string) {
	f.calls = append(f.calls, call)
}

// callCount counts recorded calls starting with prefix
func (f *fakeAdapter) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeAdapter) addList(id, name string, updated time.Time) {
	f.lists = append(f.lists, &providers.RemoteList{ExternalID: id, Name: name, UpdatedAt: &updated})
}

// addTask adds a remote task with the given fields
func (f *fakeAdapter) addTask(id, listID, title string, updated time.Time) *providers.RemoteTask {
	rt := &providers.RemoteTask{
		ExternalID:     id,
		ListExternalID: listID,
		UpdatedAt:      updated,
		Fields:         &models.Task{Title: title, UpdatedAt: updated},
	}
	rt.Raw, _ = json.Marshal(map[string]any{"id": id, "title": title, "updated": updated})
	f.tasks = append(f.tasks, rt)
	return rt
}

func (f *fakeAdapter) task(id string) *providers.RemoteTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rt := range f.tasks {
		if rt.ExternalID == id {
			return rt
		}
	}
	return nil
}

func (f *fakeAdapter) taskByTitle(title string) *providers.RemoteTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rt := range f.tasks {
		if rt.Fields.Title == title {
			return rt
		}
	}
	return nil
}

func (f *fakeAdapter) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// remoteFields keeps only what a provider would store
func (f *fakeAdapter) remoteFields(task *models.Task) *models.Task {
	out := &models.Task{
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		DueAt:       task.DueAt,
		DueHasTime:  task.DueHasTime,
		UpdatedAt:   f.stamp,
	}
	if f.caps.Priority {
		out.Priority = task.Priority
	}
	return out
}

func (f *fakeAdapter) Provider() models.Provider {
	return models.ProviderGoogle
}

func (f *fakeAdapter) Capabilities() providers.Capabilities {
	return f.caps
}

func (f *fakeAdapter) FetchSnapshot(_ context.Context, updatedMin *time.Time) (*providers.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchSnapshot")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	snap := &providers.Snapshot{}
	for _, l := range f.lists {
		snap.Lists = append(snap.Lists, *l)
	}
	for _, l := range f.labels {
		snap.Labels = append(snap.Labels, *l)
	}
	for _, rt := range f.tasks {
		if updatedMin != nil && rt.UpdatedAt.Before(*updatedMin) {
			continue
		}
		c := *rt
		c.Fields = rt.Fields.Clone()
		c.LabelNames = slices.Clone(rt.LabelNames)
		snap.Tasks = append(snap.Tasks, c)
	}
	return snap, nil
}

func (f *fakeAdapter) CreateList(_ context.Context, list *models.List) (*providers.RemoteList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateList " + list.Name)
	stamp := f.stamp
	rl := &providers.RemoteList{ExternalID: f.newID("list"), Name: list.Name, UpdatedAt: &stamp}
	f.lists = append(f.lists, rl)
	c := *rl
	return &c, nil
}

func (f *fakeAdapter) UpdateList(_ context.Context, externalID string, list *models.List) (*providers.RemoteList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateList " + externalID)
	for _, rl := range f.lists {
		if rl.ExternalID == externalID {
			stamp := f.stamp
			rl.Name = list.Name
			rl.UpdatedAt = &stamp
			c := *rl
			return &c, nil
		}
	}
	return nil, providers.ErrNotFound
}

func (f *fakeAdapter) DeleteList(_ context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteList " + externalID)
	n := len(f.lists)
	f.lists = slices.DeleteFunc(f.lists, func(rl *providers.RemoteList) bool { return rl.ExternalID == externalID })
	if len(f.lists) == n {
		return providers.ErrNotFound
	}
	f.tasks = slices.DeleteFunc(f.tasks, func(rt *providers.RemoteTask) bool { return rt.ListExternalID == externalID })
	return nil
}

func (f *fakeAdapter) CreateTask(_ context.Context, at providers.TaskLocation, task *models.Task, labels []string) (*providers.RemoteTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask " + task.Title)
	rt := &providers.RemoteTask{
		ExternalID:       f.newID("task"),
		ListExternalID:   at.ListExternalID,
		ParentExternalID: at.ParentExternalID,
		UpdatedAt:        f.stamp,
		Fields:           f.remoteFields(task),
		LabelNames:       slices.Clone(labels),
	}
	f.tasks = append(f.tasks, rt)
	c := *rt
	c.Fields = rt.Fields.Clone()
	return &c, nil
}

func (f *fakeAdapter) UpdateTask(_ context.Context, externalID string, _, to providers.TaskLocation, task *models.Task, labels []string) (*providers.RemoteTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask " + externalID)
	for _, rt := range f.tasks {
		if rt.ExternalID != externalID {
			continue
		}
		rt.ListExternalID = to.ListExternalID
		rt.ParentExternalID = to.ParentExternalID
		rt.UpdatedAt = f.stamp
		rt.Fields = f.remoteFields(task)
		rt.LabelNames = slices.Clone(labels)
		c := *rt
		c.Fields = rt.Fields.Clone()
		return &c, nil
	}
	return nil, providers.ErrNotFound
}

func (f *fakeAdapter) DeleteTask(_ context.Context, _, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask " + externalID)
	n := len(f.tasks)
	f.tasks = slices.DeleteFunc(f.tasks, func(rt *providers.RemoteTask) bool { return rt.ExternalID == externalID })
	if len(f.tasks) == n {
		return providers.ErrNotFound
	}
	return nil
}

func (f *fakeAdapter) CreateLabel(_ context.Context, label *models.Label) (*providers.RemoteLabel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateLabel " + label.Name)
	rl := &providers.RemoteLabel{ExternalID: f.newID("label"), Name: label.Name, Color: label.Color}
	f.labels = append(f.labels, rl)
	c := *rl
	return &c, nil
}

func (f *fakeAdapter) UpdateLabel(_ context.Context, externalID string, label *models.Label) (*providers.RemoteLabel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateLabel " + externalID)
	for _, rl := range f.labels {
		if rl.ExternalID == externalID {
			rl.Name, rl.Color = label.Name, label.Color
			c := *rl
			return &c, nil
		}
	}
	return nil, providers.ErrNotFound
}

func (f *fakeAdapter) DeleteLabel(_ context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteLabel " + externalID)
	n := len(f.labels)
	f.labels = slices.DeleteFunc(f.labels, func(rl *providers.RemoteLabel) bool { return rl.ExternalID == externalID })
	if len(f.labels) == n {
		return providers.ErrNotFound
	}
	return nil
}
