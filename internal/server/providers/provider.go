// Package providers defines the normalized view of a third-party task service
// that the provider sync engine works against.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

// ErrNotFound is returned when the remote entity does not exist (HTTP 404 or 410)
var ErrNotFound = errors.New("remote entity not found")

// APIError is a non-2xx answer of a provider API
type APIError struct {
	Method string
	Path   string
	Body   string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 and 410 answers
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && (e.Status == http.StatusNotFound || e.Status == http.StatusGone)
}

// RemoteList is a provider task-list (Google task list, Todoist project).
type RemoteList struct {
	UpdatedAt  *time.Time
	ExternalID string
	Name       string
	Etag       string
	Raw        json.RawMessage
}

// RemoteLabel is a provider label.
type RemoteLabel struct {
	ExternalID string
	Name       string
	Color      string
	Raw        json.RawMessage
}

// RemoteTask is a provider task normalized to local fields.
// Fields carries title, description, completion, due and priority; ids and
// list membership are expressed through the external ids.
type RemoteTask struct {
	UpdatedAt        time.Time
	Fields           *models.Task
	ExternalID       string
	ListExternalID   string
	ParentExternalID string
	Etag             string
	LabelNames       []string
	Raw              json.RawMessage
	Deleted          bool
}

// Snapshot is the result of one fetch. Lists and Labels are always complete;
// Tasks are limited to those updated since the requested time.
type Snapshot struct {
	Lists  []RemoteList
	Labels []RemoteLabel
	Tasks  []RemoteTask
}

// TaskLocation is where a task sits on the remote side
type TaskLocation struct {
	ListExternalID   string
	ParentExternalID string
}

// Capabilities lists the optional task fields a provider stores.
// Fields a provider does not store are never overwritten on pull.
type Capabilities struct {
	// PriorityFloor is the highest local priority the provider cannot tell
	// apart from 0: every level up to it reads back as 0.
	PriorityFloor int
	Priority      bool
	Labels        bool
	DueTime       bool // false: due is stored with day precision
}

// Adapter is one provider as seen by the sync engine.
type Adapter interface {
	Provider() models.Provider
	Capabilities() Capabilities

	// FetchSnapshot returns every list and the tasks changed since updatedMin
	// (all tasks when updatedMin is nil), deleted ones included.
	FetchSnapshot(ctx context.Context, updatedMin *time.Time) (*Snapshot, error)

	CreateList(ctx context.Context, list *models.List) (*RemoteList, error)
	UpdateList(ctx context.Context, externalID string, list *models.List) (*RemoteList, error)
	DeleteList(ctx context.Context, externalID string) error

	CreateTask(ctx context.Context, at TaskLocation, task *models.Task, labels []string) (*RemoteTask, error)
	// UpdateTask writes task's fields and moves it when to differs from from
	UpdateTask(ctx context.Context, externalID string, from, to TaskLocation, task *models.Task, labels []string) (*RemoteTask, error)
	DeleteTask(ctx context.Context, listExternalID, externalID string) error
}

// LabelAdapter is implemented by providers that have first-class labels.
type LabelAdapter interface {
	CreateLabel(ctx context.Context, label *models.Label) (*RemoteLabel, error)
	UpdateLabel(ctx context.Context, externalID string, label *models.Label) (*RemoteLabel, error)
	DeleteLabel(ctx context.Context, externalID string) error
}

// Factory builds an adapter over an authorized HTTP client
type Factory func(httpClient *http.Client) Adapter
