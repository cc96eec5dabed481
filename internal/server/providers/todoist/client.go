// Package todoist talks to a Todoist-style REST API.
package todoist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/tasksync/internal/server/providers"
)

// pageLimit - размер страницы при постраничной выборке
const pageLimit = 200

// Project is the wire shape of a project (a task list).
type Project struct {
	UpdatedAt *string `json:"updated_at,omitempty"`
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	IsDeleted bool    `json:"is_deleted,omitempty"`
}

// Label is the wire shape of a personal label.
type Label struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Due is a task due. Date holds the day, Datetime is set only when the due has a time.
type Due struct {
	Date     string `json:"date"`
	Datetime string `json:"datetime,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	String   string `json:"string,omitempty"`
}

// Task is the wire shape of a task.
type Task struct {
	Due         *Due     `json:"due"`
	ParentID    *string  `json:"parent_id"`
	CompletedAt *string  `json:"completed_at"`
	UpdatedAt   *string  `json:"updated_at"`
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Priority    int      `json:"priority"`
	Checked     bool     `json:"checked"`
	IsDeleted   bool     `json:"is_deleted"`
}

// TaskWrite is the body of task create and update requests
type TaskWrite struct {
	ProjectID   string   `json:"project_id,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date,omitempty"`
	DueDatetime string   `json:"due_datetime,omitempty"`
	DueString   string   `json:"due_string,omitempty"` // "no date" снимает срок
	Labels      []string `json:"labels"`
	Priority    int      `json:"priority"`
}

// moveRequest moves a task to a project or under a parent
type moveRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
}

type page[T any] struct {
	NextCursor *string `json:"next_cursor"`
	Results    []T     `json:"results"`
}

// Client is a thin client of the REST API
type Client struct {
	req *providers.Requester
}

// NewClient creates a client; httpClient must already be authorized
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{req: &providers.Requester{HTTP: httpClient, BaseURL: baseURL}}
}

// list follows next_cursor until the last page
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	cursor := ""
	for {
		q := url.Values{"limit": {strconv.Itoa(pageLimit)}}
		for k, v := range query {
			q[k] = v
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var p page[T]
		if err := c.req.Do(ctx, http.MethodGet, path, q, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		if p.NextCursor == nil || *p.NextCursor == "" {
			return out, nil
		}
		cursor = *p.NextCursor
	}
}

// ListProjects returns every project
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	projects, err := list[Project](ctx, c, "/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project
func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	var p Project
	if err := c.req.Do(ctx, http.MethodPost, "/projects", nil, Project{Name: name}, &p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

// UpdateProject renames a project
func (c *Client) UpdateProject(ctx context.Context, id, name string) (*Project, error) {
	var p Project
	if err := c.req.Do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id), nil, Project{Name: name}, &p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &p, nil
}

// DeleteProject deletes a project with its tasks
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := c.req.Do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListLabels returns every personal label
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	labels, err := list[Label](ctx, c, "/labels", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// CreateLabel creates a label
func (c *Client) CreateLabel(ctx context.Context, label *Label) (*Label, error) {
	var out Label
	if err := c.req.Do(ctx, http.MethodPost, "/labels", nil, label, &out); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return &out, nil
}

// UpdateLabel renames or recolors a label
func (c *Client) UpdateLabel(ctx context.Context, id string, label *Label) (*Label, error) {
	var out Label
	if err := c.req.Do(ctx, http.MethodPost, "/labels/"+url.PathEscape(id), nil, label, &out); err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}
	return &out, nil
}

// DeleteLabel deletes a label
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	if err := c.req.Do(ctx, http.MethodDelete, "/labels/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// ListTasks returns tasks updated since updatedSince (all tasks when nil),
// completed and deleted ones included
func (c *Client) ListTasks(ctx context.Context, updatedSince *time.Time) ([]Task, error) {
	q := url.Values{}
	if updatedSince != nil {
		q.Set("updated_since", updatedSince.UTC().Format(time.RFC3339))
	}
	tasks, err := list[Task](ctx, c, "/tasks", q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task
func (c *Client) CreateTask(ctx context.Context, task *TaskWrite) (*Task, error) {
	var out Task
	if err := c.req.Do(ctx, http.MethodPost, "/tasks", nil, task, &out); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &out, nil
}

// UpdateTask writes task fields; project and parent are changed by MoveTask
func (c *Client) UpdateTask(ctx context.Context, id string, task *TaskWrite) (*Task, error) {
	body := *task
	body.ProjectID, body.ParentID = "", ""
	var out Task
	if err := c.req.Do(ctx, http.MethodPost, taskPath(id), nil, body, &out); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &out, nil
}

// MoveTask moves a task under parentID, or to the top of projectID when parentID is empty
func (c *Client) MoveTask(ctx context.Context, id, projectID, parentID string) error {
	body := moveRequest{ProjectID: projectID}
	if parentID != "" {
		body = moveRequest{ParentID: parentID}
	}
	if err := c.req.Do(ctx, http.MethodPost, taskPath(id)+"/move", nil, body, nil); err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}
	return nil
}

// CloseTask completes a task
func (c *Client) CloseTask(ctx context.Context, id string) error {
	if err := c.req.Do(ctx, http.MethodPost, taskPath(id)+"/close", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to close task: %w", err)
	}
	return nil
}

// ReopenTask reopens a completed task
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	if err := c.req.Do(ctx, http.MethodPost, taskPath(id)+"/reopen", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to reopen task: %w", err)
	}
	return nil
}

// GetTask returns one task
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.req.Do(ctx, http.MethodGet, taskPath(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &out, nil
}

// DeleteTask deletes a task with its subtasks
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.req.Do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}
