// Package google talks to a Google-Tasks-style REST API.
package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/tasksync/internal/server/providers"
)

const (
	// pageSize - максимальный размер страницы API
	pageSize = 100

	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// TaskList is the wire shape of a task list.
type TaskList struct {
	ID      string `json:"id,omitempty"`
	Etag    string `json:"etag,omitempty"`
	Title   string `json:"title"`
	Updated string `json:"updated,omitempty"`
}

// Task is the wire shape of a task. Times are RFC3339 strings.
type Task struct {
	Due       *string `json:"due,omitempty"`
	Completed *string `json:"completed,omitempty"`
	ID        string  `json:"id,omitempty"`
	Etag      string  `json:"etag,omitempty"`
	Title     string  `json:"title"`
	Updated   string  `json:"updated,omitempty"`
	Parent    string  `json:"parent,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	Status    string  `json:"status,omitempty"`
	Deleted   bool    `json:"deleted,omitempty"`
	Hidden    bool    `json:"hidden,omitempty"`
}

// taskPatch always sends the managed fields so empty values clear them
type taskPatch struct {
	Due       *string `json:"due"`
	Completed *string `json:"completed"`
	Title     string  `json:"title"`
	Notes     string  `json:"notes"`
	Status    string  `json:"status"`
}

type listsPage struct {
	NextPageToken string     `json:"nextPageToken"`
	Items         []TaskList `json:"items"`
}

type tasksPage struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []Task `json:"items"`
}

// Client is a thin client of the tasks API
type Client struct {
	req *providers.Requester
}

// NewClient creates a client; httpClient must already be authorized
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{req: &providers.Requester{HTTP: httpClient, BaseURL: baseURL}}
}

// ListTaskLists returns every task list, following pageToken
func (c *Client) ListTaskLists(ctx context.Context) ([]TaskList, error) {
	var out []TaskList
	token := ""
	for {
		q := url.Values{"maxResults": {strconv.Itoa(pageSize)}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var page listsPage
		if err := c.req.Do(ctx, http.MethodGet, "/users/@me/lists", q, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list task lists: %w", err)
		}
		out = append(out, page.Items...)
		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

// InsertTaskList creates a task list
func (c *Client) InsertTaskList(ctx context.Context, title string) (*TaskList, error) {
	var list TaskList
	if err := c.req.Do(ctx, http.MethodPost, "/users/@me/lists", nil, TaskList{Title: title}, &list); err != nil {
		return nil, fmt.Errorf("failed to insert task list: %w", err)
	}
	return &list, nil
}

// PatchTaskList renames a task list
func (c *Client) PatchTaskList(ctx context.Context, id, title string) (*TaskList, error) {
	var list TaskList
	path := "/users/@me/lists/" + url.PathEscape(id)
	if err := c.req.Do(ctx, http.MethodPatch, path, nil, TaskList{Title: title}, &list); err != nil {
		return nil, fmt.Errorf("failed to patch task list: %w", err)
	}
	return &list, nil
}

// DeleteTaskList deletes a task list with its tasks
func (c *Client) DeleteTaskList(ctx context.Context, id string) error {
	if err := c.req.Do(ctx, http.MethodDelete, "/users/@me/lists/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task list: %w", err)
	}
	return nil
}

// ListTasks returns the tasks of a list, completed and hidden ones included.
// updatedMin limits the result to tasks changed since then.
func (c *Client) ListTasks(ctx context.Context, listID string, updatedMin *time.Time, showDeleted bool) ([]Task, error) {
	var out []Task
	token := ""
	for {
		q := url.Values{
			"maxResults":    {strconv.Itoa(pageSize)},
			"showCompleted": {"true"},
			"showHidden":    {"true"},
			"showDeleted":   {strconv.FormatBool(showDeleted)},
		}
		if updatedMin != nil {
			q.Set("updatedMin", updatedMin.UTC().Format(time.RFC3339Nano))
		}
		if token != "" {
			q.Set("pageToken", token)
		}
		var page tasksPage
		if err := c.req.Do(ctx, http.MethodGet, tasksPath(listID), q, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		out = append(out, page.Items...)
		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

// InsertTask creates a task, as a subtask of parent when parent is set
func (c *Client) InsertTask(ctx context.Context, listID, parent string, task *Task) (*Task, error) {
	var q url.Values
	if parent != "" {
		q = url.Values{"parent": {parent}}
	}
	var created Task
	if err := c.req.Do(ctx, http.MethodPost, tasksPath(listID), q, task, &created); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return &created, nil
}

// PatchTask writes title, notes, status, due and completion of a task
func (c *Client) PatchTask(ctx context.Context, listID, id string, task *Task) (*Task, error) {
	body := taskPatch{
		Title:     task.Title,
		Notes:     task.Notes,
		Status:    task.Status,
		Due:       task.Due,
		Completed: task.Completed,
	}
	var patched Task
	if err := c.req.Do(ctx, http.MethodPatch, taskPath(listID, id), nil, body, &patched); err != nil {
		return nil, fmt.Errorf("failed to patch task: %w", err)
	}
	return &patched, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, listID, id string) error {
	if err := c.req.Do(ctx, http.MethodDelete, taskPath(listID, id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// MoveTask changes parent and position of a task. A non-empty destinationList
// moves it into another list.
func (c *Client) MoveTask(ctx context.Context, listID, id, parent, previous, destinationList string) (*Task, error) {
	q := url.Values{}
	if parent != "" {
		q.Set("parent", parent)
	}
	if previous != "" {
		q.Set("previous", previous)
	}
	if destinationList != "" && destinationList != listID {
		q.Set("destinationTasklist", destinationList)
	}
	var moved Task
	if err := c.req.Do(ctx, http.MethodPost, taskPath(listID, id)+"/move", q, nil, &moved); err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}
	return &moved, nil
}

func tasksPath(listID string) string {
	return "/lists/" + url.PathEscape(listID) + "/tasks"
}

func taskPath(listID, id string) string {
	return tasksPath(listID) + "/" + url.PathEscape(id)
}
