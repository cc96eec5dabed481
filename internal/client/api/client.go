package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// ErrUnauthorized is returned when the server rejects the bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// DefaultTimeout bounds a single request to the server.
const DefaultTimeout = 30 * time.Second

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Message string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	mu         sync.RWMutex
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetToken sets the bearer token used for every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Execute sends one queued action to the server's action registry.
// Domain failures come back inside the Result; err is only set when the
// action could not be delivered or the answer could not be read.
func (c *Client) Execute(ctx context.Context, action *models.PendingAction) (models.Result, error) {
	req := api.ActionRequest{
		ID:      action.ID,
		Kind:    action.Kind,
		Payload: action.Payload,
	}

	var result models.Result
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/actions", req, &result); err != nil {
		return models.Result{}, fmt.Errorf("execute %s failed: %w", action.Kind, err)
	}
	return result, nil
}

// FetchLists returns every list of the user
func (c *Client) FetchLists(ctx context.Context) ([]*models.List, error) {
	var resp api.ListsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/lists", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch lists failed: %w", err)
	}
	return resp.Lists, nil
}

// FetchTasks returns every task of the user
func (c *Client) FetchTasks(ctx context.Context) ([]*models.Task, error) {
	var resp api.TasksResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/tasks", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch tasks failed: %w", err)
	}
	return resp.Tasks, nil
}

// FetchLabels returns every label of the user
func (c *Client) FetchLabels(ctx context.Context) ([]*models.Label, error) {
	var resp api.LabelsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/labels", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch labels failed: %w", err)
	}
	return resp.Labels, nil
}

// Me returns the owner of the current token
func (c *Client) Me(ctx context.Context) (*api.MeResponse, error) {
	var resp api.MeResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// SyncProvider runs a provider sync pass on the server
func (c *Client) SyncProvider(ctx context.Context, provider models.Provider) (*api.ProviderSyncResponse, error) {
	var resp api.ProviderSyncResponse
	path := fmt.Sprintf("/api/v1/providers/%s/sync", url.PathEscape(string(provider)))
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("provider sync failed: %w", err)
	}
	return &resp, nil
}

// ListConflicts returns pending provider conflicts
func (c *Client) ListConflicts(ctx context.Context, provider models.Provider) ([]*models.ExternalSyncConflict, error) {
	var resp api.ConflictsResponse
	path := fmt.Sprintf("/api/v1/providers/%s/conflicts", url.PathEscape(string(provider)))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list conflicts failed: %w", err)
	}
	return resp.Conflicts, nil
}

// ResolveConflict resolves a provider conflict
func (c *Client) ResolveConflict(ctx context.Context, provider models.Provider, id int64, req api.ResolveConflictRequest) error {
	path := fmt.Sprintf("/api/v1/providers/%s/conflicts/%d/resolve", url.PathEscape(string(provider)), id)
	if err := c.doRequest(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("resolve conflict failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Status: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			statusErr.Message = errResp.Error
			if errResp.Message != "" {
				statusErr.Message += ": " + errResp.Message
			}
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
