package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserIDKey ключ для хранения user_id в контексте
	UserIDKey contextKey = "user_id"
	// UsernameKey ключ для хранения username в контексте
	UsernameKey contextKey = "username"
)

// maxActionBody ограничивает размер тела POST /api/v1/actions
const maxActionBody = 1 << 20

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, userID int64, username string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UsernameKey, username)
}

// GetUserID извлекает user_id из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok && userID > 0
}

// GetUsername извлекает username из контекста запроса
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

//go:generate moq -out executor_mock.go . ActionExecutor
//go:generate moq -out snapshots_mock.go . SnapshotStorage

// ActionExecutor runs one queued client action
type ActionExecutor interface {
	Execute(ctx context.Context, userID int64, req api.ActionRequest) models.Result
}

// SnapshotStorage reads the user's entities for a client refresh
type SnapshotStorage interface {
	ListLists(ctx context.Context, userID int64) ([]*models.List, error)
	ListTasks(ctx context.Context, userID int64) ([]*models.Task, error)
	ListLabels(ctx context.Context, userID int64) ([]*models.Label, error)
}

// SyncHandler serves the client sync surface: action execution and entity snapshots.
type SyncHandler struct {
	logger    *slog.Logger
	executor  ActionExecutor
	snapshots SnapshotStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, executor ActionExecutor, snapshots SnapshotStorage) *SyncHandler {
	return &SyncHandler{
		logger:    logger,
		executor:  executor,
		snapshots: snapshots,
	}
}

// Execute обрабатывает POST /api/v1/actions.
// Domain failures travel inside the result with status 200; only malformed
// requests are rejected with an HTTP error.
func (h *SyncHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode action request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == uuid.Nil {
		sendError(h.logger, w, "action id is required", http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		sendError(h.logger, w, "action kind is required", http.StatusBadRequest)
		return
	}

	result := h.executor.Execute(ctx, userID, req)
	if !result.Success && result.Error != nil {
		h.logger.DebugContext(ctx, "action rejected",
			slog.Int64("user_id", userID),
			slog.String("action_id", req.ID.String()),
			slog.String("code", string(result.Error.Code)))
	}
	sendJSON(h.logger, w, result, http.StatusOK)
}

// Lists обрабатывает GET /api/v1/lists
func (h *SyncHandler) Lists(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, "lists", func(ctx context.Context, userID int64) (any, error) {
		lists, err := h.snapshots.ListLists(ctx, userID)
		return api.ListsResponse{Lists: nonNil(lists)}, err
	})
}

// Tasks обрабатывает GET /api/v1/tasks
func (h *SyncHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, "tasks", func(ctx context.Context, userID int64) (any, error) {
		tasks, err := h.snapshots.ListTasks(ctx, userID)
		return api.TasksResponse{Tasks: nonNil(tasks)}, err
	})
}

// Labels обрабатывает GET /api/v1/labels
func (h *SyncHandler) Labels(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, "labels", func(ctx context.Context, userID int64) (any, error) {
		labels, err := h.snapshots.ListLabels(ctx, userID)
		return api.LabelsResponse{Labels: nonNil(labels)}, err
	})
}

func (h *SyncHandler) snapshot(w http.ResponseWriter, r *http.Request, what string, load func(context.Context, int64) (any, error)) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp, err := load(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load snapshot",
			slog.String("entity", what),
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// nonNil keeps empty snapshots as [] on the wire
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
