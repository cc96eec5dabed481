package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/credentials"
	"github.com/iudanet/tasksync/internal/server/providersync"
	"github.com/iudanet/tasksync/internal/server/storage"
	"github.com/iudanet/tasksync/pkg/api"
)

//go:generate moq -out engine_mock.go . ProviderEngine
//go:generate moq -out linker_mock.go . CredentialLinker

// ProviderEngine is the provider sync surface exposed over HTTP
type ProviderEngine interface {
	SyncForUser(ctx context.Context, userID int64, provider models.Provider) *providersync.Outcome
	ListConflicts(ctx context.Context, userID int64, provider models.Provider) ([]*models.ExternalSyncConflict, error)
	ResolveConflict(ctx context.Context, userID int64, provider models.Provider, conflictID int64, resolution models.ConflictResolution, merged json.RawMessage) (*models.Task, error)
}

// CredentialLinker stores and removes provider tokens
type CredentialLinker interface {
	Save(ctx context.Context, userID int64, provider models.Provider, tok *oauth2.Token) error
	Delete(ctx context.Context, userID int64, provider models.Provider) error
}

// ProviderHandler обрабатывает запросы синхронизации с внешними провайдерами
type ProviderHandler struct {
	logger *slog.Logger
	engine ProviderEngine
	linker CredentialLinker
}

// NewProviderHandler создает новый handler провайдеров
func NewProviderHandler(logger *slog.Logger, engine ProviderEngine, linker CredentialLinker) *ProviderHandler {
	return &ProviderHandler{
		logger: logger,
		engine: engine,
		linker: linker,
	}
}

// request извлекает пользователя и провайдера из запроса.
// При ошибке ответ уже отправлен.
func (h *ProviderHandler) request(w http.ResponseWriter, r *http.Request) (int64, models.Provider, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return 0, "", false
	}
	provider := models.Provider(strings.ToLower(r.PathValue("provider")))
	if !provider.Valid() {
		sendError(h.logger, w, "unknown provider", http.StatusNotFound)
		return 0, "", false
	}
	return userID, provider, true
}

// Sync обрабатывает POST /api/v1/providers/{provider}/sync.
// 409 означает, что проход уже идет; остальные ошибки прохода приходят с 200 и status=error.
func (h *ProviderHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, provider, ok := h.request(w, r)
	if !ok {
		return
	}

	out := h.engine.SyncForUser(r.Context(), userID, provider)
	resp := api.ProviderSyncResponse{
		LastSyncedAt:  out.LastSyncedAt,
		Status:        out.Status,
		Error:         out.Error,
		ConflictCount: out.ConflictCount,
		Pulled:        out.Pulled,
		Pushed:        out.Pushed,
		Deleted:       out.Deleted,
	}

	status := http.StatusOK
	if out.InProgress() {
		status = http.StatusConflict
	}
	sendJSON(h.logger, w, resp, status)
}

// Conflicts обрабатывает GET /api/v1/providers/{provider}/conflicts
func (h *ProviderHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, provider, ok := h.request(w, r)
	if !ok {
		return
	}

	conflicts, err := h.engine.ListConflicts(ctx, userID, provider)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list conflicts", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(h.logger, w, api.ConflictsResponse{Conflicts: nonNil(conflicts)}, http.StatusOK)
}

// Resolve обрабатывает POST /api/v1/providers/{provider}/conflicts/{id}/resolve
func (h *ProviderHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, provider, ok := h.request(w, r)
	if !ok {
		return
	}

	conflictID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || conflictID <= 0 {
		sendError(h.logger, w, "invalid conflict id", http.StatusBadRequest)
		return
	}

	var req api.ResolveConflictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.engine.ResolveConflict(ctx, userID, provider, conflictID, req.Resolution, req.Merged)
	switch {
	case err == nil:
	case errors.Is(err, providersync.ErrInvalidResolution):
		sendJSON(h.logger, w, api.ErrorResponse{Error: "invalid resolution", Message: err.Error()}, http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrConflictNotFound):
		sendError(h.logger, w, "conflict not found", http.StatusNotFound)
		return
	case errors.Is(err, storage.ErrSyncInProgress):
		sendError(h.logger, w, "sync in progress", http.StatusConflict)
		return
	case errors.Is(err, credentials.ErrNotLinked):
		sendError(h.logger, w, "provider not linked", http.StatusPreconditionFailed)
		return
	default:
		h.logger.ErrorContext(ctx, "failed to resolve conflict",
			slog.Int64("user_id", userID),
			slog.Int64("conflict_id", conflictID),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ResolveConflictResponse{Task: task}, http.StatusOK)
}

// Link обрабатывает PUT /api/v1/providers/{provider}/credentials
func (h *ProviderHandler) Link(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, provider, ok := h.request(w, r)
	if !ok {
		return
	}

	var req api.LinkProviderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AccessToken == "" && req.RefreshToken == "" {
		sendError(h.logger, w, "access_token or refresh_token is required", http.StatusBadRequest)
		return
	}

	tok := &oauth2.Token{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
	}
	if req.Expiry != nil {
		tok.Expiry = *req.Expiry
	}
	if err := h.linker.Save(ctx, userID, provider, tok); err != nil {
		h.logger.ErrorContext(ctx, "failed to save provider credentials", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "provider linked", slog.Int64("user_id", userID), slog.String("provider", string(provider)))
	w.WriteHeader(http.StatusNoContent)
}

// Unlink обрабатывает DELETE /api/v1/providers/{provider}/credentials
func (h *ProviderHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, provider, ok := h.request(w, r)
	if !ok {
		return
	}

	if err := h.linker.Delete(ctx, userID, provider); err != nil {
		if errors.Is(err, credentials.ErrNotLinked) {
			sendError(h.logger, w, "provider not linked", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete provider credentials", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "provider unlinked", slog.Int64("user_id", userID), slog.String("provider", string(provider)))
	w.WriteHeader(http.StatusNoContent)
}
