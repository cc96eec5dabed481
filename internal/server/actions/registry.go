// Package actions executes queued client mutations against the authoritative store.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
	"github.com/iudanet/tasksync/internal/validation"
	"github.com/iudanet/tasksync/pkg/api"
)

// Store is the persistence the registry needs
type Store interface {
	storage.EntityStorage
	storage.ActionStorage
	storage.Transactor
}

// handlerFunc executes one decoded payload on behalf of userID
type handlerFunc func(ctx context.Context, userID int64, payload models.Payload) models.Result

// Registry maps every action kind to its handler.
type Registry struct {
	store    Store
	logger   *slog.Logger
	now      func() time.Time
	handlers map[models.ActionKind]handlerFunc
	// mu serializes executions so a replay never races its first run
	mu sync.Mutex
}

// NewRegistry creates a registry over store
func NewRegistry(store Store, logger *slog.Logger) *Registry {
	r := &Registry{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	r.handlers = map[models.ActionKind]handlerFunc{
		models.ActionTaskCreate:  r.createTask,
		models.ActionTaskUpdate:  r.updateTask,
		models.ActionTaskToggle:  r.toggleTask,
		models.ActionTaskDelete:  r.deleteTask,
		models.ActionTaskMove:    r.moveTask,
		models.ActionListCreate:  r.createList,
		models.ActionListUpdate:  r.updateList,
		models.ActionListDelete:  r.deleteList,
		models.ActionLabelCreate: r.createLabel,
		models.ActionLabelUpdate: r.updateLabel,
		models.ActionLabelDelete: r.deleteLabel,
	}
	return r
}

// errRejected rolls back the writes of an action that did not succeed
var errRejected = errors.New("action rejected")

// Execute runs one action for userID and returns its tagged result.
// Domain failures are reported in the result, never as a Go error.
// A successful action is recorded under its id in the same transaction as
// its writes: executing the same id again returns the recorded result
// without touching the store.
func (r *Registry) Execute(ctx context.Context, userID int64, req api.ActionRequest) models.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logger.With("user_id", userID, "action_id", req.ID, "kind", req.Kind)

	applied, err := r.store.GetAppliedAction(ctx, userID, req.ID)
	switch {
	case err == nil:
		var stored models.Result
		if err := json.Unmarshal(applied.Result, &stored); err != nil {
			log.Error("Stored action result is unreadable", "error", err)
			return models.Fail(models.CodeInternal, "internal error", nil)
		}
		log.Debug("Action replayed")
		return stored
	case !errors.Is(err, storage.ErrActionNotApplied):
		log.Error("Failed to look up applied action", "error", err)
		return models.Fail(models.CodeInternal, "internal error", nil)
	}

	payload, err := models.DecodePayload(req.Kind, req.Payload)
	if err != nil {
		return models.Fail(models.CodeValidation, err.Error(), nil)
	}
	if hasUnresolvedRefs(req.Kind, payload) {
		return models.Fail(models.CodeValidation, "unresolved temporary id", nil)
	}
	if err := validation.ValidatePayload(payload); err != nil {
		return models.Fail(models.CodeValidation, err.Error(), nil)
	}

	var result models.Result
	err = r.store.InTx(ctx, func(ctx context.Context) error {
		result = r.run(ctx, log, userID, req.Kind, payload)
		if !result.Success {
			// Отклоненные действия не записываются: повтор после разрешения конфликта должен выполниться
			return errRejected
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode action result: %w", err)
		}
		return r.store.SaveAppliedAction(ctx, &storage.AppliedAction{
			ID:        req.ID,
			UserID:    userID,
			Kind:      req.Kind,
			Result:    encoded,
			AppliedAt: r.now(),
		})
	})
	switch {
	case errors.Is(err, errRejected):
		log.Info("Action rejected", "code", result.Error.Code, "message", result.Error.Message)
		return result
	case err != nil:
		// Без записи повтор выполнил бы действие второй раз
		log.Error("Failed to record applied action", "error", err)
		return models.Fail(models.CodeInternal, "internal error", nil)
	}
	log.Debug("Action applied")
	return result
}

// run dispatches to the handler and turns a panic into INTERNAL
func (r *Registry) run(ctx context.Context, log *slog.Logger, userID int64, kind models.ActionKind, payload models.Payload) (result models.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Action handler panicked", "panic", rec)
			result = models.Fail(models.CodeInternal, "internal error", nil)
		}
	}()

	handler, ok := r.handlers[kind]
	if !ok {
		return models.Fail(models.CodeValidation, fmt.Sprintf("unknown action kind %q", kind), nil)
	}
	return handler(ctx, userID, payload)
}

// hasUnresolvedRefs reports whether a placeholder other than a create's own ref reached the server
func hasUnresolvedRefs(kind models.ActionKind, payload models.Payload) bool {
	target := models.Target(payload)
	for _, ref := range models.Refs(payload) {
		if !ref.IsLocal() {
			continue
		}
		if models.IsCreate(kind) && ref == target {
			continue
		}
		return true
	}
	return false
}

// storageFailure maps a storage error to a result
func (r *Registry) storageFailure(op string, err error) models.Result {
	if errors.Is(err, storage.ErrNotFound) {
		return models.Fail(models.CodeNotFound, op+": not found", nil)
	}
	r.logger.Error("Storage failure", "op", op, "error", err)
	return models.Fail(models.CodeInternal, "internal error", nil)
}

// conflict builds the CONFLICT answer carrying the current row
func conflict(current any) models.Result {
	data, err := json.Marshal(current)
	if err != nil {
		return models.Fail(models.CodeInternal, "internal error", nil)
	}
	return models.Fail(models.CodeConflict, "entity was changed since it was read",
		models.ConflictDetails{ServerData: data})
}

// stale reports whether the payload's expected stamp no longer matches
func stale(payload models.Payload, updatedAt time.Time) bool {
	expected := models.Expectation(payload)
	return expected != nil && !expected.Equal(updatedAt)
}

// nextStamp returns now, pushed past prev so every write changes updated_at
func (r *Registry) nextStamp(prev time.Time) time.Time {
	now := r.now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func forbidden(kind models.EntityKind) models.Result {
	return models.Fail(models.CodeForbidden, fmt.Sprintf("%s belongs to another user", kind), nil)
}

// deleted is the result data of a delete
type deleted struct {
	ID int64 `json:"id"`
}
