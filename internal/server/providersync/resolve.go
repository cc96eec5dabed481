package providersync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// ErrInvalidResolution is returned for an unknown resolution or a merge without data
var ErrInvalidResolution = errors.New("invalid resolution")

// ResolveConflict applies the chosen side of a pending conflict and marks it resolved.
//
//   - keep_local pushes the local task to the provider;
//   - keep_remote writes the stored remote fields to the local task;
//   - merge decodes merged (task fields in JSON) over the local task, saves it
//     and pushes the result.
//
// The sync state is held for the duration, so a pass cannot interleave.
// Returns storage.ErrConflictNotFound for a conflict of another user or one
// already resolved, storage.ErrSyncInProgress while a pass runs.
func (e *Engine) ResolveConflict(ctx context.Context, userID int64, provider models.Provider, conflictID int64, resolution models.ConflictResolution, merged json.RawMessage) (*models.Task, error) {
	switch resolution {
	case models.ResolveKeepLocal, models.ResolveKeepRemote:
	case models.ResolveMerge:
		if len(merged) == 0 {
			return nil, fmt.Errorf("%w: merge requires merged data", ErrInvalidResolution)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}

	c, err := e.store.GetConflict(ctx, conflictID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID || c.Provider != provider || c.Status != models.ConflictPending {
		return nil, storage.ErrConflictNotFound
	}

	adapter, err := e.adapter(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	log := e.logger.With("user_id", userID, "provider", provider, "conflict_id", conflictID)
	began := e.now()
	if _, err := e.store.TryBeginSync(ctx, userID, provider, began, e.cfg.Lease); err != nil {
		return nil, err
	}
	defer func() {
		if err := e.store.ReleaseSync(context.WithoutCancel(ctx), userID, provider, began); err != nil {
			log.Error("Failed to release sync state", "error", err)
		}
	}()

	local, err := e.store.GetTask(ctx, c.LocalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", c.LocalID, err)
	}
	m, err := e.store.GetMapping(ctx, userID, provider, models.ExternalTask, c.LocalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task mapping: %w", err)
	}

	now := e.now()
	result := local
	switch resolution {
	case models.ResolveKeepRemote:
		var remote remoteSide
		if err := json.Unmarshal(c.ExternalPayload, &remote); err != nil {
			return nil, fmt.Errorf("stored remote payload is unreadable: %w", err)
		}
		if remote.Task == nil {
			return nil, errors.New("stored remote payload has no task")
		}
		result = remote.Task.Clone()
		result.ID, result.UserID, result.CreatedAt = local.ID, local.UserID, local.CreatedAt
		// Список мог исчезнуть после записи конфликта
		if list, err := e.store.GetList(ctx, result.ListID.Remote); err != nil || list.UserID != userID {
			result.ListID, result.ParentID = local.ListID, local.ParentID
		}
		result.UpdatedAt = now
		if err := e.store.UpdateTask(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to apply remote side: %w", err)
		}

	case models.ResolveMerge:
		result = local.Clone()
		if err := json.Unmarshal(merged, result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResolution, err)
		}
		// Слияние меняет только поля задачи, не ее место
		result.ID, result.UserID, result.CreatedAt = local.ID, local.UserID, local.CreatedAt
		result.ListID, result.ParentID = local.ListID, local.ParentID
		result.UpdatedAt = now
		if err := e.store.UpdateTask(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to save merged task: %w", err)
		}
		fallthrough

	case models.ResolveKeepLocal:
		if err := e.pushResolved(ctx, adapter, m, result); err != nil {
			return nil, err
		}
	}

	if err := e.store.ResolveConflict(ctx, c.ID, resolution, now); err != nil {
		return nil, err
	}
	log.Info("Provider conflict resolved", "resolution", resolution)
	return result, nil
}

// pushResolved writes t to the provider and records the new remote state
func (e *Engine) pushResolved(ctx context.Context, adapter providers.Adapter, m *models.ExternalEntityMap, t *models.Task) error {
	to, err := e.locate(ctx, m.UserID, adapter.Provider(), t)
	if err != nil {
		return err
	}
	var labels []string
	if adapter.Capabilities().Labels {
		for _, ref := range t.LabelIDs {
			label, err := e.store.GetLabel(ctx, ref.Remote)
			if err != nil {
				continue
			}
			labels = append(labels, label.Name)
		}
	}

	from := providers.TaskLocation{ListExternalID: m.ExternalListID, ParentExternalID: m.ExternalParentID}
	rt, err := adapter.UpdateTask(ctx, m.ExternalID, from, to, t, labels)
	if errors.Is(err, providers.ErrNotFound) {
		rt, err = adapter.CreateTask(ctx, to, t, labels)
	}
	if err != nil {
		return fmt.Errorf("failed to push resolved task: %w", err)
	}

	m.ExternalID = rt.ExternalID
	m.ExternalListID = rt.ListExternalID
	m.ExternalParentID = rt.ParentExternalID
	m.ExternalEtag = rt.Etag
	if !rt.UpdatedAt.IsZero() {
		updated := rt.UpdatedAt
		m.ExternalUpdatedAt = &updated
	}
	if err := e.store.SaveMapping(ctx, m); err != nil {
		return fmt.Errorf("failed to save task mapping: %w", err)
	}
	return nil
}

func (e *Engine) locate(ctx context.Context, userID int64, provider models.Provider, t *models.Task) (providers.TaskLocation, error) {
	var loc providers.TaskLocation
	lm, err := e.store.GetMapping(ctx, userID, provider, models.ExternalList, t.ListID.Remote)
	if err != nil {
		return loc, fmt.Errorf("list %d is not linked: %w", t.ListID.Remote, err)
	}
	loc.ListExternalID = lm.ExternalID
	if t.ParentID != nil {
		pm, err := e.store.GetMapping(ctx, userID, provider, models.ExternalTask, t.ParentID.Remote)
		switch {
		case err == nil:
			loc.ParentExternalID = pm.ExternalID
		case !errors.Is(err, storage.ErrMappingNotFound):
			return loc, fmt.Errorf("failed to get parent mapping: %w", err)
		}
	}
	return loc, nil
}
