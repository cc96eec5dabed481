package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/models"
)

// ResolveConflict implements Manager.
//
//   - ChooseServer drops the local action and stores the server's copy of the entity;
//   - ChooseLocal strips the prior-state stamp so the retry overwrites the server;
//   - ChooseMerge splices the merged fields into the payload, also without the stamp.
func (m *manager) ResolveConflict(ctx context.Context, id uuid.UUID, resolution Resolution) error {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	action, err := m.getAction(ctx, id)
	if err != nil {
		return err
	}
	if action.Conflict == nil {
		return fmt.Errorf("%w: %s", ErrNoConflict, id)
	}

	switch resolution.Choice {
	case ChooseServer:
		if err := m.adoptServerData(ctx, action); err != nil {
			return err
		}
		if err := m.storage.RemoveAction(ctx, id); err != nil {
			return fmt.Errorf("failed to remove action: %w", err)
		}
		m.logger.Info("Conflict resolved with server data", "action_id", id)
		return m.rebase(ctx)

	case ChooseLocal:
		payload, err := models.DecodePayload(action.Kind, action.Payload)
		if err != nil {
			return err
		}
		models.StripExpectation(payload)
		raw, err := models.EncodePayload(payload)
		if err != nil {
			return err
		}
		action.Payload = raw

	case ChooseMerge:
		if len(resolution.Merged) == 0 {
			return ErrMergeDataRequired
		}
		raw, err := models.MergePayload(action.Kind, action.Payload, resolution.Merged)
		if err != nil {
			return fmt.Errorf("failed to merge payload: %w", err)
		}
		action.Payload = raw

	default:
		return fmt.Errorf("unknown conflict resolution %q", resolution.Choice)
	}

	// Повторная постановка в очередь
	action.Status = models.ActionPending
	action.Error = ""
	action.Conflict = nil
	action.RetryCount++
	if err := m.storage.UpdateAction(ctx, action); err != nil {
		return fmt.Errorf("failed to update action: %w", err)
	}

	m.logger.Info("Conflict resolved, action re-queued", "action_id", id, "resolution", resolution.Choice)
	if err := m.rebase(ctx); err != nil {
		return err
	}
	m.kick()
	return nil
}

// adoptServerData stores the server's copy of the conflicted entity as confirmed
func (m *manager) adoptServerData(ctx context.Context, action *models.PendingAction) error {
	data := action.Conflict.ServerData
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch models.EntityKindOf(action.Kind) {
	case models.EntityTask:
		var t models.Task
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to decode server task: %w", err)
		}
		return m.storage.UpsertTasks(ctx, []*models.Task{&t})
	case models.EntityList:
		var l models.List
		if err := json.Unmarshal(data, &l); err != nil {
			return fmt.Errorf("failed to decode server list: %w", err)
		}
		return m.storage.UpsertLists(ctx, []*models.List{&l})
	default:
		var l models.Label
		if err := json.Unmarshal(data, &l); err != nil {
			return fmt.Errorf("failed to decode server label: %w", err)
		}
		return m.storage.UpsertLabels(ctx, []*models.Label{&l})
	}
}
