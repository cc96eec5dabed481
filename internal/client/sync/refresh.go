package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// Refresh implements Manager.
func (m *manager) Refresh(ctx context.Context, force bool) (bool, error) {
	if !force {
		stale, err := m.anyStale(ctx)
		if err != nil {
			return false, err
		}
		if !stale {
			return false, nil
		}
	}

	// Снимок не должен записываться поверх результатов идущего дренажа
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	lists, err := m.fetcher.FetchLists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch lists: %w", err)
	}
	tasks, err := m.fetcher.FetchTasks(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	labels, err := m.fetcher.FetchLabels(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch labels: %w", err)
	}

	snapshot := &storage.Snapshot{Tasks: tasks, Lists: lists, Labels: labels}
	if err := m.storage.ReplaceSnapshot(ctx, snapshot); err != nil {
		return false, err
	}

	fetchedAt := m.now()
	for _, kind := range models.EntityKinds {
		if err := m.storage.SetLastFetched(ctx, kind, fetchedAt); err != nil {
			return false, fmt.Errorf("failed to save fetch time: %w", err)
		}
	}

	m.logger.Info("Server state refreshed", "lists", len(lists), "tasks", len(tasks), "labels", len(labels))
	return true, m.rebase(ctx)
}

func (m *manager) anyStale(ctx context.Context) (bool, error) {
	now := m.now()
	for _, kind := range models.EntityKinds {
		stale, err := m.storage.IsStale(ctx, kind, now, m.cfg.StaleAfter)
		if err != nil {
			return false, err
		}
		if stale {
			return true, nil
		}
	}
	return false, nil
}
