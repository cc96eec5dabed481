package providersync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// remoteSide is the stored external payload of a conflict: the normalized
// remote task plus the provider's payload exactly as received
type remoteSide struct {
	Task       *models.Task    `json:"task"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	LabelNames []string        `json:"label_names,omitempty"`
}

// loadTasks reads the local tasks and the task mappings once per pass
func (p *pass) loadTasks(ctx context.Context) (map[int64]bool, error) {
	tasks, err := p.store.ListTasks(ctx, p.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list local tasks: %w", err)
	}
	for _, t := range tasks {
		p.tasks[t.ID.Remote] = t
		p.taskOrder = append(p.taskOrder, t.ID.Remote)
	}

	mappings, err := p.store.ListMappings(ctx, p.userID, p.provider, models.ExternalTask)
	if err != nil {
		return nil, fmt.Errorf("failed to list task mappings: %w", err)
	}
	mapped := make(map[int64]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.LocalID] = true
		p.taskExt[m.LocalID] = m.ExternalID
	}
	return mapped, nil
}

// pullTasks applies the remote side of the snapshot, parents before children
func (p *pass) pullTasks(ctx context.Context, remote []providers.RemoteTask) error {
	mapped, err := p.loadTasks(ctx)
	if err != nil {
		return err
	}

	ordered := parentsFirst(remote,
		func(rt providers.RemoteTask) string { return rt.ExternalID },
		func(rt providers.RemoteTask) string { return rt.ParentExternalID },
	)
	for i := range ordered {
		if err := p.pullTask(ctx, &ordered[i], mapped); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) pullTask(ctx context.Context, rt *providers.RemoteTask, mapped map[int64]bool) error {
	listID, ok := p.listByExt[rt.ListExternalID]
	if !ok {
		// Импортируются только задачи из связанных списков
		p.log.Debug("Skipping task of unlinked list", "external_id", rt.ExternalID, "external_list_id", rt.ListExternalID)
		return nil
	}

	m, err := p.store.GetMappingByExternal(ctx, p.userID, p.provider, models.ExternalTask, rt.ExternalID)
	if err != nil {
		if errors.Is(err, storage.ErrMappingNotFound) {
			return p.importTask(ctx, rt, listID, mapped)
		}
		return fmt.Errorf("failed to get task mapping: %w", err)
	}

	local, ok := p.tasks[m.LocalID]
	if !ok {
		// Локальная задача удалена, удаленную уберет шаг отправки
		return nil
	}
	if rt.Deleted {
		p.log.Debug("Remote task deleted", "task_id", m.LocalID, "external_id", rt.ExternalID)
		if err := p.deleteLocalTask(ctx, m.LocalID); err != nil {
			return err
		}
		if err := p.store.DeleteMapping(ctx, m.ID); err != nil {
			return fmt.Errorf("failed to delete task mapping: %w", err)
		}
		delete(p.taskExt, m.LocalID)
		return nil
	}

	pending, err := p.store.HasPendingConflict(ctx, p.userID, p.provider, models.ExternalTask, m.LocalID)
	if err != nil {
		return fmt.Errorf("failed to check pending conflict: %w", err)
	}
	if pending {
		p.decisions[m.LocalID] = conflicted
		return nil
	}

	incoming, err := p.incoming(ctx, rt, listID, local)
	if err != nil {
		return err
	}

	normalized := p.sameTask(local, incoming)
	switch {
	case normalized && p.sameExtras(local, incoming):
		p.decisions[m.LocalID] = keepBoth
	case normalized:
		// Поля без конфликтов сливаются по времени записи
		if p.lastSync == nil || remoteChanged(rt.UpdatedAt, p.lastSync, m.ExternalUpdatedAt) || changedSince(local.UpdatedAt, p.lastSync) {
			if err := p.pickNewer(ctx, local, incoming, rt); err != nil {
				return err
			}
		}
	case p.lastSync == nil:
		// Первая синхронизация: побеждает более поздняя запись, конфликтов не бывает
		if err := p.pickNewer(ctx, local, incoming, rt); err != nil {
			return err
		}
	case remoteChanged(rt.UpdatedAt, p.lastSync, m.ExternalUpdatedAt) && changedSince(local.UpdatedAt, p.lastSync):
		if err := p.recordConflict(ctx, m, local, incoming, rt); err != nil {
			return err
		}
		p.decisions[m.LocalID] = conflicted
	case remoteChanged(rt.UpdatedAt, p.lastSync, m.ExternalUpdatedAt):
		if err := p.applyRemote(ctx, local, incoming); err != nil {
			return err
		}
	}

	return p.saveTaskMapping(ctx, m, m.LocalID, rt)
}

// importTask creates the local counterpart of an unmapped remote task.
// On the first pass a local task with the same title in the same list is linked instead.
func (p *pass) importTask(ctx context.Context, rt *providers.RemoteTask, listID int64, mapped map[int64]bool) error {
	if rt.Deleted {
		return nil
	}

	if p.lastSync == nil {
		if local := p.matchTask(rt, listID, mapped); local != nil {
			incoming, err := p.incoming(ctx, rt, listID, local)
			if err != nil {
				return err
			}
			if p.sameTask(local, incoming) && p.sameExtras(local, incoming) {
				p.decisions[local.ID.Remote] = keepBoth
			} else if err := p.pickNewer(ctx, local, incoming, rt); err != nil {
				return err
			}
			mapped[local.ID.Remote] = true
			return p.saveTaskMapping(ctx, nil, local.ID.Remote, rt)
		}
	}

	task, err := p.incoming(ctx, rt, listID, nil)
	if err != nil {
		return err
	}
	task.CreatedAt = p.start
	task.UpdatedAt = p.start
	if err := p.store.InsertTask(ctx, task); err != nil {
		return fmt.Errorf("failed to import task %s: %w", rt.ExternalID, err)
	}
	p.out.Pulled++
	p.tasks[task.ID.Remote] = task
	p.taskOrder = append(p.taskOrder, task.ID.Remote)
	p.decisions[task.ID.Remote] = pulled
	mapped[task.ID.Remote] = true
	return p.saveTaskMapping(ctx, nil, task.ID.Remote, rt)
}

func (p *pass) matchTask(rt *providers.RemoteTask, listID int64, mapped map[int64]bool) *models.Task {
	title := strings.TrimSpace(rt.Fields.Title)
	for _, id := range p.taskOrder {
		t, ok := p.tasks[id]
		if !ok || mapped[id] || t.ListID.Remote != listID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(t.Title), title) {
			return t
		}
	}
	return nil
}

// pickNewer is last-writer-wins for passes without a cursor; a tie keeps the local side
func (p *pass) pickNewer(ctx context.Context, local, incoming *models.Task, rt *providers.RemoteTask) error {
	if rt.UpdatedAt.After(local.UpdatedAt) {
		return p.applyRemote(ctx, local, incoming)
	}
	p.decisions[local.ID.Remote] = localWins
	return nil
}

// incoming builds the local view of a remote task. Fields the provider does
// not store are taken from base.
func (p *pass) incoming(ctx context.Context, rt *providers.RemoteTask, listID int64, base *models.Task) (*models.Task, error) {
	t := rt.Fields.Clone()
	t.UserID = p.userID
	t.ListID = models.RemoteRef(listID)
	t.ParentID = nil

	if rt.ParentExternalID != "" {
		pm, err := p.store.GetMappingByExternal(ctx, p.userID, p.provider, models.ExternalTask, rt.ParentExternalID)
		switch {
		case err == nil:
			if parent, ok := p.tasks[pm.LocalID]; ok && parent.ListID == t.ListID {
				ref := parent.ID
				t.ParentID = &ref
			}
		case !errors.Is(err, storage.ErrMappingNotFound):
			return nil, fmt.Errorf("failed to get parent mapping: %w", err)
		}
	}

	if p.caps.Labels {
		t.LabelIDs = p.labelRefsOf(rt.LabelNames)
	}
	if base == nil {
		if t.Completed && t.CompletedAt == nil {
			t.SetCompleted(true, p.start)
		}
		return t, nil
	}

	t.ID = base.ID
	t.CreatedAt = base.CreatedAt
	t.UpdatedAt = base.UpdatedAt
	// Уровни до PriorityFloor провайдер не различает
	if !p.caps.Priority || (t.Priority <= p.caps.PriorityFloor && base.Priority <= p.caps.PriorityFloor) {
		t.Priority = base.Priority
	}
	if !p.caps.Labels {
		t.LabelIDs = base.LabelIDs
	}
	// Провайдер с точностью до дня не отменяет локальное время в тот же день
	if !p.caps.DueTime && base.DueHasTime && sameDue(base, t, false) {
		t.DueAt, t.DueHasTime = base.DueAt, base.DueHasTime
	}
	if t.Completed && t.CompletedAt == nil {
		if base.Completed && base.CompletedAt != nil {
			t.CompletedAt = base.CompletedAt
		} else {
			t.SetCompleted(true, p.start)
		}
	}
	return t, nil
}

func (p *pass) applyRemote(ctx context.Context, local, incoming *models.Task) error {
	incoming.UpdatedAt = p.start
	if err := p.store.UpdateTask(ctx, incoming); err != nil {
		return fmt.Errorf("failed to apply remote task to %d: %w", local.ID.Remote, err)
	}
	p.out.Pulled++
	p.tasks[local.ID.Remote] = incoming
	p.decisions[local.ID.Remote] = pulled
	return nil
}

// recordConflict stores both sides verbatim; neither side is modified
func (p *pass) recordConflict(ctx context.Context, m *models.ExternalEntityMap, local, incoming *models.Task, rt *providers.RemoteTask) error {
	localPayload, err := json.Marshal(local)
	if err != nil {
		return fmt.Errorf("failed to encode local task: %w", err)
	}
	externalPayload, err := json.Marshal(remoteSide{Task: incoming, Raw: rt.Raw, LabelNames: rt.LabelNames})
	if err != nil {
		return fmt.Errorf("failed to encode remote task: %w", err)
	}

	c := &models.ExternalSyncConflict{
		UserID:          p.userID,
		Provider:        p.provider,
		EntityType:      models.ExternalTask,
		LocalID:         m.LocalID,
		ExternalID:      m.ExternalID,
		ConflictType:    models.ConflictTypeBothModified,
		LocalPayload:    localPayload,
		ExternalPayload: externalPayload,
		Status:          models.ConflictPending,
		CreatedAt:       p.start,
	}
	if err := p.store.CreateConflict(ctx, c); err != nil {
		return fmt.Errorf("failed to record conflict: %w", err)
	}
	p.out.ConflictCount++
	p.log.Info("Provider conflict recorded", "conflict_id", c.ID, "task_id", m.LocalID, "external_id", m.ExternalID)
	return nil
}

// deleteLocalTask removes a task; its subtasks go with it
func (p *pass) deleteLocalTask(ctx context.Context, id int64) error {
	if err := p.store.DeleteTask(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	p.out.Deleted++
	p.forget(id)
	return nil
}

func (p *pass) forget(id int64) {
	delete(p.tasks, id)
	for childID, t := range p.tasks {
		if t.ParentID != nil && t.ParentID.Remote == id {
			p.forget(childID)
		}
	}
}

func (p *pass) saveTaskMapping(ctx context.Context, m *models.ExternalEntityMap, localID int64, rt *providers.RemoteTask) error {
	if m == nil {
		m = &models.ExternalEntityMap{
			UserID:     p.userID,
			Provider:   p.provider,
			EntityType: models.ExternalTask,
			LocalID:    localID,
		}
	}
	m.ExternalID = rt.ExternalID
	m.ExternalListID = rt.ListExternalID
	m.ExternalParentID = rt.ParentExternalID
	m.ExternalEtag = rt.Etag
	if !rt.UpdatedAt.IsZero() {
		updated := rt.UpdatedAt
		m.ExternalUpdatedAt = &updated
	}
	if err := p.store.SaveMapping(ctx, m); err != nil {
		return fmt.Errorf("failed to save task mapping: %w", err)
	}
	p.taskExt[localID] = m.ExternalID
	return nil
}

// pushTasks sends local changes: new tasks are created remotely, changed
// ones are updated, tasks deleted locally are deleted remotely.
func (p *pass) pushTasks(ctx context.Context) error {
	mappings, err := p.store.ListMappings(ctx, p.userID, p.provider, models.ExternalTask)
	if err != nil {
		return fmt.Errorf("failed to list task mappings: %w", err)
	}
	byLocal := make(map[int64]*models.ExternalEntityMap, len(mappings))
	for _, m := range mappings {
		if _, ok := p.tasks[m.LocalID]; ok {
			byLocal[m.LocalID] = m
			continue
		}
		if err := p.adapter.DeleteTask(ctx, m.ExternalListID, m.ExternalID); err != nil {
			if !errors.Is(err, providers.ErrNotFound) {
				return fmt.Errorf("failed to delete remote task %s: %w", m.ExternalID, err)
			}
		} else {
			p.out.Deleted++
		}
		if err := p.store.DeleteMapping(ctx, m.ID); err != nil {
			return fmt.Errorf("failed to delete task mapping: %w", err)
		}
		delete(p.taskExt, m.LocalID)
	}

	var locals []*models.Task
	for _, id := range p.taskOrder {
		if t, ok := p.tasks[id]; ok {
			locals = append(locals, t)
		}
	}
	locals = parentsFirst(locals,
		func(t *models.Task) string { return t.ID.String() },
		func(t *models.Task) string {
			if t.ParentID == nil {
				return ""
			}
			return t.ParentID.String()
		},
	)

	for _, t := range locals {
		if _, ok := p.listExt[t.ListID.Remote]; !ok {
			continue
		}
		id := t.ID.Remote
		m := byLocal[id]
		if m == nil {
			if err := p.createRemote(ctx, t); err != nil {
				return err
			}
			continue
		}

		switch p.decisions[id] {
		case conflicted, pulled, keepBoth:
			continue
		case localWins:
		default:
			if !changedSince(t.UpdatedAt, p.lastSync) {
				continue
			}
			pending, err := p.store.HasPendingConflict(ctx, p.userID, p.provider, models.ExternalTask, id)
			if err != nil {
				return fmt.Errorf("failed to check pending conflict: %w", err)
			}
			if pending {
				continue
			}
		}
		if err := p.pushUpdate(ctx, t, m); err != nil {
			return err
		}
	}
	return nil
}

// location is where the task belongs remotely; a parent not yet known remotely is skipped
func (p *pass) location(t *models.Task) providers.TaskLocation {
	loc := providers.TaskLocation{ListExternalID: p.listExt[t.ListID.Remote]}
	if t.ParentID != nil {
		loc.ParentExternalID = p.taskExt[t.ParentID.Remote]
	}
	return loc
}

func (p *pass) createRemote(ctx context.Context, t *models.Task) error {
	rt, err := p.adapter.CreateTask(ctx, p.location(t), t, p.labelNamesOf(t))
	if err != nil {
		return fmt.Errorf("failed to create remote task for %d: %w", t.ID.Remote, err)
	}
	p.out.Pushed++
	return p.saveTaskMapping(ctx, nil, t.ID.Remote, rt)
}

func (p *pass) pushUpdate(ctx context.Context, t *models.Task, m *models.ExternalEntityMap) error {
	to := p.location(t)
	from := providers.TaskLocation{ListExternalID: m.ExternalListID, ParentExternalID: m.ExternalParentID}
	labels := p.labelNamesOf(t)

	rt, err := p.adapter.UpdateTask(ctx, m.ExternalID, from, to, t, labels)
	if errors.Is(err, providers.ErrNotFound) {
		p.log.Info("Remote task vanished, creating it again", "task_id", t.ID.Remote, "external_id", m.ExternalID)
		rt, err = p.adapter.CreateTask(ctx, to, t, labels)
	}
	if err != nil {
		return fmt.Errorf("failed to push task %d: %w", t.ID.Remote, err)
	}
	p.out.Pushed++
	return p.saveTaskMapping(ctx, m, t.ID.Remote, rt)
}
