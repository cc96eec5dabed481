package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// conflictError is the error text stored on conflicted actions
const conflictError = string(models.CodeConflict)

// DrainResult contains the results of one drain pass
type DrainResult struct {
	Remapped  map[uuid.UUID]int64 // временный id -> серверный id
	StoppedAt *uuid.UUID          // действие, на котором дренаж остановился
	Succeeded int                 // количество применённых сервером действий
	Conflicts int                 // количество новых конфликтов
	Discarded int                 // количество отброшенных нераспознанных действий
	Deferred  int                 // количество действий, отложенных из-за конфликта предшественника
	Skipped   bool                // замок занят другим экземпляром
	LockLost  bool                // аренду перехватили посреди прохода
}

// entityChanges collects the confirmed state discovered during a pass so it
// can be written once after the loop
type entityChanges struct {
	tasks   []*models.Task
	lists   []*models.List
	labels  []*models.Label
	deletes map[models.EntityKind][]models.Ref
}

func (c *entityChanges) empty() bool {
	return len(c.tasks) == 0 && len(c.lists) == 0 && len(c.labels) == 0 && len(c.deletes) == 0
}

// queued is one action of the pass together with its decoded payload
type queued struct {
	action  *models.PendingAction
	payload models.Payload
	dirty   bool // изменено и должно быть записано
	removed bool
}

// ProcessQueue implements Manager.
//
// The pass walks the queue in timestamp order:
//   - actions of unknown kinds are dropped as already applied;
//   - a CONFLICT marks the action failed, records both sides and the pass
//     continues, later actions on the same entity stay queued;
//   - any other failure marks the action failed and ends the pass;
//   - a confirmed create rewrites its placeholder in every other queued action;
//   - the lease is renewed before every request, losing it ends the pass and
//     the rest of the queue stays pending.
//
// Confirmed entities, removals and action updates are written once at the end.
func (m *manager) ProcessQueue(ctx context.Context) (*DrainResult, error) {
	release, ok, err := m.lock.TryAcquire(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		m.logger.Debug("Queue drain skipped, lock is held elsewhere")
		return &DrainResult{Skipped: true}, nil
	}
	defer release()

	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	m.setState(StateSyncing, "")

	result, stopErr, err := m.drain(ctx)
	if err != nil {
		m.setState(StateError, err.Error())
		return nil, err
	}
	if stopErr != "" {
		m.setState(StateError, stopErr)
	} else {
		m.setState(StateIdle, "")
	}
	return result, nil
}

func (m *manager) drain(ctx context.Context) (*DrainResult, string, error) {
	if err := m.flusher.Flush(ctx); err != nil {
		return nil, "", err
	}
	actions, err := m.storage.ListActions(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list actions: %w", err)
	}

	aliases, err := m.storage.ListAliases(ctx)
	if err != nil {
		return nil, "", err
	}

	result := &DrainResult{Remapped: make(map[uuid.UUID]int64)}
	items := make([]*queued, 0, len(actions))
	for _, a := range actions {
		item := &queued{action: a}
		payload, err := models.DecodePayload(a.Kind, a.Payload)
		if err != nil {
			// Неизвестный тип считается уже применённым
			m.logger.Warn("Discarding undecodable action", "action_id", a.ID, "kind", a.Kind, "error", err)
			item.removed = true
			result.Discarded++
			items = append(items, item)
			continue
		}
		item.payload = payload
		// Действие поставлено после подтверждения своей заглушки прошлым проходом
		if models.ResolveRefs(payload, aliases) {
			if raw, err := models.EncodePayload(payload); err == nil {
				a.Payload = raw
				item.dirty = true
			}
		}
		items = append(items, item)
	}

	changes := &entityChanges{deletes: make(map[models.EntityKind][]models.Ref)}
	blocked := make(map[models.Ref]bool)
	stopErr := ""

	for i, item := range items {
		if item.removed {
			continue
		}
		a := item.action
		target := models.Target(item.payload)

		if a.Status == models.ActionFailed {
			if a.Conflict != nil {
				// Нерешенный конфликт блокирует только свою сущность
				blocked[target] = true
				continue
			}
			// Упавшее действие ждет решения пользователя и держит очередь
			stopErr = a.Error
			result.StoppedAt = &a.ID
			break
		}
		if blocked[target] {
			result.Deferred++
			continue
		}

		if models.HasLocalRefs(item.payload) && !(models.IsCreate(a.Kind) && onlyTargetLocal(item.payload)) {
			m.fail(item, "unresolved temporary id")
			stopErr = a.Error
			result.StoppedAt = &a.ID
			break
		}

		// Без живой аренды очередь может дренировать другой экземпляр
		if err := m.lock.Extend(ctx); err != nil {
			m.logger.Warn("Drain lease lost, ending pass", "action_id", a.ID, "error", err)
			result.LockLost = true
			break
		}

		m.setInFlight(a.ID)
		res, err := m.executor.Execute(ctx, a)
		m.setInFlight(uuid.Nil)

		if err != nil {
			// Сетевая ошибка: без автоматических повторов
			m.fail(item, err.Error())
			stopErr = a.Error
			result.StoppedAt = &a.ID
			break
		}

		if !res.Success {
			if res.IsConflict() {
				m.conflict(item, res.Error)
				blocked[target] = true
				result.Conflicts++
				continue
			}
			m.fail(item, failureMessage(res.Error))
			stopErr = a.Error
			result.StoppedAt = &a.ID
			break
		}

		item.removed = true
		result.Succeeded++

		confirmedID, updatedAt, err := changes.record(a.Kind, target, res.Data)
		if err != nil {
			m.logger.Warn("Unreadable result data", "action_id", a.ID, "kind", a.Kind, "error", err)
		}

		remapped := false
		if target.IsLocal() && confirmedID > 0 {
			result.Remapped[target.Local] = confirmedID
			remapped = true
			m.remap(items, i, target.Local, confirmedID)
			target = models.RemoteRef(confirmedID)
		}
		if updatedAt != nil && !models.IsDelete(a.Kind) {
			chainExpectations(items[i+1:], target, *updatedAt, remapped)
		}
	}

	if err := m.commit(ctx, items, changes, result.Remapped); err != nil {
		return nil, "", err
	}

	m.logger.Info("Queue drained",
		"succeeded", result.Succeeded,
		"conflicts", result.Conflicts,
		"discarded", result.Discarded,
		"deferred", result.Deferred,
		"stopped", result.StoppedAt != nil,
		"lock_lost", result.LockLost)
	return result, stopErr, nil
}

// onlyTargetLocal reports whether the only placeholder in a create payload is its own ref
func onlyTargetLocal(p models.Payload) bool {
	target := models.Target(p)
	for _, r := range models.Refs(p) {
		if r.IsLocal() && r != target {
			return false
		}
	}
	return true
}

func (m *manager) setInFlight(id uuid.UUID) {
	m.mu.Lock()
	m.inFlight = id
	m.mu.Unlock()
}

func (m *manager) fail(item *queued, message string) {
	item.action.Status = models.ActionFailed
	item.action.Error = message
	item.dirty = true
	m.logger.Warn("Action failed", "action_id", item.action.ID, "kind", item.action.Kind, "error", message)
}

func (m *manager) conflict(item *queued, actionErr *models.ActionError) {
	var details models.ConflictDetails
	if actionErr != nil && len(actionErr.Details) > 0 {
		if err := json.Unmarshal(actionErr.Details, &details); err != nil {
			m.logger.Warn("Unreadable conflict details", "action_id", item.action.ID, "error", err)
		}
	}

	item.action.Status = models.ActionFailed
	item.action.Error = conflictError
	item.action.Conflict = &models.ConflictInfo{
		ServerData: details.ServerData,
		LocalData:  append(json.RawMessage(nil), item.action.Payload...),
	}
	item.dirty = true
	m.logger.Info("Action conflicts with server state", "action_id", item.action.ID, "kind", item.action.Kind)
}

func failureMessage(e *models.ActionError) string {
	if e == nil {
		return string(models.CodeInternal)
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// remap rewrites the placeholder in every other action still in the queue
func (m *manager) remap(items []*queued, done int, from uuid.UUID, to int64) {
	for j, other := range items {
		if j == done || other.removed || other.payload == nil {
			continue
		}
		if !models.RemapRefs(other.payload, from, to) {
			continue
		}
		raw, err := models.EncodePayload(other.payload)
		if err != nil {
			m.logger.Error("Failed to encode remapped payload", "action_id", other.action.ID, "error", err)
			continue
		}
		other.action.Payload = raw
		other.dirty = true
	}
}

// chainExpectations moves the prior-state stamp of later actions on the same
// entity to the state produced by the action that just succeeded. Without it
// the second of two offline edits would always conflict with the first.
// Stamps removed on purpose (conflict resolved as "local") stay removed,
// except for entities confirmed in this step which never had a stamp.
func chainExpectations(rest []*queued, target models.Ref, updatedAt time.Time, remapped bool) {
	for _, other := range rest {
		if other.removed || other.payload == nil || other.action.Status == models.ActionFailed {
			continue
		}
		if models.Target(other.payload) != target || models.IsCreate(other.action.Kind) {
			continue
		}
		if models.Expectation(other.payload) == nil && !remapped {
			continue
		}
		stamp := updatedAt
		models.SetExpectation(other.payload, &stamp)
		if raw, err := models.EncodePayload(other.payload); err == nil {
			other.action.Payload = raw
			other.dirty = true
		}
	}
}

// record remembers the confirmed entity returned for a successful action.
// Returns the confirmed id and updated_at when the result carries an entity.
func (c *entityChanges) record(kind models.ActionKind, target models.Ref, data json.RawMessage) (int64, *time.Time, error) {
	entityKind := models.EntityKindOf(kind)
	if models.IsDelete(kind) {
		if !target.IsLocal() {
			c.deletes[entityKind] = append(c.deletes[entityKind], target)
		}
		return 0, nil, nil
	}
	if len(data) == 0 {
		return 0, nil, nil
	}

	switch entityKind {
	case models.EntityTask:
		var t models.Task
		if err := json.Unmarshal(data, &t); err != nil {
			return 0, nil, err
		}
		c.tasks = append(c.tasks, &t)
		return t.ID.Remote, &t.UpdatedAt, nil
	case models.EntityList:
		var l models.List
		if err := json.Unmarshal(data, &l); err != nil {
			return 0, nil, err
		}
		c.lists = append(c.lists, &l)
		return l.ID.Remote, &l.UpdatedAt, nil
	default:
		var l models.Label
		if err := json.Unmarshal(data, &l); err != nil {
			return 0, nil, err
		}
		c.labels = append(c.labels, &l)
		return l.ID.Remote, &l.UpdatedAt, nil
	}
}

// commit writes the outcome of a pass: new aliases, removals and action
// updates in one batch each, confirmed entities per kind, then rebuilds the
// optimistic view. Aliases go first: a create replayed after a crash is
// answered from the server's applied-action record.
func (m *manager) commit(ctx context.Context, items []*queued, changes *entityChanges, remapped map[uuid.UUID]int64) error {
	var remove []uuid.UUID
	var update []*models.PendingAction
	for _, item := range items {
		switch {
		case item.removed:
			remove = append(remove, item.action.ID)
		case item.dirty:
			update = append(update, item.action)
		}
	}

	now := m.now()
	if err := m.storage.SaveAliases(ctx, remapped, now); err != nil {
		return err
	}
	if n, err := m.storage.PruneAliases(ctx, now.Add(-storage.AliasRetention)); err != nil {
		m.logger.Warn("Failed to prune aliases", "error", err)
	} else if n > 0 {
		m.logger.Debug("Pruned aliases", "count", n)
	}

	if err := m.storage.RemoveActions(ctx, remove); err != nil {
		return fmt.Errorf("failed to remove drained actions: %w", err)
	}
	if err := m.storage.UpdateActions(ctx, update); err != nil {
		return fmt.Errorf("failed to update actions: %w", err)
	}

	if !changes.empty() {
		if err := m.applyChanges(ctx, changes); err != nil {
			return err
		}
	}
	return m.rebase(ctx)
}

func (m *manager) applyChanges(ctx context.Context, changes *entityChanges) error {
	if err := m.storage.UpsertLists(ctx, changes.lists); err != nil {
		return fmt.Errorf("failed to store lists: %w", err)
	}
	if err := m.storage.UpsertLabels(ctx, changes.labels); err != nil {
		return fmt.Errorf("failed to store labels: %w", err)
	}
	if err := m.storage.UpsertTasks(ctx, changes.tasks); err != nil {
		return fmt.Errorf("failed to store tasks: %w", err)
	}
	if len(changes.deletes) == 0 {
		return nil
	}

	confirmed, err := m.confirmedSnapshot(ctx)
	if err != nil {
		return err
	}
	deletes, detached := cascade(confirmed, changes.deletes)
	for _, kind := range models.EntityKinds {
		if err := m.storage.DeleteEntities(ctx, kind, deletes[kind]); err != nil {
			return fmt.Errorf("failed to delete %s entities: %w", kind, err)
		}
	}
	if err := m.storage.UpsertTasks(ctx, detached); err != nil {
		return fmt.Errorf("failed to detach labels: %w", err)
	}
	return nil
}

// cascade extends server-confirmed deletions the way the server applies them:
// a list takes its tasks along, a task its subtasks, a label is detached
// from every task. Returns the full deletion set and the tasks that lost a label.
func cascade(confirmed *storage.Snapshot, deletes map[models.EntityKind][]models.Ref) (map[models.EntityKind][]models.Ref, []*models.Task) {
	out := make(map[models.EntityKind][]models.Ref, len(deletes))
	for kind, refs := range deletes {
		out[kind] = append([]models.Ref(nil), refs...)
	}

	goneLists := make(map[models.Ref]bool)
	for _, ref := range deletes[models.EntityList] {
		goneLists[ref] = true
	}
	goneTasks := make(map[models.Ref]bool)
	for _, ref := range deletes[models.EntityTask] {
		goneTasks[ref] = true
	}
	for _, t := range confirmed.Tasks {
		if goneLists[t.ListID] && !goneTasks[t.ID] {
			goneTasks[t.ID] = true
			out[models.EntityTask] = append(out[models.EntityTask], t.ID)
		}
	}
	// Подзадачи удаляются вместе с родителем, глубина не ограничена
	for changed := true; changed; {
		changed = false
		for _, t := range confirmed.Tasks {
			if t.ParentID != nil && goneTasks[*t.ParentID] && !goneTasks[t.ID] {
				goneTasks[t.ID] = true
				out[models.EntityTask] = append(out[models.EntityTask], t.ID)
				changed = true
			}
		}
	}

	goneLabels := make(map[models.Ref]bool)
	for _, ref := range deletes[models.EntityLabel] {
		goneLabels[ref] = true
	}
	var detached []*models.Task
	if len(goneLabels) > 0 {
		for _, t := range confirmed.Tasks {
			if goneTasks[t.ID] {
				continue
			}
			kept := make([]models.Ref, 0, len(t.LabelIDs))
			for _, l := range t.LabelIDs {
				if !goneLabels[l] {
					kept = append(kept, l)
				}
			}
			if len(kept) != len(t.LabelIDs) {
				c := t.Clone()
				c.LabelIDs = kept
				detached = append(detached, c)
			}
		}
	}
	return out, detached
}
