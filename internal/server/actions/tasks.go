package actions

import (
	"context"

	"github.com/iudanet/tasksync/internal/models"
)

// ownedTask loads a task and checks that it belongs to userID.
// A non-nil result is the failure to return.
func (r *Registry) ownedTask(ctx context.Context, userID int64, ref models.Ref) (*models.Task, *models.Result) {
	task, err := r.store.GetTask(ctx, ref.Remote)
	if err != nil {
		res := r.storageFailure("task "+ref.String(), err)
		return nil, &res
	}
	if task.UserID != userID {
		res := forbidden(models.EntityTask)
		return nil, &res
	}
	return task, nil
}

func (r *Registry) ownedList(ctx context.Context, userID int64, ref models.Ref) (*models.List, *models.Result) {
	list, err := r.store.GetList(ctx, ref.Remote)
	if err != nil {
		res := r.storageFailure("list "+ref.String(), err)
		return nil, &res
	}
	if list.UserID != userID {
		res := forbidden(models.EntityList)
		return nil, &res
	}
	return list, nil
}

func (r *Registry) ownedLabel(ctx context.Context, userID int64, ref models.Ref) (*models.Label, *models.Result) {
	label, err := r.store.GetLabel(ctx, ref.Remote)
	if err != nil {
		res := r.storageFailure("label "+ref.String(), err)
		return nil, &res
	}
	if label.UserID != userID {
		res := forbidden(models.EntityLabel)
		return nil, &res
	}
	return label, nil
}

// checkLabels verifies every label exists and is owned by userID
func (r *Registry) checkLabels(ctx context.Context, userID int64, labels []models.Ref) *models.Result {
	for _, ref := range labels {
		if _, res := r.ownedLabel(ctx, userID, ref); res != nil {
			return res
		}
	}
	return nil
}

// checkParent verifies that parent can hold task inside listID.
// task is nil for a new task.
func (r *Registry) checkParent(ctx context.Context, userID int64, parent models.Ref, listID models.Ref, task *models.Task) *models.Result {
	p, res := r.ownedTask(ctx, userID, parent)
	if res != nil {
		return res
	}
	if p.ListID != listID {
		res := models.Fail(models.CodeValidation, "parent task must be in the same list", nil)
		return &res
	}
	if task == nil {
		return nil
	}

	// Поднимаемся по цепочке родителей, чтобы не создать цикл
	for cur := p; ; {
		if cur.ID == task.ID {
			res := models.Fail(models.CodeValidation, "task cannot be moved under itself or its subtask", nil)
			return &res
		}
		if cur.ParentID == nil {
			return nil
		}
		next, res := r.ownedTask(ctx, userID, *cur.ParentID)
		if res != nil {
			return res
		}
		cur = next
	}
}

func (r *Registry) createTask(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.CreateTaskPayload)

	if _, res := r.ownedList(ctx, userID, p.ListID); res != nil {
		return *res
	}
	if p.ParentID != nil {
		if res := r.checkParent(ctx, userID, *p.ParentID, p.ListID, nil); res != nil {
			return *res
		}
	}
	if res := r.checkLabels(ctx, userID, p.LabelIDs); res != nil {
		return *res
	}

	task := p.NewTask(r.now())
	task.UserID = userID
	if err := r.store.InsertTask(ctx, task); err != nil {
		return r.storageFailure("create task", err)
	}
	return models.OK(task)
}

func (r *Registry) updateTask(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.UpdateTaskPayload)

	task, res := r.ownedTask(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, task.UpdatedAt) {
		return conflict(task)
	}
	if p.Patch.LabelIDs != nil {
		if res := r.checkLabels(ctx, userID, *p.Patch.LabelIDs); res != nil {
			return *res
		}
	}

	now := r.nextStamp(task.UpdatedAt)
	p.Patch.Apply(task, now)
	task.UpdatedAt = now
	if err := r.store.UpdateTask(ctx, task); err != nil {
		return r.storageFailure("update task", err)
	}
	return models.OK(task)
}

func (r *Registry) toggleTask(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.ToggleTaskPayload)

	task, res := r.ownedTask(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, task.UpdatedAt) {
		return conflict(task)
	}

	now := r.nextStamp(task.UpdatedAt)
	if task.Completed != p.Completed {
		task.SetCompleted(p.Completed, now)
	}
	task.UpdatedAt = now
	if err := r.store.UpdateTask(ctx, task); err != nil {
		return r.storageFailure("toggle task", err)
	}
	return models.OK(task)
}

func (r *Registry) deleteTask(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.DeleteTaskPayload)

	task, res := r.ownedTask(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, task.UpdatedAt) {
		return conflict(task)
	}
	if err := r.store.DeleteTask(ctx, task.ID.Remote); err != nil {
		return r.storageFailure("delete task", err)
	}
	return models.OK(deleted{ID: task.ID.Remote})
}

// moveTask changes list and/or parent; subtasks follow the task into the new list
func (r *Registry) moveTask(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.MoveTaskPayload)

	task, res := r.ownedTask(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, task.UpdatedAt) {
		return conflict(task)
	}
	if _, res := r.ownedList(ctx, userID, p.ListID); res != nil {
		return *res
	}
	if p.ParentID != nil {
		if res := r.checkParent(ctx, userID, *p.ParentID, p.ListID, task); res != nil {
			return *res
		}
	}

	now := r.nextStamp(task.UpdatedAt)
	listChanged := task.ListID != p.ListID
	task.ListID = p.ListID
	task.ParentID = nil
	if p.ParentID != nil {
		parent := *p.ParentID
		task.ParentID = &parent
	}
	task.UpdatedAt = now
	if err := r.store.UpdateTask(ctx, task); err != nil {
		return r.storageFailure("move task", err)
	}

	if listChanged {
		if err := r.moveSubtasks(ctx, userID, task); err != nil {
			return r.storageFailure("move subtasks", err)
		}
	}
	return models.OK(task)
}

// moveSubtasks puts every descendant of root into root's list
func (r *Registry) moveSubtasks(ctx context.Context, userID int64, root *models.Task) error {
	tasks, err := r.store.ListTasks(ctx, userID)
	if err != nil {
		return err
	}
	children := make(map[int64][]*models.Task)
	for _, t := range tasks {
		if t.ParentID != nil {
			children[t.ParentID.Remote] = append(children[t.ParentID.Remote], t)
		}
	}

	queue := children[root.ID.Remote]
	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		child.ListID = root.ListID
		child.UpdatedAt = r.nextStamp(child.UpdatedAt)
		if err := r.store.UpdateTask(ctx, child); err != nil {
			return err
		}
		queue = append(queue, children[child.ID.Remote]...)
	}
	return nil
}
