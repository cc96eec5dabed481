package actions

import (
	"context"

	"github.com/iudanet/tasksync/internal/models"
)

func (r *Registry) createList(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.CreateListPayload)

	now := r.now()
	list := &models.List{UserID: userID, Name: p.Name, CreatedAt: now, UpdatedAt: now}
	if err := r.store.InsertList(ctx, list); err != nil {
		return r.storageFailure("create list", err)
	}
	return models.OK(list)
}

func (r *Registry) updateList(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.UpdateListPayload)

	list, res := r.ownedList(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, list.UpdatedAt) {
		return conflict(list)
	}

	list.Name = p.Name
	list.UpdatedAt = r.nextStamp(list.UpdatedAt)
	if err := r.store.UpdateList(ctx, list); err != nil {
		return r.storageFailure("update list", err)
	}
	return models.OK(list)
}

func (r *Registry) deleteList(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.DeleteListPayload)

	list, res := r.ownedList(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, list.UpdatedAt) {
		return conflict(list)
	}
	if err := r.store.DeleteList(ctx, list.ID.Remote); err != nil {
		return r.storageFailure("delete list", err)
	}
	return models.OK(deleted{ID: list.ID.Remote})
}

func (r *Registry) createLabel(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.CreateLabelPayload)

	now := r.now()
	label := &models.Label{UserID: userID, Name: p.Name, Color: p.Color, CreatedAt: now, UpdatedAt: now}
	if err := r.store.InsertLabel(ctx, label); err != nil {
		return r.storageFailure("create label", err)
	}
	return models.OK(label)
}

func (r *Registry) updateLabel(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.UpdateLabelPayload)

	label, res := r.ownedLabel(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, label.UpdatedAt) {
		return conflict(label)
	}

	if p.Name != nil {
		label.Name = *p.Name
	}
	if p.Color != nil {
		label.Color = *p.Color
	}
	label.UpdatedAt = r.nextStamp(label.UpdatedAt)
	if err := r.store.UpdateLabel(ctx, label); err != nil {
		return r.storageFailure("update label", err)
	}
	return models.OK(label)
}

func (r *Registry) deleteLabel(ctx context.Context, userID int64, payload models.Payload) models.Result {
	p := payload.(*models.DeleteLabelPayload)

	label, res := r.ownedLabel(ctx, userID, p.ID)
	if res != nil {
		return *res
	}
	if stale(p, label.UpdatedAt) {
		return conflict(label)
	}
	if err := r.store.DeleteLabel(ctx, label.ID.Remote); err != nil {
		return r.storageFailure("delete label", err)
	}
	return models.OK(deleted{ID: label.ID.Remote})
}
