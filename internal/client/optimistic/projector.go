package optimistic

import (
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// ErrTargetMissing is returned when an action mutates an entity that is not in the store.
var ErrTargetMissing = errors.New("target entity not found")

// Projector applies unconfirmed actions to the store.
type Projector struct {
	store *Store
}

// NewProjector creates a projector over store.
func NewProjector(store *Store) *Projector {
	return &Projector{store: store}
}

// Apply projects one action immediately.
func (p *Projector) Apply(action *models.PendingAction) error {
	payload, err := models.DecodePayload(action.Kind, action.Payload)
	if err != nil {
		return err
	}
	return p.store.mutate(func(st *state) error {
		return project(st, payload, actionTime(action))
	})
}

// Rebase rebuilds the store from confirmed entities and replays the queued
// actions on top, in queue order. Actions whose target no longer exists are
// skipped; the number of skipped actions is returned.
func (p *Projector) Rebase(confirmed *storage.Snapshot, queued []*models.PendingAction) int {
	st := stateFromSnapshot(confirmed)
	skipped := 0
	for _, a := range queued {
		payload, err := models.DecodePayload(a.Kind, a.Payload)
		if err != nil {
			skipped++
			continue
		}
		if err := project(st, payload, actionTime(a)); err != nil {
			skipped++
		}
	}
	p.store.replace(st)
	return skipped
}

// actionTime returns the wall time the action was dispatched at
func actionTime(a *models.PendingAction) time.Time {
	if a.Timestamp == 0 {
		return time.Now().UTC()
	}
	return time.Unix(0, a.Timestamp).UTC()
}

func project(st *state, payload models.Payload, now time.Time) error {
	switch p := payload.(type) {
	case *models.CreateTaskPayload:
		st.tasks[p.Ref.String()] = p.NewTask(now)

	case *models.UpdateTaskPayload:
		t, err := taskOf(st, p.ID)
		if err != nil {
			return err
		}
		p.Patch.Apply(t, now)
		t.UpdatedAt = now

	case *models.ToggleTaskPayload:
		t, err := taskOf(st, p.ID)
		if err != nil {
			return err
		}
		t.SetCompleted(p.Completed, now)
		t.UpdatedAt = now

	case *models.DeleteTaskPayload:
		deleteTask(st, p.ID)

	case *models.MoveTaskPayload:
		t, err := taskOf(st, p.ID)
		if err != nil {
			return err
		}
		t.ListID = p.ListID
		t.ParentID = nil
		if p.ParentID != nil {
			parent := *p.ParentID
			t.ParentID = &parent
		}
		t.UpdatedAt = now

	case *models.CreateListPayload:
		st.lists[p.Ref.String()] = &models.List{ID: p.Ref, Name: p.Name, CreatedAt: now, UpdatedAt: now}

	case *models.UpdateListPayload:
		l, ok := st.lists[p.ID.String()]
		if !ok {
			return fmt.Errorf("%w: list %s", ErrTargetMissing, p.ID)
		}
		l.Name = p.Name
		l.UpdatedAt = now

	case *models.DeleteListPayload:
		delete(st.lists, p.ID.String())
		// Задачи списка удаляются вместе с ним
		for key, t := range st.tasks {
			if t.ListID == p.ID {
				delete(st.tasks, key)
			}
		}

	case *models.CreateLabelPayload:
		st.labels[p.Ref.String()] = &models.Label{ID: p.Ref, Name: p.Name, Color: p.Color, CreatedAt: now, UpdatedAt: now}

	case *models.UpdateLabelPayload:
		l, ok := st.labels[p.ID.String()]
		if !ok {
			return fmt.Errorf("%w: label %s", ErrTargetMissing, p.ID)
		}
		if p.Name != nil {
			l.Name = *p.Name
		}
		if p.Color != nil {
			l.Color = *p.Color
		}
		l.UpdatedAt = now

	case *models.DeleteLabelPayload:
		delete(st.labels, p.ID.String())
		for _, t := range st.tasks {
			t.LabelIDs = withoutRef(t.LabelIDs, p.ID)
		}

	default:
		return fmt.Errorf("%w: %s", models.ErrUnknownAction, payload.Kind())
	}
	return nil
}

func taskOf(st *state, ref models.Ref) (*models.Task, error) {
	t, ok := st.tasks[ref.String()]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", ErrTargetMissing, ref)
	}
	return t, nil
}

// deleteTask удаляет задачу вместе с подзадачами
func deleteTask(st *state, ref models.Ref) {
	delete(st.tasks, ref.String())
	for key, t := range st.tasks {
		if t.ParentID != nil && *t.ParentID == ref {
			delete(st.tasks, key)
			deleteTask(st, t.ID)
		}
	}
}

func withoutRef(refs []models.Ref, ref models.Ref) []models.Ref {
	out := refs[:0]
	for _, r := range refs {
		if r != ref {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
