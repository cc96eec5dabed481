// Package tasks is the typed facade over the sync manager: every mutation is
// turned into an action payload and dispatched, every read comes from the
// optimistic view.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	clientsync "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/models"
)

// ErrNotFound is returned when a ref or name matches nothing in the local view
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a name matches more than one entity
var ErrAmbiguous = errors.New("name matches more than one entity")

// TaskInput описывает новую задачу
type TaskInput struct {
	DueAt       *time.Time
	ParentID    *models.Ref
	Title       string
	Description string
	LabelIDs    []models.Ref
	ListID      models.Ref
	Priority    int
	DueHasTime  bool
}

// Filter selects tasks for ListTasks. Zero value returns open tasks of every list.
type Filter struct {
	ListID           *models.Ref
	LabelID          *models.Ref
	IncludeCompleted bool
}

// Service определяет интерфейс работы с задачами, списками и метками
type Service interface {
	CreateTask(ctx context.Context, in TaskInput) (models.Ref, error)
	UpdateTask(ctx context.Context, id models.Ref, patch models.TaskPatch) error
	CompleteTask(ctx context.Context, id models.Ref, completed bool) error
	MoveTask(ctx context.Context, id, listID models.Ref, parentID *models.Ref) error
	DeleteTask(ctx context.Context, id models.Ref) error
	GetTask(id models.Ref) (*models.Task, error)
	ListTasks(filter Filter) []*models.Task

	CreateList(ctx context.Context, name string) (models.Ref, error)
	RenameList(ctx context.Context, id models.Ref, name string) error
	DeleteList(ctx context.Context, id models.Ref) error
	Lists() []*models.List
	FindList(nameOrRef string) (*models.List, error)

	CreateLabel(ctx context.Context, name, color string) (models.Ref, error)
	UpdateLabel(ctx context.Context, id models.Ref, name, color *string) error
	DeleteLabel(ctx context.Context, id models.Ref) error
	Labels() []*models.Label
	FindLabel(nameOrRef string) (*models.Label, error)
}

type service struct {
	manager clientsync.Manager
}

// NewService creates a new tasks service
func NewService(manager clientsync.Manager) Service {
	return &service{manager: manager}
}

// dispatch отправляет действие и возвращает ссылку на целевую сущность
func (s *service) dispatch(ctx context.Context, payload models.Payload) (models.Ref, error) {
	action, err := s.manager.Dispatch(ctx, payload)
	if err != nil {
		return models.Ref{}, fmt.Errorf("failed to dispatch %s: %w", payload.Kind(), err)
	}
	if action.TempRef != nil {
		return *action.TempRef, nil
	}
	return models.Target(payload), nil
}

// CreateTask queues a new task and returns its placeholder ref
func (s *service) CreateTask(ctx context.Context, in TaskInput) (models.Ref, error) {
	if _, ok := s.manager.Store().List(in.ListID); !ok {
		return models.Ref{}, fmt.Errorf("list %s: %w", in.ListID, ErrNotFound)
	}
	if in.ParentID != nil {
		if _, ok := s.manager.Store().Task(*in.ParentID); !ok {
			return models.Ref{}, fmt.Errorf("parent task %s: %w", in.ParentID, ErrNotFound)
		}
	}

	return s.dispatch(ctx, &models.CreateTaskPayload{
		ListID:      in.ListID,
		ParentID:    in.ParentID,
		Title:       in.Title,
		Description: in.Description,
		DueAt:       in.DueAt,
		DueHasTime:  in.DueHasTime,
		Priority:    in.Priority,
		LabelIDs:    in.LabelIDs,
	})
}

func (s *service) UpdateTask(ctx context.Context, id models.Ref, patch models.TaskPatch) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	_, err := s.dispatch(ctx, &models.UpdateTaskPayload{ID: id, Patch: patch})
	return err
}

func (s *service) CompleteTask(ctx context.Context, id models.Ref, completed bool) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	_, err := s.dispatch(ctx, &models.ToggleTaskPayload{ID: id, Completed: completed})
	return err
}

func (s *service) MoveTask(ctx context.Context, id, listID models.Ref, parentID *models.Ref) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	if _, ok := s.manager.Store().List(listID); !ok {
		return fmt.Errorf("list %s: %w", listID, ErrNotFound)
	}
	_, err := s.dispatch(ctx, &models.MoveTaskPayload{ID: id, ListID: listID, ParentID: parentID})
	return err
}

func (s *service) DeleteTask(ctx context.Context, id models.Ref) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	_, err := s.dispatch(ctx, &models.DeleteTaskPayload{ID: id})
	return err
}

// GetTask returns the task as the user currently sees it
func (s *service) GetTask(id models.Ref) (*models.Task, error) {
	task, ok := s.manager.Store().Task(id)
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, nil
}

// ListTasks returns matching tasks, open ones first, then by due date
func (s *service) ListTasks(filter Filter) []*models.Task {
	snap := s.manager.Store().Snapshot()

	out := make([]*models.Task, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if filter.ListID != nil && t.ListID != *filter.ListID {
			continue
		}
		if !filter.IncludeCompleted && t.Completed {
			continue
		}
		if filter.LabelID != nil && !hasLabel(t, *filter.LabelID) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		switch {
		case a.DueAt != nil && b.DueAt != nil:
			return a.DueAt.Before(*b.DueAt)
		case a.DueAt != nil:
			return true
		default:
			return false
		}
	})
	return out
}

func hasLabel(t *models.Task, label models.Ref) bool {
	for _, l := range t.LabelIDs {
		if l == label {
			return true
		}
	}
	return false
}

func (s *service) CreateList(ctx context.Context, name string) (models.Ref, error) {
	return s.dispatch(ctx, &models.CreateListPayload{Name: name})
}

func (s *service) RenameList(ctx context.Context, id models.Ref, name string) error {
	if _, ok := s.manager.Store().List(id); !ok {
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	_, err := s.dispatch(ctx, &models.UpdateListPayload{ID: id, Name: name})
	return err
}

func (s *service) DeleteList(ctx context.Context, id models.Ref) error {
	if _, ok := s.manager.Store().List(id); !ok {
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	_, err := s.dispatch(ctx, &models.DeleteListPayload{ID: id})
	return err
}

func (s *service) Lists() []*models.List {
	return s.manager.Store().Snapshot().Lists
}

// FindList resolves a list by ref ("12", "tmp:<uuid>") or by case-insensitive name
func (s *service) FindList(nameOrRef string) (*models.List, error) {
	if ref, err := models.ParseRef(nameOrRef); err == nil {
		if l, ok := s.manager.Store().List(ref); ok {
			return l, nil
		}
	}

	var found *models.List
	for _, l := range s.Lists() {
		if !strings.EqualFold(l.Name, nameOrRef) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("list %q: %w", nameOrRef, ErrAmbiguous)
		}
		found = l
	}
	if found == nil {
		return nil, fmt.Errorf("list %q: %w", nameOrRef, ErrNotFound)
	}
	return found, nil
}

func (s *service) CreateLabel(ctx context.Context, name, color string) (models.Ref, error) {
	return s.dispatch(ctx, &models.CreateLabelPayload{Name: name, Color: color})
}

func (s *service) UpdateLabel(ctx context.Context, id models.Ref, name, color *string) error {
	if _, ok := s.manager.Store().Label(id); !ok {
		return fmt.Errorf("label %s: %w", id, ErrNotFound)
	}
	_, err := s.dispatch(ctx, &models.UpdateLabelPayload{ID: id, Name: name, Color: color})
	return err
}

func (s *service) DeleteLabel(ctx context.Context, id models.Ref) error {
	if _, ok := s.manager.Store().Label(id); !ok {
		return fmt.Errorf("label %s: %w", id, ErrNotFound)
	}
	_, err := s.dispatch(ctx, &models.DeleteLabelPayload{ID: id})
	return err
}

func (s *service) Labels() []*models.Label {
	return s.manager.Store().Snapshot().Labels
}

// FindLabel resolves a label the same way FindList does
func (s *service) FindLabel(nameOrRef string) (*models.Label, error) {
	if ref, err := models.ParseRef(nameOrRef); err == nil {
		if l, ok := s.manager.Store().Label(ref); ok {
			return l, nil
		}
	}

	var found *models.Label
	for _, l := range s.Labels() {
		if !strings.EqualFold(l.Name, nameOrRef) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("label %q: %w", nameOrRef, ErrAmbiguous)
		}
		found = l
	}
	if found == nil {
		return nil, fmt.Errorf("label %q: %w", nameOrRef, ErrNotFound)
	}
	return found, nil
}
