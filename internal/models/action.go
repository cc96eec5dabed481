package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionKind is the closed set of mutations the client may queue.
type ActionKind string

const (
	ActionTaskCreate  ActionKind = "task.create"
	ActionTaskUpdate  ActionKind = "task.update"
	ActionTaskToggle  ActionKind = "task.toggle"
	ActionTaskDelete  ActionKind = "task.delete"
	ActionTaskMove    ActionKind = "task.move"
	ActionListCreate  ActionKind = "list.create"
	ActionListUpdate  ActionKind = "list.update"
	ActionListDelete  ActionKind = "list.delete"
	ActionLabelCreate ActionKind = "label.create"
	ActionLabelUpdate ActionKind = "label.update"
	ActionLabelDelete ActionKind = "label.delete"
)

// ErrUnknownAction is returned when a persisted action kind is not known to this build.
var ErrUnknownAction = errors.New("unknown action kind")

// ActionStatus описывает состояние действия в очереди
type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionProcessing ActionStatus = "processing"
	ActionFailed     ActionStatus = "failed"
)

// ConflictInfo keeps both sides of a CONFLICT answer so the user can choose.
type ConflictInfo struct {
	ServerData json.RawMessage `json:"server_data,omitempty"`
	LocalData  json.RawMessage `json:"local_data,omitempty"`
}

// PendingAction is a queued, not yet confirmed mutation.
type PendingAction struct {
	TempRef    *Ref            `json:"temp_ref,omitempty"`
	Conflict   *ConflictInfo   `json:"conflict,omitempty"`
	Kind       ActionKind      `json:"kind"`
	Status     ActionStatus    `json:"status"`
	Error      string          `json:"error,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  int64           `json:"timestamp"` // монотонные наносекунды, задают порядок очереди
	RetryCount int             `json:"retry_count"`
	ID         uuid.UUID       `json:"id"`
}

// Clone returns a deep copy of the action.
func (a *PendingAction) Clone() *PendingAction {
	c := *a
	c.Payload = append(json.RawMessage(nil), a.Payload...)
	if a.TempRef != nil {
		v := *a.TempRef
		c.TempRef = &v
	}
	if a.Conflict != nil {
		c.Conflict = &ConflictInfo{
			ServerData: append(json.RawMessage(nil), a.Conflict.ServerData...),
			LocalData:  append(json.RawMessage(nil), a.Conflict.LocalData...),
		}
	}
	return &c
}

// Payload is implemented only by the payload types in this package, which
// keeps the set of action kinds closed.
type Payload interface {
	Kind() ActionKind
	// target is the entity the action creates or mutates
	target() Ref
	// refs returns pointers to every Ref inside the payload
	refs() []*Ref
	// expectation returns the "expected prior state" stamp, nil for creates
	expectation() **time.Time
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	DueHasTime  *bool      `json:"due_has_time,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	LabelIDs    *[]Ref     `json:"label_ids,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	ClearDue    bool       `json:"clear_due,omitempty"`
}

// Apply writes the patch into t. UpdatedAt is left to the caller.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDue {
		t.DueAt = nil
		t.DueHasTime = false
	}
	if p.DueAt != nil {
		due := p.DueAt.UTC()
		t.DueAt = &due
	}
	if p.DueHasTime != nil {
		t.DueHasTime = *p.DueHasTime
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.LabelIDs != nil {
		t.LabelIDs = append([]Ref(nil), (*p.LabelIDs)...)
	}
	if p.Completed != nil && *p.Completed != t.Completed {
		t.SetCompleted(*p.Completed, now)
	}
}

func (p *TaskPatch) refs() []*Ref {
	if p.LabelIDs == nil {
		return nil
	}
	out := make([]*Ref, 0, len(*p.LabelIDs))
	for i := range *p.LabelIDs {
		out = append(out, &(*p.LabelIDs)[i])
	}
	return out
}

// CreateTaskPayload creates a task under Ref (a placeholder on the client).
type CreateTaskPayload struct {
	DueAt       *time.Time `json:"due_at,omitempty"`
	ParentID    *Ref       `json:"parent_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	LabelIDs    []Ref      `json:"label_ids,omitempty"`
	Ref         Ref        `json:"ref"`
	ListID      Ref        `json:"list_id"`
	Priority    int        `json:"priority,omitempty"`
	DueHasTime  bool       `json:"due_has_time,omitempty"`
}

func (p *CreateTaskPayload) Kind() ActionKind { return ActionTaskCreate }
func (p *CreateTaskPayload) target() Ref { return p.Ref }
func (p *CreateTaskPayload) expectation() **time.Time { return nil }
func (p *CreateTaskPayload) refs() []*Ref {
	out := []*Ref{&p.Ref, &p.ListID}
	if p.ParentID != nil {
		out = append(out, p.ParentID)
	}
	for i := range p.LabelIDs {
		out = append(out, &p.LabelIDs[i])
	}
	return out
}

// NewTask builds the task described by the payload.
func (p *CreateTaskPayload) NewTask(now time.Time) *Task {
	t := &Task{
		ID:          p.Ref,
		ListID:      p.ListID,
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		DueHasTime:  p.DueHasTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.ParentID != nil {
		v := *p.ParentID
		t.ParentID = &v
	}
	if p.DueAt != nil {
		due := p.DueAt.UTC()
		t.DueAt = &due
	}
	if len(p.LabelIDs) > 0 {
		t.LabelIDs = append([]Ref(nil), p.LabelIDs...)
	}
	return t
}

// UpdateTaskPayload patches task fields.
type UpdateTaskPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	Patch             TaskPatch  `json:"patch"`
	ID                Ref        `json:"id"`
}

func (p *UpdateTaskPayload) Kind() ActionKind { return ActionTaskUpdate }
func (p *UpdateTaskPayload) target() Ref { return p.ID }
func (p *UpdateTaskPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *UpdateTaskPayload) refs() []*Ref { return append([]*Ref{&p.ID}, p.Patch.refs()...) }

// ToggleTaskPayload sets the completion flag.
type ToggleTaskPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	ID                Ref        `json:"id"`
	Completed         bool       `json:"completed"`
}

func (p *ToggleTaskPayload) Kind() ActionKind { return ActionTaskToggle }
func (p *ToggleTaskPayload) target() Ref { return p.ID }
func (p *ToggleTaskPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *ToggleTaskPayload) refs() []*Ref { return []*Ref{&p.ID} }

// DeleteTaskPayload deletes a task.
type DeleteTaskPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	ID                Ref        `json:"id"`
}

func (p *DeleteTaskPayload) Kind() ActionKind { return ActionTaskDelete }
func (p *DeleteTaskPayload) target() Ref { return p.ID }
func (p *DeleteTaskPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *DeleteTaskPayload) refs() []*Ref { return []*Ref{&p.ID} }

// MoveTaskPayload moves a task to another list and/or parent.
type MoveTaskPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	ParentID          *Ref       `json:"parent_id,omitempty"`
	ID                Ref        `json:"id"`
	ListID            Ref        `json:"list_id"`
}

func (p *MoveTaskPayload) Kind() ActionKind { return ActionTaskMove }
func (p *MoveTaskPayload) target() Ref { return p.ID }
func (p *MoveTaskPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *MoveTaskPayload) refs() []*Ref {
	out := []*Ref{&p.ID, &p.ListID}
	if p.ParentID != nil {
		out = append(out, p.ParentID)
	}
	return out
}

// CreateListPayload creates a list.
type CreateListPayload struct {
	Name string `json:"name"`
	Ref  Ref    `json:"ref"`
}

func (p *CreateListPayload) Kind() ActionKind { return ActionListCreate }
func (p *CreateListPayload) target() Ref { return p.Ref }
func (p *CreateListPayload) expectation() **time.Time { return nil }
func (p *CreateListPayload) refs() []*Ref { return []*Ref{&p.Ref} }

// UpdateListPayload renames a list.
type UpdateListPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	Name              string     `json:"name"`
	ID                Ref        `json:"id"`
}

func (p *UpdateListPayload) Kind() ActionKind { return ActionListUpdate }
func (p *UpdateListPayload) target() Ref { return p.ID }
func (p *UpdateListPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *UpdateListPayload) refs() []*Ref { return []*Ref{&p.ID} }

// DeleteListPayload deletes a list together with its tasks.
type DeleteListPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	ID                Ref        `json:"id"`
}

func (p *DeleteListPayload) Kind() ActionKind { return ActionListDelete }
func (p *DeleteListPayload) target() Ref { return p.ID }
func (p *DeleteListPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *DeleteListPayload) refs() []*Ref { return []*Ref{&p.ID} }

// CreateLabelPayload creates a label.
type CreateLabelPayload struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Ref   Ref    `json:"ref"`
}

func (p *CreateLabelPayload) Kind() ActionKind { return ActionLabelCreate }
func (p *CreateLabelPayload) target() Ref { return p.Ref }
func (p *CreateLabelPayload) expectation() **time.Time { return nil }
func (p *CreateLabelPayload) refs() []*Ref { return []*Ref{&p.Ref} }

// UpdateLabelPayload renames or recolors a label.
type UpdateLabelPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	Name              *string    `json:"name,omitempty"`
	Color             *string    `json:"color,omitempty"`
	ID                Ref        `json:"id"`
}

func (p *UpdateLabelPayload) Kind() ActionKind { return ActionLabelUpdate }
func (p *UpdateLabelPayload) target() Ref { return p.ID }
func (p *UpdateLabelPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *UpdateLabelPayload) refs() []*Ref { return []*Ref{&p.ID} }

// DeleteLabelPayload deletes a label and detaches it from tasks.
type DeleteLabelPayload struct {
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
	ID                Ref        `json:"id"`
}

func (p *DeleteLabelPayload) Kind() ActionKind { return ActionLabelDelete }
func (p *DeleteLabelPayload) target() Ref { return p.ID }
func (p *DeleteLabelPayload) expectation() **time.Time { return &p.ExpectedUpdatedAt }
func (p *DeleteLabelPayload) refs() []*Ref { return []*Ref{&p.ID} }

// NewPayload returns an empty payload for kind.
func NewPayload(kind ActionKind) (Payload, error) {
	switch kind {
	case ActionTaskCreate:
		return &CreateTaskPayload{}, nil
	case ActionTaskUpdate:
		return &UpdateTaskPayload{}, nil
	case ActionTaskToggle:
		return &ToggleTaskPayload{}, nil
	case ActionTaskDelete:
		return &DeleteTaskPayload{}, nil
	case ActionTaskMove:
		return &MoveTaskPayload{}, nil
	case ActionListCreate:
		return &CreateListPayload{}, nil
	case ActionListUpdate:
		return &UpdateListPayload{}, nil
	case ActionListDelete:
		return &DeleteListPayload{}, nil
	case ActionLabelCreate:
		return &CreateLabelPayload{}, nil
	case ActionLabelUpdate:
		return &UpdateLabelPayload{}, nil
	case ActionLabelDelete:
		return &DeleteLabelPayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}

// DecodePayload decodes a persisted payload into its typed form.
func DecodePayload(kind ActionKind, raw json.RawMessage) (Payload, error) {
	p, err := NewPayload(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}

// EncodePayload serializes a typed payload.
func EncodePayload(p Payload) (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// Target returns the entity the payload creates or mutates.
func Target(p Payload) Ref {
	return p.target()
}

// Refs returns every Ref the payload mentions, target included.
func Refs(p Payload) []Ref {
	ptrs := p.refs()
	out := make([]Ref, 0, len(ptrs))
	for _, r := range ptrs {
		out = append(out, *r)
	}
	return out
}

// RemapRefs rewrites every occurrence of the placeholder from into the real id.
// Reports whether anything changed.
func RemapRefs(p Payload, from uuid.UUID, to int64) bool {
	changed := false
	for _, r := range p.refs() {
		if r.remap(from, to) {
			changed = true
		}
	}
	return changed
}

// ResolveRefs rewrites every placeholder that has a known real id.
// Reports whether anything changed.
func ResolveRefs(p Payload, aliases map[uuid.UUID]int64) bool {
	if len(aliases) == 0 {
		return false
	}
	changed := false
	for _, r := range p.refs() {
		if r == nil || !r.IsLocal() {
			continue
		}
		if to, ok := aliases[r.Local]; ok && r.remap(r.Local, to) {
			changed = true
		}
	}
	return changed
}

// HasLocalRefs reports whether the payload still references an unconfirmed entity.
func HasLocalRefs(p Payload) bool {
	for _, r := range p.refs() {
		if r.IsLocal() {
			return true
		}
	}
	return false
}

// Expectation returns the "expected prior state" stamp carried by the payload.
func Expectation(p Payload) *time.Time {
	e := p.expectation()
	if e == nil {
		return nil
	}
	return *e
}

// SetExpectation stamps the payload with the prior updated_at the client saw.
func SetExpectation(p Payload, at *time.Time) {
	if e := p.expectation(); e != nil {
		*e = at
	}
}

// StripExpectation removes the prior-state stamp so the write wins on retry.
func StripExpectation(p Payload) {
	SetExpectation(p, nil)
}

// EntityKindOf returns the entity type an action kind operates on.
func EntityKindOf(kind ActionKind) EntityKind {
	switch kind {
	case ActionListCreate, ActionListUpdate, ActionListDelete:
		return EntityList
	case ActionLabelCreate, ActionLabelUpdate, ActionLabelDelete:
		return EntityLabel
	default:
		return EntityTask
	}
}

// IsCreate reports whether kind creates a new entity.
func IsCreate(kind ActionKind) bool {
	return kind == ActionTaskCreate || kind == ActionListCreate || kind == ActionLabelCreate
}

// IsDelete reports whether kind removes an entity.
func IsDelete(kind ActionKind) bool {
	return kind == ActionTaskDelete || kind == ActionListDelete || kind == ActionLabelDelete
}

// MergePayload splices user-merged fields into a queued payload and drops the
// prior-state stamp. For payloads with a "patch" object the merged fields go
// into the patch, otherwise they overwrite top-level fields. Entity ids are
// never overwritten.
func MergePayload(kind ActionKind, raw, merged json.RawMessage) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(merged, &fields); err != nil {
		return nil, fmt.Errorf("merged data must be a JSON object: %w", err)
	}
	delete(fields, "id")
	delete(fields, "ref")

	if patchRaw, ok := doc["patch"]; ok {
		var patch map[string]json.RawMessage
		if err := json.Unmarshal(patchRaw, &patch); err != nil {
			return nil, fmt.Errorf("failed to decode patch: %w", err)
		}
		if patch == nil {
			patch = make(map[string]json.RawMessage)
		}
		for k, v := range fields {
			patch[k] = v
		}
		encoded, err := json.Marshal(patch)
		if err != nil {
			return nil, fmt.Errorf("failed to encode patch: %w", err)
		}
		doc["patch"] = encoded
	} else {
		for k, v := range fields {
			doc[k] = v
		}
	}

	combined, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	// Проверяем, что результат по-прежнему валиден для данного типа действия
	p, err := DecodePayload(kind, combined)
	if err != nil {
		return nil, err
	}
	StripExpectation(p)
	return EncodePayload(p)
}
