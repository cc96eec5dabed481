package models

import "time"

// EntityKind names the three locally cached entity types.
type EntityKind string

const (
	EntityTask  EntityKind = "task"
	EntityList  EntityKind = "list"
	EntityLabel EntityKind = "label"
)

// EntityKinds lists every kind in a stable order.
var EntityKinds = []EntityKind{EntityList, EntityLabel, EntityTask}

// Task представляет задачу пользователя.
type Task struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	ParentID    *Ref       `json:"parent_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	LabelIDs    []Ref      `json:"label_ids,omitempty"`
	ID          Ref        `json:"id"`
	ListID      Ref        `json:"list_id"`
	Priority    int        `json:"priority"` // 0 (none) .. 4 (urgent)
	UserID      int64      `json:"-"`        // владелец, только на сервере
	Completed   bool       `json:"completed"`
	DueHasTime  bool       `json:"due_has_time,omitempty"` // false = due is a calendar day
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	if t.DueAt != nil {
		v := *t.DueAt
		c.DueAt = &v
	}
	if t.ParentID != nil {
		v := *t.ParentID
		c.ParentID = &v
	}
	if t.LabelIDs != nil {
		c.LabelIDs = append([]Ref(nil), t.LabelIDs...)
	}
	return &c
}

// SetCompleted flips completion and keeps CompletedAt consistent with it.
func (t *Task) SetCompleted(completed bool, at time.Time) {
	t.Completed = completed
	if completed {
		at = at.UTC()
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

// List представляет список задач.
type List struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	ID        Ref       `json:"id"`
	UserID    int64     `json:"-"`
}

// Label представляет метку задачи.
type Label struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	ID        Ref       `json:"id"`
	UserID    int64     `json:"-"`
}
