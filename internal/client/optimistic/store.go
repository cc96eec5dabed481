// Package optimistic holds the in-memory view the user sees: confirmed
// entities with every not yet confirmed action projected on top.
package optimistic

import (
	"sort"
	"sync"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// state is one consistent set of entities keyed by Ref.String()
type state struct {
	tasks  map[string]*models.Task
	lists  map[string]*models.List
	labels map[string]*models.Label
}

func newState() *state {
	return &state{
		tasks:  make(map[string]*models.Task),
		lists:  make(map[string]*models.List),
		labels: make(map[string]*models.Label),
	}
}

func stateFromSnapshot(s *storage.Snapshot) *state {
	st := newState()
	if s == nil {
		return st
	}
	for _, t := range s.Tasks {
		st.tasks[t.ID.String()] = t.Clone()
	}
	for _, l := range s.Lists {
		c := *l
		st.lists[l.ID.String()] = &c
	}
	for _, l := range s.Labels {
		c := *l
		st.labels[l.ID.String()] = &c
	}
	return st
}

// Store is the optimistic entity store. Only the Projector and the sync
// manager write to it; everything else reads snapshots.
type Store struct {
	st          *state
	subscribers map[int]func()
	nextSub     int
	mu          sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		st:          newState(),
		subscribers: make(map[int]func()),
	}
}

// Subscribe registers fn to be called after every change. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// mutate runs fn under the write lock and notifies subscribers once
func (s *Store) mutate(fn func(st *state) error) error {
	s.mu.Lock()
	err := fn(s.st)
	subs := make([]func(), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub()
	}
	return err
}

// replace swaps the whole state at once
func (s *Store) replace(st *state) {
	_ = s.mutate(func(cur *state) error {
		*cur = *st
		return nil
	})
}

// Task returns a copy of the task.
func (s *Store) Task(ref models.Ref) (*models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.st.tasks[ref.String()]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// List returns a copy of the list.
func (s *Store) List(ref models.Ref) (*models.List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.st.lists[ref.String()]
	if !ok {
		return nil, false
	}
	c := *l
	return &c, true
}

// Label returns a copy of the label.
func (s *Store) Label(ref models.Ref) (*models.Label, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.st.labels[ref.String()]
	if !ok {
		return nil, false
	}
	c := *l
	return &c, true
}

// Snapshot returns copies of every entity in a stable order.
func (s *Store) Snapshot() *storage.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &storage.Snapshot{
		Tasks:  make([]*models.Task, 0, len(s.st.tasks)),
		Lists:  make([]*models.List, 0, len(s.st.lists)),
		Labels: make([]*models.Label, 0, len(s.st.labels)),
	}
	for _, t := range s.st.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
	}
	for _, l := range s.st.lists {
		c := *l
		snap.Lists = append(snap.Lists, &c)
	}
	for _, l := range s.st.labels {
		c := *l
		snap.Labels = append(snap.Labels, &c)
	}

	sort.Slice(snap.Tasks, func(i, j int) bool {
		a, b := snap.Tasks[i], snap.Tasks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	sort.Slice(snap.Lists, func(i, j int) bool {
		a, b := snap.Lists[i], snap.Lists[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	sort.Slice(snap.Labels, func(i, j int) bool {
		return snap.Labels[i].Name < snap.Labels[j].Name
	})
	return snap
}
