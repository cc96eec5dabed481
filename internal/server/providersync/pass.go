package providersync

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
)

// decision is what the pull step concluded for a mapped task
type decision int

const (
	undecided decision = iota
	// keepBoth - значения совпадают, писать некуда
	keepBoth
	pulled
	// localWins - на первой синхронизации локальная версия новее
	localWins
	conflicted
)

// pass holds the state of one SyncForUser run
type pass struct {
	store    Store
	adapter  providers.Adapter
	labels   providers.LabelAdapter // nil, если у провайдера нет меток
	log      *slog.Logger
	out      *Outcome
	lastSync *time.Time
	start    time.Time
	provider models.Provider
	userID   int64
	caps     providers.Capabilities

	listByExt   map[string]int64 // внешний id списка -> локальный
	listExt     map[int64]string
	labelByName map[string]int64 // имя метки у провайдера -> локальный id
	labelName   map[int64]string

	tasks     map[int64]*models.Task
	taskOrder []int64
	taskExt   map[int64]string
	decisions map[int64]decision
}

func newPass(e *Engine, adapter providers.Adapter, log *slog.Logger, userID int64, lastSync *time.Time, start time.Time) *pass {
	p := &pass{
		store:       e.store,
		adapter:     adapter,
		log:         log,
		out:         &Outcome{},
		lastSync:    lastSync,
		start:       start,
		provider:    adapter.Provider(),
		userID:      userID,
		caps:        adapter.Capabilities(),
		listByExt:   make(map[string]int64),
		listExt:     make(map[int64]string),
		labelByName: make(map[string]int64),
		labelName:   make(map[int64]string),
		tasks:       make(map[int64]*models.Task),
		taskExt:     make(map[int64]string),
		decisions:   make(map[int64]decision),
	}
	if la, ok := adapter.(providers.LabelAdapter); ok && p.caps.Labels {
		p.labels = la
	}
	return p
}

func (p *pass) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during sync: %v", r)
		}
	}()

	snap, err := p.adapter.FetchSnapshot(ctx, p.lastSync)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	p.log.Debug("Remote snapshot fetched",
		"lists", len(snap.Lists),
		"labels", len(snap.Labels),
		"tasks", len(snap.Tasks),
	)

	if err := p.reconcileLists(ctx, snap.Lists); err != nil {
		return err
	}
	if p.labels != nil {
		if err := p.reconcileLabels(ctx, snap.Labels); err != nil {
			return err
		}
	}
	if err := p.pullTasks(ctx, snap.Tasks); err != nil {
		return err
	}
	return p.pushTasks(ctx)
}

// changedSince reports whether an entity stamped at updated changed after the last pass
func changedSince(updated time.Time, lastSync *time.Time) bool {
	return lastSync == nil || updated.After(*lastSync)
}

// remoteChanged reports whether the remote side changed after the last pass.
// The stamp recorded at our own last write does not count as a change.
func remoteChanged(updated time.Time, lastSync, recorded *time.Time) bool {
	if !changedSince(updated, lastSync) {
		return false
	}
	return recorded == nil || updated.After(*recorded)
}

// sameTask compares the normalized fields that decide whether two sides conflict
func (p *pass) sameTask(a, b *models.Task) bool {
	return sameTask(a, b, p.caps)
}

// sameExtras compares the fields merged without conflicts
func (p *pass) sameExtras(a, b *models.Task) bool {
	return sameExtras(a, b, p.caps)
}

// sameTask: title, description, completion, due and list
func sameTask(a, b *models.Task, caps providers.Capabilities) bool {
	if a.Title != b.Title || a.Description != b.Description || a.Completed != b.Completed {
		return false
	}
	if a.ListID != b.ListID {
		return false
	}
	return sameDue(a, b, caps.DueTime)
}

// sameExtras: parent, plus priority and labels where the provider stores them
func sameExtras(a, b *models.Task, caps providers.Capabilities) bool {
	if !sameRef(a.ParentID, b.ParentID) {
		return false
	}
	if caps.Priority && a.Priority != b.Priority {
		return false
	}
	if caps.Labels && !sameRefSet(a.LabelIDs, b.LabelIDs) {
		return false
	}
	return true
}

// sameDue compares due instants and precision; without time support only the day counts
func sameDue(a, b *models.Task, withTime bool) bool {
	if a.DueAt == nil || b.DueAt == nil {
		return a.DueAt == nil && b.DueAt == nil
	}
	if !withTime {
		return dayOf(*a.DueAt).Equal(dayOf(*b.DueAt))
	}
	return a.DueHasTime == b.DueHasTime && a.DueAt.Equal(*b.DueAt)
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func sameRef(a, b *models.Ref) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameRefSet(a, b []models.Ref) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[models.Ref]int, len(a))
	for _, r := range a {
		seen[r]++
	}
	for _, r := range b {
		if seen[r] == 0 {
			return false
		}
		seen[r]--
	}
	return true
}

// parentsFirst orders items so that a parent present in items precedes its children
func parentsFirst[T any](items []T, key, parentKey func(T) string) []T {
	byKey := make(map[string]T, len(items))
	for _, it := range items {
		byKey[key(it)] = it
	}

	depth := make(map[string]int, len(items))
	var depthOf func(k string, hops int) int
	depthOf = func(k string, hops int) int {
		if d, ok := depth[k]; ok {
			return d
		}
		it, ok := byKey[k]
		// Родителя нет среди элементов (или цикл): ребенок на верхнем уровне
		if !ok || hops > len(items) {
			return -1
		}
		d := 0
		if pk := parentKey(it); pk != "" {
			d = depthOf(pk, hops+1) + 1
		}
		depth[k] = d
		return d
	}

	out := slices.Clone(items)
	for _, it := range out {
		depthOf(key(it), 0)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(depth[key(a)], depth[key(b)])
	})
	return out
}
