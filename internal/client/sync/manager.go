package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/client/lock"
	"github.com/iudanet/tasksync/internal/client/optimistic"
	"github.com/iudanet/tasksync/internal/client/queue"
	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/clock"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/validation"
)

//go:generate moq -out executor_mock.go . Executor

// Executor runs one action against the server's action registry.
// Domain failures are reported in the Result; err means the action was not
// delivered or its answer was lost.
type Executor interface {
	Execute(ctx context.Context, action *models.PendingAction) (models.Result, error)
}

// Fetcher loads the confirmed server state.
type Fetcher interface {
	FetchLists(ctx context.Context) ([]*models.List, error)
	FetchTasks(ctx context.Context) ([]*models.Task, error)
	FetchLabels(ctx context.Context) ([]*models.Label, error)
}

// Storage is everything the manager needs from the local database.
type Storage interface {
	storage.ActionLog
	storage.EntityStore
	storage.MetadataStorage
	storage.LeaseStorage
	storage.AliasStorage
}

var (
	// ErrActionNotFailed is returned by Retry for actions that are not failed
	ErrActionNotFailed = errors.New("action is not failed")
	// ErrNoConflict is returned by ResolveConflict for actions without a conflict
	ErrNoConflict = errors.New("action has no conflict")
	// ErrMergeDataRequired is returned by ResolveConflict when merge has no data
	ErrMergeDataRequired = errors.New("merge resolution requires merged data")
)

// State is the drain state machine position.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateError   State = "error"
)

// Status is a point-in-time view of the manager.
type Status struct {
	LastDrain time.Time
	State     State
	LastError string
}

// Config controls the manager.
type Config struct {
	Flush queue.Config
	// StaleAfter is the age after which Refresh refetches the server state
	StaleAfter time.Duration
	// LockTTL is the lifetime of the drain lease
	LockTTL time.Duration
	// ContendedRetry is how long the background loop waits before trying
	// again when another instance holds the drain lock
	ContendedRetry time.Duration
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		Flush:          queue.DefaultConfig(),
		StaleAfter:     storage.DefaultStaleAfter,
		LockTTL:        lock.DefaultTTL,
		ContendedRetry: time.Second,
	}
}

// ConflictChoice selects how a conflicted action is resolved.
type ConflictChoice string

const (
	// ChooseServer discards the local action and adopts the server data
	ChooseServer ConflictChoice = "server"
	// ChooseLocal re-queues the local action without its prior-state stamp
	ChooseLocal ConflictChoice = "local"
	// ChooseMerge splices user-merged fields into the action and re-queues it
	ChooseMerge ConflictChoice = "merge"
)

// Resolution is the user's decision for a conflicted action.
type Resolution struct {
	Choice ConflictChoice
	Merged []byte // JSON object, only for ChooseMerge
}

//go:generate moq -out manager_mock.go . Manager

// Manager owns dispatch and the drain of the local action queue.
type Manager interface {
	// Dispatch validates the payload, projects it optimistically and queues it.
	// Execution happens later; its outcome is recorded on the action.
	Dispatch(ctx context.Context, payload models.Payload) (*models.PendingAction, error)

	// ProcessQueue runs one drain pass if the drain lock is free.
	ProcessQueue(ctx context.Context) (*DrainResult, error)

	// Retry puts a failed action back into the queue
	Retry(ctx context.Context, id uuid.UUID) error

	// Dismiss drops an action and its optimistic effect
	Dismiss(ctx context.Context, id uuid.UUID) error

	// ResolveConflict applies the user's decision to a conflicted action
	ResolveConflict(ctx context.Context, id uuid.UUID, resolution Resolution) error

	// Refresh reloads the confirmed state from the server when it is stale or force is set.
	// Reports whether a fetch happened.
	Refresh(ctx context.Context, force bool) (bool, error)

	// Queue lists queued actions in order, including not yet persisted ones
	Queue(ctx context.Context) ([]*models.PendingAction, error)

	// Store returns the optimistic view
	Store() *optimistic.Store

	State() Status

	// Start loads persisted state and runs the background drain loop
	Start(ctx context.Context) error

	// Close stops the loop and flushes buffered actions
	Close(ctx context.Context) error
}

type manager struct {
	storage   Storage
	executor  Executor
	fetcher   Fetcher
	logger    *slog.Logger
	flusher   *queue.Flusher
	store     *optimistic.Store
	projector *optimistic.Projector
	lock      *lock.Lock
	clock     *clock.Monotonic
	now       func() time.Time
	signal    chan struct{}
	stop      chan struct{}
	stopped   chan struct{}
	retry     *time.Timer
	status    Status
	cfg       Config
	inFlight  uuid.UUID

	mu        stdsync.Mutex // status, inFlight, retry
	queueMu   stdsync.Mutex // сериализует дренаж и пользовательские операции над очередью
	startOnce stdsync.Once
	closeOnce stdsync.Once
}

// NewManager creates a sync manager over an explicitly opened storage.
func NewManager(store Storage, executor Executor, fetcher Fetcher, cfg Config, logger *slog.Logger) Manager {
	def := DefaultConfig()
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	if cfg.ContendedRetry <= 0 {
		cfg.ContendedRetry = def.ContendedRetry
	}

	view := optimistic.NewStore()
	return &manager{
		storage:   store,
		executor:  executor,
		fetcher:   fetcher,
		logger:    logger,
		flusher:   queue.New(store, cfg.Flush, logger),
		store:     view,
		projector: optimistic.NewProjector(view),
		lock:      lock.New(store, lock.DrainLease, cfg.LockTTL),
		clock:     clock.New(),
		now:       time.Now,
		signal:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
		status:    Status{State: StateIdle},
		cfg:       cfg,
	}
}

func (m *manager) Store() *optimistic.Store {
	return m.store
}

func (m *manager) State() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *manager) setState(state State, lastErr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = state
	m.status.LastError = lastErr
	if state != StateSyncing {
		m.status.LastDrain = m.now()
	}
}

// Dispatch implements Manager.
func (m *manager) Dispatch(ctx context.Context, payload models.Payload) (*models.PendingAction, error) {
	if models.IsCreate(payload.Kind()) && models.Target(payload).IsZero() {
		setCreateRef(payload, models.NewLocalRef())
	}
	// Заглушка могла быть подтверждена, пока действие формировалось
	if models.HasLocalRefs(payload) {
		aliases, err := m.storage.ListAliases(ctx)
		if err != nil {
			return nil, err
		}
		models.ResolveRefs(payload, aliases)
	}
	if err := validation.ValidatePayload(payload); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", payload.Kind(), err)
	}

	// Штамп "ожидаемого состояния" берется из подтвержденных сервером данных
	if models.Expectation(payload) == nil {
		if stamp := m.confirmedUpdatedAt(ctx, payload); stamp != nil {
			models.SetExpectation(payload, stamp)
		}
	}

	raw, err := models.EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	action := &models.PendingAction{
		ID:        uuid.New(),
		Kind:      payload.Kind(),
		Payload:   raw,
		Timestamp: m.clock.Tick(),
		Status:    models.ActionPending,
	}
	if target := models.Target(payload); models.IsCreate(action.Kind) && target.IsLocal() {
		action.TempRef = &target
	}

	if err := m.projector.Apply(action); err != nil {
		// Сервер решит сам; проекция просто не меняется
		m.logger.Debug("Optimistic projection skipped", "action_id", action.ID, "kind", action.Kind, "error", err)
	}

	if err := m.flusher.Add(action); err != nil {
		return nil, fmt.Errorf("failed to queue action: %w", err)
	}
	m.kick()

	m.logger.Debug("Action dispatched", "action_id", action.ID, "kind", action.Kind)
	return action.Clone(), nil
}

// setCreateRef assigns the placeholder of a create payload
func setCreateRef(payload models.Payload, ref models.Ref) {
	switch p := payload.(type) {
	case *models.CreateTaskPayload:
		p.Ref = ref
	case *models.CreateListPayload:
		p.Ref = ref
	case *models.CreateLabelPayload:
		p.Ref = ref
	}
}

// resolveAction rewrites confirmed placeholders in a queued action.
// Reports whether the payload changed.
func resolveAction(a *models.PendingAction, aliases map[uuid.UUID]int64) bool {
	if len(aliases) == 0 {
		return false
	}
	payload, err := models.DecodePayload(a.Kind, a.Payload)
	if err != nil || !models.ResolveRefs(payload, aliases) {
		return false
	}
	raw, err := models.EncodePayload(payload)
	if err != nil {
		return false
	}
	a.Payload = raw
	return true
}

// confirmedUpdatedAt returns the server-confirmed updated_at of the payload
// target, nil when the target is unknown or not yet confirmed
func (m *manager) confirmedUpdatedAt(ctx context.Context, payload models.Payload) *time.Time {
	if models.IsCreate(payload.Kind()) {
		return nil
	}
	target := models.Target(payload)
	if target.IsLocal() || target.IsZero() {
		return nil
	}

	var at time.Time
	switch models.EntityKindOf(payload.Kind()) {
	case models.EntityTask:
		task, err := m.storage.GetTask(ctx, target)
		if err != nil {
			return nil
		}
		at = task.UpdatedAt
	case models.EntityList:
		lists, err := m.storage.ListLists(ctx)
		if err != nil {
			return nil
		}
		for _, l := range lists {
			if l.ID == target {
				at = l.UpdatedAt
			}
		}
	case models.EntityLabel:
		labels, err := m.storage.ListLabels(ctx)
		if err != nil {
			return nil
		}
		for _, l := range labels {
			if l.ID == target {
				at = l.UpdatedAt
			}
		}
	}
	if at.IsZero() {
		return nil
	}
	return &at
}

// Queue implements Manager.
func (m *manager) Queue(ctx context.Context) ([]*models.PendingAction, error) {
	stored, err := m.storage.ListActions(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(stored))
	for _, a := range stored {
		seen[a.ID] = true
	}
	// Буфер флашера еще не записан, но уже считается отправленным
	for _, a := range m.flusher.Pending() {
		if !seen[a.ID] {
			stored = append(stored, a)
		}
	}
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].Timestamp < stored[j].Timestamp
	})

	m.mu.Lock()
	inFlight := m.inFlight
	m.mu.Unlock()
	for _, a := range stored {
		if a.ID == inFlight {
			a.Status = models.ActionProcessing
		}
	}
	return stored, nil
}

// Retry implements Manager.
func (m *manager) Retry(ctx context.Context, id uuid.UUID) error {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	action, err := m.getAction(ctx, id)
	if err != nil {
		return err
	}
	if action.Status != models.ActionFailed {
		return fmt.Errorf("%w: %s", ErrActionNotFailed, id)
	}

	action.Status = models.ActionPending
	action.Error = ""
	action.Conflict = nil
	action.RetryCount++
	if err := m.storage.UpdateAction(ctx, action); err != nil {
		return fmt.Errorf("failed to update action: %w", err)
	}

	m.logger.Info("Action queued for retry", "action_id", id, "retry_count", action.RetryCount)
	m.kick()
	return nil
}

// Dismiss implements Manager.
func (m *manager) Dismiss(ctx context.Context, id uuid.UUID) error {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	if _, err := m.getAction(ctx, id); err != nil {
		return err
	}
	if err := m.storage.RemoveAction(ctx, id); err != nil {
		return fmt.Errorf("failed to remove action: %w", err)
	}

	m.logger.Info("Action dismissed", "action_id", id)
	return m.rebase(ctx)
}

// getAction flushes the buffer so the action can be read back from storage
func (m *manager) getAction(ctx context.Context, id uuid.UUID) (*models.PendingAction, error) {
	if err := m.flusher.Flush(ctx); err != nil {
		return nil, err
	}
	action, err := m.storage.GetAction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get action %s: %w", id, err)
	}
	return action, nil
}

// rebase rebuilds the optimistic view from confirmed entities and the queue
func (m *manager) rebase(ctx context.Context) error {
	confirmed, err := m.confirmedSnapshot(ctx)
	if err != nil {
		return err
	}
	queued, err := m.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to list actions: %w", err)
	}
	aliases, err := m.storage.ListAliases(ctx)
	if err != nil {
		return err
	}
	// Queue отдает копии, их можно переписывать
	for _, a := range queued {
		resolveAction(a, aliases)
	}

	if skipped := m.projector.Rebase(confirmed, queued); skipped > 0 {
		m.logger.Debug("Some queued actions were not projected", "count", skipped)
	}
	return nil
}

func (m *manager) confirmedSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	tasks, err := m.storage.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	lists, err := m.storage.ListLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	labels, err := m.storage.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	return &storage.Snapshot{Tasks: tasks, Lists: lists, Labels: labels}, nil
}

// kick wakes the drain loop without blocking
func (m *manager) kick() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Start implements Manager.
func (m *manager) Start(ctx context.Context) error {
	var err error
	m.startOnce.Do(func() {
		actions, listErr := m.storage.ListActions(ctx)
		if listErr != nil {
			err = fmt.Errorf("failed to load queue: %w", listErr)
			close(m.stopped)
			return
		}
		// Часы не должны выдать метку раньше уже сохраненных действий
		for _, a := range actions {
			m.clock.Observe(a.Timestamp)
		}
		if err = m.rebase(ctx); err != nil {
			close(m.stopped)
			return
		}

		go m.loop()
		// Действия прошлой сессии дренируются сразу
		m.kick()
	})
	return err
}

func (m *manager) loop() {
	defer close(m.stopped)

	for {
		select {
		case <-m.stop:
			return
		case <-m.signal:
			res, err := m.ProcessQueue(context.Background())
			if err != nil {
				m.logger.Error("Queue drain failed", "error", err)
				continue
			}
			if res.Skipped || res.LockLost {
				m.scheduleRetry()
			}
		}
	}
}

// scheduleRetry повторяет попытку дренажа, пока замок держит другой экземпляр
func (m *manager) scheduleRetry() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retry != nil {
		m.retry.Stop()
	}
	m.retry = time.AfterFunc(m.cfg.ContendedRetry, m.kick)
}

// Close implements Manager.
func (m *manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		// Если Start не вызывался, цикла нет
		m.startOnce.Do(func() { close(m.stopped) })
		close(m.stop)
		<-m.stopped

		m.mu.Lock()
		if m.retry != nil {
			m.retry.Stop()
		}
		m.mu.Unlock()
	})
	return m.flusher.Close(ctx)
}
