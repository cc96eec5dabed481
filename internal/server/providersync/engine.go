// Package providersync reconciles a user's lists, labels and tasks with a
// third-party task service.
//
// One pass pulls the remote snapshot, reconciles lists and labels, applies
// remote task changes and pushes local ones. Identity correspondence lives in
// the external entity map; only this package writes it. Mutual exclusion
// between passes is the persisted sync state row, so concurrent server
// processes never sync the same account twice.
package providersync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// DefaultLease is how long a syncing state is honored before it may be taken over
const DefaultLease = 30 * time.Minute

// Outcome statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrUnknownProvider is returned for a provider without a registered adapter
var ErrUnknownProvider = errors.New("unknown provider")

// Store is the persistence the engine needs
type Store interface {
	storage.EntityStorage
	storage.ExternalStorage
}

// ClientSource hands out HTTP clients authorized for a user's provider account
type ClientSource interface {
	Client(ctx context.Context, userID int64, provider models.Provider) (*http.Client, error)
}

// Config holds engine settings
type Config struct {
	Lease time.Duration
}

// Outcome is the result of one pass.
type Outcome struct {
	LastSyncedAt  *time.Time
	Status        string
	Error         string
	ConflictCount int
	Pulled        int
	Pushed        int
	Deleted       int
	// Busy is set when the pass was refused because another one holds the state
	Busy bool
}

// InProgress reports whether the pass was refused because another one holds the state
func (o *Outcome) InProgress() bool {
	return o.Busy
}

// Engine runs provider sync passes.
type Engine struct {
	store     Store
	clients   ClientSource
	factories map[models.Provider]providers.Factory
	logger    *slog.Logger
	now       func() time.Time
	cfg       Config
}

// NewEngine creates an engine. factories maps every supported provider to its adapter constructor.
func NewEngine(store Store, clients ClientSource, factories map[models.Provider]providers.Factory, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultLease
	}
	return &Engine{
		store:     store,
		clients:   clients,
		factories: factories,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		cfg:       cfg,
	}
}

func (e *Engine) adapter(ctx context.Context, userID int64, provider models.Provider) (providers.Adapter, error) {
	factory, ok := e.factories[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	client, err := e.clients.Client(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	return factory(client), nil
}

// SyncForUser runs one pass for the user's provider account.
//
// A pass refused because another one is running returns an error outcome
// with Busy set; see Outcome.InProgress. Work
// committed before a failure stays committed, the state flips to error and
// the cursor is not advanced.
func (e *Engine) SyncForUser(ctx context.Context, userID int64, provider models.Provider) *Outcome {
	log := e.logger.With("user_id", userID, "provider", provider)

	adapter, err := e.adapter(ctx, userID, provider)
	if err != nil {
		log.Warn("Provider sync not started", "error", err)
		return &Outcome{Status: StatusError, Error: err.Error()}
	}

	start := e.now()
	state, err := e.store.TryBeginSync(ctx, userID, provider, start, e.cfg.Lease)
	if err != nil {
		if errors.Is(err, storage.ErrSyncInProgress) {
			// Ожидаемая конкуренция, не ошибка
			log.Info("Provider sync already in progress")
			return &Outcome{Status: StatusError, Error: err.Error(), Busy: true}
		}
		log.Error("Failed to begin provider sync", "error", err)
		return &Outcome{Status: StatusError, Error: err.Error()}
	}

	p := newPass(e, adapter, log, userID, state.LastSyncedAt, start)
	err = p.run(ctx)
	if err == nil {
		err = e.store.FinishSync(ctx, userID, provider, start, start)
	}
	if err != nil {
		log.Error("Provider sync failed", "error", err)
		switch ferr := e.store.FailSync(context.WithoutCancel(ctx), userID, provider, start, err.Error()); {
		case errors.Is(ferr, storage.ErrSyncTakenOver):
			// Состояние принадлежит следующему проходу
			log.Warn("Provider sync outlived its lease")
		case ferr != nil:
			log.Error("Failed to record provider sync error", "error", ferr)
		}
		p.out.Status = StatusError
		p.out.Error = err.Error()
		p.out.LastSyncedAt = state.LastSyncedAt
		return p.out
	}

	p.out.Status = StatusOK
	p.out.LastSyncedAt = &start
	log.Info("Provider sync finished",
		"pulled", p.out.Pulled,
		"pushed", p.out.Pushed,
		"deleted", p.out.Deleted,
		"conflicts", p.out.ConflictCount,
	)
	return p.out
}

// ListConflicts returns the conflicts waiting for a decision
func (e *Engine) ListConflicts(ctx context.Context, userID int64, provider models.Provider) ([]*models.ExternalSyncConflict, error) {
	conflicts, err := e.store.ListPendingConflicts(ctx, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return conflicts, nil
}
