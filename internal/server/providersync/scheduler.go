package providersync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

//go:generate moq -out syncer_mock.go . Syncer
//go:generate moq -out keylister_mock.go . KeyLister

// Syncer runs one pass for an account
type Syncer interface {
	SyncForUser(ctx context.Context, userID int64, provider models.Provider) *Outcome
}

// KeyLister lists the linked provider accounts
type KeyLister interface {
	ListCredentialKeys(ctx context.Context) ([]storage.CredentialKey, error)
}

// Scheduler periodically syncs every linked account.
type Scheduler struct {
	syncer      Syncer
	keys        KeyLister
	logger      *slog.Logger
	interval    time.Duration
	concurrency int
}

// NewScheduler creates a scheduler running at most concurrency passes at once
func NewScheduler(syncer Syncer, keys KeyLister, interval time.Duration, concurrency int, logger *slog.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		syncer:      syncer,
		keys:        keys,
		logger:      logger,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Run syncs on every tick until ctx is done
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Provider sync scheduler started", "interval", s.interval, "concurrency", s.concurrency)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Provider sync scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Scheduled provider sync failed", "error", err)
			}
		}
	}
}

// RunOnce syncs every linked account once. A failed pass does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	keys, err := s.keys.ListCredentialKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list linked accounts: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			out := s.syncer.SyncForUser(gctx, key.UserID, key.Provider)
			switch {
			case out.InProgress():
				// Проход уже идет в другом месте
				s.logger.Debug("Scheduled sync skipped", "user_id", key.UserID, "provider", key.Provider)
			case out.Status == StatusError:
				s.logger.Warn("Scheduled sync failed", "user_id", key.UserID, "provider", key.Provider, "error", out.Error)
			}
			return nil
		})
	}
	return g.Wait()
}
