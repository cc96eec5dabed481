// Package queue buffers dispatched actions in memory and persists them to the
// durable action log in batches.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("flusher is closed")

// Config controls when buffered actions are written.
type Config struct {
	// MaxBatch is the buffer size that triggers an immediate flush
	MaxBatch int
	// IdleDelay is how long the buffer may sit without new additions
	IdleDelay time.Duration
}

// DefaultConfig returns the default flush policy.
func DefaultConfig() Config {
	return Config{
		MaxBatch:  100,
		IdleDelay: 200 * time.Millisecond,
	}
}

// Flusher collects actions and writes them to storage when the buffer reaches
// MaxBatch or after IdleDelay without additions, whichever comes first.
type Flusher struct {
	log    storage.ActionLog
	logger *slog.Logger
	kick   chan struct{}
	done   chan struct{}
	exited chan struct{}
	buf    []*models.PendingAction
	cfg    Config

	mu      sync.Mutex // защищает buf и closed
	flushMu sync.Mutex // сериализует записи в хранилище
	closed  bool
	once    sync.Once
}

// New creates a flusher and starts its background loop. Close must be called
// to stop the loop.
func New(log storage.ActionLog, cfg Config, logger *slog.Logger) *Flusher {
	def := DefaultConfig()
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = def.MaxBatch
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = def.IdleDelay
	}

	f := &Flusher{
		log:    log,
		logger: logger,
		cfg:    cfg,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go f.loop()
	return f
}

// Add buffers actions. The caller treats them as dispatched; they become
// durable on the next flush.
func (f *Flusher) Add(actions ...*models.PendingAction) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.buf = append(f.buf, actions...)
	f.mu.Unlock()

	select {
	case f.kick <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns copies of the buffered, not yet persisted actions.
func (f *Flusher) Pending() []*models.PendingAction {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*models.PendingAction, 0, len(f.buf))
	for _, a := range f.buf {
		out = append(out, a.Clone())
	}
	return out
}

// Flush writes everything buffered so far.
func (f *Flusher) Flush(ctx context.Context) error {
	f.flushMu.Lock()
	defer f.flushMu.Unlock()

	f.mu.Lock()
	batch := append([]*models.PendingAction(nil), f.buf...)
	f.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := f.log.EnqueueActions(ctx, batch); err != nil {
		return fmt.Errorf("failed to persist %d actions: %w", len(batch), err)
	}

	// Действия остаются в буфере до успешной записи, поэтому Pending их видит.
	// Add только дописывает в конец, так что записанные лежат в начале.
	f.mu.Lock()
	f.buf = append([]*models.PendingAction(nil), f.buf[len(batch):]...)
	f.mu.Unlock()

	f.logger.Debug("Flushed actions", "count", len(batch))
	return nil
}

// Close stops the background loop and performs a final flush.
func (f *Flusher) Close(ctx context.Context) error {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()

		close(f.done)
		<-f.exited
	})
	return f.Flush(ctx)
}

func (f *Flusher) loop() {
	defer close(f.exited)

	idle := time.NewTimer(f.cfg.IdleDelay)
	idle.Stop()
	defer idle.Stop()

	for {
		select {
		case <-f.done:
			return

		case <-f.kick:
			f.mu.Lock()
			full := len(f.buf) >= f.cfg.MaxBatch
			f.mu.Unlock()

			if full {
				idle.Stop()
				f.flushInBackground(idle)
				continue
			}
			// Каждое добавление откладывает запись на IdleDelay
			idle.Reset(f.cfg.IdleDelay)

		case <-idle.C:
			f.flushInBackground(idle)
		}
	}
}

func (f *Flusher) flushInBackground(idle *time.Timer) {
	if err := f.Flush(context.Background()); err != nil {
		// Действия остаются в буфере, пробуем снова после паузы
		f.logger.Error("Failed to flush action queue", "error", err)
		idle.Reset(f.cfg.IdleDelay)
	}
}
