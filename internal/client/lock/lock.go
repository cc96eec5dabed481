// Package lock makes sure only one sync manager drains the shared action
// queue at a time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/client/storage"
)

// DefaultTTL is how long a lease lives without being extended. It stays well
// above the API client timeout so one slow request cannot outlive the lease.
const DefaultTTL = 2 * time.Minute

// DrainLease is the lease name used for queue draining.
const DrainLease = "drain"

// Lock combines an in-process mutex with a lease in the shared store.
// Acquisition never blocks: a contested lock is reported as not acquired.
type Lock struct {
	leases storage.LeaseStorage
	now    func() time.Time
	name   string
	ttl    time.Duration
	holder uuid.UUID
	mu     sync.Mutex
}

// New creates a lock for one holder. Every manager instance gets its own holder id.
func New(leases storage.LeaseStorage, name string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{
		leases: leases,
		name:   name,
		ttl:    ttl,
		holder: uuid.New(),
		now:    time.Now,
	}
}

// Holder returns the lease holder id of this lock.
func (l *Lock) Holder() uuid.UUID {
	return l.holder
}

// TryAcquire takes the lock if nobody else holds it. When ok is true the
// caller must call release exactly once.
func (l *Lock) TryAcquire(ctx context.Context) (release func(), ok bool, err error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}

	err = l.leases.AcquireLease(ctx, l.name, l.holder, l.ttl, l.now())
	if errors.Is(err, storage.ErrLockHeld) {
		l.mu.Unlock()
		return nil, false, nil
	}
	if err != nil {
		l.mu.Unlock()
		return nil, false, fmt.Errorf("failed to acquire %s lease: %w", l.name, err)
	}

	var once sync.Once
	release = func() {
		once.Do(func() {
			// Аренда истечет сама, если освободить ее не удалось
			_ = l.leases.ReleaseLease(context.Background(), l.name, l.holder)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}

// Extend renews a held lease. Must only be called between TryAcquire and release.
func (l *Lock) Extend(ctx context.Context) error {
	if err := l.leases.AcquireLease(ctx, l.name, l.holder, l.ttl, l.now()); err != nil {
		return fmt.Errorf("failed to extend %s lease: %w", l.name, err)
	}
	return nil
}
