package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeaseStorage stores named leases shared by every process that opens the
// same database file.
type LeaseStorage interface {
	// AcquireLease takes the lease for holder if it is free, expired or
	// already held by holder. It never waits: a live foreign lease returns
	// ErrLockHeld.
	AcquireLease(ctx context.Context, name string, holder uuid.UUID, ttl time.Duration, now time.Time) error

	// ReleaseLease frees the lease if holder still owns it.
	ReleaseLease(ctx context.Context, name string, holder uuid.UUID) error
}

// Lease is the persisted lease record.
type Lease struct {
	ExpiresAt time.Time `json:"expires_at"`
	Holder    uuid.UUID `json:"holder"`
}
