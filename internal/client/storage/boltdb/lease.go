package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
)

// AcquireLease takes the named lease. The check and the write happen in one
// bbolt write transaction, so two contenders can never both succeed.
func (s *Storage) AcquireLease(ctx context.Context, name string, holder uuid.UUID, ttl time.Duration, now time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketLocks)
		if err != nil {
			return err
		}

		if data := b.Get([]byte(name)); data != nil {
			var current storage.Lease
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("failed to unmarshal lease: %w", err)
			}
			// Чужая живая аренда - отказ без ожидания
			if current.Holder != holder && now.Before(current.ExpiresAt) {
				return storage.ErrLockHeld
			}
		}

		data, err := json.Marshal(storage.Lease{Holder: holder, ExpiresAt: now.Add(ttl)})
		if err != nil {
			return fmt.Errorf("failed to marshal lease: %w", err)
		}
		return b.Put([]byte(name), data)
	})
}

// ReleaseLease frees the lease if holder still owns it
func (s *Storage) ReleaseLease(ctx context.Context, name string, holder uuid.UUID) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketLocks)
		if err != nil {
			return err
		}

		data := b.Get([]byte(name))
		if data == nil {
			return nil
		}
		var current storage.Lease
		if err := json.Unmarshal(data, &current); err != nil {
			return fmt.Errorf("failed to unmarshal lease: %w", err)
		}
		if current.Holder != holder {
			// Аренду уже перехватили после истечения срока
			return nil
		}
		return b.Delete([]byte(name))
	})
}
