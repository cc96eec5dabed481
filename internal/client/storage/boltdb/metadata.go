package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// metadata keys: "last_fetched:<kind>"
func lastFetchedKey(kind models.EntityKind) []byte {
	return []byte("last_fetched:" + string(kind))
}

// SetLastFetched saves when entities of a kind were last fetched from the server
func (s *Storage) SetLastFetched(ctx context.Context, kind models.EntityKind, at time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		// Конвертируем int64 в bytes
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, uint64(at.UnixNano()))

		if err := b.Put(lastFetchedKey(kind), value); err != nil {
			return fmt.Errorf("failed to save last fetched timestamp: %w", err)
		}
		return nil
	})
}

// GetLastFetched returns the zero time if the kind was never fetched
func (s *Storage) GetLastFetched(ctx context.Context, kind models.EntityKind) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var at time.Time
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		value := b.Get(lastFetchedKey(kind))
		if value == nil {
			// Ещё ни разу не загружали
			return nil
		}
		at = time.Unix(0, int64(binary.BigEndian.Uint64(value))).UTC()
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last fetched timestamp: %w", err)
	}

	return at, nil
}

// IsStale reports whether the cache of a kind is older than threshold
func (s *Storage) IsStale(ctx context.Context, kind models.EntityKind, now time.Time, threshold time.Duration) (bool, error) {
	at, err := s.GetLastFetched(ctx, kind)
	if err != nil {
		return false, err
	}
	if at.IsZero() {
		return true, nil
	}
	return now.Sub(at) > threshold, nil
}
