package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
)

// alias value: 8 bytes server id, 8 bytes confirmation time in unix nanos
const aliasValueLen = 16

func encodeAlias(id int64, at time.Time) []byte {
	value := make([]byte, aliasValueLen)
	binary.BigEndian.PutUint64(value[:8], uint64(id))
	binary.BigEndian.PutUint64(value[8:], uint64(at.UnixNano()))
	return value
}

func decodeAlias(value []byte) (int64, time.Time, error) {
	if len(value) != aliasValueLen {
		return 0, time.Time{}, fmt.Errorf("malformed alias value of %d bytes", len(value))
	}
	id := int64(binary.BigEndian.Uint64(value[:8]))
	at := time.Unix(0, int64(binary.BigEndian.Uint64(value[8:]))).UTC()
	return id, at, nil
}

// SaveAliases stores confirmed placeholders in one transaction
func (s *Storage) SaveAliases(ctx context.Context, aliases map[uuid.UUID]int64, at time.Time) error {
	if len(aliases) == 0 {
		return nil
	}
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketAliases)
		if err != nil {
			return err
		}
		for local, id := range aliases {
			if err := b.Put([]byte(local.String()), encodeAlias(id, at)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	return nil
}

// ListAliases returns every remembered placeholder
func (s *Storage) ListAliases(ctx context.Context) (map[uuid.UUID]int64, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	aliases := make(map[uuid.UUID]int64)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketAliases)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			local, err := uuid.ParseBytes(k)
			if err != nil {
				return fmt.Errorf("malformed alias key %q: %w", k, err)
			}
			id, _, err := decodeAlias(v)
			if err != nil {
				return err
			}
			aliases[local] = id
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	return aliases, nil
}

// PruneAliases removes placeholders confirmed before the given time
func (s *Storage) PruneAliases(ctx context.Context, before time.Time) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketAliases)
		if err != nil {
			return err
		}

		// Удалять во время ForEach нельзя, собираем ключи
		var stale [][]byte
		err = b.ForEach(func(k, v []byte) error {
			_, at, err := decodeAlias(v)
			if err != nil || at.Before(before) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune aliases: %w", err)
	}
	return removed, nil
}
