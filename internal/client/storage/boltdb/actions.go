package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

// tsKey строит ключ вторичного индекса: big-endian timestamp + id.
// Лексикографический порядок ключей совпадает с порядком очереди.
func tsKey(a *models.PendingAction) []byte {
	key := make([]byte, 8+16)
	binary.BigEndian.PutUint64(key[:8], uint64(a.Timestamp))
	copy(key[8:], a.ID[:])
	return key
}

func putAction(actions, index *bbolt.Bucket, a *models.PendingAction) error {
	id := []byte(a.ID.String())

	// При перезаписи убираем старую запись индекса, если timestamp изменился
	if prev := actions.Get(id); prev != nil {
		var old models.PendingAction
		if err := json.Unmarshal(prev, &old); err == nil && old.Timestamp != a.Timestamp {
			if err := index.Delete(tsKey(&old)); err != nil {
				return fmt.Errorf("failed to delete index entry: %w", err)
			}
		}
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	if err := actions.Put(id, data); err != nil {
		return fmt.Errorf("failed to save action: %w", err)
	}
	if err := index.Put(tsKey(a), id); err != nil {
		return fmt.Errorf("failed to save index entry: %w", err)
	}
	return nil
}

func deleteAction(actions, index *bbolt.Bucket, id uuid.UUID) error {
	key := []byte(id.String())
	data := actions.Get(key)
	if data == nil {
		return nil
	}

	var a models.PendingAction
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("failed to unmarshal action: %w", err)
	}
	if err := index.Delete(tsKey(&a)); err != nil {
		return fmt.Errorf("failed to delete index entry: %w", err)
	}
	if err := actions.Delete(key); err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	return nil
}

// updateQueue открывает транзакцию записи над обоими бакетами очереди
func (s *Storage) updateQueue(fn func(actions, index *bbolt.Bucket) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		actions, err := bucket(tx, bucketActions)
		if err != nil {
			return err
		}
		index, err := bucket(tx, bucketActionsByTS)
		if err != nil {
			return err
		}
		return fn(actions, index)
	})
}

// EnqueueActions stores actions atomically
func (s *Storage) EnqueueActions(ctx context.Context, actions []*models.PendingAction) error {
	if len(actions) == 0 {
		return nil
	}
	err := s.updateQueue(func(b, index *bbolt.Bucket) error {
		for _, a := range actions {
			if err := putAction(b, index, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue actions: %w", err)
	}
	return nil
}

// GetAction retrieves a queued action by ID
func (s *Storage) GetAction(ctx context.Context, id uuid.UUID) (*models.PendingAction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var action *models.PendingAction
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketActions)
		if err != nil {
			return err
		}

		data := b.Get([]byte(id.String()))
		if data == nil {
			return storage.ErrActionNotFound
		}

		action = &models.PendingAction{}
		if err := json.Unmarshal(data, action); err != nil {
			return fmt.Errorf("failed to unmarshal action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return action, nil
}

// ListActions returns all queued actions ordered by timestamp
func (s *Storage) ListActions(ctx context.Context) ([]*models.PendingAction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var actions []*models.PendingAction
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketActions)
		if err != nil {
			return err
		}
		index, err := bucket(tx, bucketActionsByTS)
		if err != nil {
			return err
		}

		return index.ForEach(func(_, id []byte) error {
			data := b.Get(id)
			if data == nil {
				// Висячая запись индекса, пропускаем
				return nil
			}
			var a models.PendingAction
			if err := json.Unmarshal(data, &a); err != nil {
				return fmt.Errorf("failed to unmarshal action %s: %w", id, err)
			}
			actions = append(actions, &a)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	return actions, nil
}

// UpdateAction replaces a stored action
func (s *Storage) UpdateAction(ctx context.Context, action *models.PendingAction) error {
	return s.UpdateActions(ctx, []*models.PendingAction{action})
}

// UpdateActions replaces several stored actions in one transaction.
// Returns ErrActionNotFound if any of them was removed meanwhile.
func (s *Storage) UpdateActions(ctx context.Context, actions []*models.PendingAction) error {
	if len(actions) == 0 {
		return nil
	}
	return s.updateQueue(func(b, index *bbolt.Bucket) error {
		for _, a := range actions {
			if b.Get([]byte(a.ID.String())) == nil {
				return fmt.Errorf("%w: %s", storage.ErrActionNotFound, a.ID)
			}
			if err := putAction(b, index, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAction deletes a queued action
func (s *Storage) RemoveAction(ctx context.Context, id uuid.UUID) error {
	return s.RemoveActions(ctx, []uuid.UUID{id})
}

// RemoveActions deletes several queued actions in one transaction
func (s *Storage) RemoveActions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.updateQueue(func(b, index *bbolt.Bucket) error {
		for _, id := range ids {
			if err := deleteAction(b, index, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove actions: %w", err)
	}
	return nil
}

// CountActions returns the number of queued actions
func (s *Storage) CountActions(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketActions)
		if err != nil {
			return err
		}
		n = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return n, nil
}
