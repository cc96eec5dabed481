package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/models"
)

func entityBucket(kind models.EntityKind) ([]byte, error) {
	switch kind {
	case models.EntityTask:
		return bucketTasks, nil
	case models.EntityList:
		return bucketLists, nil
	case models.EntityLabel:
		return bucketLabels, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// upsert сохраняет сущности одного типа, ключ - Ref.Key()
func upsert[T any](s *Storage, name []byte, items []T, ref func(T) models.Ref) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(items) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		for _, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("failed to marshal entity: %w", err)
			}
			if err := b.Put(ref(item).Key(), data); err != nil {
				return fmt.Errorf("failed to save entity: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", name, err)
	}
	return nil
}

func list[T any](s *Storage, name []byte) ([]*T, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var items []*T
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			item := new(T)
			if err := json.Unmarshal(v, item); err != nil {
				return fmt.Errorf("failed to unmarshal %s: %w", k, err)
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", name, err)
	}
	return items, nil
}

// UpsertTasks stores or replaces tasks
func (s *Storage) UpsertTasks(ctx context.Context, tasks []*models.Task) error {
	return upsert(s, bucketTasks, tasks, func(t *models.Task) models.Ref { return t.ID })
}

// UpsertLists stores or replaces lists
func (s *Storage) UpsertLists(ctx context.Context, lists []*models.List) error {
	return upsert(s, bucketLists, lists, func(l *models.List) models.Ref { return l.ID })
}

// UpsertLabels stores or replaces labels
func (s *Storage) UpsertLabels(ctx context.Context, labels []*models.Label) error {
	return upsert(s, bucketLabels, labels, func(l *models.Label) models.Ref { return l.ID })
}

// DeleteEntities removes entities of one kind
func (s *Storage) DeleteEntities(ctx context.Context, kind models.EntityKind, refs []models.Ref) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	name, err := entityBucket(kind)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if err := b.Delete(ref.Key()); err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", kind, ref, err)
			}
		}
		return nil
	})
}

// GetTask retrieves a cached task
func (s *Storage) GetTask(ctx context.Context, ref models.Ref) (*models.Task, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var task *models.Task
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTasks)
		if err != nil {
			return err
		}
		data := b.Get(ref.Key())
		if data == nil {
			return storage.ErrEntityNotFound
		}
		task = &models.Task{}
		return json.Unmarshal(data, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns every cached task
func (s *Storage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	return list[models.Task](s, bucketTasks)
}

// ListLists returns every cached list
func (s *Storage) ListLists(ctx context.Context) ([]*models.List, error) {
	return list[models.List](s, bucketLists)
}

// ListLabels returns every cached label
func (s *Storage) ListLabels(ctx context.Context) ([]*models.Label, error) {
	return list[models.Label](s, bucketLabels)
}

// ReplaceSnapshot drops the entity buckets and stores the snapshot in one transaction
func (s *Storage) ReplaceSnapshot(ctx context.Context, snapshot *storage.Snapshot) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTasks, bucketLists, bucketLabels} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return fmt.Errorf("failed to drop %s bucket: %w", name, err)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		put := func(name []byte, key []byte, v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal entity: %w", err)
			}
			return tx.Bucket(name).Put(key, data)
		}
		for _, t := range snapshot.Tasks {
			if err := put(bucketTasks, t.ID.Key(), t); err != nil {
				return err
			}
		}
		for _, l := range snapshot.Lists {
			if err := put(bucketLists, l.ID.Key(), l); err != nil {
				return err
			}
		}
		for _, l := range snapshot.Labels {
			if err := put(bucketLabels, l.ID.Key(), l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
