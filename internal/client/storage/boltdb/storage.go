package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketAuth        = []byte("auth")
	bucketActions     = []byte("actions")
	bucketActionsByTS = []byte("actions_by_ts")
	bucketTasks       = []byte("tasks")
	bucketLists       = []byte("lists")
	bucketLabels      = []byte("labels")
	bucketMetadata    = []byte("metadata")
	bucketLocks       = []byte("locks")
	bucketAliases     = []byte("aliases")

	allBuckets = [][]byte{
		bucketAuth, bucketActions, bucketActionsByTS,
		bucketTasks, bucketLists, bucketLabels,
		bucketMetadata, bucketLocks, bucketAliases,
	}
)

// openTimeout ограничивает ожидание файловой блокировки, если базу уже открыл другой процесс
const openTimeout = time.Second

// Storage represents BoltDB storage implementation for client.
// One Storage is shared by every component of a client process; it is
// created explicitly and closed by its owner.
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// bucket возвращает bucket или ошибку, если он отсутствует
func bucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%s bucket not found", name)
	}
	return b, nil
}
