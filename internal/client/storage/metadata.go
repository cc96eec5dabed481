package storage

import (
	"context"
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// DefaultStaleAfter is the age after which cached entities are refetched.
const DefaultStaleAfter = 5 * time.Minute

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SetLastFetched records when entities of a kind were last fetched from the server
	SetLastFetched(ctx context.Context, kind models.EntityKind, at time.Time) error

	// GetLastFetched returns the zero time if the kind was never fetched
	GetLastFetched(ctx context.Context, kind models.EntityKind) (time.Time, error)

	// IsStale reports whether the kind was never fetched or was fetched
	// longer than threshold ago
	IsStale(ctx context.Context, kind models.EntityKind, now time.Time, threshold time.Duration) (bool, error)
}
