package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AliasRetention is how long a confirmed placeholder keeps resolving to its
// server id. Actions buffered by another process are flushed long before that.
const AliasRetention = 24 * time.Hour

// AliasStorage remembers the server ids assigned to confirmed placeholders,
// so actions queued after a create was confirmed can still be resolved.
type AliasStorage interface {
	// SaveAliases records placeholder -> server id pairs confirmed at the given time
	SaveAliases(ctx context.Context, aliases map[uuid.UUID]int64, at time.Time) error

	// ListAliases returns every remembered placeholder
	ListAliases(ctx context.Context) (map[uuid.UUID]int64, error)

	// PruneAliases forgets placeholders confirmed before the given time.
	// Returns how many were removed.
	PruneAliases(ctx context.Context, before time.Time) (int, error)
}
