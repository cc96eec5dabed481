package storage

import (
	"context"
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

// ExternalStorage persists provider identity mappings, sync state and conflicts.
type ExternalStorage interface {
	// GetMapping looks a mapping up by local id. Returns ErrMappingNotFound.
	GetMapping(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType, localID int64) (*models.ExternalEntityMap, error)
	// GetMappingByExternal looks a mapping up by remote id. Returns ErrMappingNotFound.
	GetMappingByExternal(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType, externalID string) (*models.ExternalEntityMap, error)
	ListMappings(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType) ([]*models.ExternalEntityMap, error)
	// SaveMapping inserts a mapping or updates the one with the same local id
	SaveMapping(ctx context.Context, m *models.ExternalEntityMap) error
	DeleteMapping(ctx context.Context, id int64) error

	// GetSyncState returns an idle state with nil LastSyncedAt when no pass has run yet
	GetSyncState(ctx context.Context, userID int64, provider models.Provider) (*models.ExternalSyncState, error)
	// TryBeginSync atomically flips the state to syncing. A state that has been
	// syncing for longer than lease is taken over. Returns ErrSyncInProgress.
	TryBeginSync(ctx context.Context, userID int64, provider models.Provider, now time.Time, lease time.Duration) (*models.ExternalSyncState, error)
	// FinishSync sets the state to idle and advances the cursor.
	// The methods ending a pass take the start time TryBeginSync recorded and
	// return ErrSyncTakenOver when another pass has begun since.
	FinishSync(ctx context.Context, userID int64, provider models.Provider, startedAt, lastSyncedAt time.Time) error
	// ReleaseSync sets the state to idle keeping the cursor
	ReleaseSync(ctx context.Context, userID int64, provider models.Provider, startedAt time.Time) error
	// FailSync sets the state to error keeping the cursor
	FailSync(ctx context.Context, userID int64, provider models.Provider, startedAt time.Time, message string) error

	CreateConflict(ctx context.Context, c *models.ExternalSyncConflict) error
	// GetConflict returns ErrConflictNotFound
	GetConflict(ctx context.Context, id int64) (*models.ExternalSyncConflict, error)
	ListPendingConflicts(ctx context.Context, userID int64, provider models.Provider) ([]*models.ExternalSyncConflict, error)
	// HasPendingConflict reports whether the entity already waits for a decision
	HasPendingConflict(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType, localID int64) (bool, error)
	ResolveConflict(ctx context.Context, id int64, resolution models.ConflictResolution, at time.Time) error
}

// CredentialKey identifies one linked provider account.
type CredentialKey struct {
	Provider models.Provider
	UserID   int64
}

// CredentialStorage persists sealed provider tokens.
type CredentialStorage interface {
	SaveCredential(ctx context.Context, cred *models.ProviderCredential) error
	// GetCredential returns ErrCredentialsNotFound
	GetCredential(ctx context.Context, userID int64, provider models.Provider) (*models.ProviderCredential, error)
	DeleteCredential(ctx context.Context, userID int64, provider models.Provider) error
	ListCredentialKeys(ctx context.Context) ([]CredentialKey, error)
}
