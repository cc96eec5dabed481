package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

const mappingColumns = `id, user_id, provider, entity_type, local_id, external_id, external_parent_id,
	external_list_id, external_etag, external_updated_at`

// GetMapping looks a mapping up by local id
func (s *Storage) GetMapping(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType, localID int64) (*models.ExternalEntityMap, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+mappingColumns+` FROM external_entity_map
		WHERE user_id = ? AND provider = ? AND entity_type = ? AND local_id = ?`,
		userID, string(provider), string(entityType), localID)
	return getMapping(row)
}

// GetMappingByExternal looks a mapping up by remote id
func (s *Storage) GetMappingByExternal(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType, externalID string) (*models.ExternalEntityMap, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+mappingColumns+` FROM external_entity_map
		WHERE user_id = ? AND provider = ? AND entity_type = ? AND external_id = ?`,
		userID, string(provider), string(entityType), externalID)
	return getMapping(row)
}

func getMapping(row *sql.Row) (*models.ExternalEntityMap, error) {
	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}
	return m, nil
}

// ListMappings returns mappings of one entity type ordered by id
func (s *Storage) ListMappings(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType) ([]*models.ExternalEntityMap, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+mappingColumns+` FROM external_entity_map
		WHERE user_id = ? AND provider = ? AND entity_type = ? ORDER BY id`,
		userID, string(provider), string(entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.ExternalEntityMap
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveMapping inserts a mapping or updates the existing one for the same local entity
func (s *Storage) SaveMapping(ctx context.Context, m *models.ExternalEntityMap) error {
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO external_entity_map (user_id, provider, entity_type, local_id, external_id,
			external_parent_id, external_list_id, external_etag, external_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider, entity_type, local_id) DO UPDATE SET
			external_id = excluded.external_id,
			external_parent_id = excluded.external_parent_id,
			external_list_id = excluded.external_list_id,
			external_etag = excluded.external_etag,
			external_updated_at = excluded.external_updated_at
		RETURNING id`,
		m.UserID,
		string(m.Provider),
		string(m.EntityType),
		m.LocalID,
		m.ExternalID,
		m.ExternalParentID,
		m.ExternalListID,
		m.ExternalEtag,
		nullNanos(m.ExternalUpdatedAt),
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// DeleteMapping removes a mapping. Missing ids are not an error.
func (s *Storage) DeleteMapping(ctx context.Context, id int64) error {
	if _, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM external_entity_map WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	return nil
}

func scanMapping(row scanner) (*models.ExternalEntityMap, error) {
	var (
		m                    models.ExternalEntityMap
		provider, entityType string
		updatedAt            sql.NullInt64
	)
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&provider,
		&entityType,
		&m.LocalID,
		&m.ExternalID,
		&m.ExternalParentID,
		&m.ExternalListID,
		&m.ExternalEtag,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	m.Provider = models.Provider(provider)
	m.EntityType = models.ExternalEntityType(entityType)
	m.ExternalUpdatedAt = timePtr(updatedAt)
	return &m, nil
}

// GetSyncState returns the sync cursor of (user, provider)
func (s *Storage) GetSyncState(ctx context.Context, userID int64, provider models.Provider) (*models.ExternalSyncState, error) {
	state, err := scanSyncState(s.conn(ctx).QueryRowContext(ctx, `
		SELECT user_id, provider, status, last_synced_at, started_at, error
		FROM external_sync_state WHERE user_id = ? AND provider = ?`,
		userID, string(provider)))
	if errors.Is(err, sql.ErrNoRows) {
		return &models.ExternalSyncState{UserID: userID, Provider: provider, Status: models.SyncIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

// TryBeginSync flips the state to syncing with a single conditional upsert,
// so two processes sharing the database cannot both win.
func (s *Storage) TryBeginSync(ctx context.Context, userID int64, provider models.Provider, now time.Time, lease time.Duration) (*models.ExternalSyncState, error) {
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO external_sync_state (user_id, provider, status, started_at, error)
		VALUES (?, ?, 'syncing', ?, '')
		ON CONFLICT (user_id, provider) DO UPDATE SET
			status = 'syncing',
			started_at = excluded.started_at,
			error = ''
		WHERE external_sync_state.status != 'syncing'
			OR external_sync_state.started_at IS NULL
			OR external_sync_state.started_at < ?`,
		userID, string(provider), toNanos(now), toNanos(now.Add(-lease)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sync: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return nil, storage.ErrSyncInProgress
	}
	return s.GetSyncState(ctx, userID, provider)
}

// FinishSync marks the pass successful
func (s *Storage) FinishSync(ctx context.Context, userID int64, provider models.Provider, startedAt, lastSyncedAt time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE external_sync_state SET status = 'idle', last_synced_at = ?, started_at = NULL, error = ''
		WHERE user_id = ? AND provider = ? AND status = 'syncing' AND started_at = ?`,
		toNanos(lastSyncedAt), userID, string(provider), toNanos(startedAt))
	if err != nil {
		return fmt.Errorf("failed to finish sync: %w", err)
	}
	return ownedPass(res)
}

// ReleaseSync returns the state to idle without moving the cursor
func (s *Storage) ReleaseSync(ctx context.Context, userID int64, provider models.Provider, startedAt time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE external_sync_state SET status = 'idle', started_at = NULL
		WHERE user_id = ? AND provider = ? AND status = 'syncing' AND started_at = ?`,
		userID, string(provider), toNanos(startedAt))
	if err != nil {
		return fmt.Errorf("failed to release sync: %w", err)
	}
	return ownedPass(res)
}

// FailSync marks the pass failed, the cursor stays where it was
func (s *Storage) FailSync(ctx context.Context, userID int64, provider models.Provider, startedAt time.Time, message string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE external_sync_state SET status = 'error', started_at = NULL, error = ?
		WHERE user_id = ? AND provider = ? AND status = 'syncing' AND started_at = ?`,
		message, userID, string(provider), toNanos(startedAt))
	if err != nil {
		return fmt.Errorf("failed to record sync error: %w", err)
	}
	return ownedPass(res)
}

// ownedPass reports ErrSyncTakenOver when the conditional update matched nothing
func ownedPass(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrSyncTakenOver
	}
	return nil
}

func scanSyncState(row scanner) (*models.ExternalSyncState, error) {
	var (
		state               models.ExternalSyncState
		provider, status    string
		lastSynced, started sql.NullInt64
	)
	if err := row.Scan(&state.UserID, &provider, &status, &lastSynced, &started, &state.Error); err != nil {
		return nil, err
	}
	state.Provider = models.Provider(provider)
	state.Status = models.SyncStatus(status)
	state.LastSyncedAt = timePtr(lastSynced)
	state.StartedAt = timePtr(started)
	return &state, nil
}

const conflictColumns = `id, user_id, provider, entity_type, local_id, external_id, conflict_type,
	local_payload, external_payload, status, resolution, created_at, resolved_at`

// CreateConflict stores a pending conflict and sets its ID
func (s *Storage) CreateConflict(ctx context.Context, c *models.ExternalSyncConflict) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO external_sync_conflicts (user_id, provider, entity_type, local_id, external_id,
			conflict_type, local_payload, external_payload, status, resolution, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID,
		string(c.Provider),
		string(c.EntityType),
		c.LocalID,
		c.ExternalID,
		c.ConflictType,
		[]byte(c.LocalPayload),
		[]byte(c.ExternalPayload),
		string(c.Status),
		string(c.Resolution),
		toNanos(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conflict: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get conflict id: %w", err)
	}
	return nil
}

// GetConflict retrieves a conflict by id
func (s *Storage) GetConflict(ctx context.Context, id int64) (*models.ExternalSyncConflict, error) {
	c, err := scanConflict(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+conflictColumns+` FROM external_sync_conflicts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrConflictNotFound
		}
		return nil, fmt.Errorf("failed to get conflict: %w", err)
	}
	return c, nil
}

// ListPendingConflicts returns unresolved conflicts, oldest first
func (s *Storage) ListPendingConflicts(ctx context.Context, userID int64, provider models.Provider) ([]*models.ExternalSyncConflict, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+conflictColumns+` FROM external_sync_conflicts
		WHERE user_id = ? AND provider = ? AND status = 'pending' ORDER BY id`,
		userID, string(provider))
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.ExternalSyncConflict
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HasPendingConflict reports whether an entity already waits for a decision
func (s *Storage) HasPendingConflict(ctx context.Context, userID int64, provider models.Provider, entityType models.ExternalEntityType, localID int64) (bool, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM external_sync_conflicts
		WHERE user_id = ? AND provider = ? AND entity_type = ? AND local_id = ? AND status = 'pending'`,
		userID, string(provider), string(entityType), localID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count conflicts: %w", err)
	}
	return n > 0, nil
}

// ResolveConflict marks a pending conflict resolved
func (s *Storage) ResolveConflict(ctx context.Context, id int64, resolution models.ConflictResolution, at time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE external_sync_conflicts SET status = 'resolved', resolution = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(resolution), toNanos(at), id)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrConflictNotFound
	}
	return nil
}

func scanConflict(row scanner) (*models.ExternalSyncConflict, error) {
	var (
		c                           models.ExternalSyncConflict
		provider, entityType        string
		status, resolution          string
		localPayload, remotePayload []byte
		createdAt                   int64
		resolvedAt                  sql.NullInt64
	)
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&provider,
		&entityType,
		&c.LocalID,
		&c.ExternalID,
		&c.ConflictType,
		&localPayload,
		&remotePayload,
		&status,
		&resolution,
		&createdAt,
		&resolvedAt,
	); err != nil {
		return nil, err
	}
	c.Provider = models.Provider(provider)
	c.EntityType = models.ExternalEntityType(entityType)
	c.LocalPayload = localPayload
	c.ExternalPayload = remotePayload
	c.Status = models.ConflictStatus(status)
	c.Resolution = models.ConflictResolution(resolution)
	c.CreatedAt = fromNanos(createdAt)
	c.ResolvedAt = timePtr(resolvedAt)
	return &c, nil
}
