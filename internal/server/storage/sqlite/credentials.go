package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// SaveCredential upserts sealed provider tokens for (user, provider)
func (s *Storage) SaveCredential(ctx context.Context, cred *models.ProviderCredential) error {
	var expiry sql.NullInt64
	if !cred.Expiry.IsZero() {
		expiry = sql.NullInt64{Int64: toNanos(cred.Expiry), Valid: true}
	}
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO provider_credentials (user_id, provider, key_id, token_type,
			access_token_sealed, refresh_token_sealed, expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			key_id = excluded.key_id,
			token_type = excluded.token_type,
			access_token_sealed = excluded.access_token_sealed,
			refresh_token_sealed = excluded.refresh_token_sealed,
			expiry = excluded.expiry`,
		cred.UserID,
		string(cred.Provider),
		cred.KeyID,
		cred.TokenType,
		cred.AccessTokenSealed,
		cred.RefreshTokenSealed,
		expiry,
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// GetCredential returns sealed tokens of (user, provider)
func (s *Storage) GetCredential(ctx context.Context, userID int64, provider models.Provider) (*models.ProviderCredential, error) {
	var (
		cred   models.ProviderCredential
		name   string
		expiry sql.NullInt64
	)
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT user_id, provider, key_id, token_type, access_token_sealed, refresh_token_sealed, expiry
		FROM provider_credentials WHERE user_id = ? AND provider = ?`,
		userID, string(provider),
	).Scan(
		&cred.UserID,
		&name,
		&cred.KeyID,
		&cred.TokenType,
		&cred.AccessTokenSealed,
		&cred.RefreshTokenSealed,
		&expiry,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	cred.Provider = models.Provider(name)
	if expiry.Valid {
		cred.Expiry = fromNanos(expiry.Int64)
	}
	return &cred, nil
}

// DeleteCredential unlinks a provider account
func (s *Storage) DeleteCredential(ctx context.Context, userID int64, provider models.Provider) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM provider_credentials WHERE user_id = ? AND provider = ?`,
		userID, string(provider))
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrCredentialsNotFound
	}
	return nil
}

// ListCredentialKeys returns every linked (user, provider) pair
func (s *Storage) ListCredentialKeys(ctx context.Context) ([]storage.CredentialKey, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT user_id, provider FROM provider_credentials ORDER BY user_id, provider`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []storage.CredentialKey
	for rows.Next() {
		var (
			key  storage.CredentialKey
			name string
		)
		if err := rows.Scan(&key.UserID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan credential key: %w", err)
		}
		key.Provider = models.Provider(name)
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
