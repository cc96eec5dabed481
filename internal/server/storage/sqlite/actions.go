package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// GetAppliedAction returns the stored result of an executed action
func (s *Storage) GetAppliedAction(ctx context.Context, userID int64, id uuid.UUID) (*storage.AppliedAction, error) {
	var (
		applied   = &storage.AppliedAction{ID: id, UserID: userID}
		kind      string
		appliedAt int64
	)
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT kind, result, applied_at FROM applied_actions WHERE user_id = ? AND id = ?`,
		userID, id.String(),
	).Scan(&kind, &applied.Result, &appliedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrActionNotApplied
		}
		return nil, fmt.Errorf("failed to get applied action: %w", err)
	}

	applied.Kind = models.ActionKind(kind)
	applied.AppliedAt = fromNanos(appliedAt)
	return applied, nil
}

// SaveAppliedAction records the result of an executed action.
// A second save for the same id keeps the first result.
func (s *Storage) SaveAppliedAction(ctx context.Context, action *storage.AppliedAction) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO applied_actions (id, user_id, kind, result, applied_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO NOTHING`,
		action.ID.String(), action.UserID, string(action.Kind), []byte(action.Result), toNanos(action.AppliedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save applied action: %w", err)
	}
	return nil
}
