package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// queryer is implemented by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// checkAffected maps "no rows updated" to ErrNotFound
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// InsertList stores a new list and sets its ID
func (s *Storage) InsertList(ctx context.Context, list *models.List) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO lists (user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		list.UserID, list.Name, toNanos(list.CreatedAt), toNanos(list.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get list id: %w", err)
	}
	list.ID = models.RemoteRef(id)
	return nil
}

// GetList retrieves a list by id
func (s *Storage) GetList(ctx context.Context, id int64) (*models.List, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM lists WHERE id = ?`, id)
	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// UpdateList overwrites name and updated_at
func (s *Storage) UpdateList(ctx context.Context, list *models.List) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE lists SET name = ?, updated_at = ? WHERE id = ?`,
		list.Name, toNanos(list.UpdatedAt), list.ID.Remote,
	)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	return checkAffected(res)
}

// DeleteList deletes a list, tasks go with it through ON DELETE CASCADE
func (s *Storage) DeleteList(ctx context.Context, id int64) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return checkAffected(res)
}

// ListLists returns every list of the user ordered by id
func (s *Storage) ListLists(ctx context.Context, userID int64) ([]*models.List, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM lists WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []*models.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanList(row scanner) (*models.List, error) {
	var (
		list                 models.List
		id                   int64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &list.UserID, &list.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	list.ID = models.RemoteRef(id)
	list.CreatedAt = fromNanos(createdAt)
	list.UpdatedAt = fromNanos(updatedAt)
	return &list, nil
}

// InsertLabel stores a new label and sets its ID
func (s *Storage) InsertLabel(ctx context.Context, label *models.Label) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO labels (user_id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		label.UserID, label.Name, label.Color, toNanos(label.CreatedAt), toNanos(label.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert label: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get label id: %w", err)
	}
	label.ID = models.RemoteRef(id)
	return nil
}

// GetLabel retrieves a label by id
func (s *Storage) GetLabel(ctx context.Context, id int64) (*models.Label, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, name, color, created_at, updated_at FROM labels WHERE id = ?`, id)
	label, err := scanLabel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	return label, nil
}

// UpdateLabel overwrites name, color and updated_at
func (s *Storage) UpdateLabel(ctx context.Context, label *models.Label) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE labels SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
		label.Name, label.Color, toNanos(label.UpdatedAt), label.ID.Remote,
	)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return checkAffected(res)
}

// DeleteLabel deletes a label; task_labels rows go through ON DELETE CASCADE
func (s *Storage) DeleteLabel(ctx context.Context, id int64) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return checkAffected(res)
}

// ListLabels returns every label of the user ordered by id
func (s *Storage) ListLabels(ctx context.Context, userID int64) ([]*models.Label, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, user_id, name, color, created_at, updated_at FROM labels WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []*models.Label
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func scanLabel(row scanner) (*models.Label, error) {
	var (
		label                models.Label
		id                   int64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &label.UserID, &label.Name, &label.Color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	label.ID = models.RemoteRef(id)
	label.CreatedAt = fromNanos(createdAt)
	label.UpdatedAt = fromNanos(updatedAt)
	return &label, nil
}
