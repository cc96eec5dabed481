package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

const taskColumns = `id, user_id, list_id, parent_id, title, description, completed, completed_at,
	due_at, due_has_time, priority, created_at, updated_at`

// InsertTask stores a new task with its labels and sets its ID
func (s *Storage) InsertTask(ctx context.Context, task *models.Task) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (user_id, list_id, parent_id, title, description, completed, completed_at,
				due_at, due_has_time, priority, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.UserID,
			task.ListID.Remote,
			parentID(task),
			task.Title,
			task.Description,
			boolToInt(task.Completed),
			nullNanos(task.CompletedAt),
			nullNanos(task.DueAt),
			boolToInt(task.DueHasTime),
			task.Priority,
			toNanos(task.CreatedAt),
			toNanos(task.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get task id: %w", err)
		}
		task.ID = models.RemoteRef(id)
		return replaceTaskLabels(ctx, tx, id, task.LabelIDs)
	})
}

// UpdateTask overwrites every column and the label set
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks SET list_id = ?, parent_id = ?, title = ?, description = ?, completed = ?,
				completed_at = ?, due_at = ?, due_has_time = ?, priority = ?, updated_at = ?
			WHERE id = ?`,
			task.ListID.Remote,
			parentID(task),
			task.Title,
			task.Description,
			boolToInt(task.Completed),
			nullNanos(task.CompletedAt),
			nullNanos(task.DueAt),
			boolToInt(task.DueHasTime),
			task.Priority,
			toNanos(task.UpdatedAt),
			task.ID.Remote,
		)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := checkAffected(res); err != nil {
			return err
		}
		return replaceTaskLabels(ctx, tx, task.ID.Remote, task.LabelIDs)
	})
}

func parentID(task *models.Task) sql.NullInt64 {
	if task.ParentID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: task.ParentID.Remote, Valid: true}
}

func replaceTaskLabels(ctx context.Context, tx *sql.Tx, taskID int64, labels []models.Ref) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_labels WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to clear task labels: %w", err)
	}
	for i, label := range labels {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_labels (task_id, label_id, position) VALUES (?, ?, ?)`,
			taskID, label.Remote, i,
		); err != nil {
			return fmt.Errorf("failed to attach label %d: %w", label.Remote, err)
		}
	}
	return nil
}

// GetTask retrieves a task with its labels
func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	labels, err := s.taskLabels(ctx, s.db, `WHERE tl.task_id = ?`, id)
	if err != nil {
		return nil, err
	}
	task.LabelIDs = labels[id]
	return task, nil
}

// DeleteTask deletes a task, subtasks go through ON DELETE CASCADE
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return checkAffected(res)
}

// ListTasks returns every task of the user ordered by id
func (s *Storage) ListTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	labels, err := s.taskLabels(ctx, s.db, `JOIN tasks t ON t.id = tl.task_id WHERE t.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		task.LabelIDs = labels[task.ID.Remote]
	}
	return tasks, nil
}

// taskLabels loads label ids grouped by task id, in attachment order
func (s *Storage) taskLabels(ctx context.Context, q queryer, where string, arg any) (map[int64][]models.Ref, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT tl.task_id, tl.label_id FROM task_labels tl `+where+` ORDER BY tl.task_id, tl.position`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query task labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]models.Ref)
	for rows.Next() {
		var taskID, labelID int64
		if err := rows.Scan(&taskID, &labelID); err != nil {
			return nil, fmt.Errorf("failed to scan task label: %w", err)
		}
		out[taskID] = append(out[taskID], models.RemoteRef(labelID))
	}
	return out, rows.Err()
}

func scanTask(row scanner) (*models.Task, error) {
	var (
		task                 models.Task
		id, listID           int64
		parent               sql.NullInt64
		completedAt, dueAt   sql.NullInt64
		completed, hasTime   int
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&id,
		&task.UserID,
		&listID,
		&parent,
		&task.Title,
		&task.Description,
		&completed,
		&completedAt,
		&dueAt,
		&hasTime,
		&task.Priority,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	task.ID = models.RemoteRef(id)
	task.ListID = models.RemoteRef(listID)
	if parent.Valid {
		ref := models.RemoteRef(parent.Int64)
		task.ParentID = &ref
	}
	task.Completed = completed != 0
	task.CompletedAt = timePtr(completedAt)
	task.DueAt = timePtr(dueAt)
	task.DueHasTime = hasTime != 0
	task.CreatedAt = fromNanos(createdAt)
	task.UpdatedAt = fromNanos(updatedAt)
	return &task, nil
}
