package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, week_id, owner_id, title, notes, priority, labels, status,
		linked_goal_id, rolled_from_week_id, requested_by, review_note, created_at, updated_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db  db.DBTX
	hub *watchHub
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn, hub: newWatchHub()}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.WeekID,
		t.OwnerID,
		t.Title,
		t.Notes,
		string(t.Priority),
		labelsToText(t.Labels),
		string(t.Status),
		nullableString(t.LinkedGoalID),
		nullableString(t.RolledFromWeekID),
		nullableString(t.RequestedBy),
		t.ReviewNote,
		t.CreatedAt.Format(time.RFC3339Nano),
		t.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanTask(row)
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET week_id = ?, owner_id = ?, title = ?, notes = ?,
		priority = ?, labels = ?, status = ?, linked_goal_id = ?,
		rolled_from_week_id = ?, requested_by = ?, review_note = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		t.WeekID,
		t.OwnerID,
		t.Title,
		t.Notes,
		string(t.Priority),
		labelsToText(t.Labels),
		string(t.Status),
		nullableString(t.LinkedGoalID),
		nullableString(t.RolledFromWeekID),
		nullableString(t.RequestedBy),
		t.ReviewNote,
		t.UpdatedAt.Format(time.RFC3339Nano),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteTaskRepo) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	if !domain.ValidTaskStatuses[status] {
		return fmt.Errorf("invalid task status %q", status)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), now, id)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteTaskRepo) UpdateReviewNote(ctx context.Context, id, note string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `UPDATE tasks SET review_note = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, note, now, id)
	if err != nil {
		return fmt.Errorf("updating task review note: %w", err)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteTaskRepo) ListByWeek(ctx context.Context, weekID, ownerID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE week_id = ? AND owner_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, weekID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by week: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListByStatus(ctx context.Context, status domain.TaskStatus, ownerID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = ? AND owner_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, string(status), ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by status: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListIncompleteByWeek(ctx context.Context, weekID, ownerID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE week_id = ? AND owner_id = ?
		  AND status IN ('pending', 'pending_acceptance')
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, weekID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing incomplete tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) WatchByWeek(ctx context.Context, weekID, ownerID string) (<-chan []*domain.Task, func(), error) {
	initial, err := r.ListByWeek(ctx, weekID, ownerID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []*domain.Task, 1)
	out <- initial
	signals, unsubscribe := r.hub.subscribe()

	done := make(chan struct{})
	cancel := func() {
		unsubscribe()
		close(done)
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				unsubscribe()
				return
			case <-signals:
				tasks, err := r.ListByWeek(ctx, weekID, ownerID)
				if err != nil {
					continue
				}
				select {
				case out <- tasks:
				case <-done:
					return
				case <-ctx.Done():
					unsubscribe()
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// scanTask scans a single task from a *sql.Row.
func scanTask(row *sql.Row) (*domain.Task, error) {
	var t domain.Task
	var priorityStr, statusStr, labelsStr string
	var linkedGoalStr, rolledFromStr, requestedByStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&t.ID, &t.WeekID, &t.OwnerID, &t.Title, &t.Notes, &priorityStr, &labelsStr, &statusStr,
		&linkedGoalStr, &rolledFromStr, &requestedByStr, &t.ReviewNote, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return populateTask(&t, priorityStr, statusStr, labelsStr,
		linkedGoalStr, rolledFromStr, requestedByStr, createdAtStr, updatedAtStr)
}

// scanTasks scans multiple tasks from *sql.Rows.
func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		var priorityStr, statusStr, labelsStr string
		var linkedGoalStr, rolledFromStr, requestedByStr sql.NullString
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&t.ID, &t.WeekID, &t.OwnerID, &t.Title, &t.Notes, &priorityStr, &labelsStr, &statusStr,
			&linkedGoalStr, &rolledFromStr, &requestedByStr, &t.ReviewNote, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		task, err := populateTask(&t, priorityStr, statusStr, labelsStr,
			linkedGoalStr, rolledFromStr, requestedByStr, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// populateTask fills in parsed fields on a Task after scanning raw values.
func populateTask(
	t *domain.Task,
	priorityStr, statusStr, labelsStr string,
	linkedGoalStr, rolledFromStr, requestedByStr sql.NullString,
	createdAtStr, updatedAtStr string,
) (*domain.Task, error) {
	t.Priority = domain.TaskPriority(priorityStr)
	t.Status = domain.TaskStatus(statusStr)
	t.Labels = labelsFromText(labelsStr)
	t.LinkedGoalID = stringPtr(linkedGoalStr)
	t.RolledFromWeekID = stringPtr(rolledFromStr)
	t.RequestedBy = stringPtr(requestedByStr)

	var parseErr error
	t.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return t, nil
}
