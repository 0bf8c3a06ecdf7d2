package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/domain"
)

// goalColumns is the canonical SELECT column list for goals.
const goalColumns = `id, owner_id, title, target_count, current_count, status, created_at, updated_at`

// SQLiteGoalRepo implements GoalRepo using a SQLite database.
type SQLiteGoalRepo struct {
	db db.DBTX
}

// NewSQLiteGoalRepo creates a new SQLiteGoalRepo.
func NewSQLiteGoalRepo(conn db.DBTX) *SQLiteGoalRepo {
	return &SQLiteGoalRepo{db: conn}
}

func (r *SQLiteGoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	query := `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.OwnerID,
		g.Title,
		g.TargetCount,
		g.CurrentCount,
		string(g.Status),
		g.CreatedAt.Format(time.RFC3339Nano),
		g.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	return nil
}

func (r *SQLiteGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	g, err := scanGoal(row)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *SQLiteGoalRepo) ListActive(ctx context.Context, ownerID string) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals
		WHERE owner_id = ? AND status = 'active' ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing active goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		var g domain.Goal
		var statusStr, createdAtStr, updatedAtStr string
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Title, &g.TargetCount, &g.CurrentCount,
			&statusStr, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning goal row: %w", err)
		}
		if err := populateGoal(&g, statusStr, createdAtStr, updatedAtStr); err != nil {
			return nil, err
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}
	return goals, nil
}

// IncrementProgress advances current_count and flips the goal to achieved
// once the target is reached.
func (r *SQLiteGoalRepo) IncrementProgress(ctx context.Context, id string, delta int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `UPDATE goals SET
			current_count = current_count + ?,
			status = CASE
				WHEN target_count > 0 AND current_count + ? >= target_count THEN 'achieved'
				ELSE status
			END,
			updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, delta, delta, now, id)
	if err != nil {
		return fmt.Errorf("incrementing goal progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanGoal(row *sql.Row) (*domain.Goal, error) {
	var g domain.Goal
	var statusStr, createdAtStr, updatedAtStr string
	err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.TargetCount, &g.CurrentCount,
		&statusStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("goal: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning goal: %w", err)
	}
	if err := populateGoal(&g, statusStr, createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &g, nil
}

func populateGoal(g *domain.Goal, statusStr, createdAtStr, updatedAtStr string) error {
	g.Status = domain.GoalStatus(statusStr)

	var parseErr error
	g.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAtStr)
	if parseErr != nil {
		return fmt.Errorf("parsing created_at: %w", parseErr)
	}
	g.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAtStr)
	if parseErr != nil {
		return fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return nil
}
