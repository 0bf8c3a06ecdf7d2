package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/domain"
)

// weekColumns is the canonical SELECT column list for weeks.
const weekColumns = `id, owner_id, start_date, end_date, overall_rating,
		review_note, reviewed_at, planning_completed_at, created_at, updated_at`

const dateLayout = "2006-01-02"

// SQLiteWeekRepo implements WeekRepo using a SQLite database.
type SQLiteWeekRepo struct {
	db  db.DBTX
	hub *watchHub
}

// NewSQLiteWeekRepo creates a new SQLiteWeekRepo.
func NewSQLiteWeekRepo(conn db.DBTX) *SQLiteWeekRepo {
	return &SQLiteWeekRepo{db: conn, hub: newWatchHub()}
}

func (r *SQLiteWeekRepo) GetOrCreate(ctx context.Context, weekID, ownerID string) (*domain.Week, error) {
	week, err := r.GetByID(ctx, weekID, ownerID)
	if err == nil {
		return week, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	start, end, err := calendar.Bounds(weekID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	week = &domain.Week{
		ID:        weekID,
		OwnerID:   ownerID,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// INSERT OR IGNORE guards the lazy-create race between two readers.
	query := `INSERT OR IGNORE INTO weeks (` + weekColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		week.ID,
		week.OwnerID,
		week.StartDate.Format(dateLayout),
		week.EndDate.Format(dateLayout),
		nullableInt(week.OverallRating),
		week.ReviewNote,
		nullableTimeToString(week.ReviewedAt, time.RFC3339Nano),
		nullableTimeToString(week.PlanningCompletedAt, time.RFC3339Nano),
		week.CreatedAt.Format(time.RFC3339Nano),
		week.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting week: %w", err)
	}
	r.hub.notify()
	return r.GetByID(ctx, weekID, ownerID)
}

func (r *SQLiteWeekRepo) GetByID(ctx context.Context, weekID, ownerID string) (*domain.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = ? AND owner_id = ?`
	row := r.db.QueryRowContext(ctx, query, weekID, ownerID)
	return scanWeek(row)
}

func (r *SQLiteWeekRepo) MarkPlanningCompleted(ctx context.Context, weekID, ownerID string, at time.Time) error {
	query := `UPDATE weeks SET planning_completed_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		at.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		weekID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("marking planning completed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("week %s: %w", weekID, ErrNotFound)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteWeekRepo) UpdateReview(ctx context.Context, weekID, ownerID string, rating int, note string, at time.Time) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d out of range 1..5", rating)
	}
	query := `UPDATE weeks SET overall_rating = ?, review_note = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rating,
		note,
		at.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		weekID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("updating week review: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("week %s: %w", weekID, ErrNotFound)
	}
	r.hub.notify()
	return nil
}

func (r *SQLiteWeekRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE owner_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing weeks: %w", err)
	}
	defer rows.Close()

	var weeks []*domain.Week
	for rows.Next() {
		week, err := scanWeekRow(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, week)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weeks: %w", err)
	}
	return weeks, nil
}

func (r *SQLiteWeekRepo) ListWithStats(ctx context.Context, ownerID string) ([]domain.WeekStats, error) {
	query := `SELECT ` + aliasedWeekColumns + `,
			COUNT(t.id),
			COALESCE(SUM(CASE WHEN t.status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM weeks w
		LEFT JOIN tasks t ON t.week_id = w.id AND t.owner_id = w.owner_id
		WHERE w.owner_id = ?
		GROUP BY w.id, w.owner_id
		ORDER BY w.id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing weeks with stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.WeekStats
	for rows.Next() {
		var s domain.WeekStats
		var ratingVal sql.NullInt64
		var reviewedAtStr, planningAtStr sql.NullString
		var startStr, endStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&s.Week.ID, &s.Week.OwnerID, &startStr, &endStr, &ratingVal,
			&s.Week.ReviewNote, &reviewedAtStr, &planningAtStr, &createdAtStr, &updatedAtStr,
			&s.TotalTasks, &s.CompletedTasks,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning week stats: %w", err)
		}
		if err := populateWeek(&s.Week, startStr, endStr, createdAtStr, updatedAtStr, ratingVal, reviewedAtStr, planningAtStr); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating week stats: %w", err)
	}
	return stats, nil
}

func (r *SQLiteWeekRepo) WatchWithStats(ctx context.Context, ownerID string) (<-chan []domain.WeekStats, func(), error) {
	initial, err := r.ListWithStats(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []domain.WeekStats, 1)
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
				stats, err := r.ListWithStats(ctx, ownerID)
				if err != nil {
					continue
				}
				select {
				case out <- stats:
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

const aliasedWeekColumns = `w.id, w.owner_id, w.start_date, w.end_date, w.overall_rating,
		w.review_note, w.reviewed_at, w.planning_completed_at, w.created_at, w.updated_at`

func scanWeek(row *sql.Row) (*domain.Week, error) {
	var w domain.Week
	var ratingVal sql.NullInt64
	var reviewedAtStr, planningAtStr sql.NullString
	var startStr, endStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&w.ID, &w.OwnerID, &startStr, &endStr, &ratingVal,
		&w.ReviewNote, &reviewedAtStr, &planningAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("week: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning week: %w", err)
	}
	if err := populateWeek(&w, startStr, endStr, createdAtStr, updatedAtStr, ratingVal, reviewedAtStr, planningAtStr); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWeekRow(rows *sql.Rows) (*domain.Week, error) {
	var w domain.Week
	var ratingVal sql.NullInt64
	var reviewedAtStr, planningAtStr sql.NullString
	var startStr, endStr, createdAtStr, updatedAtStr string

	err := rows.Scan(
		&w.ID, &w.OwnerID, &startStr, &endStr, &ratingVal,
		&w.ReviewNote, &reviewedAtStr, &planningAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning week row: %w", err)
	}
	if err := populateWeek(&w, startStr, endStr, createdAtStr, updatedAtStr, ratingVal, reviewedAtStr, planningAtStr); err != nil {
		return nil, err
	}
	return &w, nil
}

func populateWeek(
	w *domain.Week,
	startStr, endStr, createdAtStr, updatedAtStr string,
	ratingVal sql.NullInt64,
	reviewedAtStr, planningAtStr sql.NullString,
) error {
	w.OverallRating = intPtr(ratingVal)
	w.ReviewedAt = parseNullableTime(reviewedAtStr, time.RFC3339Nano)
	w.PlanningCompletedAt = parseNullableTime(planningAtStr, time.RFC3339Nano)

	var parseErr error
	w.StartDate, parseErr = time.Parse(dateLayout, startStr)
	if parseErr != nil {
		return fmt.Errorf("parsing start_date: %w", parseErr)
	}
	w.EndDate, parseErr = time.Parse(dateLayout, endStr)
	if parseErr != nil {
		return fmt.Errorf("parsing end_date: %w", parseErr)
	}
	w.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAtStr)
	if parseErr != nil {
		return fmt.Errorf("parsing created_at: %w", parseErr)
	}
	w.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAtStr)
	if parseErr != nil {
		return fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return nil
}
