package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tandemhq/tandem/internal/db"
)

// SQLiteProgressRepo implements ProgressRepo for one wizard kind. The
// planning and review wizards each hold their own namespaced instance.
// Saves are single-statement upserts, so a checkpoint either fully lands
// or not at all.
type SQLiteProgressRepo struct {
	db   db.DBTX
	kind ProgressKind
}

// NewSQLiteProgressRepo creates a progress repo scoped to the given kind.
func NewSQLiteProgressRepo(conn db.DBTX, kind ProgressKind) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn, kind: kind}
}

func (r *SQLiteProgressRepo) Save(ctx context.Context, weekID string, payload []byte) error {
	query := `INSERT OR REPLACE INTO wizard_progress (kind, week_id, payload, updated_at)
		VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		string(r.kind),
		weekID,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving %s progress: %w", r.kind, err)
	}
	return nil
}

func (r *SQLiteProgressRepo) Load(ctx context.Context) (*ProgressRecord, error) {
	query := `SELECT week_id, payload, updated_at FROM wizard_progress WHERE kind = ?`
	row := r.db.QueryRowContext(ctx, query, string(r.kind))

	var rec ProgressRecord
	var payloadStr, updatedAtStr string
	if err := row.Scan(&rec.WeekID, &payloadStr, &updatedAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s progress: %w", r.kind, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning %s progress: %w", r.kind, err)
	}
	rec.Payload = []byte(payloadStr)

	var parseErr error
	rec.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &rec, nil
}

func (r *SQLiteProgressRepo) Clear(ctx context.Context) error {
	query := `DELETE FROM wizard_progress WHERE kind = ?`
	_, err := r.db.ExecContext(ctx, query, string(r.kind))
	if err != nil {
		return fmt.Errorf("clearing %s progress: %w", r.kind, err)
	}
	return nil
}
