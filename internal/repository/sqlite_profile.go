package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/domain"
)

// SQLiteProfileRepo implements ProfileRepo using a SQLite database.
// The table holds a single 'default' row seeded by the migrations.
type SQLiteProfileRepo struct {
	db db.DBTX
}

// NewSQLiteProfileRepo creates a new SQLiteProfileRepo.
func NewSQLiteProfileRepo(conn db.DBTX) *SQLiteProfileRepo {
	return &SQLiteProfileRepo{db: conn}
}

func (r *SQLiteProfileRepo) Get(ctx context.Context) (*domain.UserProfile, error) {
	query := `SELECT id, user_id, display_name, partner_id, partner_name, last_celebrated_milestone
		FROM user_profile WHERE id = 'default'`
	row := r.db.QueryRowContext(ctx, query)

	var p domain.UserProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayName,
		&p.PartnerID,
		&p.PartnerName,
		&p.LastCelebratedMilestone,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user profile: %w", err)
	}
	return &p, nil
}

func (r *SQLiteProfileRepo) Upsert(ctx context.Context, p *domain.UserProfile) error {
	query := `INSERT OR REPLACE INTO user_profile
		(id, user_id, display_name, partner_id, partner_name, last_celebrated_milestone)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.DisplayName,
		p.PartnerID,
		p.PartnerName,
		p.LastCelebratedMilestone,
	)
	if err != nil {
		return fmt.Errorf("upserting user profile: %w", err)
	}
	return nil
}

func (r *SQLiteProfileRepo) SetLastCelebratedMilestone(ctx context.Context, v int) error {
	query := `UPDATE user_profile SET last_celebrated_milestone = ? WHERE id = 'default'`
	_, err := r.db.ExecContext(ctx, query, v)
	if err != nil {
		return fmt.Errorf("updating celebrated milestone: %w", err)
	}
	return nil
}
