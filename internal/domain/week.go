package domain

import "time"

// Week is one partner's record of a single calendar week. The identifier is
// the canonical ISO week key ("2025-W07"); a week row exists only once a
// user has touched that week, and is never deleted.
type Week struct {
	ID      string
	OwnerID string

	StartDate time.Time
	EndDate   time.Time

	OverallRating       *int
	ReviewNote          string
	ReviewedAt          *time.Time
	PlanningCompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *Week) IsReviewed() bool {
	return w.ReviewedAt != nil
}

func (w *Week) IsPlanningComplete() bool {
	return w.PlanningCompletedAt != nil
}

// WeekStats is a week joined with its task counts, used by status views.
type WeekStats struct {
	Week           Week
	TotalTasks     int
	CompletedTasks int
}
