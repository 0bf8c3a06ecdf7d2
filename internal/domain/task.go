package domain

import "time"

// Task belongs to exactly one week and one owner. Status transitions are a
// caller-level policy; this layer accepts any status from the valid set.
type Task struct {
	ID      string
	WeekID  string
	OwnerID string

	Title    string
	Notes    string
	Priority TaskPriority
	Labels   []string
	Status   TaskStatus

	// Provenance back-references, lookup only.
	LinkedGoalID     *string
	RolledFromWeekID *string
	RequestedBy      *string

	ReviewNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRollover reports whether the task was carried forward from an earlier week.
func (t *Task) IsRollover() bool {
	return t.RolledFromWeekID != nil
}

// IsPartnerRequest reports whether the task awaits acceptance of a partner request.
func (t *Task) IsPartnerRequest() bool {
	return t.Status == TaskPendingAcceptance && t.RequestedBy != nil
}
