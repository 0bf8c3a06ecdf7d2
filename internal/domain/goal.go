package domain

import "time"

// Goal is a longer-horizon aim tasks can link to. Completing a linked task
// during review advances CurrentCount toward TargetCount.
type Goal struct {
	ID      string
	OwnerID string

	Title        string
	TargetCount  int
	CurrentCount int
	Status       GoalStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
