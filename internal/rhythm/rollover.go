// Package rhythm holds the pure engines of the weekly cycle: rollover
// selection, streak and milestone computation, and review aggregation.
// Everything here is deterministic; persistence stays with the callers.
package rhythm

import (
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

// RolloverCandidates filters the previous week's tasks down to the ones
// eligible to carry forward. Only tasks still awaiting action roll over;
// outcomes recorded by a prior review (completed, tried, skipped, declined)
// stay behind. Ordering of the result is not guaranteed.
func RolloverCandidates(previousWeekTasks []*domain.Task) []*domain.Task {
	var candidates []*domain.Task
	for _, t := range previousWeekTasks {
		if t.Status == domain.TaskPending || t.Status == domain.TaskPendingAcceptance {
			candidates = append(candidates, t)
		}
	}
	return candidates
}

// Materialize clones a task into the target week with fresh identity,
// pending status, and provenance pointing at the original's week. The
// original is left untouched; persisting the clone is the caller's job.
func Materialize(original *domain.Task, targetWeekID string, now time.Time) *domain.Task {
	labels := make([]string, len(original.Labels))
	copy(labels, original.Labels)

	rolledFrom := original.WeekID
	return &domain.Task{
		ID:               uuid.New().String(),
		WeekID:           targetWeekID,
		OwnerID:          original.OwnerID,
		Title:            original.Title,
		Notes:            original.Notes,
		Priority:         original.Priority,
		Labels:           labels,
		Status:           domain.TaskPending,
		LinkedGoalID:     original.LinkedGoalID,
		RolledFromWeekID: &rolledFrom,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
