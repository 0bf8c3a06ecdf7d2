package rhythm

import (
	"sort"

	"github.com/tandemhq/tandem/internal/domain"
)

// CompletionStatsFor counts completed tasks against the week's total.
func CompletionStatsFor(tasks []*domain.Task) domain.CompletionStats {
	stats := domain.CompletionStats{TotalCount: len(tasks)}
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			stats.CompletedCount++
		}
	}
	return stats
}

// ReviewStatsFor tallies recorded review outcomes over totalTasks. Outcomes
// outside the review set (still-pending tasks) count only toward the total.
func ReviewStatsFor(outcomes map[string]domain.TaskStatus, totalTasks int) domain.ReviewStats {
	stats := domain.ReviewStats{TotalTasks: totalTasks}
	for _, outcome := range outcomes {
		switch outcome {
		case domain.TaskCompleted:
			stats.DoneCount++
		case domain.TaskTried:
			stats.TriedCount++
		case domain.TaskSkipped:
			stats.SkippedCount++
		}
	}
	return stats
}

// OrderForReview sorts tasks for the review walk: tasks still needing a
// decision come first, already-completed tasks last, each group by creation
// time ascending. The input slice is not modified.
func OrderForReview(tasks []*domain.Task) []*domain.Task {
	ordered := make([]*domain.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		aDone := a.Status == domain.TaskCompleted
		bDone := b.Status == domain.TaskCompleted
		if aDone != bDone {
			return !aDone
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ordered
}
