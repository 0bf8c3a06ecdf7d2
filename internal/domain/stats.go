package domain

// CompletionStats counts completed tasks against the week's total.
type CompletionStats struct {
	CompletedCount int
	TotalCount     int
}

// Percentage returns the completion percentage with integer truncation,
// 0 when the week has no tasks.
func (s CompletionStats) Percentage() int {
	if s.TotalCount == 0 {
		return 0
	}
	return s.CompletedCount * 100 / s.TotalCount
}

// Ratio renders the stats as a "done/total" display pair.
func (s CompletionStats) Ratio() (done, total int) {
	return s.CompletedCount, s.TotalCount
}

// ReviewStats breaks a finished review down by outcome. Only Completed
// counts toward the completion percentage; Tried and Skipped do not.
type ReviewStats struct {
	DoneCount    int
	TriedCount   int
	SkippedCount int
	TotalTasks   int
}

// CompletionPercentage returns done*100/total with integer truncation.
func (s ReviewStats) CompletionPercentage() int {
	if s.TotalTasks == 0 {
		return 0
	}
	return s.DoneCount * 100 / s.TotalTasks
}

// StreakResult is the outcome of a streak computation.
type StreakResult struct {
	Count           int
	IsPartnerStreak bool
	// PendingMilestone is the newly crossed, not yet celebrated milestone,
	// or 0 when there is none.
	PendingMilestone int
}
