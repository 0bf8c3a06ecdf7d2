package rhythm

import (
	"fmt"

	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/domain"
)

// Milestones is the closed ascending set of streak thresholds eligible for
// one-time celebration.
var Milestones = []int{5, 10, 20, 50}

// ReviewedWeeks maps week identifiers to review completion.
type ReviewedWeeks map[string]bool

// ReviewedSet builds a ReviewedWeeks lookup from week rows.
func ReviewedSet(weeks []*domain.Week) ReviewedWeeks {
	set := make(ReviewedWeeks, len(weeks))
	for _, w := range weeks {
		if w.IsReviewed() {
			set[w.ID] = true
		}
	}
	return set
}

// CalculateStreak walks backward week-by-week from fromWeekID and counts
// consecutive reviewed weeks. With a nil partner history the user's own
// reviews gate the count; with a partner connected both sides must have
// reviewed for a week to extend the chain. An unreviewed fromWeekID yields 0.
func CalculateStreak(fromWeekID string, user, partner ReviewedWeeks) (domain.StreakResult, error) {
	if _, _, err := calendar.Parse(fromWeekID); err != nil {
		return domain.StreakResult{}, err
	}

	result := domain.StreakResult{IsPartnerStreak: partner != nil}
	week := fromWeekID
	for {
		if !user[week] {
			break
		}
		if partner != nil && !partner[week] {
			break
		}
		result.Count++
		prev, err := calendar.Previous(week)
		if err != nil {
			return domain.StreakResult{}, err
		}
		week = prev
	}
	return result, nil
}

// PendingMilestone returns the highest milestone that current has reached
// but lastCelebrated has not, or 0 when there is none. lastCelebrated must
// be 0 or a member of Milestones; anything else is a contract violation.
func PendingMilestone(current, lastCelebrated int) (int, error) {
	if lastCelebrated != 0 && !IsMilestone(lastCelebrated) {
		return 0, fmt.Errorf("invalid celebrated milestone %d", lastCelebrated)
	}
	pending := 0
	for _, m := range Milestones {
		if m <= current && m > lastCelebrated {
			pending = m
		}
	}
	return pending, nil
}

// IsMilestone reports membership in the fixed milestone set.
func IsMilestone(v int) bool {
	for _, m := range Milestones {
		if v == m {
			return true
		}
	}
	return false
}
