package formatter

import (
	"fmt"
	"strings"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/rhythm"
)

// FormatTaskLine renders a single task row with its outcome badge, priority
// marker, and labels.
func FormatTaskLine(t *domain.Task) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(OutcomeBadge(t.Status))
	b.WriteString("  ")
	if badge := PriorityBadge(t.Priority); badge != "" {
		b.WriteString(badge)
		b.WriteString(" ")
	}
	b.WriteString(StyleFg.Render(t.Title))
	if t.IsRollover() {
		b.WriteString(" " + Dim(fmt.Sprintf("(from %s)", *t.RolledFromWeekID)))
	}
	if len(t.Labels) > 0 {
		b.WriteString(" " + StyleBlue.Render("["+strings.Join(t.Labels, ", ")+"]"))
	}
	return b.String()
}

// FormatWeekOverview renders the current week header, its tasks, and the
// streak line for the status command.
func FormatWeekOverview(week *domain.Week, tasks []*domain.Task, streak domain.StreakResult) string {
	var b strings.Builder

	stats := rhythm.CompletionStatsFor(tasks)
	b.WriteString(Header(fmt.Sprintf("Week %s", week.ID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n",
		RenderProgress(ratioOf(stats), 20),
		RenderStreak(streak.Count, streak.IsPartnerStreak)))

	switch {
	case week.IsReviewed():
		b.WriteString("  " + StyleGreen.Render("reviewed") + "\n")
	case week.IsPlanningComplete():
		b.WriteString("  " + StyleBlue.Render("planned") + "\n")
	default:
		b.WriteString("  " + Dim("not planned yet") + "\n")
	}

	if len(tasks) == 0 {
		b.WriteString("\n  " + Dim("No tasks this week. Run `tandem plan` to get started.") + "\n")
		return b.String()
	}

	b.WriteString("\n")
	for _, t := range tasks {
		b.WriteString(FormatTaskLine(t))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWeekHistory renders past weeks with their completion bars, newest
// first.
func FormatWeekHistory(history []domain.WeekStats) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Header("History"))
	b.WriteString("\n")
	for _, ws := range history {
		pct := 0.0
		if ws.TotalTasks > 0 {
			pct = float64(ws.CompletedTasks) / float64(ws.TotalTasks)
		}
		marker := Dim("·")
		if ws.Week.IsReviewed() {
			marker = StyleGreen.Render("✓")
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s %s\n",
			marker,
			StyleFg.Render(ws.Week.ID),
			RenderProgress(pct, 12),
			Dim(fmt.Sprintf("%d/%d", ws.CompletedTasks, ws.TotalTasks))))
	}
	return b.String()
}

// FormatPlanningSummary renders the confirmation tally at the end of
// planning.
func FormatPlanningSummary(weekID string, totalPlanned, rolledOver, newTasks, accepted int) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Plan for %s", weekID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s tasks planned\n", Bold(fmt.Sprintf("%d", totalPlanned))))
	b.WriteString(Dim(fmt.Sprintf("    %d carried over, %d new, %d from your partner\n",
		rolledOver, newTasks, accepted)))
	return b.String()
}

// FormatReviewSummary renders the closing breakdown of a weekly review.
func FormatReviewSummary(weekID string, stats domain.ReviewStats, streak domain.StreakResult) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Review of %s", weekID)))
	b.WriteString("\n")

	pct := 0.0
	if stats.TotalTasks > 0 {
		pct = float64(stats.DoneCount) / float64(stats.TotalTasks)
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n",
		RenderProgress(pct, 20),
		Bold(fmt.Sprintf("%d%% complete", stats.CompletionPercentage()))))
	b.WriteString(fmt.Sprintf("  %s   %s   %s\n",
		StyleGreen.Render(fmt.Sprintf("✓ %d done", stats.DoneCount)),
		StyleYellow.Render(fmt.Sprintf("~ %d tried", stats.TriedCount)),
		Dim(fmt.Sprintf("- %d skipped", stats.SkippedCount))))
	b.WriteString("\n  " + RenderStreak(streak.Count, streak.IsPartnerStreak) + "\n")
	return b.String()
}

// FormatMilestone renders the one-time milestone celebration banner.
func FormatMilestone(milestone int) string {
	text := fmt.Sprintf("🎉 %d weeks of reviews in a row!", milestone)
	return StyleHeader.Render(text)
}

func ratioOf(stats domain.CompletionStats) float64 {
	if stats.TotalCount == 0 {
		return 0
	}
	return float64(stats.CompletedCount) / float64(stats.TotalCount)
}
