package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tandemhq/tandem/internal/cli/formatter"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/wizard"
)

func newReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("review is interactive; run it from a terminal")
			}
			return runReview(cmd.Context(), app)
		},
	}
}

// runReview drives the review wizard: mode, rating, per-task outcomes in a
// bubbletea view, then the summary.
func runReview(ctx context.Context, app *App) error {
	id, err := app.Identity.Await(ctx)
	if err != nil {
		return err
	}

	w := wizard.NewReviewWizard(app.Tasks, app.Weeks, app.Goals, app.ReviewProgress, app.UoW, app.Streaks, id)
	defer w.Teardown()

	stop := formatter.StartSpinner("Loading your week...")
	err = w.Start(ctx)
	stop()
	if err != nil {
		return err
	}
	out := app.out()

	if w.HasIncompleteProgress() {
		resume := true
		if err := formConfirm("Pick up the review where you left off?", &resume); err != nil {
			return err
		}
		if resume {
			w.Resume(ctx)
		} else if err := w.Discard(ctx); err != nil {
			return err
		}
	}

	for {
		flushEffects(out, w.Effects())

		switch w.Step() {
		case wizard.ReviewModeSelect:
			var mode domain.ReviewMode
			if err := formSelectMode(&mode); err != nil {
				return err
			}
			w.SelectMode(ctx, mode)

		case wizard.ReviewRating:
			var rating int
			var note string
			if err := formRating(&rating, &note); err != nil {
				return err
			}
			w.SetRating(rating)
			w.SetRatingNote(note)
			if err := w.ConfirmRating(ctx); err != nil {
				return err
			}

		case wizard.ReviewTaskReview:
			model := newTaskReviewModel(ctx, w)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return fmt.Errorf("running task review: %w", err)
			}
			if m, ok := final.(taskReviewModel); ok && m.abandoned {
				fmt.Fprintln(out, formatter.Dim("Progress saved. Run `tandem review` to continue."))
				return nil
			}

		case wizard.ReviewSummary:
			return finishReview(ctx, app, w)
		}
	}
}

// finishReview finalizes the review, prints the summary and any freshly
// crossed milestone, and optionally rolls straight into planning.
func finishReview(ctx context.Context, app *App, w *wizard.ReviewWizard) error {
	startNext := false
	if err := formConfirm("Start planning next week now?", &startNext); err != nil {
		return err
	}
	if err := w.Finish(ctx, startNext); err != nil {
		return err
	}

	out := app.out()
	fmt.Fprintln(out, formatter.FormatReviewSummary(w.WeekID(), w.Stats(), w.Streak()))

	if milestone := w.Streak().PendingMilestone; milestone > 0 {
		fmt.Fprintln(out, "  "+formatter.FormatMilestone(milestone))
		if err := app.Streaks.AcknowledgeMilestone(ctx, milestone); err != nil {
			return err
		}
	}

	if startNext {
		return runPlanning(ctx, app)
	}
	return nil
}
