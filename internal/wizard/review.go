package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/rhythm"
	"github.com/tandemhq/tandem/internal/service"
)

// ReviewStep identifies a step of the review flow.
type ReviewStep string

const (
	ReviewModeSelect ReviewStep = "mode_select"
	ReviewRating     ReviewStep = "rating"
	ReviewTaskReview ReviewStep = "task_review"
	ReviewSummary    ReviewStep = "summary"
)

// ReviewWizard walks the user through reviewing the current week: picking
// a mode, rating the week, deciding an outcome per task, and a closing
// summary. Outcomes and the rating are persisted as soon as they are
// confirmed; per-task notes are debounced.
type ReviewWizard struct {
	tasks    repository.TaskRepo
	weeks    repository.WeekRepo
	goals    repository.GoalRepo
	progress repository.ProgressRepo
	uow      db.UnitOfWork
	streaks  service.StreakService
	id       identity.Identity
	clock    func() time.Time
	effects  *effectEmitter
	notes    *debouncer

	weekID string
	step   ReviewStep
	mode   domain.ReviewMode

	rating          int
	ratingNote      string
	ratingPersisted bool

	ordered   []*domain.Task
	taskIndex int
	outcomes  map[string]domain.TaskStatus

	saved     *ReviewProgress
	finalized bool
	streak    domain.StreakResult
}

// ReviewOption configures a ReviewWizard.
type ReviewOption func(*ReviewWizard)

// WithReviewClock overrides the wizard's notion of now. Used in tests.
func WithReviewClock(clock func() time.Time) ReviewOption {
	return func(w *ReviewWizard) { w.clock = clock }
}

// WithNoteDebounce overrides the note quiet interval. Used in tests.
func WithNoteDebounce(d time.Duration) ReviewOption {
	return func(w *ReviewWizard) { w.notes = newDebouncer(d) }
}

func NewReviewWizard(
	tasks repository.TaskRepo,
	weeks repository.WeekRepo,
	goals repository.GoalRepo,
	progress repository.ProgressRepo,
	uow db.UnitOfWork,
	streaks service.StreakService,
	id identity.Identity,
	opts ...ReviewOption,
) *ReviewWizard {
	w := &ReviewWizard{
		tasks:    tasks,
		weeks:    weeks,
		goals:    goals,
		progress: progress,
		uow:      uow,
		streaks:  streaks,
		id:       id,
		clock:    func() time.Time { return time.Now().UTC() },
		effects:  newEffectEmitter(),
		notes:    newDebouncer(noteDebounceInterval),
		step:     ReviewModeSelect,
		outcomes: make(map[string]domain.TaskStatus),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Effects is the one-shot side-effect stream for the hosting UI.
func (w *ReviewWizard) Effects() <-chan Effect {
	return w.effects.stream()
}

// Start resolves the current week and its tasks. If a checkpoint for this
// week exists, the wizard reports incomplete progress and waits for an
// explicit Resume or Discard before emitting anything else.
func (w *ReviewWizard) Start(ctx context.Context) error {
	now := w.clock()
	w.weekID = calendar.WeekIDFor(now)
	if _, err := w.weeks.GetOrCreate(ctx, w.weekID, w.id.UserID); err != nil {
		return fmt.Errorf("resolving current week: %w", err)
	}

	tasks, err := w.tasks.ListByWeek(ctx, w.weekID, w.id.UserID)
	if err != nil {
		return fmt.Errorf("loading week tasks: %w", err)
	}
	w.ordered = rhythm.OrderForReview(tasks)
	w.seedOutcomes()

	rec, err := w.progress.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return fmt.Errorf("loading review checkpoint: %w", err)
	case rec.WeekID != w.weekID:
		if err := w.progress.Clear(ctx); err != nil {
			return fmt.Errorf("discarding stale checkpoint: %w", err)
		}
	default:
		var saved ReviewProgress
		if err := json.Unmarshal(rec.Payload, &saved); err == nil {
			w.saved = &saved
			return nil
		}
		if err := w.progress.Clear(ctx); err != nil {
			return fmt.Errorf("discarding unreadable checkpoint: %w", err)
		}
	}

	w.effects.emit(NavigateToStep{Step: string(w.step)})
	return nil
}

// HasIncompleteProgress reports whether a checkpoint for this week is
// waiting on a resume-or-discard decision.
func (w *ReviewWizard) HasIncompleteProgress() bool {
	return w.saved != nil
}

// Resume restores the stored checkpoint and navigates to where the run
// left off.
func (w *ReviewWizard) Resume(ctx context.Context) {
	if w.saved == nil {
		return
	}
	saved := w.saved
	w.saved = nil
	w.step = saved.Step
	w.mode = saved.Mode
	w.rating = saved.Rating
	w.ratingNote = saved.RatingNote
	w.ratingPersisted = saved.RatingPersisted
	w.taskIndex = saved.TaskIndex
	if saved.Outcomes != nil {
		w.outcomes = saved.Outcomes
	}
	w.seedOutcomes()
	if w.taskIndex >= len(w.ordered) {
		w.taskIndex = 0
	}
	w.effects.emit(NavigateToStep{Step: string(w.step)})
}

// Discard deletes the stored checkpoint and starts the review from the
// beginning.
func (w *ReviewWizard) Discard(ctx context.Context) error {
	if err := w.progress.Clear(ctx); err != nil {
		return fmt.Errorf("discarding review checkpoint: %w", err)
	}
	w.saved = nil
	w.step = ReviewModeSelect
	w.mode = ""
	w.rating = 0
	w.ratingNote = ""
	w.ratingPersisted = false
	w.taskIndex = 0
	w.outcomes = make(map[string]domain.TaskStatus)
	w.seedOutcomes()
	w.effects.emit(NavigateToStep{Step: string(w.step)})
	return nil
}

// seedOutcomes counts tasks that already carry a review outcome toward the
// summary without re-marking them. Outcomes recorded during the run win over
// the seeded status; declined tasks stay out of the breakdown.
func (w *ReviewWizard) seedOutcomes() {
	for _, task := range w.ordered {
		if _, ok := w.outcomes[task.ID]; ok {
			continue
		}
		if domain.ReviewOutcomes[task.Status] {
			w.outcomes[task.ID] = task.Status
		}
	}
}

// Step returns the current step.
func (w *ReviewWizard) Step() ReviewStep {
	return w.step
}

// WeekID returns the week being reviewed.
func (w *ReviewWizard) WeekID() string {
	return w.weekID
}

// Mode returns the selected review mode.
func (w *ReviewWizard) Mode() domain.ReviewMode {
	return w.mode
}

// SelectMode records solo or together and moves on to rating.
func (w *ReviewWizard) SelectMode(ctx context.Context, mode domain.ReviewMode) {
	if w.step != ReviewModeSelect {
		return
	}
	w.mode = mode
	w.step = ReviewRating
	w.checkpoint(ctx)
	w.effects.emit(NavigateToStep{Step: string(w.step)})
}

// SetRating stages the week rating without persisting it.
func (w *ReviewWizard) SetRating(rating int) {
	w.rating = rating
}

// SetRatingNote stages the optional week note.
func (w *ReviewWizard) SetRatingNote(note string) {
	w.ratingNote = note
}

// ConfirmRating validates and persists the week rating, then moves to the
// first task, or straight to the summary when the week has no tasks.
func (w *ReviewWizard) ConfirmRating(ctx context.Context) error {
	if w.step != ReviewRating {
		return nil
	}
	if w.rating < 1 || w.rating > 5 {
		return ErrRatingOutOfRange
	}
	if err := w.weeks.UpdateReview(ctx, w.weekID, w.id.UserID, w.rating, w.ratingNote, w.clock()); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save the rating. Try again."})
		return fmt.Errorf("persisting week rating: %w", err)
	}
	w.ratingPersisted = true

	if len(w.ordered) == 0 {
		w.step = ReviewSummary
	} else {
		w.step = ReviewTaskReview
		w.taskIndex = 0
	}
	w.checkpoint(ctx)
	w.effects.emit(NavigateToStep{Step: string(w.step)})
	return nil
}

// CurrentTask returns the task under review, or nil outside TASK_REVIEW.
func (w *ReviewWizard) CurrentTask() *domain.Task {
	if w.step != ReviewTaskReview || w.taskIndex >= len(w.ordered) {
		return nil
	}
	return w.ordered[w.taskIndex]
}

// TaskIndex returns the zero-based position within the review order.
func (w *ReviewWizard) TaskIndex() int {
	return w.taskIndex
}

// TaskCount returns the number of tasks under review.
func (w *ReviewWizard) TaskCount() int {
	return len(w.ordered)
}

// Outcome returns the review outcome for the task: recorded during this
// run, or already settled when it started.
func (w *ReviewWizard) Outcome(taskID string) (domain.TaskStatus, bool) {
	outcome, ok := w.outcomes[taskID]
	return outcome, ok
}

// RecordOutcome persists the outcome for the task under review. Only
// completed, tried, and skipped are legal; anything else is a programming
// error and is rejected loudly. Completing a goal-linked task bumps the
// goal's progress.
func (w *ReviewWizard) RecordOutcome(ctx context.Context, outcome domain.TaskStatus) error {
	if !domain.ReviewOutcomes[outcome] {
		return fmt.Errorf("%w: got %q", ErrInvalidOutcome, outcome)
	}
	task := w.CurrentTask()
	if task == nil {
		return nil
	}
	if err := w.tasks.UpdateStatus(ctx, task.ID, outcome); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save the outcome. Try again."})
		return fmt.Errorf("persisting outcome: %w", err)
	}
	if outcome == domain.TaskCompleted && task.LinkedGoalID != nil {
		if err := w.goals.IncrementProgress(ctx, *task.LinkedGoalID, 1); err != nil {
			w.effects.emit(ShowMessage{Text: "Couldn't update the linked goal."})
		}
	}
	w.outcomes[task.ID] = outcome
	w.checkpoint(ctx)
	w.effects.emit(TriggerHaptic{})
	return nil
}

// EditTaskNote stages a per-task note; the write lands after a quiet
// period so rapid edits coalesce into one.
func (w *ReviewWizard) EditTaskNote(ctx context.Context, note string) {
	task := w.CurrentTask()
	if task == nil {
		return
	}
	taskID := task.ID
	w.notes.Trigger(func() {
		if err := w.tasks.UpdateReviewNote(ctx, taskID, note); err != nil {
			w.effects.emit(ShowMessage{Text: "Couldn't save the note."})
		}
	})
}

// Next advances to the following task, or to the summary from the last
// one.
func (w *ReviewWizard) Next(ctx context.Context) {
	if w.step != ReviewTaskReview {
		return
	}
	w.notes.Flush()
	if w.taskIndex >= len(w.ordered)-1 {
		w.step = ReviewSummary
		w.checkpoint(ctx)
		w.effects.emit(NavigateToStep{Step: string(w.step)})
		return
	}
	w.taskIndex++
	w.checkpoint(ctx)
}

// Previous steps back to the prior task, or to the rating step from the
// first one.
func (w *ReviewWizard) Previous(ctx context.Context) {
	if w.step != ReviewTaskReview {
		return
	}
	w.notes.Flush()
	if w.taskIndex == 0 {
		w.step = ReviewRating
		w.checkpoint(ctx)
		w.effects.emit(NavigateBack{})
		return
	}
	w.taskIndex--
	w.checkpoint(ctx)
}

// QuickFinish marks every task without a review decision as skipped in a
// single transaction, completes the review, and jumps to the summary.
// Already-reviewed tasks are never re-marked, so running it twice is a
// no-op the second time.
func (w *ReviewWizard) QuickFinish(ctx context.Context) error {
	if w.step != ReviewTaskReview && w.step != ReviewSummary {
		return nil
	}

	var unreviewed []*domain.Task
	for _, task := range w.ordered {
		if _, done := w.outcomes[task.ID]; done || task.Status.IsReviewed() {
			continue
		}
		unreviewed = append(unreviewed, task)
	}

	if len(unreviewed) > 0 {
		err := w.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txTasks := repository.NewSQLiteTaskRepo(tx)
			for _, task := range unreviewed {
				if err := txTasks.UpdateStatus(ctx, task.ID, domain.TaskSkipped); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			w.effects.emit(ShowMessage{Text: "Couldn't finish the review. Try again."})
			return fmt.Errorf("bulk-skipping unreviewed tasks: %w", err)
		}
		for _, task := range unreviewed {
			w.outcomes[task.ID] = domain.TaskSkipped
		}
	}

	if err := w.finalize(ctx); err != nil {
		return err
	}
	w.step = ReviewSummary
	w.effects.emit(NavigateToStep{Step: string(w.step)})
	return nil
}

// Stats computes the summary breakdown for this run.
func (w *ReviewWizard) Stats() domain.ReviewStats {
	return rhythm.ReviewStatsFor(w.outcomes, len(w.ordered))
}

// Streak returns the streak computed when the review was finalized.
func (w *ReviewWizard) Streak() domain.StreakResult {
	return w.streak
}

// Finish finalizes the review and leaves the wizard. With startNextWeek
// set, it signals the host to roll straight into planning instead of
// closing.
func (w *ReviewWizard) Finish(ctx context.Context, startNextWeek bool) error {
	if err := w.finalize(ctx); err != nil {
		return err
	}
	if startNextWeek {
		w.effects.emit(NavigateToStep{Step: StepPlanningEntry})
		return nil
	}
	w.effects.emit(ExitWizard{})
	return nil
}

// finalize persists the rating if it has not landed yet, clears the
// checkpoint, and recomputes the streak. Safe to call more than once.
func (w *ReviewWizard) finalize(ctx context.Context) error {
	w.notes.Flush()
	if !w.ratingPersisted && w.rating >= 1 && w.rating <= 5 {
		if err := w.weeks.UpdateReview(ctx, w.weekID, w.id.UserID, w.rating, w.ratingNote, w.clock()); err != nil {
			w.effects.emit(ShowMessage{Text: "Couldn't save the rating. Try again."})
			return fmt.Errorf("persisting week rating: %w", err)
		}
		w.ratingPersisted = true
	}
	if err := w.progress.Clear(ctx); err != nil {
		return fmt.Errorf("clearing review checkpoint: %w", err)
	}

	streak, err := w.streaks.CurrentStreak(ctx, w.id, w.weekID)
	if err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't refresh the streak."})
	} else {
		w.streak = streak
		if !w.finalized && streak.PendingMilestone > 0 {
			w.effects.emit(TriggerHaptic{})
		}
	}
	w.finalized = true
	return nil
}

// Teardown cancels any pending debounced note write. Call when the host
// context goes away mid-run.
func (w *ReviewWizard) Teardown() {
	w.notes.Cancel()
}

func (w *ReviewWizard) checkpoint(ctx context.Context) {
	payload, err := json.Marshal(ReviewProgress{
		WeekID:          w.weekID,
		Step:            w.step,
		Mode:            w.mode,
		Rating:          w.rating,
		RatingNote:      w.ratingNote,
		RatingPersisted: w.ratingPersisted,
		TaskIndex:       w.taskIndex,
		Outcomes:        w.outcomes,
	})
	if err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save progress."})
		return
	}
	if err := w.progress.Save(ctx, w.weekID, payload); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save progress."})
	}
}
