package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/rhythm"
)

// PlanningStep identifies a step of the planning flow.
type PlanningStep string

const (
	PlanningRollover        PlanningStep = "rollover"
	PlanningAddTasks        PlanningStep = "add_tasks"
	PlanningPartnerRequests PlanningStep = "partner_requests"
	PlanningConfirmation    PlanningStep = "confirmation"
)

// PlanningSummary tallies what the wizard run added to the week.
type PlanningSummary struct {
	TotalPlanned     int
	RolloverAdded    int
	NewTasks         int
	AcceptedRequests int
}

// PlanningWizard walks the user through planning the current week:
// rolling over unfinished tasks, adding new ones, and answering partner
// requests. Mutations are persisted as they happen; a checkpoint after
// each one makes an interrupted run resumable.
type PlanningWizard struct {
	tasks    repository.TaskRepo
	weeks    repository.WeekRepo
	goals    repository.GoalRepo
	progress repository.ProgressRepo
	id       identity.Identity
	clock    func() time.Time
	effects  *effectEmitter

	weekID string
	step   PlanningStep

	candidates     []*domain.Task
	candidateIndex int
	processedIDs   []string
	rolledIDs      []string

	requests       []*domain.Task
	requestIndex   int
	answeredReqIDs []string
	acceptedIDs    []string

	addedTaskIDs   []string
	selectedGoalID string
}

// PlanningOption configures a PlanningWizard.
type PlanningOption func(*PlanningWizard)

// WithPlanningClock overrides the wizard's notion of now. Used in tests.
func WithPlanningClock(clock func() time.Time) PlanningOption {
	return func(w *PlanningWizard) { w.clock = clock }
}

func NewPlanningWizard(
	tasks repository.TaskRepo,
	weeks repository.WeekRepo,
	goals repository.GoalRepo,
	progress repository.ProgressRepo,
	id identity.Identity,
	opts ...PlanningOption,
) *PlanningWizard {
	w := &PlanningWizard{
		tasks:    tasks,
		weeks:    weeks,
		goals:    goals,
		progress: progress,
		id:       id,
		clock:    func() time.Time { return time.Now().UTC() },
		effects:  newEffectEmitter(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Effects is the one-shot side-effect stream for the hosting UI.
func (w *PlanningWizard) Effects() <-chan Effect {
	return w.effects.stream()
}

// Start resolves the current week, loads rollover candidates and pending
// partner requests, resumes a matching checkpoint if one exists, and emits
// the initial navigation effect.
func (w *PlanningWizard) Start(ctx context.Context) error {
	now := w.clock()
	w.weekID = calendar.WeekIDFor(now)
	if _, err := w.weeks.GetOrCreate(ctx, w.weekID, w.id.UserID); err != nil {
		return fmt.Errorf("resolving current week: %w", err)
	}

	prevWeekID, err := calendar.Previous(w.weekID)
	if err != nil {
		return err
	}
	prevTasks, err := w.tasks.ListByWeek(ctx, prevWeekID, w.id.UserID)
	if err != nil {
		return fmt.Errorf("loading previous week tasks: %w", err)
	}
	w.candidates = rhythm.RolloverCandidates(prevTasks)

	pending, err := w.tasks.ListByStatus(ctx, domain.TaskPendingAcceptance, w.id.UserID)
	if err != nil {
		return fmt.Errorf("loading partner requests: %w", err)
	}
	w.requests = requestsForWeek(pending, w.weekID)

	resumed, err := w.restoreCheckpoint(ctx)
	if err != nil {
		return err
	}
	if !resumed {
		w.step = PlanningAddTasks
		if len(w.candidates) > 0 {
			w.step = PlanningRollover
		}
	}

	w.effects.emit(NavigateToStep{Step: string(w.step)})
	return nil
}

func requestsForWeek(tasks []*domain.Task, weekID string) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.WeekID == weekID && t.IsPartnerRequest() {
			out = append(out, t)
		}
	}
	return out
}

// restoreCheckpoint resumes a stored run for the current week; a checkpoint
// for any other week is stale and silently discarded.
func (w *PlanningWizard) restoreCheckpoint(ctx context.Context) (bool, error) {
	rec, err := w.progress.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading planning checkpoint: %w", err)
	}
	if rec.WeekID != w.weekID {
		if err := w.progress.Clear(ctx); err != nil {
			return false, fmt.Errorf("discarding stale checkpoint: %w", err)
		}
		return false, nil
	}

	var saved PlanningProgress
	if err := json.Unmarshal(rec.Payload, &saved); err != nil {
		if clearErr := w.progress.Clear(ctx); clearErr != nil {
			return false, fmt.Errorf("discarding unreadable checkpoint: %w", clearErr)
		}
		return false, nil
	}

	w.step = saved.Step
	w.processedIDs = saved.ProcessedCandidates
	w.rolledIDs = saved.RolledCandidates
	w.answeredReqIDs = saved.ProcessedRequests
	w.acceptedIDs = saved.AcceptedRequests
	w.addedTaskIDs = saved.AddedTaskIDs

	w.candidates = dropProcessed(w.candidates, toSet(saved.ProcessedCandidates))
	w.candidateIndex = 0
	w.requests = dropProcessed(w.requests, toSet(saved.ProcessedRequests))
	w.requestIndex = 0
	return true, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func dropProcessed(tasks []*domain.Task, processed map[string]bool) []*domain.Task {
	out := tasks[:0:0]
	for _, t := range tasks {
		if !processed[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Step returns the current step.
func (w *PlanningWizard) Step() PlanningStep {
	return w.step
}

// WeekID returns the week being planned.
func (w *PlanningWizard) WeekID() string {
	return w.weekID
}

// CurrentCandidate returns the rollover candidate under the cursor, or nil
// once the cursor has advanced past the last one.
func (w *PlanningWizard) CurrentCandidate() *domain.Task {
	if w.candidateIndex >= len(w.candidates) {
		return nil
	}
	return w.candidates[w.candidateIndex]
}

// RemainingCandidates counts candidates not yet added or skipped.
func (w *PlanningWizard) RemainingCandidates() int {
	return len(w.candidates) - w.candidateIndex
}

// AddCandidate materializes the current rollover candidate into this week
// and advances the cursor.
func (w *PlanningWizard) AddCandidate(ctx context.Context) error {
	candidate := w.CurrentCandidate()
	if candidate == nil {
		return nil
	}
	rolled := rhythm.Materialize(candidate, w.weekID, w.clock())
	if err := w.tasks.Create(ctx, rolled); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't add the task. Try again."})
		return fmt.Errorf("materializing rollover: %w", err)
	}
	w.processedIDs = append(w.processedIDs, candidate.ID)
	w.rolledIDs = append(w.rolledIDs, rolled.ID)
	w.candidateIndex++
	w.checkpoint(ctx)
	return nil
}

// SkipCandidate advances past the current candidate without carrying it
// over.
func (w *PlanningWizard) SkipCandidate(ctx context.Context) {
	candidate := w.CurrentCandidate()
	if candidate == nil {
		return
	}
	w.processedIDs = append(w.processedIDs, candidate.ID)
	w.candidateIndex++
	w.checkpoint(ctx)
}

// CompleteRolloverStep moves to task entry. Explicit: running out of
// candidates never transitions on its own.
func (w *PlanningWizard) CompleteRolloverStep(ctx context.Context) {
	if w.step != PlanningRollover {
		return
	}
	w.step = PlanningAddTasks
	w.checkpoint(ctx)
	w.effects.emit(NavigateToStep{Step: string(w.step)})
}

// GoalSuggestions lists the user's active goals for linking new tasks.
func (w *PlanningWizard) GoalSuggestions(ctx context.Context) ([]*domain.Goal, error) {
	return w.goals.ListActive(ctx, w.id.UserID)
}

// SelectGoal marks a suggested goal to be linked to the next created task.
func (w *PlanningWizard) SelectGoal(goalID string) {
	w.selectedGoalID = goalID
}

// ClearGoalSelection drops the pending goal link.
func (w *PlanningWizard) ClearGoalSelection() {
	w.selectedGoalID = ""
}

// AddTask creates a new task for this week. The title is trimmed and must
// be non-blank; a blank submission is rejected without touching any state.
// Creating a task consumes the pending goal selection.
func (w *PlanningWizard) AddTask(ctx context.Context, title, notes string, priority domain.TaskPriority, labels []string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrBlankTitle
	}
	if priority == "" {
		priority = domain.PriorityNormal
	}

	now := w.clock()
	task := &domain.Task{
		ID:        uuid.NewString(),
		WeekID:    w.weekID,
		OwnerID:   w.id.UserID,
		Title:     title,
		Notes:     notes,
		Priority:  priority,
		Labels:    labels,
		Status:    domain.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if w.selectedGoalID != "" {
		goalID := w.selectedGoalID
		task.LinkedGoalID = &goalID
	}

	if err := w.tasks.Create(ctx, task); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save the task. Try again."})
		return nil, fmt.Errorf("creating task: %w", err)
	}
	w.selectedGoalID = ""
	w.addedTaskIDs = append(w.addedTaskIDs, task.ID)
	w.checkpoint(ctx)
	w.effects.emit(ClearInputFocus{})
	return task, nil
}

// CompleteAddTasksStep moves to partner requests when any are pending,
// otherwise straight to confirmation.
func (w *PlanningWizard) CompleteAddTasksStep(ctx context.Context) {
	if w.step != PlanningAddTasks {
		return
	}
	if w.requestIndex < len(w.requests) {
		w.step = PlanningPartnerRequests
	} else {
		w.step = PlanningConfirmation
	}
	w.checkpoint(ctx)
	w.effects.emit(NavigateToStep{Step: string(w.step)})
}

// CurrentRequest returns the partner request under the cursor, or nil once
// all requests have been answered.
func (w *PlanningWizard) CurrentRequest() *domain.Task {
	if w.requestIndex >= len(w.requests) {
		return nil
	}
	return w.requests[w.requestIndex]
}

// AcceptRequest moves the current partner request into the plan and
// advances; answering the last request moves on to confirmation.
func (w *PlanningWizard) AcceptRequest(ctx context.Context) error {
	request := w.CurrentRequest()
	if request == nil {
		return nil
	}
	if err := w.tasks.UpdateStatus(ctx, request.ID, domain.TaskPending); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't accept the request. Try again."})
		return fmt.Errorf("accepting partner request: %w", err)
	}
	w.acceptedIDs = append(w.acceptedIDs, request.ID)
	w.answeredReqIDs = append(w.answeredReqIDs, request.ID)
	w.advanceRequest(ctx)
	return nil
}

// DiscussRequest defers the current request without changing it.
func (w *PlanningWizard) DiscussRequest(ctx context.Context) {
	request := w.CurrentRequest()
	if request == nil {
		return
	}
	w.answeredReqIDs = append(w.answeredReqIDs, request.ID)
	w.advanceRequest(ctx)
}

// CompletePartnerRequestsStep moves to confirmation once no requests remain
// under the cursor. A resumed run can land here with an empty queue when its
// pending request has since changed hands.
func (w *PlanningWizard) CompletePartnerRequestsStep(ctx context.Context) {
	if w.step != PlanningPartnerRequests || w.CurrentRequest() != nil {
		return
	}
	w.step = PlanningConfirmation
	w.checkpoint(ctx)
	w.effects.emit(NavigateToStep{Step: string(w.step)})
}

func (w *PlanningWizard) advanceRequest(ctx context.Context) {
	w.requestIndex++
	if w.requestIndex >= len(w.requests) {
		w.step = PlanningConfirmation
		w.checkpoint(ctx)
		w.effects.emit(NavigateToStep{Step: string(w.step)})
		return
	}
	w.checkpoint(ctx)
}

// Summary tallies what this run planned.
func (w *PlanningWizard) Summary() PlanningSummary {
	s := PlanningSummary{
		RolloverAdded:    len(w.rolledIDs),
		NewTasks:         len(w.addedTaskIDs),
		AcceptedRequests: len(w.acceptedIDs),
	}
	s.TotalPlanned = s.RolloverAdded + s.NewTasks + s.AcceptedRequests
	return s
}

// CompletePlanning marks the week's planning as done, clears the
// checkpoint, and leaves the wizard.
func (w *PlanningWizard) CompletePlanning(ctx context.Context) error {
	if err := w.weeks.MarkPlanningCompleted(ctx, w.weekID, w.id.UserID, w.clock()); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't finish planning. Try again."})
		return fmt.Errorf("completing planning: %w", err)
	}
	if err := w.progress.Clear(ctx); err != nil {
		return fmt.Errorf("clearing planning checkpoint: %w", err)
	}
	w.effects.emit(TriggerHaptic{})
	w.effects.emit(ExitWizard{})
	return nil
}

// Exit leaves the wizard keeping the checkpoint so the run can resume.
func (w *PlanningWizard) Exit(ctx context.Context) {
	w.checkpoint(ctx)
	w.effects.emit(ExitWizard{})
}

func (w *PlanningWizard) checkpoint(ctx context.Context) {
	payload, err := json.Marshal(PlanningProgress{
		WeekID:              w.weekID,
		Step:                w.step,
		ProcessedCandidates: w.processedIDs,
		RolledCandidates:    w.rolledIDs,
		ProcessedRequests:   w.answeredReqIDs,
		AcceptedRequests:    w.acceptedIDs,
		AddedTaskIDs:        w.addedTaskIDs,
	})
	if err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save progress."})
		return
	}
	if err := w.progress.Save(ctx, w.weekID, payload); err != nil {
		w.effects.emit(ShowMessage{Text: "Couldn't save progress."})
	}
}
