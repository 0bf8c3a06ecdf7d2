package wizard

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/testutil"
)

// 2025-03-12 falls in 2025-W11; the previous week is 2025-W10.
const (
	planWeek = "2025-W11"
	prevWeek = "2025-W10"
)

var testIdentity = identity.Identity{UserID: "user-1", PartnerID: "partner-1", PartnerName: "Alex"}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

type planningFixture struct {
	db       *sql.DB
	tasks    repository.TaskRepo
	weeks    repository.WeekRepo
	goals    repository.GoalRepo
	progress repository.ProgressRepo
}

func newPlanningFixture(t *testing.T) *planningFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &planningFixture{
		db:       database,
		tasks:    repository.NewSQLiteTaskRepo(database),
		weeks:    repository.NewSQLiteWeekRepo(database),
		goals:    repository.NewSQLiteGoalRepo(database),
		progress: repository.NewSQLiteProgressRepo(database, repository.ProgressPlanning),
	}
}

func (f *planningFixture) wizard(t *testing.T) *PlanningWizard {
	t.Helper()
	return NewPlanningWizard(f.tasks, f.weeks, f.goals, f.progress, testIdentity, WithPlanningClock(fixedClock()))
}

func TestPlanningWizard_StartsAtAddTasksWhenNothingToRoll(t *testing.T) {
	f := newPlanningFixture(t)
	w := f.wizard(t)
	ctx := context.Background()

	require.NoError(t, w.Start(ctx))
	assert.Equal(t, PlanningAddTasks, w.Step())

	w.CompleteAddTasksStep(ctx)
	assert.Equal(t, PlanningConfirmation, w.Step(), "no pending requests skips straight to confirmation")
}

func TestPlanningWizard_StartsAtRolloverWithCandidates(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(prevWeek, testIdentity.UserID, "Unfinished")))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, PlanningRollover, w.Step())
	require.NotNil(t, w.CurrentCandidate())
	assert.Equal(t, "Unfinished", w.CurrentCandidate().Title)
}

func TestPlanningWizard_AddCandidateMaterializesIntoCurrentWeek(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	original := testutil.NewTestTask(prevWeek, testIdentity.UserID, "Fix the bike")
	require.NoError(t, f.tasks.Create(ctx, original))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.AddCandidate(ctx))

	assert.Nil(t, w.CurrentCandidate(), "cursor advanced past the only candidate")
	assert.Equal(t, PlanningRollover, w.Step(), "running out of candidates does not auto-advance the step")

	current, err := f.tasks.ListByWeek(ctx, planWeek, testIdentity.UserID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "Fix the bike", current[0].Title)
	assert.Equal(t, domain.TaskPending, current[0].Status)
	require.NotNil(t, current[0].RolledFromWeekID)
	assert.Equal(t, prevWeek, *current[0].RolledFromWeekID)

	w.CompleteRolloverStep(ctx)
	assert.Equal(t, PlanningAddTasks, w.Step())
}

func TestPlanningWizard_SkipCandidateDoesNotMaterialize(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(prevWeek, testIdentity.UserID, "Maybe later")))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	w.SkipCandidate(ctx)

	current, err := f.tasks.ListByWeek(ctx, planWeek, testIdentity.UserID)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestPlanningWizard_AddTask_BlankTitleRejected(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))

	_, err := w.AddTask(ctx, "   ", "", domain.PriorityNormal, nil)
	assert.ErrorIs(t, err, ErrBlankTitle)

	current, listErr := f.tasks.ListByWeek(ctx, planWeek, testIdentity.UserID)
	require.NoError(t, listErr)
	assert.Empty(t, current, "blank submission must not mutate state")
}

func TestPlanningWizard_AddTask_TrimsTitle(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))

	task, err := w.AddTask(ctx, "  Water plants  ", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Water plants", task.Title)
	assert.Equal(t, domain.PriorityNormal, task.Priority)
}

func TestPlanningWizard_GoalSelectionConsumedByNextTask(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	goal := testutil.NewTestGoal(testIdentity.UserID, "Exercise more")
	require.NoError(t, f.goals.Create(ctx, goal))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))

	suggestions, err := w.GoalSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	w.SelectGoal(goal.ID)
	linked, err := w.AddTask(ctx, "Morning run", "", domain.PriorityHigh, nil)
	require.NoError(t, err)
	require.NotNil(t, linked.LinkedGoalID)
	assert.Equal(t, goal.ID, *linked.LinkedGoalID)

	unlinked, err := w.AddTask(ctx, "Groceries", "", "", nil)
	require.NoError(t, err)
	assert.Nil(t, unlinked.LinkedGoalID, "creating a task clears the goal selection")
}

func TestPlanningWizard_AcceptRequestFlow(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	request := testutil.NewTestTask(planWeek, testIdentity.UserID, "Call the plumber",
		testutil.WithRequestedBy(testIdentity.PartnerID))
	require.NoError(t, f.tasks.Create(ctx, request))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, PlanningAddTasks, w.Step())

	w.CompleteAddTasksStep(ctx)
	assert.Equal(t, PlanningPartnerRequests, w.Step(), "a pending request routes through partner requests")

	require.NoError(t, w.AcceptRequest(ctx))
	assert.Equal(t, PlanningConfirmation, w.Step(), "answering the last request advances to confirmation")

	accepted, err := f.tasks.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, accepted.Status)
}

func TestPlanningWizard_DiscussRequestLeavesTaskUntouched(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	request := testutil.NewTestTask(planWeek, testIdentity.UserID, "Plan a date night",
		testutil.WithRequestedBy(testIdentity.PartnerID))
	require.NoError(t, f.tasks.Create(ctx, request))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	w.CompleteAddTasksStep(ctx)
	w.DiscussRequest(ctx)

	assert.Equal(t, PlanningConfirmation, w.Step())
	deferred, err := f.tasks.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPendingAcceptance, deferred.Status)
}

func TestPlanningWizard_ResumedRunAdvancesPastVanishedRequest(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	request := testutil.NewTestTask(planWeek, testIdentity.UserID, "Call the plumber",
		testutil.WithRequestedBy(testIdentity.PartnerID))
	require.NoError(t, f.tasks.Create(ctx, request))

	first := f.wizard(t)
	require.NoError(t, first.Start(ctx))
	first.CompleteAddTasksStep(ctx)
	require.Equal(t, PlanningPartnerRequests, first.Step())
	first.Exit(ctx)

	// The request is withdrawn between runs.
	require.NoError(t, f.tasks.UpdateStatus(ctx, request.ID, domain.TaskDeclined))

	resumed := f.wizard(t)
	require.NoError(t, resumed.Start(ctx))
	require.Equal(t, PlanningPartnerRequests, resumed.Step())
	require.Nil(t, resumed.CurrentRequest())

	resumed.CompletePartnerRequestsStep(ctx)
	assert.Equal(t, PlanningConfirmation, resumed.Step(), "an empty request queue must not strand the run")
}

func TestPlanningWizard_CompletePartnerRequestsStepRequiresEmptyQueue(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(planWeek, testIdentity.UserID, "Pending ask",
		testutil.WithRequestedBy(testIdentity.PartnerID))))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	w.CompleteAddTasksStep(ctx)
	require.Equal(t, PlanningPartnerRequests, w.Step())

	w.CompletePartnerRequestsStep(ctx)
	assert.Equal(t, PlanningPartnerRequests, w.Step(), "an unanswered request cannot be stepped over")
}

func TestPlanningWizard_ResumesSameWeekCheckpoint(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(prevWeek, testIdentity.UserID, "First")))
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(prevWeek, testIdentity.UserID, "Second")))

	first := f.wizard(t)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.AddCandidate(ctx))
	first.Exit(ctx)

	resumed := f.wizard(t)
	require.NoError(t, resumed.Start(ctx))
	assert.Equal(t, PlanningRollover, resumed.Step())
	assert.Equal(t, 1, resumed.RemainingCandidates(), "the already-added candidate is not offered again")
	assert.Equal(t, 1, resumed.Summary().RolloverAdded)
}

func TestPlanningWizard_DiscardsStaleCheckpoint(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	require.NoError(t, f.progress.Save(ctx, "2024-W50", []byte(`{"week_id":"2024-W50","step":"confirmation"}`)))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, PlanningAddTasks, w.Step(), "a checkpoint from another week starts fresh")

	_, err := f.progress.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlanningWizard_CompletePlanning(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))

	_, err := w.AddTask(ctx, "Only task", "", "", nil)
	require.NoError(t, err)
	w.CompleteAddTasksStep(ctx)
	require.NoError(t, w.CompletePlanning(ctx))

	week, err := f.weeks.GetByID(ctx, planWeek, testIdentity.UserID)
	require.NoError(t, err)
	assert.True(t, week.IsPlanningComplete())

	_, err = f.progress.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound, "completing planning clears the checkpoint")
}

// Full run: two rollover candidates, one new task, one partner request.
func TestPlanningWizard_EndToEnd(t *testing.T) {
	f := newPlanningFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(prevWeek, testIdentity.UserID, "Carry me")))
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(prevWeek, testIdentity.UserID, "Me too")))
	require.NoError(t, f.tasks.Create(ctx, testutil.NewTestTask(planWeek, testIdentity.UserID, "From Alex",
		testutil.WithRequestedBy(testIdentity.PartnerID))))

	w := f.wizard(t)
	require.NoError(t, w.Start(ctx))
	require.Equal(t, PlanningRollover, w.Step())

	require.NoError(t, w.AddCandidate(ctx))
	require.NoError(t, w.AddCandidate(ctx))
	w.CompleteRolloverStep(ctx)
	require.Equal(t, PlanningAddTasks, w.Step())

	_, err := w.AddTask(ctx, "Something new", "", "", nil)
	require.NoError(t, err)
	w.CompleteAddTasksStep(ctx)
	require.Equal(t, PlanningPartnerRequests, w.Step())

	require.NoError(t, w.AcceptRequest(ctx))
	require.Equal(t, PlanningConfirmation, w.Step())

	summary := w.Summary()
	assert.Equal(t, 2, summary.RolloverAdded)
	assert.Equal(t, 1, summary.NewTasks)
	assert.Equal(t, 1, summary.AcceptedRequests)
	assert.Equal(t, 4, summary.TotalPlanned)
}
