package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/testutil"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	database := testutil.NewTestDB(t)
	weekRepo := repository.NewSQLiteWeekRepo(database)
	profileRepo := repository.NewSQLiteProfileRepo(database)

	out := &bytes.Buffer{}
	app := &App{
		Tasks:            repository.NewSQLiteTaskRepo(database),
		Weeks:            weekRepo,
		Goals:            repository.NewSQLiteGoalRepo(database),
		PlanningProgress: repository.NewSQLiteProgressRepo(database, repository.ProgressPlanning),
		ReviewProgress:   repository.NewSQLiteProgressRepo(database, repository.ProgressReview),
		UoW:              testutil.NewTestUoW(database),
		Streaks:          service.NewStreakService(weekRepo, profileRepo),
		Identity:         identity.StaticProvider{Identity: identity.Identity{UserID: "user-1"}},
		IsInteractive:    func() bool { return false },
		Out:              out,
	}
	return app, out
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	app, _ := newTestApp(t)
	root := NewRootCmd(app)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "plan")
	assert.Contains(t, names, "review")
	assert.Contains(t, names, "status")
}

func TestPlanCmd_QuickAdd(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, execute(t, app, "plan", "--add", "Water plants", "--priority", "high", "--label", "home"))
	assert.Contains(t, out.String(), "Water plants")

	weekID := calendar.WeekIDFor(time.Now().UTC())
	tasks, err := app.Tasks.ListByWeek(context.Background(), weekID, "user-1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Water plants", tasks[0].Title)
	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, []string{"home"}, tasks[0].Labels)
}

func TestPlanCmd_QuickAdd_RejectsInvalidPriority(t *testing.T) {
	app, _ := newTestApp(t)
	err := execute(t, app, "plan", "--add", "Task", "--priority", "urgent")
	assert.Error(t, err)
}

func TestPlanCmd_RefusesNonInteractiveWizard(t *testing.T) {
	app, _ := newTestApp(t)
	err := execute(t, app, "plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--add")
}

func TestReviewCmd_RefusesNonInteractive(t *testing.T) {
	app, _ := newTestApp(t)
	assert.Error(t, execute(t, app, "review"))
}

func TestStatusCmd_PrintsOverview(t *testing.T) {
	app, out := newTestApp(t)
	weekID := calendar.WeekIDFor(time.Now().UTC())
	task := testutil.NewTestTask(weekID, "user-1", "Call the bank")
	require.NoError(t, app.Tasks.Create(context.Background(), task))

	require.NoError(t, execute(t, app, "status"))
	assert.Contains(t, out.String(), weekID)
	assert.Contains(t, out.String(), "Call the bank")
}

func TestStatusCmd_HistoryExcludesCurrentWeek(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()
	current := calendar.WeekIDFor(time.Now().UTC())
	previous, err := calendar.Previous(current)
	require.NoError(t, err)

	_, err = app.Weeks.GetOrCreate(ctx, previous, "user-1")
	require.NoError(t, err)
	require.NoError(t, app.Tasks.Create(ctx, testutil.NewTestTask(previous, "user-1", "Old task",
		testutil.WithStatus(domain.TaskCompleted))))

	require.NoError(t, execute(t, app, "status", "--history"))
	assert.Contains(t, out.String(), previous)
	assert.Contains(t, out.String(), "1/1")
}

func TestPriorityFlag(t *testing.T) {
	var p priorityFlag
	require.NoError(t, p.Set("low"))
	assert.Equal(t, "low", p.String())
	assert.Error(t, p.Set("urgent"))
	assert.Equal(t, "priority", p.Type())
}
