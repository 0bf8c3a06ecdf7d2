package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/testutil"
)

const testOwner = "user-1"

func TestTaskRepo_CreateAndGetByID(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	goalID := "goal-1"
	task := testutil.NewTestTask("2025-W11", testOwner, "Plan the trip",
		testutil.WithLabels("travel", "shared"),
		testutil.WithPriority(domain.PriorityHigh),
		testutil.WithLinkedGoal(goalID),
		testutil.WithNotes("check ferry times"),
	)
	require.NoError(t, repo.Create(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, fetched.ID)
	assert.Equal(t, "Plan the trip", fetched.Title)
	assert.Equal(t, "check ferry times", fetched.Notes)
	assert.Equal(t, domain.PriorityHigh, fetched.Priority)
	assert.Equal(t, []string{"travel", "shared"}, fetched.Labels)
	assert.Equal(t, domain.TaskPending, fetched.Status)
	require.NotNil(t, fetched.LinkedGoalID)
	assert.Equal(t, goalID, *fetched.LinkedGoalID)
	assert.Nil(t, fetched.RolledFromWeekID)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_ListByWeek_OrderedByCreation(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	late := testutil.NewTestTask("2025-W11", testOwner, "Later", testutil.WithCreatedAt(base.Add(time.Hour)))
	early := testutil.NewTestTask("2025-W11", testOwner, "Earlier", testutil.WithCreatedAt(base))
	other := testutil.NewTestTask("2025-W12", testOwner, "Other week")
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))
	require.NoError(t, repo.Create(ctx, other))

	list, err := repo.ListByWeek(ctx, "2025-W11", testOwner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Earlier", list[0].Title)
	assert.Equal(t, "Later", list[1].Title)
}

func TestTaskRepo_ListByStatus(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	partner := "partner-1"
	request := testutil.NewTestTask("2025-W11", testOwner, "Take out recycling", testutil.WithRequestedBy(partner))
	plain := testutil.NewTestTask("2025-W11", testOwner, "Groceries")
	require.NoError(t, repo.Create(ctx, request))
	require.NoError(t, repo.Create(ctx, plain))

	pending, err := repo.ListByStatus(ctx, domain.TaskPendingAcceptance, testOwner)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, request.ID, pending[0].ID)
	require.NotNil(t, pending[0].RequestedBy)
	assert.Equal(t, partner, *pending[0].RequestedBy)
}

func TestTaskRepo_ListIncompleteByWeek(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for _, status := range []domain.TaskStatus{
		domain.TaskPending, domain.TaskPendingAcceptance, domain.TaskCompleted,
		domain.TaskTried, domain.TaskSkipped, domain.TaskDeclined,
	} {
		task := testutil.NewTestTask("2025-W11", testOwner, string(status), testutil.WithStatus(status))
		require.NoError(t, repo.Create(ctx, task))
	}

	list, err := repo.ListIncompleteByWeek(ctx, "2025-W11", testOwner)
	require.NoError(t, err)
	assert.Len(t, list, 2, "only pending and pending_acceptance are incomplete")
}

func TestTaskRepo_UpdateStatus(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("2025-W11", testOwner, "Water plants")
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.UpdateStatus(ctx, task.ID, domain.TaskCompleted))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, fetched.Status)
}

func TestTaskRepo_UpdateStatus_RejectsInvalid(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("2025-W11", testOwner, "Water plants")
	require.NoError(t, repo.Create(ctx, task))

	assert.Error(t, repo.UpdateStatus(ctx, task.ID, domain.TaskStatus("bogus")))
}

func TestTaskRepo_UpdateStatus_NotFound(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	err := repo.UpdateStatus(context.Background(), "missing", domain.TaskCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_UpdateReviewNote(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("2025-W11", testOwner, "Call the bank")
	require.NoError(t, repo.Create(ctx, task))
	require.NoError(t, repo.UpdateReviewNote(ctx, task.ID, "they never picked up"))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "they never picked up", fetched.ReviewNote)
}

func TestTaskRepo_Delete(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("2025-W11", testOwner, "Temp")
	require.NoError(t, repo.Create(ctx, task))
	require.NoError(t, repo.Delete(ctx, task.ID))

	_, err := repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_WatchByWeek_EmitsOnMutation(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first := testutil.NewTestTask("2025-W11", testOwner, "First")
	require.NoError(t, repo.Create(ctx, first))

	updates, cancel, err := repo.WatchByWeek(ctx, "2025-W11", testOwner)
	require.NoError(t, err)
	defer cancel()

	initial := <-updates
	require.Len(t, initial, 1)

	second := testutil.NewTestTask("2025-W11", testOwner, "Second")
	require.NoError(t, repo.Create(ctx, second))

	select {
	case next := <-updates:
		assert.Len(t, next, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an update after mutation")
	}
}

func TestTaskRepo_WatchByWeek_CancelStopsStream(t *testing.T) {
	repo := NewSQLiteTaskRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	updates, cancel, err := repo.WatchByWeek(ctx, "2025-W11", testOwner)
	require.NoError(t, err)
	<-updates
	cancel()

	_, open := <-updates
	assert.False(t, open, "channel should close after cancel")
}
