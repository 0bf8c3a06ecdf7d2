package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/testutil"
)

func TestGoalRepo_CreateAndListActive(t *testing.T) {
	repo := NewSQLiteGoalRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	active := testutil.NewTestGoal(testOwner, "Run weekly", testutil.WithTarget(10))
	archived := testutil.NewTestGoal(testOwner, "Old goal", testutil.WithGoalStatus(domain.GoalArchived))
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, archived))

	goals, err := repo.ListActive(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Run weekly", goals[0].Title)
	assert.Equal(t, 10, goals[0].TargetCount)
}

func TestGoalRepo_IncrementProgress(t *testing.T) {
	repo := NewSQLiteGoalRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	goal := testutil.NewTestGoal(testOwner, "Read books", testutil.WithTarget(3))
	require.NoError(t, repo.Create(ctx, goal))

	require.NoError(t, repo.IncrementProgress(ctx, goal.ID, 1))
	fetched, err := repo.GetByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CurrentCount)
	assert.Equal(t, domain.GoalActive, fetched.Status)

	require.NoError(t, repo.IncrementProgress(ctx, goal.ID, 2))
	fetched, err = repo.GetByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.CurrentCount)
	assert.Equal(t, domain.GoalAchieved, fetched.Status, "reaching the target achieves the goal")
}

func TestGoalRepo_IncrementProgress_NotFound(t *testing.T) {
	repo := NewSQLiteGoalRepo(testutil.NewTestDB(t))
	err := repo.IncrementProgress(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
