package rhythm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

func taskWithStatus(weekID string, status domain.TaskStatus) *domain.Task {
	return &domain.Task{
		ID:      "task-" + string(status),
		WeekID:  weekID,
		OwnerID: "user-1",
		Title:   "Task " + string(status),
		Status:  status,
	}
}

func TestRolloverCandidates_OnlyPendingStatesEligible(t *testing.T) {
	tasks := []*domain.Task{
		taskWithStatus("2025-W10", domain.TaskPending),
		taskWithStatus("2025-W10", domain.TaskPendingAcceptance),
		taskWithStatus("2025-W10", domain.TaskCompleted),
		taskWithStatus("2025-W10", domain.TaskTried),
		taskWithStatus("2025-W10", domain.TaskSkipped),
		taskWithStatus("2025-W10", domain.TaskDeclined),
	}

	candidates := RolloverCandidates(tasks)
	require.Len(t, candidates, 2)
	assert.Equal(t, domain.TaskPending, candidates[0].Status)
	assert.Equal(t, domain.TaskPendingAcceptance, candidates[1].Status)
}

func TestRolloverCandidates_EmptyWeek(t *testing.T) {
	assert.Empty(t, RolloverCandidates(nil))
}

func TestMaterialize_CopiesFieldsAndSetsProvenance(t *testing.T) {
	goalID := "goal-1"
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	original := &domain.Task{
		ID:           "orig-1",
		WeekID:       "2025-W11",
		OwnerID:      "user-1",
		Title:        "Write the monthly budget",
		Notes:        "use last month's sheet",
		Priority:     domain.PriorityHigh,
		Labels:       []string{"money", "shared"},
		Status:       domain.TaskPending,
		LinkedGoalID: &goalID,
	}

	clone := Materialize(original, "2025-W12", now)

	assert.NotEqual(t, original.ID, clone.ID)
	assert.NotEmpty(t, clone.ID)
	assert.Equal(t, "2025-W12", clone.WeekID)
	assert.Equal(t, original.Title, clone.Title)
	assert.Equal(t, original.Notes, clone.Notes)
	assert.Equal(t, original.Priority, clone.Priority)
	assert.Equal(t, original.Labels, clone.Labels)
	assert.Equal(t, &goalID, clone.LinkedGoalID)
	assert.Equal(t, domain.TaskPending, clone.Status)
	require.NotNil(t, clone.RolledFromWeekID)
	assert.Equal(t, "2025-W11", *clone.RolledFromWeekID)

	// Original is untouched.
	assert.Equal(t, "2025-W11", original.WeekID)
	assert.Nil(t, original.RolledFromWeekID)
}

func TestMaterialize_NeverProducesTerminalState(t *testing.T) {
	now := time.Now().UTC()
	for _, status := range []domain.TaskStatus{domain.TaskPending, domain.TaskPendingAcceptance} {
		clone := Materialize(taskWithStatus("2025-W01", status), "2025-W02", now)
		assert.Equal(t, domain.TaskPending, clone.Status)
	}
}

func TestMaterialize_LabelSliceNotShared(t *testing.T) {
	original := taskWithStatus("2025-W01", domain.TaskPending)
	original.Labels = []string{"a"}

	clone := Materialize(original, "2025-W02", time.Now().UTC())
	clone.Labels[0] = "b"
	assert.Equal(t, "a", original.Labels[0])
}
