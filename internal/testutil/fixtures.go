package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
)

// Task options
type TaskOption func(*domain.Task)

func WithStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithPriority(p domain.TaskPriority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithLabels(labels ...string) TaskOption {
	return func(t *domain.Task) {
		t.Labels = labels
	}
}

func WithLinkedGoal(goalID string) TaskOption {
	return func(t *domain.Task) {
		t.LinkedGoalID = &goalID
	}
}

func WithRequestedBy(partnerID string) TaskOption {
	return func(t *domain.Task) {
		t.Status = domain.TaskPendingAcceptance
		t.RequestedBy = &partnerID
	}
}

func WithCreatedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = at
		t.UpdatedAt = at
	}
}

func WithNotes(notes string) TaskOption {
	return func(t *domain.Task) {
		t.Notes = notes
	}
}

func NewTestTask(weekID, ownerID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.New().String(),
		WeekID:    weekID,
		OwnerID:   ownerID,
		Title:     title,
		Priority:  domain.PriorityNormal,
		Status:    domain.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(task)
	}
	return task
}

// Goal options
type GoalOption func(*domain.Goal)

func WithTarget(n int) GoalOption {
	return func(g *domain.Goal) {
		g.TargetCount = n
	}
}

func WithGoalStatus(s domain.GoalStatus) GoalOption {
	return func(g *domain.Goal) {
		g.Status = s
	}
}

func NewTestGoal(ownerID, title string, opts ...GoalOption) *domain.Goal {
	now := time.Now().UTC()
	g := &domain.Goal{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Status:    domain.GoalActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
