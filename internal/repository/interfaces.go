package repository

import (
	"context"
	"time"

	"github.com/tandemhq/tandem/internal/domain"
)

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
	UpdateReviewNote(ctx context.Context, id, note string) error
	Delete(ctx context.Context, id string) error
	ListByWeek(ctx context.Context, weekID, ownerID string) ([]*domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus, ownerID string) ([]*domain.Task, error)
	ListIncompleteByWeek(ctx context.Context, weekID, ownerID string) ([]*domain.Task, error)
	// WatchByWeek emits the week's task list on subscribe and again after
	// every mutation through this repository. The cancel func unsubscribes.
	WatchByWeek(ctx context.Context, weekID, ownerID string) (<-chan []*domain.Task, func(), error)
}

type WeekRepo interface {
	// GetOrCreate returns the week row, lazily creating it with calendar
	// bounds the first time the owner touches that week.
	GetOrCreate(ctx context.Context, weekID, ownerID string) (*domain.Week, error)
	GetByID(ctx context.Context, weekID, ownerID string) (*domain.Week, error)
	MarkPlanningCompleted(ctx context.Context, weekID, ownerID string, at time.Time) error
	UpdateReview(ctx context.Context, weekID, ownerID string, rating int, note string, at time.Time) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Week, error)
	ListWithStats(ctx context.Context, ownerID string) ([]domain.WeekStats, error)
	WatchWithStats(ctx context.Context, ownerID string) (<-chan []domain.WeekStats, func(), error)
}

type GoalRepo interface {
	Create(ctx context.Context, g *domain.Goal) error
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	ListActive(ctx context.Context, ownerID string) ([]*domain.Goal, error)
	IncrementProgress(ctx context.Context, id string, delta int) error
}

type ProfileRepo interface {
	Get(ctx context.Context) (*domain.UserProfile, error)
	Upsert(ctx context.Context, p *domain.UserProfile) error
	SetLastCelebratedMilestone(ctx context.Context, v int) error
}

// ProgressKind namespaces wizard checkpoints; each wizard kind owns one slot.
type ProgressKind string

const (
	ProgressPlanning ProgressKind = "planning"
	ProgressReview   ProgressKind = "review"
)

// ProgressRecord is a persisted wizard checkpoint.
type ProgressRecord struct {
	WeekID    string
	Payload   []byte
	UpdatedAt time.Time
}

type ProgressRepo interface {
	// Save atomically replaces the checkpoint for this repo's kind.
	Save(ctx context.Context, weekID string, payload []byte) error
	// Load returns the stored checkpoint or ErrNotFound.
	Load(ctx context.Context) (*ProgressRecord, error)
	Clear(ctx context.Context) error
}
