package service

import (
	"context"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
)

// StreakService computes review streaks across both partners' week
// histories and tracks which milestone was last celebrated.
type StreakService interface {
	// CurrentStreak counts consecutive reviewed weeks ending at fromWeekID,
	// walking backward. When the identity has a partner, a week counts only
	// if both partners reviewed it.
	CurrentStreak(ctx context.Context, id identity.Identity, fromWeekID string) (domain.StreakResult, error)

	// AcknowledgeMilestone records that the given milestone has been
	// celebrated so it is not surfaced again.
	AcknowledgeMilestone(ctx context.Context, milestone int) error
}
