package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/rhythm"
)

type streakService struct {
	weeks    repository.WeekRepo
	profiles repository.ProfileRepo
	observer UseCaseObserver
}

func NewStreakService(
	weeks repository.WeekRepo,
	profiles repository.ProfileRepo,
	observers ...UseCaseObserver,
) StreakService {
	return &streakService{
		weeks:    weeks,
		profiles: profiles,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *streakService) CurrentStreak(ctx context.Context, id identity.Identity, fromWeekID string) (result domain.StreakResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"from_week": fromWeekID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "current-streak",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	userWeeks, err := s.weeks.ListByOwner(ctx, id.UserID)
	if err != nil {
		return domain.StreakResult{}, fmt.Errorf("loading week history: %w", err)
	}

	var partner rhythm.ReviewedWeeks
	if id.HasPartner() {
		partnerWeeks, perr := s.weeks.ListByOwner(ctx, id.PartnerID)
		if perr != nil {
			err = fmt.Errorf("loading partner week history: %w", perr)
			return domain.StreakResult{}, err
		}
		partner = rhythm.ReviewedSet(partnerWeeks)
	}

	result, err = rhythm.CalculateStreak(fromWeekID, rhythm.ReviewedSet(userWeeks), partner)
	if err != nil {
		return domain.StreakResult{}, err
	}

	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return domain.StreakResult{}, fmt.Errorf("loading user profile: %w", err)
	}

	pending, err := rhythm.PendingMilestone(result.Count, profile.LastCelebratedMilestone)
	if err != nil {
		return domain.StreakResult{}, err
	}
	result.PendingMilestone = pending
	fields["streak"] = result.Count
	fields["pending_milestone"] = pending
	return result, nil
}

func (s *streakService) AcknowledgeMilestone(ctx context.Context, milestone int) error {
	if !rhythm.IsMilestone(milestone) {
		return fmt.Errorf("unknown milestone %d", milestone)
	}
	if err := s.profiles.SetLastCelebratedMilestone(ctx, milestone); err != nil {
		return fmt.Errorf("recording celebrated milestone: %w", err)
	}
	return nil
}
