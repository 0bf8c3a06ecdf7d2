// Package identity resolves who is using the app before any store access.
// Every repository call is scoped to an owner ID, so callers must hold a
// resolved Identity first.
package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/repository"
)

// Identity is the resolved user for this process, plus the linked partner
// when one has been paired.
type Identity struct {
	UserID      string
	DisplayName string
	PartnerID   string
	PartnerName string
}

// HasPartner reports whether a partner is linked.
func (i Identity) HasPartner() bool {
	return i.PartnerID != ""
}

// Provider yields exactly one Identity. Await blocks until the identity is
// known or the context is cancelled.
type Provider interface {
	Await(ctx context.Context) (Identity, error)
}

type profileProvider struct {
	profiles repository.ProfileRepo
}

// NewProfileProvider resolves the identity from the persisted user profile,
// seeding a fresh user ID on first run.
func NewProfileProvider(profiles repository.ProfileRepo) Provider {
	return &profileProvider{profiles: profiles}
}

func (p *profileProvider) Await(ctx context.Context) (Identity, error) {
	profile, err := p.profiles.Get(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("loading user profile: %w", err)
	}
	if profile.UserID == "" {
		profile.UserID = uuid.NewString()
		if err := p.profiles.Upsert(ctx, profile); err != nil {
			return Identity{}, fmt.Errorf("seeding user identity: %w", err)
		}
	}
	return Identity{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		PartnerID:   profile.PartnerID,
		PartnerName: profile.PartnerName,
	}, nil
}

// StaticProvider always returns the same identity. Useful in tests.
type StaticProvider struct {
	Identity Identity
}

func (s StaticProvider) Await(ctx context.Context) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	return s.Identity, nil
}
