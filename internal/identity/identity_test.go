package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/testutil"
)

func TestProfileProvider_SeedsUserIDOnFirstRun(t *testing.T) {
	profiles := repository.NewSQLiteProfileRepo(testutil.NewTestDB(t))
	provider := NewProfileProvider(profiles)
	ctx := context.Background()

	id, err := provider.Await(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID)
	assert.False(t, id.HasPartner())

	again, err := provider.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, again.UserID, "identity is stable across runs")
}

func TestProfileProvider_ReturnsLinkedPartner(t *testing.T) {
	profiles := repository.NewSQLiteProfileRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	profile, err := profiles.Get(ctx)
	require.NoError(t, err)
	profile.UserID = "user-1"
	profile.PartnerID = "partner-1"
	profile.PartnerName = "Alex"
	require.NoError(t, profiles.Upsert(ctx, profile))

	id, err := NewProfileProvider(profiles).Await(ctx)
	require.NoError(t, err)
	assert.True(t, id.HasPartner())
	assert.Equal(t, "Alex", id.PartnerName)
}

func TestStaticProvider_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := StaticProvider{Identity: Identity{UserID: "u"}}.Await(ctx)
	assert.Error(t, err)
}
