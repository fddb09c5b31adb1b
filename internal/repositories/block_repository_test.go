package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
	"social-service/internal/testutil"
)

func TestBlockRepository_CreateAndDuplicate(t *testing.T) {
	database := testutil.SetupTestDB(t)
	pub := &recordingPublisher{}
	repo := NewBlockRepository(database, pub, nil)
	ctx := context.Background()

	edge, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.NotZero(t, edge.ID)

	_, err = repo.Create(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrAlreadyBlocked)

	// Blocking is directional.
	_, err = repo.Create(ctx, 2, 1)
	assert.NoError(t, err)

	assert.Equal(t, []string{EventUserBlocked, EventUserBlocked}, pub.keys)
}

func TestBlockRepository_Delete(t *testing.T) {
	database := testutil.SetupTestDB(t)
	pub := &recordingPublisher{}
	repo := NewBlockRepository(database, pub, nil)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Delete(ctx, 1, 2), ErrNotBlocked)

	_, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)

	// Only the blocker can lift a block.
	assert.ErrorIs(t, repo.Delete(ctx, 2, 1), ErrNotBlocked)

	require.NoError(t, repo.Delete(ctx, 1, 2))
	blocked, err := repo.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, blocked)

	assert.ErrorIs(t, repo.Delete(ctx, 1, 2), ErrNotBlocked)
	assert.Equal(t, []string{EventUserBlocked, EventUserUnblocked}, pub.keys)
}

func TestBlockRepository_Status(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewBlockRepository(database, nil, nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, 2, 1)
	require.NoError(t, err)

	status, err := repo.Status(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.BlockStatus{IsBlocked: false, BlockedBy: true}, status)

	status, err = repo.Status(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BlockStatus{IsBlocked: true, BlockedBy: false}, status)
}

func TestBlockRepository_ListBlocked(t *testing.T) {
	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 1, 2, 3)
	repo := NewBlockRepository(database, nil, nil)
	ctx := context.Background()

	list, err := repo.ListBlocked(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.Create(ctx, 1, 3)
	require.NoError(t, err)

	list, err = repo.ListBlocked(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].BlockedID)
	assert.Equal(t, "user3", list[0].Username)
}
