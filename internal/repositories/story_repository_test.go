package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/testutil"
)

func TestStoryRepository_ListActive(t *testing.T) {
	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 1, 2, 3)
	repo := NewStoryRepository(database, nil, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Create(ctx, 1, "expired", now.Add(-time.Hour))
	require.NoError(t, err)
	live, err := repo.Create(ctx, 2, "live", now.Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.Create(ctx, 3, "hidden from 1", now.Add(time.Hour))
	require.NoError(t, err)

	_, err = NewBlockRepository(database, nil, nil).Create(ctx, 3, 1)
	require.NoError(t, err)

	stories, err := repo.ListActive(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, live.ID, stories[0].ID)
	assert.Equal(t, "user2", stories[0].Username)

	stories, err = repo.ListActive(ctx, 2, now)
	require.NoError(t, err)
	assert.Len(t, stories, 2)

	stories, err = repo.ListActive(ctx, 2, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stories)
}
