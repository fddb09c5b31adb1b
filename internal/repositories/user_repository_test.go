package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/testutil"
)

func TestUserRepository_GetByID(t *testing.T) {
	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 5)
	repo := NewUserRepository(database)

	user, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "user5", user.Username)
	assert.Equal(t, "/avatars/5.png", user.AvatarURL)

	_, err = repo.GetByID(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
}
