package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/testutil"
)

func newPostRepo(t *testing.T) (PostRepository, *recordingPublisher) {
	t.Helper()
	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 1, 2, 3)
	pub := &recordingPublisher{}
	return NewPostRepository(database, pub, nil), pub
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	repo, pub := newPostRepo(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, 1, "hello world")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	view, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", view.Content)
	assert.Equal(t, "user1", view.Username)
	assert.Equal(t, "/avatars/1.png", view.AvatarURL)
	assert.Zero(t, view.LikeCount)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{EventPostCreated}, pub.keys)
}

func TestPostRepository_ToggleLike(t *testing.T) {
	repo, pub := newPostRepo(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, 1, "like me")
	require.NoError(t, err)

	res, err := repo.ToggleLike(ctx, post.ID, 2)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)

	res, err = repo.ToggleLike(ctx, post.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikeCount)

	res, err = repo.ToggleLike(ctx, post.ID, 2)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)

	_, err = repo.ToggleLike(ctx, 999, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	// Unlikes publish nothing.
	assert.Equal(t, []string{EventPostCreated, EventPostLiked, EventPostLiked}, pub.keys)
}

func TestPostRepository_Comments(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, 1, "discuss")
	require.NoError(t, err)

	first, err := repo.AddComment(ctx, post.ID, 2, "first")
	require.NoError(t, err)
	assert.Equal(t, "user2", first.Username)
	assert.Equal(t, post.ID, first.PostID)

	_, err = repo.AddComment(ctx, post.ID, 3, "second")
	require.NoError(t, err)

	comments, err := repo.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	_, err = repo.AddComment(ctx, 999, 2, "orphan")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.ListComments(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CommentCount)
}

func TestPostRepository_Share(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, 1, "pass it on")
	require.NoError(t, err)

	share, err := repo.Share(ctx, post.ID, 2, 3)
	require.NoError(t, err)
	assert.NotZero(t, share.ID)
	assert.Equal(t, int64(3), share.RecipientID)

	_, err = repo.Share(ctx, 999, 2, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ShareCount)
}

func TestPostRepository_FeedHidesBlockingAuthors(t *testing.T) {
	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 1, 2, 3)
	repo := NewPostRepository(database, nil, nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "from one")
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, "from two")
	require.NoError(t, err)

	_, err = NewBlockRepository(database, nil, nil).Create(ctx, 1, 3)
	require.NoError(t, err)

	feed, err := repo.Feed(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "from two", feed[0].Content)

	feed, err = repo.Feed(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "from two", feed[0].Content, "newest first")

	feed, err = repo.Feed(ctx, 2, 1)
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}
