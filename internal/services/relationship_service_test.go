package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/notify"
	"social-service/internal/repositories"
	"social-service/internal/testutil"
)

type testEnv struct {
	db            *sqlx.DB
	relationships *RelationshipService
	messaging     *MessagingService
	notifications *NotificationService
	posts         *PostService
}

func newTestEnv(t *testing.T, emitter notify.Emitter) *testEnv {
	t.Helper()
	database := testutil.SetupTestDB(t)
	testutil.SeedUsers(t, database, 1, 2, 3, 4)

	friends := repositories.NewFriendRepository(database, nil, nil)
	blocks := repositories.NewBlockRepository(database, nil, nil)
	users := repositories.NewUserRepository(database)
	notificationRepo := repositories.NewNotificationRepository(database)
	if emitter == nil {
		emitter = notify.NewDispatcher(notificationRepo, nil, nil)
	}

	rel := NewRelationshipService(friends, blocks, users, emitter, nil)
	posts := NewPostService(
		repositories.NewPostRepository(database, nil, nil),
		repositories.NewStoryRepository(database, nil, nil),
		rel, users, emitter)
	return &testEnv{
		db:            database,
		relationships: rel,
		messaging:     NewMessagingService(repositories.NewMessageRepository(database, nil, nil), rel, users, emitter),
		notifications: NewNotificationService(notificationRepo),
		posts:         posts,
	}
}

func TestSendRequest_SelfRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, id := range []int64{1, 2, 99} {
		_, err := env.relationships.SendRequest(context.Background(), id, id)
		assert.ErrorIs(t, err, repositories.ErrSelfRequest)
	}
}

func TestSendRequest_ThenCheckAndDuplicate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)

	check, err := env.relationships.CheckRequestStatus(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, check.AlreadySent)

	_, err = env.relationships.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, repositories.ErrDuplicatePending)
}

func TestSendRequest_BlockedRegardlessOfHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.relationships.Block(ctx, 2, 1)
	require.NoError(t, err)

	_, err = env.relationships.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, repositories.ErrAlreadyBlocked)

	// The pending request can still be handled by the receiver.
	_, err = env.relationships.AcceptRequest(ctx, req.ID, 2)
	assert.NoError(t, err)
}

func TestSendRequest_NotifiesReceiver(t *testing.T) {
	emitter := new(mocks.MockEmitter)
	emitter.On("Emit", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserID == 2 && n.SenderID == 1 &&
			n.Type == models.NotificationFriendRequest &&
			n.Content == "user1 sent you a friend request"
	})).Once()

	env := newTestEnv(t, emitter)
	_, err := env.relationships.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	emitter.AssertExpectations(t)
}

func TestSendRequest_FailureDoesNotNotify(t *testing.T) {
	emitter := new(mocks.MockEmitter)
	env := newTestEnv(t, emitter)

	_, err := env.relationships.SendRequest(context.Background(), 1, 1)
	require.Error(t, err)

	emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestAcceptRequest_SymmetricFriendship(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.relationships.AcceptRequest(ctx, req.ID, 2)
	require.NoError(t, err)

	ab, err := env.relationships.IsFriend(ctx, 1, 2)
	require.NoError(t, err)
	ba, err := env.relationships.IsFriend(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)

	_, err = env.relationships.AcceptRequest(ctx, req.ID, 2)
	assert.ErrorIs(t, err, repositories.ErrAlreadyHandled)

	// The sender was told about the acceptance.
	list, err := env.notifications.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationFriendAccept, list[0].Type)
}

func TestAcceptRequest_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.relationships.AcceptRequest(context.Background(), 12345, 2)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = env.relationships.RejectRequest(context.Background(), 12345, 2)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestBlockUnblockRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.relationships.Block(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.relationships.Block(ctx, 1, 2)
	assert.ErrorIs(t, err, repositories.ErrAlreadyBlocked)

	require.NoError(t, env.relationships.Unblock(ctx, 1, 2))
	blocked, err := env.relationships.IsBlocked(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, blocked)

	assert.ErrorIs(t, env.relationships.Unblock(ctx, 1, 2), repositories.ErrNotBlocked)
	assert.ErrorIs(t, env.relationships.Unblock(ctx, 3, 4), repositories.ErrNotBlocked)
}

func TestBlock_Self(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.relationships.Block(context.Background(), 1, 1)
	assert.ErrorIs(t, err, repositories.ErrSelfBlock)
}

func TestBlock_KeepsFriendship(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.relationships.AcceptRequest(ctx, req.ID, 2)
	require.NoError(t, err)
	_, err = env.relationships.Block(ctx, 2, 1)
	require.NoError(t, err)

	friends, err := env.relationships.IsFriend(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, friends)

	status, err := env.relationships.BlockStatus(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.BlockStatus{IsBlocked: false, BlockedBy: true}, status)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.relationships.AcceptRequest(ctx, req.ID, 2)
	require.NoError(t, err)

	profile, err := env.relationships.Profile(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "user2", profile.Username)
	assert.Equal(t, 1, profile.Friends)
	assert.Equal(t, 1, profile.Followers)
	assert.Equal(t, 0, profile.Following)

	_, err = env.relationships.Profile(ctx, 404)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSendRequest_StorageFailureIsWrapped(t *testing.T) {
	friends := new(mocks.MockFriendRepository)
	boom := errors.New("connection reset")
	friends.On("CreateRequest", mock.Anything, int64(1), int64(2)).Return(nil, boom)

	svc := NewRelationshipService(friends, new(mocks.MockBlockRepository), nil, nil, nil)
	_, err := svc.SendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, boom)
	friends.AssertExpectations(t)
}

// Users 1 and 2 become friends, message, then 2 blocks 1.
func TestScenario_AcceptMessageThenBlock(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)

	_, err = env.relationships.AcceptRequest(ctx, req.ID, 2)
	require.NoError(t, err)

	friends, err := env.relationships.IsFriend(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, friends)

	following, err := env.relationships.ListFollowing(ctx, 1)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, int64(1), following[0].FollowerID)
	assert.Equal(t, int64(2), following[0].FollowingID)

	_, err = env.messaging.SendMessage(ctx, 1, 2, "hi")
	require.NoError(t, err)

	_, err = env.relationships.Block(ctx, 2, 1)
	require.NoError(t, err)

	_, err = env.messaging.SendMessage(ctx, 1, 2, "hi again")
	assert.ErrorIs(t, err, repositories.ErrBlocked)
}

// Users 3 and 4: a rejected request blocks further requests.
func TestScenario_RejectBlocksResend(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, 3, 4)
	require.NoError(t, err)

	_, err = env.relationships.RejectRequest(ctx, req.ID, 4)
	require.NoError(t, err)

	check, err := env.relationships.CheckRequestStatus(ctx, 3, 4)
	require.NoError(t, err)
	assert.True(t, check.AlreadyBlocked)

	_, err = env.relationships.SendRequest(ctx, 3, 4)
	assert.ErrorIs(t, err, repositories.ErrAlreadyBlocked)
}
