package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
	"social-service/internal/repositories"
	"social-service/internal/testutil"
)

type stubPusher struct {
	userIDs []int64
	err     error
}

func (s *stubPusher) Push(ctx context.Context, userID int64, payload any) error {
	s.userIDs = append(s.userIDs, userID)
	return s.err
}

func TestDispatcher_PersistsAndPushes(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := repositories.NewNotificationRepository(database)
	pusher := &stubPusher{}
	d := NewDispatcher(repo, pusher, nil)

	d.Emit(context.Background(), models.Notification{
		UserID:   2,
		SenderID: 1,
		Type:     models.NotificationFriendRequest,
		Content:  "user1 sent you a friend request",
	})

	list, err := repo.ListForUser(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationFriendRequest, list[0].Type)
	assert.Equal(t, []int64{2}, pusher.userIDs)
}

func TestDispatcher_PushFailureKeepsRow(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := repositories.NewNotificationRepository(database)
	d := NewDispatcher(repo, &stubPusher{err: errors.New("redis down")}, nil)

	d.Emit(context.Background(), models.Notification{UserID: 3, SenderID: 1, Type: models.NotificationMessage, Content: "hi"})

	list, err := repo.ListForUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDispatcher_StoreFailureSkipsPush(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := repositories.NewNotificationRepository(database)
	pusher := &stubPusher{}
	d := NewDispatcher(repo, pusher, nil)

	require.NoError(t, database.Close())
	d.Emit(context.Background(), models.Notification{UserID: 3, SenderID: 1, Type: models.NotificationMessage})

	assert.Empty(t, pusher.userIDs)
}
