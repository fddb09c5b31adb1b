package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"social-service/internal/models"
	"social-service/internal/rabbitmq"
	"social-service/internal/repositories"
)

// MockFriendRepository mocks FriendRepository behavior for services and gRPC.
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) ListIncoming(ctx context.Context, receiverID int64, filter repositories.IncomingFilter) ([]models.IncomingRequest, error) {
	args := m.Called(ctx, receiverID, filter)
	var reqs []models.IncomingRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.IncomingRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID, userID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) RejectRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID, userID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) CheckRequestStatus(ctx context.Context, senderID, receiverID int64) (models.RequestStatusCheck, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Get(0).(models.RequestStatusCheck), args.Error(1)
}

func (m *MockFriendRepository) HasPendingRequest(ctx context.Context, senderID, receiverID int64) (bool, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	args := m.Called(ctx, userID)
	var friends []models.User
	if val := args.Get(0); val != nil {
		friends = val.([]models.User)
	}
	return friends, args.Error(1)
}

func (m *MockFriendRepository) ListFollowers(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	args := m.Called(ctx, userID)
	var entries []models.FollowEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.FollowEntry)
	}
	return entries, args.Error(1)
}

func (m *MockFriendRepository) ListFollowing(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	args := m.Called(ctx, userID)
	var entries []models.FollowEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.FollowEntry)
	}
	return entries, args.Error(1)
}

func (m *MockFriendRepository) Counts(ctx context.Context, userID int64) (repositories.FollowCounts, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repositories.FollowCounts), args.Error(1)
}

// MockBlockRepository mocks BlockRepository behavior.
type MockBlockRepository struct {
	mock.Mock
}

func (m *MockBlockRepository) Create(ctx context.Context, blockerID, blockedID int64) (*models.BlockEdge, error) {
	args := m.Called(ctx, blockerID, blockedID)
	var edge *models.BlockEdge
	if val := args.Get(0); val != nil {
		edge = val.(*models.BlockEdge)
	}
	return edge, args.Error(1)
}

func (m *MockBlockRepository) Delete(ctx context.Context, blockerID, blockedID int64) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *MockBlockRepository) Exists(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlockRepository) Status(ctx context.Context, userID, otherID int64) (models.BlockStatus, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).(models.BlockStatus), args.Error(1)
}

func (m *MockBlockRepository) ListBlocked(ctx context.Context, blockerID int64) ([]models.BlockedUser, error) {
	args := m.Called(ctx, blockerID)
	var blocked []models.BlockedUser
	if val := args.Get(0); val != nil {
		blocked = val.([]models.BlockedUser)
	}
	return blocked, args.Error(1)
}

// MockRelationshipChecker mocks the relationship predicates read by the
// messaging gate and the internal gRPC server.
type MockRelationshipChecker struct {
	mock.Mock
}

func (m *MockRelationshipChecker) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipChecker) IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

// MockMessageGate mocks the messaging gate.
type MockMessageGate struct {
	mock.Mock
}

func (m *MockMessageGate) CanMessage(ctx context.Context, senderID, receiverID int64) (bool, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

// MockEmitter records notifications handed to the notification emitter.
type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) Emit(ctx context.Context, n models.Notification) {
	m.Called(ctx, n)
}

// MockPublisher mocks RabbitMQ publisher behavior for telemetry.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Compile-time assertions
var (
	_ repositories.FriendRepository = (*MockFriendRepository)(nil)
	_ repositories.BlockRepository  = (*MockBlockRepository)(nil)
	_ rabbitmq.Publisher            = (*MockPublisher)(nil)
)
