package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"social-service/internal/models"
	"social-service/internal/notify"
	"social-service/internal/repositories"
)

// RelationshipService owns every write to friend requests, friendships,
// follow edges and block edges.
type RelationshipService struct {
	friends  repositories.FriendRepository
	blocks   repositories.BlockRepository
	users    repositories.UserRepository
	notifier notify.Emitter
	logger   *zap.Logger
}

func NewRelationshipService(
	friends repositories.FriendRepository,
	blocks repositories.BlockRepository,
	users repositories.UserRepository,
	notifier notify.Emitter,
	logger *zap.Logger,
) *RelationshipService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipService{friends: friends, blocks: blocks, users: users, notifier: notifier, logger: logger}
}

func (s *RelationshipService) SendRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, repositories.ErrSelfRequest
	}

	req, err := s.friends.CreateRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("send friend request: %w", err)
	}

	s.notifier.Emit(ctx, models.Notification{
		UserID:      receiverID,
		SenderID:    senderID,
		Type:        models.NotificationFriendRequest,
		Content:     s.displayName(ctx, senderID) + " sent you a friend request",
		ReferenceID: req.ID,
	})

	return req, nil
}

func (s *RelationshipService) AcceptRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error) {
	req, err := s.friends.AcceptRequest(ctx, requestID, userID)
	if err != nil {
		return nil, fmt.Errorf("accept friend request: %w", err)
	}

	s.notifier.Emit(ctx, models.Notification{
		UserID:      req.SenderID,
		SenderID:    req.ReceiverID,
		Type:        models.NotificationFriendAccept,
		Content:     s.displayName(ctx, req.ReceiverID) + " accepted your friend request",
		ReferenceID: req.ID,
	})

	return req, nil
}

// RejectRequest also blocks the sender on behalf of the receiver.
func (s *RelationshipService) RejectRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error) {
	req, err := s.friends.RejectRequest(ctx, requestID, userID)
	if err != nil {
		return nil, fmt.Errorf("reject friend request: %w", err)
	}
	return req, nil
}

func (s *RelationshipService) CheckRequestStatus(ctx context.Context, senderID, receiverID int64) (models.RequestStatusCheck, error) {
	return s.friends.CheckRequestStatus(ctx, senderID, receiverID)
}

func (s *RelationshipService) ListIncoming(ctx context.Context, userID int64, filter repositories.IncomingFilter) ([]models.IncomingRequest, error) {
	return s.friends.ListIncoming(ctx, userID, filter)
}

func (s *RelationshipService) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.friends.AreFriends(ctx, userID, otherID)
}

func (s *RelationshipService) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	return s.friends.ListFriends(ctx, userID)
}

func (s *RelationshipService) ListFollowers(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	return s.friends.ListFollowers(ctx, userID)
}

func (s *RelationshipService) ListFollowing(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	return s.friends.ListFollowing(ctx, userID)
}

// Block leaves any existing friendship and follow edges in place.
func (s *RelationshipService) Block(ctx context.Context, blockerID, blockedID int64) (*models.BlockEdge, error) {
	if blockerID == blockedID {
		return nil, repositories.ErrSelfBlock
	}
	edge, err := s.blocks.Create(ctx, blockerID, blockedID)
	if err != nil {
		return nil, fmt.Errorf("block user: %w", err)
	}
	return edge, nil
}

func (s *RelationshipService) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	if err := s.blocks.Delete(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	return nil
}

func (s *RelationshipService) IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	return s.blocks.Exists(ctx, blockerID, blockedID)
}

func (s *RelationshipService) BlockStatus(ctx context.Context, userID, otherID int64) (models.BlockStatus, error) {
	return s.blocks.Status(ctx, userID, otherID)
}

func (s *RelationshipService) ListBlocked(ctx context.Context, blockerID int64) ([]models.BlockedUser, error) {
	return s.blocks.ListBlocked(ctx, blockerID)
}

func (s *RelationshipService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	counts, err := s.friends.Counts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile counts: %w", err)
	}
	return &models.Profile{
		User:      *user,
		Friends:   counts.Friends,
		Followers: counts.Followers,
		Following: counts.Following,
	}, nil
}

func (s *RelationshipService) displayName(ctx context.Context, userID int64) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user.Username == "" {
		if err != nil {
			s.logger.Debug("display name lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return "Someone"
	}
	return user.Username
}
