package services

import (
	"context"
	"fmt"

	"social-service/internal/models"
	"social-service/internal/notify"
	"social-service/internal/repositories"
)

// RelationshipChecker is the slice of RelationshipService the messaging gate needs.
type RelationshipChecker interface {
	IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error)
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
}

type MessagingService struct {
	messages      repositories.MessageRepository
	relationships RelationshipChecker
	users         repositories.UserRepository
	notifier      notify.Emitter
}

func NewMessagingService(
	messages repositories.MessageRepository,
	relationships RelationshipChecker,
	users repositories.UserRepository,
	notifier notify.Emitter,
) *MessagingService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &MessagingService{messages: messages, relationships: relationships, users: users, notifier: notifier}
}

// SendMessage is refused only when the receiver has blocked the sender.
func (s *MessagingService) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	allowed, err := s.CanMessage(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, repositories.ErrBlocked
	}

	msg, err := s.messages.Create(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	name := "Someone"
	if user, err := s.users.GetByID(ctx, senderID); err == nil && user.Username != "" {
		name = user.Username
	}
	s.notifier.Emit(ctx, models.Notification{
		UserID:      receiverID,
		SenderID:    senderID,
		Type:        models.NotificationMessage,
		Content:     name + " sent you a message",
		ReferenceID: msg.ID,
	})

	return msg, nil
}

// Conversation is only readable between friends.
func (s *MessagingService) Conversation(ctx context.Context, userID, friendID int64) ([]models.ConversationMessage, error) {
	friends, err := s.relationships.IsFriend(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if !friends {
		return nil, repositories.ErrNotFriends
	}
	return s.messages.Conversation(ctx, userID, friendID)
}

func (s *MessagingService) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	return s.messages.ListConversations(ctx, userID)
}

// CanMessage is the messaging gate: senderID may write to receiverID unless
// receiverID has blocked senderID.
func (s *MessagingService) CanMessage(ctx context.Context, senderID, receiverID int64) (bool, error) {
	blocked, err := s.relationships.IsBlocked(ctx, receiverID, senderID)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return !blocked, nil
}
