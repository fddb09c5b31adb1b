package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"social-service/internal/models"
	"social-service/internal/rabbitmq"
)

type MessageRepository interface {
	Create(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	Conversation(ctx context.Context, userID, otherID int64) ([]models.ConversationMessage, error)
	ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error)
}

type messageRepository struct {
	db     *sqlx.DB
	events eventPublisher
}

func NewMessageRepository(db *sqlx.DB, publisher rabbitmq.Publisher, logger *zap.Logger) MessageRepository {
	return &messageRepository{db: db, events: newEventPublisher(publisher, logger)}
}

func (r *messageRepository) Create(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO messages (sender_id, receiver_id, content, created_at)
VALUES (?, ?, ?, ?) RETURNING id`), senderID, receiverID, content, msg.CreatedAt).Scan(&msg.ID)
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventMessageSent, map[string]any{
		"message_id":  msg.ID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
	})

	return &msg, nil
}

// Conversation returns every message between the two users, oldest first.
func (r *messageRepository) Conversation(ctx context.Context, userID, otherID int64) ([]models.ConversationMessage, error) {
	msgs := []models.ConversationMessage{}
	err := r.db.SelectContext(ctx, &msgs, r.db.Rebind(`
SELECT m.id, m.sender_id, m.receiver_id, m.content, m.created_at,
	COALESCE(u.username, '') AS sender_username
FROM messages m
LEFT JOIN users u ON u.id = m.sender_id
WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
ORDER BY m.created_at, m.id`), userID, otherID, otherID, userID)
	return msgs, err
}

// ListConversations returns the latest message per counterpart, newest first.
func (r *messageRepository) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	convs := []models.Conversation{}
	err := r.db.SelectContext(ctx, &convs, r.db.Rebind(`
SELECT t.other_id AS user_id,
	COALESCE(u.username, '') AS username,
	m.content AS last_message,
	m.created_at
FROM (
	SELECT other_id, MAX(id) AS last_id
	FROM (
		SELECT id, CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS other_id
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
	) pairs
	GROUP BY other_id
) t
JOIN messages m ON m.id = t.last_id
LEFT JOIN users u ON u.id = t.other_id
ORDER BY m.created_at DESC, m.id DESC`), userID, userID, userID)
	return convs, err
}
