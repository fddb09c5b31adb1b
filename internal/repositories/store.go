package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"social-service/internal/rabbitmq"
)

// Routing keys for domain events published on the events exchange.
const (
	EventFriendRequestCreated  = "friend.request.created"
	EventFriendshipCreated     = "friendship.created"
	EventFriendRequestRejected = "friend.request.rejected"
	EventUserBlocked           = "user.blocked"
	EventUserUnblocked         = "user.unblocked"
	EventMessageSent           = "message.sent"
	EventPostCreated           = "post.created"
	EventPostLiked             = "post.liked"
	EventPostCommented         = "post.commented"
	EventPostShared            = "post.shared"
	EventStoryCreated          = "story.created"
)

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func exists(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (bool, error) {
	var found bool
	err := sqlx.GetContext(ctx, q, &found, q.Rebind(`SELECT EXISTS(`+query+`)`), args...)
	return found, err
}

// insertIgnoringConflict runs an INSERT ... ON CONFLICT DO NOTHING RETURNING id.
// A false result means a unique index swallowed the row.
func insertIgnoringConflict(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, bool, error) {
	var id int64
	rows, err := q.QueryxContext(ctx, q.Rebind(query+` ON CONFLICT DO NOTHING RETURNING id`), args...)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, false, rows.Err()
	}
	if err := rows.Scan(&id); err != nil {
		return 0, false, err
	}
	return id, true, rows.Err()
}

type eventPublisher struct {
	publisher rabbitmq.Publisher
	logger    *zap.Logger
}

func (p eventPublisher) logPublish(ctx context.Context, eventType string, payload any) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, payload); err != nil {
		p.logger.Warn("failed to publish event", zap.String("event", eventType), zap.Error(err))
	}
}

func newEventPublisher(publisher rabbitmq.Publisher, logger *zap.Logger) eventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return eventPublisher{publisher: publisher, logger: logger}
}
