package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create fills in ID and CreatedAt on n.
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now().UTC()
	n.IsRead = false
	return r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO notifications (user_id, sender_id, type, content, reference_id, is_read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		n.UserID, n.SenderID, n.Type, n.Content, n.ReferenceID, false, n.CreatedAt).Scan(&n.ID)
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	list := []models.Notification{}
	err := r.db.SelectContext(ctx, &list, r.db.Rebind(`
SELECT id, user_id, sender_id, type, content, reference_id, is_read, created_at
FROM notifications
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`), userID)
	return list, err
}

// MarkRead only touches notifications owned by userID.
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE notifications SET is_read=? WHERE id=? AND user_id=?`), true, notificationID, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
