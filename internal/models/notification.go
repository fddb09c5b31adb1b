package models

import "time"

type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
	NotificationMessage       NotificationType = "message"
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationShare         NotificationType = "share"
)

type Notification struct {
	ID          int64            `db:"id" json:"id"`
	UserID      int64            `db:"user_id" json:"userId"`
	SenderID    int64            `db:"sender_id" json:"senderId"`
	Type        NotificationType `db:"type" json:"type"`
	Content     string           `db:"content" json:"content"`
	ReferenceID int64            `db:"reference_id" json:"referenceId"`
	IsRead      bool             `db:"is_read" json:"isRead"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
}
