package models

import "time"

type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"senderId"`
	ReceiverID int64     `db:"receiver_id" json:"receiverId"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

type ConversationMessage struct {
	Message
	SenderUsername string `db:"sender_username" json:"senderUsername"`
}

// Conversation summarises the latest message exchanged with one counterpart.
type Conversation struct {
	UserID      int64     `db:"user_id" json:"userId"`
	Username    string    `db:"username" json:"username"`
	LastMessage string    `db:"last_message" json:"lastMessage"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
