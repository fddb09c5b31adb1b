package models

import "time"

type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PostView is a post with its author and engagement counts.
type PostView struct {
	Post
	Username     string `db:"username" json:"username"`
	AvatarURL    string `db:"avatar_url" json:"avatarUrl"`
	LikeCount    int    `db:"like_count" json:"likeCount"`
	CommentCount int    `db:"comment_count" json:"commentCount"`
	ShareCount   int    `db:"share_count" json:"shareCount"`
}

type Comment struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"postId"`
	UserID    int64     `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	Username  string    `db:"username" json:"username"`
}

type Share struct {
	ID          int64     `db:"id" json:"id"`
	PostID      int64     `db:"post_id" json:"postId"`
	UserID      int64     `db:"user_id" json:"userId"`
	RecipientID int64     `db:"recipient_id" json:"recipientId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// LikeResult is the state of a like after a toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
