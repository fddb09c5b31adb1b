package models

import "time"

type BlockEdge struct {
	ID        int64     `db:"id" json:"id"`
	BlockerID int64     `db:"blocker_id" json:"blockerId"`
	BlockedID int64     `db:"blocked_id" json:"blockedId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BlockStatus reports both directions between two users, from A's point of view.
type BlockStatus struct {
	IsBlocked bool `json:"isBlocked"`
	BlockedBy bool `json:"blockedBy"`
}

type BlockedUser struct {
	BlockEdge
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"avatar_url" json:"avatarUrl"`
}
