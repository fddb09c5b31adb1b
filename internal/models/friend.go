package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

type FriendRequest struct {
	ID         int64         `db:"id" json:"id"`
	SenderID   int64         `db:"sender_id" json:"senderId"`
	ReceiverID int64         `db:"receiver_id" json:"receiverId"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
}

// IncomingRequest is a FriendRequest joined with the sender's display attributes.
type IncomingRequest struct {
	FriendRequest
	SenderUsername  string `db:"sender_username" json:"senderUsername"`
	SenderAvatarURL string `db:"sender_avatar_url" json:"senderAvatarUrl"`
}

// Friendship is undirected: a lookup must consider both column orderings.
type Friendship struct {
	ID        int64     `db:"id" json:"id"`
	User1ID   int64     `db:"user1_id" json:"user1Id"`
	User2ID   int64     `db:"user2_id" json:"user2Id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type FollowEdge struct {
	ID          int64     `db:"id" json:"id"`
	FollowerID  int64     `db:"follower_id" json:"followerId"`
	FollowingID int64     `db:"following_id" json:"followingId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RequestStatusCheck answers "may the sender offer a send-request action".
type RequestStatusCheck struct {
	AlreadySent    bool `json:"alreadySent"`
	AlreadyBlocked bool `json:"alreadyBlocked"`
}

// FollowEntry is a follow edge joined with the counterpart's display attributes.
type FollowEntry struct {
	FollowEdge
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"avatar_url" json:"avatarUrl"`
}
