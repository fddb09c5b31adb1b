package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"social-service/internal/models"
	"social-service/internal/rabbitmq"
)

// IncomingFilter narrows ListIncoming. Zero values mean "any".
type IncomingFilter struct {
	SenderID int64
	Status   models.RequestStatus
}

type FollowCounts struct {
	Friends   int
	Followers int
	Following int
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error)
	GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, receiverID int64, filter IncomingFilter) ([]models.IncomingRequest, error)
	AcceptRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error)
	RejectRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error)
	CheckRequestStatus(ctx context.Context, senderID, receiverID int64) (models.RequestStatusCheck, error)
	HasPendingRequest(ctx context.Context, senderID, receiverID int64) (bool, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	ListFriends(ctx context.Context, userID int64) ([]models.User, error)
	ListFollowers(ctx context.Context, userID int64) ([]models.FollowEntry, error)
	ListFollowing(ctx context.Context, userID int64) ([]models.FollowEntry, error)
	Counts(ctx context.Context, userID int64) (FollowCounts, error)
}

type friendRepository struct {
	db     *sqlx.DB
	events eventPublisher
}

func NewFriendRepository(db *sqlx.DB, publisher rabbitmq.Publisher, logger *zap.Logger) FriendRepository {
	return &friendRepository{db: db, events: newEventPublisher(publisher, logger)}
}

const selectRequest = `SELECT id, sender_id, receiver_id, status, created_at FROM friend_requests`

// CreateRequest inserts a pending request unless the receiver has blocked the
// sender, the two are already friends, or a pending request for the same
// ordered pair exists. The pending check is backed by a partial unique index,
// so two racing inserts cannot both succeed.
func (r *friendRepository) CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	now := time.Now().UTC()
	req := models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.StatusPending,
		CreatedAt:  now,
	}

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		blocked, err := isBlocked(ctx, tx, receiverID, senderID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrAlreadyBlocked
		}

		friends, err := areFriends(ctx, tx, senderID, receiverID)
		if err != nil {
			return err
		}
		if friends {
			return ErrAlreadyFriends
		}

		id, inserted, err := insertIgnoringConflict(ctx, tx, `
INSERT INTO friend_requests (sender_id, receiver_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`, senderID, receiverID, models.StatusPending, now, now)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrDuplicatePending
		}
		req.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventFriendRequestCreated, map[string]any{
		"request_id":  req.ID,
		"sender_id":   req.SenderID,
		"receiver_id": req.ReceiverID,
		"created_at":  req.CreatedAt,
	})

	return &req, nil
}

func (r *friendRepository) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	return getRequest(ctx, r.db, requestID)
}

func getRequest(ctx context.Context, q sqlx.ExtContext, requestID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := sqlx.GetContext(ctx, q, &req, q.Rebind(selectRequest+` WHERE id=?`), requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *friendRepository) ListIncoming(ctx context.Context, receiverID int64, filter IncomingFilter) ([]models.IncomingRequest, error) {
	conds := []string{"fr.receiver_id = ?"}
	args := []any{receiverID}
	if filter.SenderID != 0 {
		conds = append(conds, "fr.sender_id = ?")
		args = append(args, filter.SenderID)
	}
	if filter.Status != "" {
		conds = append(conds, "fr.status = ?")
		args = append(args, filter.Status)
	}

	query := `
SELECT fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at,
	COALESCE(u.username, '') AS sender_username,
	COALESCE(u.avatar_url, '') AS sender_avatar_url
FROM friend_requests fr
LEFT JOIN users u ON u.id = fr.sender_id
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY fr.created_at DESC, fr.id DESC`

	reqs := []models.IncomingRequest{}
	err := r.db.SelectContext(ctx, &reqs, r.db.Rebind(query), args...)
	return reqs, err
}

func (r *friendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error) {
	var accepted *models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := r.transition(ctx, tx, requestID, userID, models.StatusAccepted)
		if err != nil {
			return err
		}

		// The unordered-pair index swallows the row when a reciprocal
		// request was accepted first.
		now := time.Now().UTC()
		if _, _, err := insertIgnoringConflict(ctx, tx, `
INSERT INTO friendships (user1_id, user2_id, created_at) VALUES (?, ?, ?)`,
			req.SenderID, req.ReceiverID, now); err != nil {
			return err
		}

		// The sender follows the receiver.
		if _, _, err := insertIgnoringConflict(ctx, tx, `
INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
			req.SenderID, req.ReceiverID, now); err != nil {
			return err
		}

		accepted = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventFriendshipCreated, map[string]any{
		"request_id":  accepted.ID,
		"user_id":     accepted.SenderID,
		"friend_id":   accepted.ReceiverID,
		"accepted_at": time.Now().UTC(),
	})

	return accepted, nil
}

func (r *friendRepository) RejectRequest(ctx context.Context, requestID, userID int64) (*models.FriendRequest, error) {
	var rejected *models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		req, err := r.transition(ctx, tx, requestID, userID, models.StatusRejected)
		if err != nil {
			return err
		}

		// Rejecting blocks the sender from asking again.
		if _, _, err := insertIgnoringConflict(ctx, tx, `
INSERT INTO blocks (blocker_id, blocked_id, created_at) VALUES (?, ?, ?)`,
			req.ReceiverID, req.SenderID, time.Now().UTC()); err != nil {
			return err
		}

		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventFriendRequestRejected, map[string]any{
		"request_id":  rejected.ID,
		"sender_id":   rejected.SenderID,
		"receiver_id": rejected.ReceiverID,
	})

	return rejected, nil
}

// transition moves a pending request owned by userID to a terminal status.
// The conditional UPDATE makes a concurrent second decision observe zero
// affected rows instead of overwriting the first.
func (r *friendRepository) transition(ctx context.Context, tx *sqlx.Tx, requestID, userID int64, status models.RequestStatus) (*models.FriendRequest, error) {
	req, err := getRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != userID {
		return nil, ErrRequestForbidden
	}
	if req.Status != models.StatusPending {
		return nil, ErrAlreadyHandled
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`
UPDATE friend_requests SET status=?, updated_at=?
WHERE id=? AND status=?`), status, time.Now().UTC(), requestID, models.StatusPending)
	if err != nil {
		return nil, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrAlreadyHandled
	}

	req.Status = status
	return req, nil
}

func (r *friendRepository) CheckRequestStatus(ctx context.Context, senderID, receiverID int64) (models.RequestStatusCheck, error) {
	var check models.RequestStatusCheck

	blocked, err := isBlocked(ctx, r.db, receiverID, senderID)
	if err != nil {
		return check, err
	}
	if blocked {
		check.AlreadyBlocked = true
		return check, nil
	}

	check.AlreadySent, err = r.HasPendingRequest(ctx, senderID, receiverID)
	return check, err
}

func (r *friendRepository) HasPendingRequest(ctx context.Context, senderID, receiverID int64) (bool, error) {
	return exists(ctx, r.db, `
SELECT 1 FROM friend_requests
WHERE sender_id=? AND receiver_id=? AND status=?`, senderID, receiverID, models.StatusPending)
}

func (r *friendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	return areFriends(ctx, r.db, userID, otherID)
}

func areFriends(ctx context.Context, q sqlx.ExtContext, userID, otherID int64) (bool, error) {
	return exists(ctx, q, `
SELECT 1 FROM friendships
WHERE (user1_id=? AND user2_id=?) OR (user1_id=? AND user2_id=?)`, userID, otherID, otherID, userID)
}

func (r *friendRepository) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	friends := []models.User{}
	err := r.db.SelectContext(ctx, &friends, r.db.Rebind(`
SELECT c.id, COALESCE(u.username, '') AS username, COALESCE(u.avatar_url, '') AS avatar_url
FROM (
	SELECT CASE WHEN user1_id = ? THEN user2_id ELSE user1_id END AS id
	FROM friendships
	WHERE user1_id = ? OR user2_id = ?
) c
LEFT JOIN users u ON u.id = c.id
ORDER BY c.id`), userID, userID, userID)
	return friends, err
}

func (r *friendRepository) ListFollowers(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	return r.listFollows(ctx, "follower_id", "following_id", userID)
}

func (r *friendRepository) ListFollowing(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	return r.listFollows(ctx, "following_id", "follower_id", userID)
}

// listFollows returns edges where matchColumn = userID, joined with the user
// on the counterpart side.
func (r *friendRepository) listFollows(ctx context.Context, counterpartColumn, matchColumn string, userID int64) ([]models.FollowEntry, error) {
	entries := []models.FollowEntry{}
	err := r.db.SelectContext(ctx, &entries, r.db.Rebind(`
SELECT f.id, f.follower_id, f.following_id, f.created_at,
	COALESCE(u.username, '') AS username,
	COALESCE(u.avatar_url, '') AS avatar_url
FROM follows f
LEFT JOIN users u ON u.id = f.`+counterpartColumn+`
WHERE f.`+matchColumn+` = ?
ORDER BY f.created_at, f.id`), userID)
	return entries, err
}

func (r *friendRepository) Counts(ctx context.Context, userID int64) (FollowCounts, error) {
	var counts FollowCounts
	if err := r.db.GetContext(ctx, &counts.Friends, r.db.Rebind(
		`SELECT COUNT(*) FROM friendships WHERE user1_id=? OR user2_id=?`), userID, userID); err != nil {
		return counts, err
	}
	if err := r.db.GetContext(ctx, &counts.Followers, r.db.Rebind(
		`SELECT COUNT(*) FROM follows WHERE following_id=?`), userID); err != nil {
		return counts, err
	}
	if err := r.db.GetContext(ctx, &counts.Following, r.db.Rebind(
		`SELECT COUNT(*) FROM follows WHERE follower_id=?`), userID); err != nil {
		return counts, err
	}
	return counts, nil
}
