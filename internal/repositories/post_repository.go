package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"social-service/internal/models"
	"social-service/internal/rabbitmq"
)

type PostRepository interface {
	Create(ctx context.Context, userID int64, content string) (*models.Post, error)
	Get(ctx context.Context, postID int64) (*models.PostView, error)
	Feed(ctx context.Context, viewerID int64, limit int) ([]models.PostView, error)
	ToggleLike(ctx context.Context, postID, userID int64) (models.LikeResult, error)
	AddComment(ctx context.Context, postID, userID int64, content string) (*models.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	Share(ctx context.Context, postID, userID, recipientID int64) (*models.Share, error)
}

type postRepository struct {
	db     *sqlx.DB
	events eventPublisher
}

func NewPostRepository(db *sqlx.DB, publisher rabbitmq.Publisher, logger *zap.Logger) PostRepository {
	return &postRepository{db: db, events: newEventPublisher(publisher, logger)}
}

const selectPostView = `
SELECT p.id, p.user_id, p.content, p.created_at,
	COALESCE(u.username, '') AS username,
	COALESCE(u.avatar_url, '') AS avatar_url,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS comment_count,
	(SELECT COUNT(*) FROM post_shares s WHERE s.post_id = p.id) AS share_count
FROM posts p
LEFT JOIN users u ON u.id = p.user_id`

func (r *postRepository) Create(ctx context.Context, userID int64, content string) (*models.Post, error) {
	post := models.Post{UserID: userID, Content: content, CreatedAt: time.Now().UTC()}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO posts (user_id, content, created_at) VALUES (?, ?, ?) RETURNING id`),
		userID, content, post.CreatedAt).Scan(&post.ID)
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventPostCreated, map[string]any{
		"post_id": post.ID,
		"user_id": userID,
	})
	return &post, nil
}

func (r *postRepository) Get(ctx context.Context, postID int64) (*models.PostView, error) {
	var view models.PostView
	err := r.db.GetContext(ctx, &view, r.db.Rebind(selectPostView+` WHERE p.id = ?`), postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &view, nil
}

// Feed returns the newest posts, leaving out authors who have blocked viewerID.
func (r *postRepository) Feed(ctx context.Context, viewerID int64, limit int) ([]models.PostView, error) {
	posts := []models.PostView{}
	err := r.db.SelectContext(ctx, &posts, r.db.Rebind(selectPostView+`
WHERE NOT EXISTS (SELECT 1 FROM blocks b WHERE b.blocker_id = p.user_id AND b.blocked_id = ?)
ORDER BY p.created_at DESC, p.id DESC
LIMIT ?`), viewerID, limit)
	return posts, err
}

// ToggleLike likes the post, or removes the like when userID already has one.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (models.LikeResult, error) {
	var result models.LikeResult
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := postExists(ctx, tx, postID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(
			`DELETE FROM post_likes WHERE post_id=? AND user_id=?`), postID, userID)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if removed == 0 {
			// A racing like that lands first still leaves the post liked.
			if _, _, err := insertIgnoringConflict(ctx, tx, `
INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
				postID, userID, time.Now().UTC()); err != nil {
				return err
			}
			result.Liked = true
		}

		return sqlx.GetContext(ctx, tx, &result.LikeCount, tx.Rebind(
			`SELECT COUNT(*) FROM post_likes WHERE post_id=?`), postID)
	})
	if err != nil {
		return result, err
	}

	if result.Liked {
		r.events.logPublish(ctx, EventPostLiked, map[string]any{
			"post_id": postID,
			"user_id": userID,
		})
	}
	return result, nil
}

func (r *postRepository) AddComment(ctx context.Context, postID, userID int64, content string) (*models.Comment, error) {
	var comment models.Comment
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := postExists(ctx, tx, postID); err != nil {
			return err
		}

		var id int64
		if err := tx.QueryRowxContext(ctx, tx.Rebind(`
INSERT INTO post_comments (post_id, user_id, content, created_at)
VALUES (?, ?, ?, ?) RETURNING id`), postID, userID, content, time.Now().UTC()).Scan(&id); err != nil {
			return err
		}

		return sqlx.GetContext(ctx, tx, &comment, tx.Rebind(selectComment+` WHERE c.id = ?`), id)
	})
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventPostCommented, map[string]any{
		"post_id":    postID,
		"comment_id": comment.ID,
		"user_id":    userID,
	})
	return &comment, nil
}

const selectComment = `
SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
	COALESCE(u.username, '') AS username
FROM post_comments c
LEFT JOIN users u ON u.id = c.user_id`

// ListComments returns the post's comments, oldest first.
func (r *postRepository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	if err := postExists(ctx, r.db, postID); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	err := r.db.SelectContext(ctx, &comments, r.db.Rebind(selectComment+`
WHERE c.post_id = ?
ORDER BY c.created_at, c.id`), postID)
	return comments, err
}

func (r *postRepository) Share(ctx context.Context, postID, userID, recipientID int64) (*models.Share, error) {
	share := models.Share{PostID: postID, UserID: userID, RecipientID: recipientID, CreatedAt: time.Now().UTC()}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := postExists(ctx, tx, postID); err != nil {
			return err
		}
		return tx.QueryRowxContext(ctx, tx.Rebind(`
INSERT INTO post_shares (post_id, user_id, recipient_id, created_at)
VALUES (?, ?, ?, ?) RETURNING id`), postID, userID, recipientID, share.CreatedAt).Scan(&share.ID)
	})
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventPostShared, map[string]any{
		"post_id":      postID,
		"user_id":      userID,
		"recipient_id": recipientID,
	})
	return &share, nil
}

func postExists(ctx context.Context, q sqlx.ExtContext, postID int64) error {
	found, err := exists(ctx, q, `SELECT 1 FROM posts WHERE id=?`, postID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
