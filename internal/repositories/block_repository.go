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

type BlockRepository interface {
	Create(ctx context.Context, blockerID, blockedID int64) (*models.BlockEdge, error)
	Delete(ctx context.Context, blockerID, blockedID int64) error
	Exists(ctx context.Context, blockerID, blockedID int64) (bool, error)
	Status(ctx context.Context, userID, otherID int64) (models.BlockStatus, error)
	ListBlocked(ctx context.Context, blockerID int64) ([]models.BlockedUser, error)
}

type blockRepository struct {
	db     *sqlx.DB
	events eventPublisher
}

func NewBlockRepository(db *sqlx.DB, publisher rabbitmq.Publisher, logger *zap.Logger) BlockRepository {
	return &blockRepository{db: db, events: newEventPublisher(publisher, logger)}
}

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID int64) (*models.BlockEdge, error) {
	edge := models.BlockEdge{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}

	id, inserted, err := insertIgnoringConflict(ctx, r.db, `
INSERT INTO blocks (blocker_id, blocked_id, created_at) VALUES (?, ?, ?)`,
		blockerID, blockedID, edge.CreatedAt)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyBlocked
	}
	edge.ID = id

	r.events.logPublish(ctx, EventUserBlocked, map[string]any{
		"blocker_id": blockerID,
		"blocked_id": blockedID,
	})

	return &edge, nil
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID int64) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, tx.Rebind(
			`SELECT id FROM blocks WHERE blocker_id=? AND blocked_id=?`), blockerID, blockedID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotBlocked
			}
			return err
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM blocks WHERE id=?`), id)
		return err
	})
	if err != nil {
		return err
	}

	r.events.logPublish(ctx, EventUserUnblocked, map[string]any{
		"blocker_id": blockerID,
		"blocked_id": blockedID,
	})
	return nil
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	return isBlocked(ctx, r.db, blockerID, blockedID)
}

// isBlocked reports whether blockerID has blocked blockedID. Direction matters.
func isBlocked(ctx context.Context, q sqlx.ExtContext, blockerID, blockedID int64) (bool, error) {
	return exists(ctx, q, `SELECT 1 FROM blocks WHERE blocker_id=? AND blocked_id=?`, blockerID, blockedID)
}

func (r *blockRepository) Status(ctx context.Context, userID, otherID int64) (models.BlockStatus, error) {
	var status models.BlockStatus
	var err error
	if status.IsBlocked, err = isBlocked(ctx, r.db, userID, otherID); err != nil {
		return status, err
	}
	status.BlockedBy, err = isBlocked(ctx, r.db, otherID, userID)
	return status, err
}

func (r *blockRepository) ListBlocked(ctx context.Context, blockerID int64) ([]models.BlockedUser, error) {
	blocked := []models.BlockedUser{}
	err := r.db.SelectContext(ctx, &blocked, r.db.Rebind(`
SELECT b.id, b.blocker_id, b.blocked_id, b.created_at,
	COALESCE(u.username, '') AS username,
	COALESCE(u.avatar_url, '') AS avatar_url
FROM blocks b
LEFT JOIN users u ON u.id = b.blocked_id
WHERE b.blocker_id = ?
ORDER BY b.created_at DESC, b.id DESC`), blockerID)
	return blocked, err
}
