package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"social-service/internal/models"
	"social-service/internal/rabbitmq"
)

type StoryRepository interface {
	Create(ctx context.Context, userID int64, content string, expiresAt time.Time) (*models.Story, error)
	ListActive(ctx context.Context, viewerID int64, now time.Time) ([]models.Story, error)
}

type storyRepository struct {
	db     *sqlx.DB
	events eventPublisher
}

func NewStoryRepository(db *sqlx.DB, publisher rabbitmq.Publisher, logger *zap.Logger) StoryRepository {
	return &storyRepository{db: db, events: newEventPublisher(publisher, logger)}
}

func (r *storyRepository) Create(ctx context.Context, userID int64, content string, expiresAt time.Time) (*models.Story, error) {
	story := models.Story{
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO stories (user_id, content, created_at, expires_at) VALUES (?, ?, ?, ?) RETURNING id`),
		userID, content, story.CreatedAt, story.ExpiresAt).Scan(&story.ID)
	if err != nil {
		return nil, err
	}

	r.events.logPublish(ctx, EventStoryCreated, map[string]any{
		"story_id":   story.ID,
		"user_id":    userID,
		"expires_at": story.ExpiresAt,
	})
	return &story, nil
}

// ListActive returns stories that have not expired at now, newest first,
// leaving out authors who have blocked viewerID.
func (r *storyRepository) ListActive(ctx context.Context, viewerID int64, now time.Time) ([]models.Story, error) {
	stories := []models.Story{}
	err := r.db.SelectContext(ctx, &stories, r.db.Rebind(`
SELECT s.id, s.user_id, s.content, s.created_at, s.expires_at,
	COALESCE(u.username, '') AS username
FROM stories s
LEFT JOIN users u ON u.id = s.user_id
WHERE s.expires_at >= ?
	AND NOT EXISTS (SELECT 1 FROM blocks b WHERE b.blocker_id = s.user_id AND b.blocked_id = ?)
ORDER BY s.created_at DESC, s.id DESC`), now.UTC(), viewerID)
	return stories, err
}
