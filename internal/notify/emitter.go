package notify

import (
	"context"

	"go.uber.org/zap"

	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/realtime"
	"social-service/internal/repositories"
)

// Emitter records a user-facing notification. Emit never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, n models.Notification)
}

type Dispatcher struct {
	repo   repositories.NotificationRepository
	pusher realtime.Pusher
	logger *zap.Logger
}

func NewDispatcher(repo repositories.NotificationRepository, pusher realtime.Pusher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pusher == nil {
		pusher = realtime.NewPusher(nil)
	}
	return &Dispatcher{repo: repo, pusher: pusher, logger: logger}
}

// Emit persists n and pushes it to the recipient's realtime channel. A failed
// push does not undo the stored row.
func (d *Dispatcher) Emit(ctx context.Context, n models.Notification) {
	kind := string(n.Type)

	if err := d.repo.Create(ctx, &n); err != nil {
		d.logger.Warn("failed to store notification",
			zap.String("type", kind), zap.Int64("user_id", n.UserID), zap.Error(err))
		observability.IncNotificationEmitted(kind, "store_failed")
		return
	}

	if err := d.pusher.Push(ctx, n.UserID, n); err != nil {
		d.logger.Warn("failed to push notification",
			zap.String("type", kind), zap.Int64("user_id", n.UserID), zap.Error(err))
		observability.IncNotificationEmitted(kind, "push_failed")
		return
	}

	observability.IncNotificationEmitted(kind, "ok")
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Emit(context.Context, models.Notification) {}
