package services

import (
	"context"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

type NotificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}
