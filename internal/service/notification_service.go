package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

// NotificationService records scheduled notifications. Nothing delivers them.
type NotificationService interface {
	Schedule(ctx context.Context, userID uuid.UUID, title, body string, scheduledFor time.Time) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Schedule(ctx context.Context, userID uuid.UUID, title, body string, scheduledFor time.Time) (*model.Notification, error) {
	notification := &model.Notification{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        title,
		Body:         body,
		ScheduledFor: scheduledFor.UTC(),
		Status:       model.NotificationStatusScheduled,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
