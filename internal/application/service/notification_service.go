package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// NotificationService records and serves in-app notifications. Delivery
// beyond the store is out of scope.
type NotificationService interface {
	Notify(ctx context.Context, userID, ntype, title, message, link string) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type notificationServiceImpl struct {
	repo   port.NotificationRepository
	logger Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{repo: repo, logger: logger}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID, ntype, title, message, link string) error {
	notification := &entity.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		Link:      link,
		Timestamp: time.Now(),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	s.logger.Info("Notification recorded", "user_id", userID, "type", ntype)
	return nil
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}
