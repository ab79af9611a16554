package service

import (
	"context"
	"errors"

	"github.com/huger6/filseries/internal/microservices/http-api/models"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	Notify(ctx context.Context, userID, nType, message string, targetURL *string) error
	List(ctx context.Context, userID string, onlyUnread bool) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID int64) error
	DeleteAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, userID, nType, message string, targetURL *string) error {
	return s.repo.Create(ctx, &models.Notification{
		UserID:    userID,
		Type:      nType,
		Message:   message,
		TargetURL: targetURL,
	})
}

func (s *notificationService) List(ctx context.Context, userID string, onlyUnread bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, onlyUnread)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	err := s.repo.MarkAsRead(ctx, userID, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID string, notificationID int64) error {
	err := s.repo.Delete(ctx, userID, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) DeleteAllRead(ctx context.Context, userID string) error {
	return s.repo.DeleteAllRead(ctx, userID)
}
