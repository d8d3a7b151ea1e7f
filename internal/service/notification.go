package service

import (
	"context"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

const maxPageSize = 100

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	notes, total, err := s.noteRepo.List(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, 0, storageError(err)
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	return notes, total, nil
}

func (s *notificationService) ListUnread(ctx context.Context, userID int32) ([]domain.Notification, error) {
	notes, err := s.noteRepo.ListUnread(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	return notes, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	n, err := s.noteRepo.CountUnread(ctx, userID)
	return n, storageError(err)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return lookupError(s.noteRepo.MarkAsRead(ctx, notificationID, userID), "notification")
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int32) error {
	return storageError(s.noteRepo.MarkAllAsRead(ctx, userID))
}

func (s *notificationService) DeleteNotification(ctx context.Context, userID, notificationID int32) error {
	return lookupError(s.noteRepo.SoftDelete(ctx, notificationID, userID), "notification")
}
