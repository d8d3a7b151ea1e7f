package notify

import (
	"context"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

// StoreSink persists events as in-app notifications.
type StoreSink struct {
	repo repository.NotificationRepository
}

func NewStoreSink(repo repository.NotificationRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	note := &domain.Notification{
		UserID:     event.RecipientID,
		Kind:       event.Kind,
		Priority:   event.Priority,
		Title:      event.Title,
		Message:    event.Message,
		Attributes: event.Attributes,
	}
	if event.FromUserID != 0 {
		from := event.FromUserID
		note.FromUserID = &from
	}
	if note.Priority == "" {
		note.Priority = domain.PriorityMedium
	}
	return s.repo.Create(ctx, note)
}
