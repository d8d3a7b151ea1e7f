package memory

import (
	"context"
	"maps"
	"time"

	"rentmarket-backend/internal/domain"
)

type notificationRepository struct{ s *state }

func copyNotification(n *domain.Notification) domain.Notification {
	cp := *n
	cp.Attributes = maps.Clone(n.Attributes)
	return cp
}

func (r *notificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.id("notifications")
	if n.CreatedOn.IsZero() {
		n.CreatedOn = r.s.now()
	}
	cp := copyNotification(n)
	r.s.notifications[n.ID] = &cp
	return nil
}

func (r *notificationRepository) visible(userID int32, unreadOnly bool) []domain.Notification {
	var out []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID != userID || n.DeletedOn != nil || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, copyNotification(n))
	}
	sortNewestFirst(out, func(n domain.Notification) (time.Time, int32) { return n.CreatedOn, n.ID })
	return out
}

func (r *notificationRepository) List(_ context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.visible(userID, false)
	total := int32(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *notificationRepository) ListUnread(_ context.Context, userID int32) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.visible(userID, true), nil
}

func (r *notificationRepository) CountUnread(_ context.Context, userID int32) (int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int32(len(r.visible(userID, true))), nil
}

func (r *notificationRepository) owned(id, userID int32) (*domain.Notification, error) {
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID || n.DeletedOn != nil {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (r *notificationRepository) MarkAsRead(_ context.Context, id, userID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, err := r.owned(id, userID)
	if err != nil {
		return err
	}
	if !n.IsRead {
		now := r.s.now()
		n.IsRead = true
		n.ReadOn = &now
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(_ context.Context, userID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead && n.DeletedOn == nil {
			n.IsRead = true
			n.ReadOn = &now
		}
	}
	return nil
}

func (r *notificationRepository) SoftDelete(_ context.Context, id, userID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, err := r.owned(id, userID)
	if err != nil {
		return err
	}
	now := r.s.now()
	n.DeletedOn = &now
	return nil
}

func (r *notificationRepository) PurgeDeletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var purged int64
	for id, n := range r.s.notifications {
		if n.DeletedOn != nil && n.DeletedOn.Before(cutoff) {
			delete(r.s.notifications, id)
			purged++
		}
	}
	return purged, nil
}
