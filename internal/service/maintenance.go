package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"

	"github.com/google/uuid"
)

type maintenanceService struct {
	rentalRepo repository.RentalRequestRepository
	noteRepo   repository.NotificationRepository
	sink       NotificationSink
	now        func() time.Time
}

func NewMaintenanceService(rentalRepo repository.RentalRequestRepository, noteRepo repository.NotificationRepository, sink NotificationSink) MaintenanceService {
	return &maintenanceService{
		rentalRepo: rentalRepo,
		noteRepo:   noteRepo,
		sink:       sink,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ExpireStalePendingRequests cancels pending requests whose start date is more
// than grace in the past. Requests that changed status meanwhile are skipped.
func (s *maintenanceService) ExpireStalePendingRequests(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.now().Add(-grace)
	stale, err := s.rentalRepo.ListByStatusStartingBetween(ctx, domain.RentalStatusPending, time.Time{}, cutoff)
	if err != nil {
		return 0, storageError(err)
	}

	expired := 0
	for i := range stale {
		rr := &stale[i]
		rr.Status = domain.RentalStatusCancelled
		rr.RejectionReason = "expired without a response from the owner"
		if err := s.rentalRepo.Update(ctx, rr, domain.RentalStatusPending); err != nil {
			if errors.Is(err, domain.ErrStaleWrite) || errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping rental request that left pending", "rentalRequestID", rr.ID)
				continue
			}
			return expired, storageError(err)
		}
		expired++
		s.emitBoth(ctx, rr, domain.NotificationRentalCancelled, domain.PriorityMedium,
			"Rental Request Expired", "A pending rental request expired because its start date has passed")
	}
	return expired, nil
}

// SendRentalStartReminders notifies both parties of approved rentals that
// start within window.
func (s *maintenanceService) SendRentalStartReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	upcoming, err := s.rentalRepo.ListByStatusStartingBetween(ctx, domain.RentalStatusApproved, now, now.Add(window))
	if err != nil {
		return 0, storageError(err)
	}
	for i := range upcoming {
		rr := &upcoming[i]
		s.emitBoth(ctx, rr, domain.NotificationRentalReminder, domain.PriorityHigh,
			"Rental Starting Soon", "A rental you are part of starts on "+rr.StartDate.Format("2006-01-02"))
	}
	return len(upcoming), nil
}

func (s *maintenanceService) PurgeDeletedNotifications(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.noteRepo.PurgeDeletedBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, storageError(err)
	}
	return n, nil
}

func (s *maintenanceService) emitBoth(ctx context.Context, rr *domain.RentalRequest, kind domain.NotificationKind, priority domain.NotificationPriority, title, message string) {
	if s.sink == nil {
		return
	}
	attrs := map[string]string{
		"rental_request_id": strconv.Itoa(int(rr.ID)),
		"product_id":        strconv.Itoa(int(rr.ProductID)),
		"status":            string(rr.Status),
	}
	for _, recipient := range []int32{rr.RequesterID, rr.OwnerID} {
		s.sink.Emit(ctx, domain.NotificationEvent{
			ID:          uuid.NewString(),
			Kind:        kind,
			RecipientID: recipient,
			Priority:    priority,
			Title:       title,
			Message:     message,
			Attributes:  attrs,
			OccurredAt:  s.now(),
		})
	}
}
