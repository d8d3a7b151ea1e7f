package service_test

import (
	"context"
	"testing"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceService_ExpireStalePendingRequests(t *testing.T) {
	ctx := context.Background()
	rentalRepo := new(MockRentalRepo)
	noteRepo := new(MockNotificationRepo)
	sink := &recordingSink{}
	svc := service.NewMaintenanceService(rentalRepo, noteRepo, sink)

	stale := []domain.RentalRequest{
		{ID: 1, RequesterID: 2, OwnerID: 3, Status: domain.RentalStatusPending},
		{ID: 4, RequesterID: 5, OwnerID: 3, Status: domain.RentalStatusPending},
	}
	rentalRepo.On("ListByStatusStartingBetween", ctx, domain.RentalStatusPending, time.Time{}, mock.AnythingOfType("time.Time")).Return(stale, nil)
	rentalRepo.On("Update", ctx, mock.MatchedBy(func(rr *domain.RentalRequest) bool { return rr.ID == 1 }), domain.RentalStatusPending).Return(nil)
	rentalRepo.On("Update", ctx, mock.MatchedBy(func(rr *domain.RentalRequest) bool { return rr.ID == 4 }), domain.RentalStatusPending).Return(domain.ErrStaleWrite)

	n, err := svc.ExpireStalePendingRequests(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	events := sink.Events()
	require.Len(t, events, 2)
	assert.ElementsMatch(t, []int32{2, 3}, []int32{events[0].RecipientID, events[1].RecipientID})
	assert.Equal(t, domain.NotificationRentalCancelled, events[0].Kind)
	assert.Equal(t, string(domain.RentalStatusCancelled), events[0].Attributes["status"])
}

func TestMaintenanceService_SendRentalStartReminders(t *testing.T) {
	ctx := context.Background()
	rentalRepo := new(MockRentalRepo)
	sink := &recordingSink{}
	svc := service.NewMaintenanceService(rentalRepo, new(MockNotificationRepo), sink)

	upcoming := []domain.RentalRequest{{ID: 1, RequesterID: 2, OwnerID: 3, Status: domain.RentalStatusApproved, StartDate: time.Now().Add(3 * time.Hour)}}
	rentalRepo.On("ListByStatusStartingBetween", ctx, domain.RentalStatusApproved, mock.Anything, mock.Anything).Return(upcoming, nil)

	n, err := svc.SendRentalStartReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []domain.NotificationKind{domain.NotificationRentalReminder, domain.NotificationRentalReminder}, sink.Kinds())
}

func TestMaintenanceService_PurgeDeletedNotifications(t *testing.T) {
	ctx := context.Background()
	noteRepo := new(MockNotificationRepo)
	svc := service.NewMaintenanceService(new(MockRentalRepo), noteRepo, nil)

	noteRepo.On("PurgeDeletedBefore", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) > 29*24*time.Hour
	})).Return(int64(6), nil)

	n, err := svc.PurgeDeletedNotifications(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
}
