package postgres

import (
	"context"
	"testing"
	"time"

	"rentmarket-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func newPendingRequest() *domain.RentalRequest {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return &domain.RentalRequest{
		RequesterID:       1,
		OwnerID:           2,
		ProductID:         3,
		DeliveryAddressID: 4,
		StartDate:         start,
		EndDate:           start.AddDate(0, 0, 5),
		RentalDays:        5,
		DailyRateCents:    1000,
		TotalAmountCents:  5000,
		Status:            domain.RentalStatusPending,
	}
}

func TestRentalRequestRepository_CreateIfAvailable(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRequestRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rr := newPendingRequest()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM products WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(3), sqlmock.AnyArg(), rr.EndDate, rr.StartDate).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO rental_requests").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
		mock.ExpectCommit()

		assert.NoError(t, repo.CreateIfAvailable(ctx, rr))
		assert.Equal(t, int32(21), rr.ID)
	})

	t.Run("Overlap", func(t *testing.T) {
		rr := newPendingRequest()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM products").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.CreateIfAvailable(ctx, rr)
		assert.ErrorIs(t, err, domain.ErrDateOverlap)
		assert.Zero(t, rr.ID)
	})

	t.Run("ExclusionConstraint", func(t *testing.T) {
		rr := newPendingRequest()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM products").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO rental_requests").
			WillReturnError(&pq.Error{Code: "23P01"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.CreateIfAvailable(ctx, rr), domain.ErrDateOverlap)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRequestRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rr := newPendingRequest()
		rr.ID = 21
		rr.Status = domain.RentalStatusApproved
		mock.ExpectExec("UPDATE rental_requests SET (.+) WHERE id=\\$13 AND status=\\$14").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, rr, domain.RentalStatusPending))
	})

	t.Run("StatusChangedUnderneath", func(t *testing.T) {
		rr := newPendingRequest()
		rr.ID = 21
		rr.Status = domain.RentalStatusRejected
		mock.ExpectExec("UPDATE rental_requests").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, rr, domain.RentalStatusPending)
		assert.ErrorIs(t, err, domain.ErrStaleWrite)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_CountByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRequestRepository(db)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM rental_requests WHERE owner_id = \\$1").
		WithArgs(int32(2)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 2).AddRow("returned", 1))

	counts, err := repo.CountByStatus(context.Background(), 2, domain.RentalActorOwner)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), counts[domain.RentalStatusPending])
	assert.Equal(t, int32(1), counts[domain.RentalStatusReturned])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_DeletePending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRentalRequestRepository(db)

	mock.ExpectExec("DELETE FROM rental_requests").
		WithArgs(int32(21), int32(1), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeletePending(context.Background(), 21, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
