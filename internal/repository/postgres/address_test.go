package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rentmarket-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var addressRowColumns = []string{"id", "user_id", "full_name", "phone_number", "address_line1", "address_line2", "city",
	"state", "pincode", "country", "address_type", "is_active", "created_on", "updated_on"}

func TestAddressRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	t.Run("FirstAddressIsForcedActive", func(t *testing.T) {
		addr := &domain.Address{OwnerID: 3, AddressFields: domain.AddressFields{FullName: "A", City: "X"}}

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs(int32(3)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM addresses WHERE user_id = \\$1").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("UPDATE addresses SET is_active = FALSE").
			WithArgs(sqlmock.AnyArg(), int32(3), int32(0)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("INSERT INTO addresses").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		assert.NoError(t, repo.Create(ctx, addr))
		assert.Equal(t, int32(11), addr.ID)
		assert.True(t, addr.IsActive)
	})

	t.Run("InactiveSecondAddressLeavesSiblings", func(t *testing.T) {
		addr := &domain.Address{OwnerID: 3}

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM addresses").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("INSERT INTO addresses").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
		mock.ExpectCommit()

		assert.NoError(t, repo.Create(ctx, addr))
		assert.False(t, addr.IsActive)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAddressRepository(db)
	ctx := context.Background()

	t.Run("ActiveDeletePromotesNewest", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("DELETE FROM addresses WHERE id = \\$1 AND user_id = \\$2 RETURNING is_active").
			WithArgs(int32(5), int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
		mock.ExpectQuery("UPDATE addresses SET is_active = TRUE").
			WithArgs(sqlmock.AnyArg(), int32(3)).
			WillReturnRows(sqlmock.NewRows(addressRowColumns).
				AddRow(9, 3, "B", "1", "l1", "", "c", "s", "p", "IN", "work", true, time.Now(), time.Now()))
		mock.ExpectCommit()

		promoted, err := repo.Delete(ctx, 3, 5)
		assert.NoError(t, err)
		if assert.NotNil(t, promoted) {
			assert.Equal(t, int32(9), promoted.ID)
			assert.True(t, promoted.IsActive)
		}
	})

	t.Run("LastAddressLeavesNoneActive", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("DELETE FROM addresses").
			WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
		mock.ExpectQuery("UPDATE addresses SET is_active = TRUE").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectCommit()

		promoted, err := repo.Delete(ctx, 3, 9)
		assert.NoError(t, err)
		assert.Nil(t, promoted)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("DELETE FROM addresses").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Delete(ctx, 3, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
