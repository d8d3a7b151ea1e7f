package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
)

type addressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, full_name, phone_number, address_line1, address_line2, city, state, pincode,
	country, address_type, is_active, created_on, updated_on`

func scanAddress(s rowScanner) (*domain.Address, error) {
	a := &domain.Address{}
	err := s.Scan(&a.ID, &a.OwnerID, &a.FullName, &a.PhoneNumber, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.Pincode, &a.Country, &a.AddressType, &a.IsActive, &a.CreatedOn, &a.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// lockOwner serializes address writes for one user until the transaction ends.
func lockOwner(ctx context.Context, tx *sql.Tx, ownerID int32) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('addresses'), $1)`, ownerID)
	return err
}

func deactivateOthers(ctx context.Context, tx *sql.Tx, ownerID, keepID int32, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_active = FALSE, updated_on = $1 WHERE user_id = $2 AND is_active AND id <> $3`,
		now, ownerID, keepID)
	return err
}

func (r *addressRepository) Create(ctx context.Context, a *domain.Address) error {
	logger.DatabaseCall("INSERT", "addresses", "ownerID", a.OwnerID, "active", a.IsActive)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockOwner(ctx, tx, a.OwnerID); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, a.OwnerID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			a.IsActive = true
		}
		now := time.Now().UTC()
		if a.IsActive {
			if err := deactivateOthers(ctx, tx, a.OwnerID, 0, now); err != nil {
				return err
			}
		}
		a.CreatedOn = now
		a.UpdatedOn = now
		query := `INSERT INTO addresses (user_id, full_name, phone_number, address_line1, address_line2, city, state, pincode,
		          country, address_type, is_active, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
		return tx.QueryRowContext(ctx, query, a.OwnerID, a.FullName, a.PhoneNumber, a.AddressLine1, a.AddressLine2, a.City,
			a.State, a.Pincode, a.Country, a.AddressType, a.IsActive, a.CreatedOn, a.UpdatedOn).Scan(&a.ID)
	})
	logger.DatabaseResult("INSERT", 1, err, "addressID", a.ID)
	return mapError(err)
}

func (r *addressRepository) GetByOwner(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *addressRepository) GetActive(ctx context.Context, ownerID int32) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND is_active`
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *addressRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_active DESC, created_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *a)
	}
	return addrs, rows.Err()
}

func (r *addressRepository) Update(ctx context.Context, a *domain.Address, activate bool) error {
	logger.DatabaseCall("UPDATE", "addresses", "addressID", a.ID, "activate", activate)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockOwner(ctx, tx, a.OwnerID); err != nil {
			return err
		}
		now := time.Now().UTC()
		if activate {
			if err := deactivateOthers(ctx, tx, a.OwnerID, a.ID, now); err != nil {
				return err
			}
		}
		query := `UPDATE addresses SET full_name=$1, phone_number=$2, address_line1=$3, address_line2=$4, city=$5, state=$6,
		          pincode=$7, country=$8, address_type=$9, is_active = is_active OR $10, updated_on=$11
		          WHERE id=$12 AND user_id=$13 RETURNING is_active, created_on`
		a.UpdatedOn = now
		return tx.QueryRowContext(ctx, query, a.FullName, a.PhoneNumber, a.AddressLine1, a.AddressLine2, a.City, a.State,
			a.Pincode, a.Country, a.AddressType, activate, now, a.ID, a.OwnerID).Scan(&a.IsActive, &a.CreatedOn)
	})
	logger.DatabaseResult("UPDATE", 1, err, "addressID", a.ID)
	return mapError(err)
}

func (r *addressRepository) SetActive(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	var a *domain.Address
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockOwner(ctx, tx, ownerID); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := deactivateOthers(ctx, tx, ownerID, id, now); err != nil {
			return err
		}
		query := `UPDATE addresses SET is_active = TRUE, updated_on = $1 WHERE id = $2 AND user_id = $3 RETURNING ` + addressColumns
		var err error
		a, err = scanAddress(tx.QueryRowContext(ctx, query, now, id, ownerID))
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *addressRepository) Delete(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	var promoted *domain.Address
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockOwner(ctx, tx, ownerID); err != nil {
			return err
		}
		var wasActive bool
		err := tx.QueryRowContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_active`, id, ownerID).Scan(&wasActive)
		if err != nil || !wasActive {
			return err
		}
		query := `UPDATE addresses SET is_active = TRUE, updated_on = $1
		          WHERE id = (SELECT id FROM addresses WHERE user_id = $2 ORDER BY created_on DESC, id DESC LIMIT 1)
		          RETURNING ` + addressColumns
		promoted, err = scanAddress(tx.QueryRowContext(ctx, query, time.Now().UTC(), ownerID))
		if err == sql.ErrNoRows {
			promoted = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return promoted, nil
}
