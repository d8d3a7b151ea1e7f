package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"

	"github.com/lib/pq"
)

type rentalRequestRepository struct {
	db *sql.DB
}

func NewRentalRequestRepository(db *sql.DB) repository.RentalRequestRepository {
	return &rentalRequestRepository{db: db}
}

const rentalColumns = `id, requester_id, owner_id, product_id, delivery_address_id, start_date, end_date, rental_days,
	daily_rate_cents, total_amount_cents, status, message, rejection_reason, approved_at, delivered_at, returned_at,
	is_delivered, is_returned, delivery_notes, return_notes, rating, review, created_on, updated_on`

func scanRental(s rowScanner) (*domain.RentalRequest, error) {
	rr := &domain.RentalRequest{}
	err := s.Scan(&rr.ID, &rr.RequesterID, &rr.OwnerID, &rr.ProductID, &rr.DeliveryAddressID, &rr.StartDate, &rr.EndDate,
		&rr.RentalDays, &rr.DailyRateCents, &rr.TotalAmountCents, &rr.Status, &rr.Message, &rr.RejectionReason,
		&rr.ApprovedAt, &rr.DeliveredAt, &rr.ReturnedAt, &rr.IsDelivered, &rr.IsReturned, &rr.DeliveryNotes,
		&rr.ReturnNotes, &rr.Rating, &rr.Review, &rr.CreatedOn, &rr.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return rr, nil
}

func blockingStatuses() any {
	s := make([]string, len(domain.BlockingRentalStatuses))
	for i, st := range domain.BlockingRentalStatuses {
		s[i] = string(st)
	}
	return pq.Array(s)
}

// CreateIfAvailable locks the product row so that the overlap check and the
// insert are atomic with respect to other requests for the same product.
// The rental_requests_no_overlap exclusion constraint backs this up.
func (r *rentalRequestRepository) CreateIfAvailable(ctx context.Context, rr *domain.RentalRequest) error {
	logger.DatabaseCall("INSERT", "rental_requests", "productID", rr.ProductID, "requesterID", rr.RequesterID)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var productID int32
		if err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, rr.ProductID).Scan(&productID); err != nil {
			return err
		}

		var overlap bool
		overlapQuery := `SELECT EXISTS (SELECT 1 FROM rental_requests
		                 WHERE product_id = $1 AND status = ANY($2) AND start_date <= $3 AND end_date >= $4)`
		if err := tx.QueryRowContext(ctx, overlapQuery, rr.ProductID, blockingStatuses(), rr.EndDate, rr.StartDate).Scan(&overlap); err != nil {
			return err
		}
		if overlap {
			return domain.ErrDateOverlap
		}

		now := time.Now().UTC()
		rr.CreatedOn = now
		rr.UpdatedOn = now
		query := `INSERT INTO rental_requests (requester_id, owner_id, product_id, delivery_address_id, start_date, end_date,
		          rental_days, daily_rate_cents, total_amount_cents, status, message, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
		return tx.QueryRowContext(ctx, query, rr.RequesterID, rr.OwnerID, rr.ProductID, rr.DeliveryAddressID, rr.StartDate,
			rr.EndDate, rr.RentalDays, rr.DailyRateCents, rr.TotalAmountCents, rr.Status, rr.Message, rr.CreatedOn,
			rr.UpdatedOn).Scan(&rr.ID)
	})
	logger.DatabaseResult("INSERT", 1, err, "rentalRequestID", rr.ID)
	return mapError(err)
}

func (r *rentalRequestRepository) GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE id = $1`
	rr, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return rr, nil
}

// Update is a compare-and-swap on status: a concurrent transition that got
// there first makes this one fail with domain.ErrStaleWrite.
func (r *rentalRequestRepository) Update(ctx context.Context, rr *domain.RentalRequest, expected domain.RentalStatus) error {
	query := `UPDATE rental_requests SET status=$1, rejection_reason=$2, approved_at=$3, delivered_at=$4, returned_at=$5,
	          is_delivered=$6, is_returned=$7, delivery_notes=$8, return_notes=$9, rating=$10, review=$11, updated_on=$12
	          WHERE id=$13 AND status=$14`
	rr.UpdatedOn = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "rental_requests", "rentalRequestID", rr.ID, "from", expected, "to", rr.Status)
	res, err := r.db.ExecContext(ctx, query, rr.Status, rr.RejectionReason, rr.ApprovedAt, rr.DeliveredAt, rr.ReturnedAt,
		rr.IsDelivered, rr.IsReturned, rr.DeliveryNotes, rr.ReturnNotes, rr.Rating, rr.Review, rr.UpdatedOn, rr.ID, expected)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalRequestID", rr.ID)
		return mapError(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "rentalRequestID", rr.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrStaleWrite
	}
	return nil
}

func (r *rentalRequestRepository) DeletePending(ctx context.Context, id, requesterID int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rental_requests WHERE id = $1 AND requester_id = $2 AND status = $3`,
		id, requesterID, domain.RentalStatusPending)
	if err != nil {
		return mapError(err)
	}
	return requireOne(res)
}

func (r *rentalRequestRepository) ListByRequester(ctx context.Context, requesterID int32) ([]domain.RentalRequest, error) {
	return r.list(ctx, `SELECT `+rentalColumns+` FROM rental_requests WHERE requester_id = $1 ORDER BY created_on DESC, id DESC`, requesterID)
}

func (r *rentalRequestRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.RentalRequest, error) {
	return r.list(ctx, `SELECT `+rentalColumns+` FROM rental_requests WHERE owner_id = $1 ORDER BY created_on DESC, id DESC`, ownerID)
}

func (r *rentalRequestRepository) ListByStatusStartingBetween(ctx context.Context, status domain.RentalStatus, from, to time.Time) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE status = $1 AND start_date >= $2 AND start_date < $3 ORDER BY start_date, id`
	return r.list(ctx, query, status, from, to)
}

func (r *rentalRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.RentalRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RentalRequest
	for rows.Next() {
		rr, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rr)
	}
	return out, rows.Err()
}

func (r *rentalRequestRepository) CountByStatus(ctx context.Context, userID int32, actor domain.RentalActor) (map[domain.RentalStatus]int32, error) {
	query := `SELECT status, COUNT(*) FROM rental_requests WHERE requester_id = $1 GROUP BY status`
	if actor == domain.RentalActorOwner {
		query = `SELECT status, COUNT(*) FROM rental_requests WHERE owner_id = $1 GROUP BY status`
	}
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RentalStatus]int32)
	for rows.Next() {
		var status domain.RentalStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
