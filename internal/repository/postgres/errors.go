package postgres

import (
	"database/sql"
	"errors"

	"rentmarket-backend/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

// mapError translates driver errors into the domain taxonomy. Unknown errors
// pass through untouched; services treat them as storage failures.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &domain.Error{Kind: domain.KindConflict, Message: "duplicate record", Err: err}
		case pqExclusionViolation:
			return domain.ErrDateOverlap
		}
	}
	return err
}
