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

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, ownerID int32) (*domain.Cart, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO carts (user_id, version, updated_on) VALUES ($1, 0, $2) ON CONFLICT (user_id) DO NOTHING`,
		ownerID, time.Now().UTC())
	if err != nil {
		return nil, mapError(err)
	}

	c := &domain.Cart{}
	query := `SELECT id, user_id, total_items, total_sale_price_cents, total_rental_price_cents, version, updated_on
	          FROM carts WHERE user_id = $1`
	err = r.db.QueryRowContext(ctx, query, ownerID).Scan(&c.ID, &c.OwnerID, &c.TotalItems, &c.TotalSalePriceCents,
		&c.TotalRentalPriceCents, &c.Version, &c.UpdatedOn)
	if err != nil {
		return nil, mapError(err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, product_id, quantity, unit_price_cents, kind, rental_start, rental_end, rental_days
	          FROM cart_items WHERE cart_id = $1 ORDER BY id`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	c.Items = []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPriceCents, &it.Kind, &it.RentalStart,
			&it.RentalEnd, &it.RentalDays); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// Save bumps the version with a compare-and-swap, then reconciles the item
// rows: removed lines are deleted, known lines updated, new lines inserted.
func (r *cartRepository) Save(ctx context.Context, c *domain.Cart) error {
	logger.DatabaseCall("UPDATE", "carts", "cartID", c.ID, "version", c.Version)
	now := time.Now().UTC()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE carts SET total_items=$1, total_sale_price_cents=$2, total_rental_price_cents=$3, version=version+1, updated_on=$4
			 WHERE id=$5 AND version=$6`,
			c.TotalItems, c.TotalSalePriceCents, c.TotalRentalPriceCents, now, c.ID, c.Version)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrStaleWrite
		}

		keep := make([]int64, 0, len(c.Items))
		for _, it := range c.Items {
			if it.ID != 0 {
				keep = append(keep, int64(it.ID))
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND NOT (id = ANY($2))`, c.ID, pq.Array(keep)); err != nil {
			return err
		}

		for i := range c.Items {
			it := &c.Items[i]
			if it.ID != 0 {
				_, err = tx.ExecContext(ctx,
					`UPDATE cart_items SET quantity=$1, unit_price_cents=$2, kind=$3, rental_start=$4, rental_end=$5, rental_days=$6
					 WHERE id=$7 AND cart_id=$8`,
					it.Quantity, it.UnitPriceCents, it.Kind, it.RentalStart, it.RentalEnd, it.RentalDays, it.ID, c.ID)
			} else {
				err = tx.QueryRowContext(ctx,
					`INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_cents, kind, rental_start, rental_end, rental_days)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
					c.ID, it.ProductID, it.Quantity, it.UnitPriceCents, it.Kind, it.RentalStart, it.RentalEnd, it.RentalDays).Scan(&it.ID)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	logger.DatabaseResult("UPDATE", int64(len(c.Items)), err, "cartID", c.ID)
	if err != nil {
		return mapError(err)
	}
	c.Version++
	c.UpdatedOn = now
	return nil
}
