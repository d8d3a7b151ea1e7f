package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"

	"github.com/lib/pq"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `o.id, o.buyer_id, o.order_number, o.total_price_cents, o.status, o.shipping_address, o.created_on, o.updated_on`

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	logger.DatabaseCall("INSERT", "orders", "buyerID", o.BuyerID, "orderNumber", o.OrderNumber)
	now := time.Now().UTC()
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO orders (buyer_id, order_number, total_price_cents, status, shipping_address, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, o.BuyerID, o.OrderNumber, o.TotalPriceCents, o.Status, addr, now, now).Scan(&o.ID); err != nil {
			return err
		}
		for _, li := range o.LineItems {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, seller_id, quantity, price_cents) VALUES ($1, $2, $3, $4, $5)`,
				o.ID, li.ProductID, li.SellerID, li.Quantity, li.PriceCents)
			if err != nil {
				return err
			}
		}
		return nil
	})
	logger.DatabaseResult("INSERT", int64(len(o.LineItems)), err, "orderID", o.ID)
	if err != nil {
		o.ID = 0
		return mapError(err)
	}
	o.CreatedOn = now
	o.UpdatedOn = now
	return nil
}

func (r *orderRepository) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, orderNumber).Scan(&exists)
	return exists, err
}

func (r *orderRepository) GetByID(ctx context.Context, id int32) (*domain.Order, error) {
	orders, err := r.list(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int32) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.buyer_id = $1 ORDER BY o.created_on DESC, o.id DESC`, buyerID)
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID int32) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o
	          WHERE EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.seller_id = $1)
	          ORDER BY o.created_on DESC, o.id DESC`
	return r.list(ctx, query, sellerID)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int32, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1, updated_on = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return mapError(err)
	}
	return requireOne(res)
}

// list loads the order headers, then their line items in one query.
func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	index := make(map[int32]int)
	for rows.Next() {
		var o domain.Order
		var addr []byte
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.OrderNumber, &o.TotalPriceCents, &o.Status, &addr, &o.CreatedOn, &o.UpdatedOn); err != nil {
			rows.Close()
			return nil, err
		}
		if len(addr) > 0 {
			if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
				rows.Close()
				return nil, err
			}
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = int64(o.ID)
	}
	itemRows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, seller_id, quantity, price_cents FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID int32
		var li domain.OrderLineItem
		if err := itemRows.Scan(&orderID, &li.ProductID, &li.SellerID, &li.Quantity, &li.PriceCents); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].LineItems = append(orders[i].LineItems, li)
		}
	}
	return orders, itemRows.Err()
}
