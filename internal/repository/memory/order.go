package memory

import (
	"context"
	"time"

	"rentmarket-backend/internal/domain"
)

type orderRepository struct{ s *state }

func copyOrder(o *domain.Order) domain.Order {
	cp := *o
	cp.LineItems = append([]domain.OrderLineItem{}, o.LineItems...)
	return cp
}

func (r *orderRepository) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return &domain.Error{Kind: domain.KindConflict, Message: "duplicate record"}
		}
	}
	o.ID = r.s.id("orders")
	o.CreatedOn = r.s.now()
	o.UpdatedOn = o.CreatedOn
	cp := copyOrder(o)
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *orderRepository) OrderNumberExists(_ context.Context, orderNumber string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *orderRepository) GetByID(_ context.Context, id int32) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (r *orderRepository) list(keep func(*domain.Order) bool) []domain.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sortNewestFirst(out, func(o domain.Order) (time.Time, int32) { return o.CreatedOn, o.ID })
	return out
}

func (r *orderRepository) ListByBuyer(_ context.Context, buyerID int32) ([]domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *orderRepository) ListBySeller(_ context.Context, sellerID int32) ([]domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.HasSeller(sellerID) }), nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id int32, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedOn = r.s.now()
	return nil
}
