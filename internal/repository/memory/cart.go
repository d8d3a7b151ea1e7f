package memory

import (
	"context"

	"rentmarket-backend/internal/domain"
)

type cartRepository struct{ s *state }

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = append([]domain.CartItem{}, c.Items...)
	return &cp
}

func (r *cartRepository) GetOrCreate(_ context.Context, ownerID int32) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[ownerID]
	if !ok {
		c = &domain.Cart{ID: r.s.id("carts"), OwnerID: ownerID, Items: []domain.CartItem{}, UpdatedOn: r.s.now()}
		r.s.carts[ownerID] = c
	}
	return copyCart(c), nil
}

func (r *cartRepository) Save(_ context.Context, c *domain.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.carts[c.OwnerID]
	if !ok || stored.ID != c.ID {
		return domain.ErrNotFound
	}
	if stored.Version != c.Version {
		return domain.ErrStaleWrite
	}
	for i := range c.Items {
		if c.Items[i].ID == 0 {
			c.Items[i].ID = r.s.id("cart_items")
		}
	}
	c.Version++
	c.UpdatedOn = r.s.now()
	r.s.carts[c.OwnerID] = copyCart(c)
	return nil
}
