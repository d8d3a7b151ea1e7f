package memory

import (
	"context"
	"time"

	"rentmarket-backend/internal/domain"
)

type productRepository struct{ s *state }

func (r *productRepository) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id("products")
	p.CreatedOn = r.s.now()
	p.UpdatedOn = p.CreatedOn
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepository) GetByID(_ context.Context, id int32) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *productRepository) Update(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.OwnerID = existing.OwnerID
	p.CreatedOn = existing.CreatedOn
	p.UpdatedOn = r.s.now()
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepository) ListByOwner(_ context.Context, ownerID int32) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Product
	for _, p := range r.s.products {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sortNewestFirst(out, func(p domain.Product) (time.Time, int32) { return p.CreatedOn, p.ID })
	return out, nil
}
