package memory

import (
	"context"
	"sort"
	"time"

	"rentmarket-backend/internal/domain"
)

type addressRepository struct{ s *state }

func (r *addressRepository) ownedBy(ownerID int32) []*domain.Address {
	var out []*domain.Address
	for _, a := range r.s.addresses {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

func (r *addressRepository) deactivateOthers(ownerID, keepID int32, now time.Time) {
	for _, a := range r.ownedBy(ownerID) {
		if a.ID != keepID && a.IsActive {
			a.IsActive = false
			a.UpdatedOn = now
		}
	}
}

func (r *addressRepository) Create(_ context.Context, a *domain.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	if len(r.ownedBy(a.OwnerID)) == 0 {
		a.IsActive = true
	}
	if a.IsActive {
		r.deactivateOthers(a.OwnerID, 0, now)
	}
	a.ID = r.s.id("addresses")
	a.CreatedOn = now
	a.UpdatedOn = now
	cp := *a
	r.s.addresses[a.ID] = &cp
	return nil
}

func (r *addressRepository) GetByOwner(_ context.Context, ownerID, id int32) (*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *addressRepository) GetActive(_ context.Context, ownerID int32) (*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.ownedBy(ownerID) {
		if a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *addressRepository) ListByOwner(_ context.Context, ownerID int32) ([]domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Address
	for _, a := range r.ownedBy(ownerID) {
		out = append(out, *a)
	}
	sortNewestFirst(out, func(a domain.Address) (time.Time, int32) { return a.CreatedOn, a.ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsActive && !out[j].IsActive })
	return out, nil
}

func (r *addressRepository) Update(_ context.Context, a *domain.Address, activate bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.addresses[a.ID]
	if !ok || existing.OwnerID != a.OwnerID {
		return domain.ErrNotFound
	}
	now := r.s.now()
	if activate {
		r.deactivateOthers(a.OwnerID, a.ID, now)
	}
	existing.AddressFields = a.AddressFields
	existing.IsActive = existing.IsActive || activate
	existing.UpdatedOn = now
	*a = *existing
	return nil
}

func (r *addressRepository) SetActive(_ context.Context, ownerID, id int32) (*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	now := r.s.now()
	r.deactivateOthers(ownerID, id, now)
	a.IsActive = true
	a.UpdatedOn = now
	cp := *a
	return &cp, nil
}

func (r *addressRepository) Delete(_ context.Context, ownerID, id int32) (*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	delete(r.s.addresses, id)
	if !a.IsActive {
		return nil, nil
	}

	var newest *domain.Address
	for _, other := range r.ownedBy(ownerID) {
		if newest == nil || newestFirst(other.CreatedOn, newest.CreatedOn, other.ID, newest.ID) {
			newest = other
		}
	}
	if newest == nil {
		return nil, nil
	}
	newest.IsActive = true
	newest.UpdatedOn = r.s.now()
	cp := *newest
	return &cp, nil
}
