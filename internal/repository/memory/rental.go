package memory

import (
	"context"
	"sort"
	"time"

	"rentmarket-backend/internal/domain"
)

type rentalRequestRepository struct{ s *state }

func (r *rentalRequestRepository) CreateIfAvailable(_ context.Context, rr *domain.RentalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[rr.ProductID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.rentals {
		if existing.ProductID == rr.ProductID && existing.Status.BlocksAvailability() && existing.Overlaps(rr.StartDate, rr.EndDate) {
			return domain.ErrDateOverlap
		}
	}
	rr.ID = r.s.id("rental_requests")
	rr.CreatedOn = r.s.now()
	rr.UpdatedOn = rr.CreatedOn
	cp := *rr
	r.s.rentals[rr.ID] = &cp
	return nil
}

func (r *rentalRequestRepository) GetByID(_ context.Context, id int32) (*domain.RentalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rr, ok := r.s.rentals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rr
	return &cp, nil
}

func (r *rentalRequestRepository) Update(_ context.Context, rr *domain.RentalRequest, expected domain.RentalStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.rentals[rr.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != expected {
		return domain.ErrStaleWrite
	}
	rr.UpdatedOn = r.s.now()
	updated := *stored
	updated.Status = rr.Status
	updated.RejectionReason = rr.RejectionReason
	updated.ApprovedAt = rr.ApprovedAt
	updated.DeliveredAt = rr.DeliveredAt
	updated.ReturnedAt = rr.ReturnedAt
	updated.IsDelivered = rr.IsDelivered
	updated.IsReturned = rr.IsReturned
	updated.DeliveryNotes = rr.DeliveryNotes
	updated.ReturnNotes = rr.ReturnNotes
	updated.Rating = rr.Rating
	updated.Review = rr.Review
	updated.UpdatedOn = rr.UpdatedOn
	r.s.rentals[rr.ID] = &updated
	return nil
}

func (r *rentalRequestRepository) DeletePending(_ context.Context, id, requesterID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rr, ok := r.s.rentals[id]
	if !ok || rr.RequesterID != requesterID || rr.Status != domain.RentalStatusPending {
		return domain.ErrNotFound
	}
	delete(r.s.rentals, id)
	return nil
}

func (r *rentalRequestRepository) filter(keep func(*domain.RentalRequest) bool) []domain.RentalRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.RentalRequest
	for _, rr := range r.s.rentals {
		if keep(rr) {
			out = append(out, *rr)
		}
	}
	return out
}

func (r *rentalRequestRepository) ListByRequester(_ context.Context, requesterID int32) ([]domain.RentalRequest, error) {
	out := r.filter(func(rr *domain.RentalRequest) bool { return rr.RequesterID == requesterID })
	sortNewestFirst(out, func(rr domain.RentalRequest) (time.Time, int32) { return rr.CreatedOn, rr.ID })
	return out, nil
}

func (r *rentalRequestRepository) ListByOwner(_ context.Context, ownerID int32) ([]domain.RentalRequest, error) {
	out := r.filter(func(rr *domain.RentalRequest) bool { return rr.OwnerID == ownerID })
	sortNewestFirst(out, func(rr domain.RentalRequest) (time.Time, int32) { return rr.CreatedOn, rr.ID })
	return out, nil
}

func (r *rentalRequestRepository) CountByStatus(_ context.Context, userID int32, actor domain.RentalActor) (map[domain.RentalStatus]int32, error) {
	counts := make(map[domain.RentalStatus]int32)
	for _, rr := range r.filter(func(rr *domain.RentalRequest) bool {
		if actor == domain.RentalActorOwner {
			return rr.OwnerID == userID
		}
		return rr.RequesterID == userID
	}) {
		counts[rr.Status]++
	}
	return counts, nil
}

func (r *rentalRequestRepository) ListByStatusStartingBetween(_ context.Context, status domain.RentalStatus, from, to time.Time) ([]domain.RentalRequest, error) {
	out := r.filter(func(rr *domain.RentalRequest) bool {
		return rr.Status == status && !rr.StartDate.Before(from) && rr.StartDate.Before(to)
	})
	sort.Slice(out, func(i, j int) bool { return !newestFirst(out[i].StartDate, out[j].StartDate, out[i].ID, out[j].ID) })
	return out, nil
}
