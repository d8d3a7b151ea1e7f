package repository

import (
	"context"
	"time"

	"rentmarket-backend/internal/domain"
)

// Implementations return domain.ErrNotFound (kind) for missing rows and
// domain.ErrConflict (kind) for violated uniqueness or stale writes. Any other
// error is a storage failure.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Product, error)
}

type AddressRepository interface {
	// Create inserts the address. When addr.IsActive is set, the owner's other
	// addresses are deactivated in the same transaction. When the owner has no
	// address yet, the new one is stored active regardless.
	Create(ctx context.Context, addr *domain.Address) error
	GetByOwner(ctx context.Context, ownerID, id int32) (*domain.Address, error)
	GetActive(ctx context.Context, ownerID int32) (*domain.Address, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Address, error)
	// Update writes the editable fields; activate=true also deactivates siblings atomically.
	Update(ctx context.Context, addr *domain.Address, activate bool) error
	SetActive(ctx context.Context, ownerID, id int32) (*domain.Address, error)
	// Delete removes the address and, if it was active, promotes the most
	// recently created remaining address. Returns the promoted address, if any.
	Delete(ctx context.Context, ownerID, id int32) (*domain.Address, error)
}

type CartRepository interface {
	// GetOrCreate returns the owner's cart, creating an empty one the first time.
	GetOrCreate(ctx context.Context, ownerID int32) (*domain.Cart, error)
	// Save replaces items and totals if cart.Version is still current, then bumps the version.
	Save(ctx context.Context, cart *domain.Cart) error
}

type RentalRequestRepository interface {
	// CreateIfAvailable inserts rr unless a pending or approved request for the
	// same product overlaps [rr.StartDate, rr.EndDate]; then it returns domain.ErrDateOverlap.
	CreateIfAvailable(ctx context.Context, rr *domain.RentalRequest) error
	GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error)
	// Update writes mutable fields only if the stored status still equals expected.
	Update(ctx context.Context, rr *domain.RentalRequest, expected domain.RentalStatus) error
	// DeletePending removes the request only while it is pending and owned by requesterID.
	DeletePending(ctx context.Context, id, requesterID int32) error
	ListByRequester(ctx context.Context, requesterID int32) ([]domain.RentalRequest, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.RentalRequest, error)
	CountByStatus(ctx context.Context, userID int32, actor domain.RentalActor) (map[domain.RentalStatus]int32, error)
	ListByStatusStartingBetween(ctx context.Context, status domain.RentalStatus, from, to time.Time) ([]domain.RentalRequest, error)
}

type OrderRepository interface {
	// Create inserts the order; a duplicate order number yields a conflict.
	Create(ctx context.Context, order *domain.Order) error
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)
	GetByID(ctx context.Context, id int32) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID int32) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID int32) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int32, status domain.OrderStatus) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	ListUnread(ctx context.Context, userID int32) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
	SoftDelete(ctx context.Context, id, userID int32) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
