package service

import (
	"context"
	"time"

	"rentmarket-backend/internal/domain"
)

// NotificationSink receives events after the originating write has
// committed. Emit never blocks and never reports failure to the caller.
type NotificationSink interface {
	Emit(ctx context.Context, event domain.NotificationEvent)
}

type AuthService interface {
	Signup(ctx context.Context, name, email, phone, password string) (*domain.User, string, string, error) // user, access, refresh
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

type ProductService interface {
	CreateProduct(ctx context.Context, ownerID int32, in ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id int32) (*domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID, id int32, in ProductInput) (*domain.Product, error)
	ListMyProducts(ctx context.Context, ownerID int32) ([]domain.Product, error)
}

type AddressService interface {
	CreateAddress(ctx context.Context, ownerID int32, fields domain.AddressFields, wantActive bool) (*domain.Address, error)
	SetActive(ctx context.Context, ownerID, id int32) (*domain.Address, error)
	// UpdateAddress applies fields; wantActive=true also makes it the active address.
	UpdateAddress(ctx context.Context, ownerID, id int32, fields domain.AddressFields, wantActive *bool) (*domain.Address, error)
	DeleteAddress(ctx context.Context, ownerID, id int32) error
	ListAddresses(ctx context.Context, ownerID int32) ([]domain.Address, error)
	GetActive(ctx context.Context, ownerID int32) (*domain.Address, error)
	GetAddress(ctx context.Context, ownerID, id int32) (*domain.Address, error)
}

type CartService interface {
	GetCart(ctx context.Context, ownerID int32) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID int32, in CartItemInput) (*domain.Cart, error)
	UpdateItem(ctx context.Context, ownerID, itemID int32, in CartItemUpdate) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, itemID int32) (*domain.Cart, error)
	ClearCart(ctx context.Context, ownerID int32) (*domain.Cart, error)
}

type RentalService interface {
	CreateRentalRequest(ctx context.Context, requesterID int32, in CreateRentalInput) (*domain.RentalRequest, error)
	Transition(ctx context.Context, requestID, actorID int32, event domain.RentalEvent, args TransitionArgs) (*domain.RentalRequest, error)
	Approve(ctx context.Context, requestID, ownerID int32) (*domain.RentalRequest, error)
	Reject(ctx context.Context, requestID, ownerID int32, reason string) (*domain.RentalRequest, error)
	Cancel(ctx context.Context, requestID, requesterID int32) (*domain.RentalRequest, error)
	MarkDelivered(ctx context.Context, requestID, ownerID int32, notes *string) (*domain.RentalRequest, error)
	MarkReturned(ctx context.Context, requestID, ownerID int32, notes *string) (*domain.RentalRequest, error)
	Rate(ctx context.Context, requestID, requesterID int32, rating int32, review string) (*domain.RentalRequest, error)
	AddNotes(ctx context.Context, requestID, ownerID int32, deliveryNotes, returnNotes *string) (*domain.RentalRequest, error)
	ListByRequester(ctx context.Context, userID int32) ([]domain.RentalRequest, error)
	ListByOwner(ctx context.Context, userID int32) ([]domain.RentalRequest, error)
	GetByID(ctx context.Context, requestID, callerID int32) (*domain.RentalRequest, error)
	DeleteIfPending(ctx context.Context, requestID, requesterID int32) error
	Stats(ctx context.Context, userID int32) (*domain.RentalStats, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, buyerID int32, in CreateOrderInput) (*domain.Order, error)
	CreateOrderFromCart(ctx context.Context, buyerID, shippingAddressID int32) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID int32) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID int32) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID, callerID int32) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, callerID int32, status domain.OrderStatus) (*domain.Order, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	ListUnread(ctx context.Context, userID int32) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
	DeleteNotification(ctx context.Context, userID, notificationID int32) error
}

// MaintenanceService holds the operations run by the cronjob binary.
type MaintenanceService interface {
	ExpireStalePendingRequests(ctx context.Context, grace time.Duration) (int, error)
	SendRentalStartReminders(ctx context.Context, window time.Duration) (int, error)
	PurgeDeletedNotifications(ctx context.Context, retention time.Duration) (int64, error)
}
