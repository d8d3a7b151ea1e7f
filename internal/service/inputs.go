package service

import (
	"time"

	"rentmarket-backend/internal/domain"
)

type ProductInput struct {
	Title            string
	Description      string
	Category         string
	PriceCents       int64
	RentalPriceCents int64
	ProductType      domain.ProductType
	Status           domain.ProductStatus
	IsAvailable      bool
	Quantity         int32
}

type CartItemInput struct {
	ProductID   int32
	Quantity    int32
	Kind        domain.CartItemKind
	RentalStart *time.Time
	RentalEnd   *time.Time
}

// CartItemUpdate changes only the fields that are set.
type CartItemUpdate struct {
	Quantity    *int32
	Kind        *domain.CartItemKind
	RentalStart *time.Time
	RentalEnd   *time.Time
}

type CreateRentalInput struct {
	ProductID         int32
	DeliveryAddressID int32
	StartDate         time.Time
	EndDate           time.Time
	Message           string
}

// TransitionArgs carries the event-specific data of a rental transition.
type TransitionArgs struct {
	RejectionReason string
	Rating          int32
	Review          string
	DeliveryNotes   *string
	ReturnNotes     *string
}

type OrderItemInput struct {
	ProductID int32
	Quantity  int32
}

type CreateOrderInput struct {
	Items []OrderItemInput
	// ShippingAddressID selects one of the buyer's addresses; 0 means the active one.
	ShippingAddressID int32
}
