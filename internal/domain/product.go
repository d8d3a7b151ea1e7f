package domain

import "time"

type ProductType string

const (
	ProductTypeSale ProductType = "sale"
	ProductTypeRent ProductType = "rent"
	ProductTypeBoth ProductType = "both"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusRented   ProductStatus = "rented"
	ProductStatusSold     ProductStatus = "sold"
)

type Product struct {
	ID               int32         `json:"id"`
	OwnerID          int32         `json:"owner_id"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	Description      string        `json:"description"`
	Category         string        `json:"category"`
	PriceCents       int64         `json:"price_cents"`
	RentalPriceCents int64         `json:"rental_price_cents"` // per day; 0 means not rentable
	ProductType      ProductType   `json:"product_type"`
	Status           ProductStatus `json:"status"`
	IsAvailable      bool          `json:"is_available"`
	Quantity         int32         `json:"quantity"`
	CreatedOn        time.Time     `json:"created_on"`
	UpdatedOn        time.Time     `json:"updated_on"`
}

// Purchasable reports whether the product can currently be put in a cart or rented.
func (p *Product) Purchasable() bool {
	return p.IsAvailable && p.Status == ProductStatusActive
}

func (p *Product) Rentable() bool {
	return p.RentalPriceCents > 0
}
