package domain

import "time"

type CartItemKind string

const (
	CartItemKindSale   CartItemKind = "sale"
	CartItemKindRental CartItemKind = "rent"
)

type CartItem struct {
	ID             int32        `json:"id"`
	ProductID      int32        `json:"product_id"`
	Quantity       int32        `json:"quantity"`
	UnitPriceCents int64        `json:"unit_price_cents"`
	Kind           CartItemKind `json:"kind"`
	RentalStart    *time.Time   `json:"rental_start,omitempty"`
	RentalEnd      *time.Time   `json:"rental_end,omitempty"`
	RentalDays     int32        `json:"rental_days,omitempty"`
}

type Cart struct {
	ID                    int32      `json:"id"`
	OwnerID               int32      `json:"owner_id"`
	Items                 []CartItem `json:"items"`
	TotalItems            int32      `json:"total_items"`
	TotalSalePriceCents   int64      `json:"total_sale_price_cents"`
	TotalRentalPriceCents int64      `json:"total_rental_price_cents"`
	Version               int32      `json:"-"`
	UpdatedOn             time.Time  `json:"updated_on"`
}

// FindItem returns the index of the line matching product and kind, or -1.
func (c *Cart) FindItem(productID int32, kind CartItemKind) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Kind == kind {
			return i
		}
	}
	return -1
}

func (c *Cart) ItemIndex(itemID int32) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
