package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

type OrderLineItem struct {
	ProductID  int32 `json:"product_id"`
	SellerID   int32 `json:"seller_id"`
	Quantity   int32 `json:"quantity"`
	PriceCents int64 `json:"price_cents"`
}

type Order struct {
	ID              int32           `json:"id"`
	BuyerID         int32           `json:"buyer_id"`
	OrderNumber     string          `json:"order_number"`
	LineItems       []OrderLineItem `json:"line_items"`
	TotalPriceCents int64           `json:"total_price_cents"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress AddressFields   `json:"shipping_address"`
	CreatedOn       time.Time       `json:"created_on"`
	UpdatedOn       time.Time       `json:"updated_on"`
}

// SellerIDs returns the distinct sellers in line order.
func (o *Order) SellerIDs() []int32 {
	seen := make(map[int32]bool)
	var ids []int32
	for _, li := range o.LineItems {
		if !seen[li.SellerID] {
			seen[li.SellerID] = true
			ids = append(ids, li.SellerID)
		}
	}
	return ids
}

func (o *Order) HasSeller(userID int32) bool {
	for _, li := range o.LineItems {
		if li.SellerID == userID {
			return true
		}
	}
	return false
}
