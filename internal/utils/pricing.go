package utils

import (
	"fmt"
	"math"
	"time"

	"rentmarket-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// ParseDate accepts a yyyy-mm-dd date (UTC midnight) or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd or RFC 3339", s)
	}
	return t.UTC(), nil
}

// RentalDays is ceil((end - start) / 1 day). It returns 0 when end is not after start.
func RentalDays(start, end time.Time) int32 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int32(math.Ceil(d.Hours() / 24))
}

// RentalTotal is the fixed charge for a rental: daily rate times rental days.
func RentalTotal(dailyRateCents int64, days int32) int64 {
	return dailyRateCents * int64(days)
}

// LineTotal is the contribution of one cart line to its kind's total.
func LineTotal(item domain.CartItem) int64 {
	total := item.UnitPriceCents * int64(item.Quantity)
	if item.Kind == domain.CartItemKindRental {
		total *= int64(item.RentalDays)
	}
	return total
}

// RecalculateCart re-derives the cart totals from its items. Calling it
// repeatedly yields the same result.
func RecalculateCart(cart *domain.Cart) {
	var items int32
	var sale, rental int64
	for _, it := range cart.Items {
		items += it.Quantity
		switch it.Kind {
		case domain.CartItemKindRental:
			rental += LineTotal(it)
		default:
			sale += LineTotal(it)
		}
	}
	cart.TotalItems = items
	cart.TotalSalePriceCents = sale
	cart.TotalRentalPriceCents = rental
}
