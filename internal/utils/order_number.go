package utils

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// OrderNumberGenerator produces candidates of the form ORD-<unix ms>-<3 digits>.
// Uniqueness is checked by the caller.
type OrderNumberGenerator struct {
	Now    func() time.Time
	Suffix func() int
}

func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{
		Now:    time.Now,
		Suffix: func() int { return rand.IntN(1000) },
	}
}

func (g *OrderNumberGenerator) Next() string {
	return fmt.Sprintf("ORD-%d-%03d", g.Now().UnixMilli(), g.Suffix())
}
