// Package memory keeps every repository in process memory behind a single
// mutex. It backs the "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type state struct {
	mu sync.Mutex

	nextID        map[string]int32
	users         map[int32]*domain.User
	products      map[int32]*domain.Product
	addresses     map[int32]*domain.Address
	carts         map[int32]*domain.Cart // keyed by owner
	rentals       map[int32]*domain.RentalRequest
	orders        map[int32]*domain.Order
	notifications map[int32]*domain.Notification

	now func() time.Time
}

func (s *state) id(table string) int32 {
	s.nextID[table]++
	return s.nextID[table]
}

type Store struct {
	repository.UserRepository
	repository.ProductRepository
	repository.AddressRepository
	repository.CartRepository
	repository.RentalRequestRepository
	repository.OrderRepository
	repository.NotificationRepository
}

func NewStore() *Store {
	s := &state{
		nextID:        make(map[string]int32),
		users:         make(map[int32]*domain.User),
		products:      make(map[int32]*domain.Product),
		addresses:     make(map[int32]*domain.Address),
		carts:         make(map[int32]*domain.Cart),
		rentals:       make(map[int32]*domain.RentalRequest),
		orders:        make(map[int32]*domain.Order),
		notifications: make(map[int32]*domain.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
	return &Store{
		UserRepository:          &userRepository{s},
		ProductRepository:       &productRepository{s},
		AddressRepository:       &addressRepository{s},
		CartRepository:          &cartRepository{s},
		RentalRequestRepository: &rentalRequestRepository{s},
		OrderRepository:         &orderRepository{s},
		NotificationRepository:  &notificationRepository{s},
	}
}

func (st *Store) Migrate(context.Context) error { return nil }

func (st *Store) Ping(context.Context) error { return nil }

// newestFirst orders by creation time, then id, both descending.
func newestFirst(aTime, bTime time.Time, aID, bID int32) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}

func sortNewestFirst[T any](items []T, key func(T) (time.Time, int32)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, ii := key(items[i])
		tj, ij := key(items[j])
		return newestFirst(ti, tj, ii, ij)
	})
}
