package service_test

import (
	"context"
	"sync"
	"time"

	"rentmarket-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProductRepo) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProductRepo) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Product, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Product), args.Error(1)
}

// MockAddressRepo
type MockAddressRepo struct {
	mock.Mock
}

func (m *MockAddressRepo) Create(ctx context.Context, addr *domain.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}
func (m *MockAddressRepo) GetByOwner(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}
func (m *MockAddressRepo) GetActive(ctx context.Context, ownerID int32) (*domain.Address, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}
func (m *MockAddressRepo) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Address, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Address), args.Error(1)
}
func (m *MockAddressRepo) Update(ctx context.Context, addr *domain.Address, activate bool) error {
	args := m.Called(ctx, addr, activate)
	return args.Error(0)
}
func (m *MockAddressRepo) SetActive(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}
func (m *MockAddressRepo) Delete(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) CreateIfAvailable(ctx context.Context, rr *domain.RentalRequest) error {
	args := m.Called(ctx, rr)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) Update(ctx context.Context, rr *domain.RentalRequest, expected domain.RentalStatus) error {
	args := m.Called(ctx, rr, expected)
	return args.Error(0)
}
func (m *MockRentalRepo) DeletePending(ctx context.Context, id, requesterID int32) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByRequester(ctx context.Context, requesterID int32) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, requesterID)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) ListByOwner(ctx context.Context, ownerID int32) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) CountByStatus(ctx context.Context, userID int32, actor domain.RentalActor) (map[domain.RentalStatus]int32, error) {
	args := m.Called(ctx, userID, actor)
	return args.Get(0).(map[domain.RentalStatus]int32), args.Error(1)
}
func (m *MockRentalRepo) ListByStatusStartingBetween(ctx context.Context, status domain.RentalStatus, from, to time.Time) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepo) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id int32) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderRepo) ListByBuyer(ctx context.Context, buyerID int32) ([]domain.Order, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *MockOrderRepo) ListBySeller(ctx context.Context, sellerID int32) ([]domain.Order, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id int32, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) ListUnread(ctx context.Context, userID int32) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) MarkAllAsRead(ctx context.Context, userID int32) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) SoftDelete(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// recordingSink captures emitted events in order.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (s *recordingSink) Emit(_ context.Context, event domain.NotificationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Events() []domain.NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.NotificationEvent(nil), s.events...)
}

func (s *recordingSink) Kinds() []domain.NotificationKind {
	var kinds []domain.NotificationKind
	for _, e := range s.Events() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
