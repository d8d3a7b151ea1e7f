package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/utils"

	"github.com/google/uuid"
)

const defaultOrderNumberAttempts = 5

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	cartRepo    repository.CartRepository
	sink        NotificationSink
	numbers     *utils.OrderNumberGenerator
	attempts    int
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	cartRepo repository.CartRepository,
	sink NotificationSink,
	numberAttempts int,
) OrderService {
	if numberAttempts <= 0 {
		numberAttempts = defaultOrderNumberAttempts
	}
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		cartRepo:    cartRepo,
		sink:        sink,
		numbers:     utils.NewOrderNumberGenerator(),
		attempts:    numberAttempts,
	}
}

func (s *orderService) shippingAddress(ctx context.Context, buyerID, addressID int32) (*domain.Address, error) {
	var addr *domain.Address
	var err error
	if addressID == 0 {
		addr, err = s.addressRepo.GetActive(ctx, buyerID)
	} else {
		addr, err = s.addressRepo.GetByOwner(ctx, buyerID, addressID)
	}
	if err != nil {
		return nil, lookupError(err, "shipping address")
	}
	return addr, nil
}

func (s *orderService) CreateOrder(ctx context.Context, buyerID int32, in CreateOrderInput) (*domain.Order, error) {
	logger.EnterMethod("orderService.CreateOrder", "buyerID", buyerID, "items", len(in.Items))

	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("order must contain at least one item")
	}
	addr, err := s.shippingAddress(ctx, buyerID, in.ShippingAddressID)
	if err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err, "buyerID", buyerID)
		return nil, err
	}

	order := &domain.Order{
		BuyerID:         buyerID,
		Status:          domain.OrderStatusPending,
		ShippingAddress: addr.AddressFields,
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, domain.NewValidationError("quantity must be at least 1")
		}
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, lookupError(err, "product")
		}
		if product.OwnerID == buyerID {
			return nil, domain.NewValidationError("cannot buy your own product")
		}
		if !product.Purchasable() {
			return nil, domain.NewValidationError("product %d is not available", product.ID)
		}
		if product.Quantity < item.Quantity {
			return nil, domain.NewValidationError("insufficient quantity for product %d", product.ID)
		}
		order.LineItems = append(order.LineItems, domain.OrderLineItem{
			ProductID:  product.ID,
			SellerID:   product.OwnerID,
			Quantity:   item.Quantity,
			PriceCents: product.PriceCents,
		})
		order.TotalPriceCents += product.PriceCents * int64(item.Quantity)
	}

	if err := s.insertWithUniqueNumber(ctx, order); err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err, "buyerID", buyerID)
		return nil, err
	}

	s.notifySellers(ctx, order)
	logger.ExitMethod("orderService.CreateOrder", "orderID", order.ID, "orderNumber", order.OrderNumber)
	return order, nil
}

// insertWithUniqueNumber draws order numbers until one is free, for at most
// s.attempts candidates. A candidate taken between the check and the insert
// surfaces as a unique violation and counts as a collision.
func (s *orderService) insertWithUniqueNumber(ctx context.Context, order *domain.Order) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		candidate := s.numbers.Next()
		exists, err := s.orderRepo.OrderNumberExists(ctx, candidate)
		if err != nil {
			return storageError(err)
		}
		if exists {
			logger.Warn("Order number collision", "orderNumber", candidate, "attempt", attempt)
			continue
		}

		order.OrderNumber = candidate
		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return storageError(err)
		}
		logger.Warn("Order number taken on insert", "orderNumber", candidate, "attempt", attempt)
	}
	order.OrderNumber = ""
	return domain.NewConflictError("could not allocate a unique order number after %d attempts", s.attempts)
}

func (s *orderService) CreateOrderFromCart(ctx context.Context, buyerID, shippingAddressID int32) (*domain.Order, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, buyerID)
	if err != nil {
		return nil, storageError(err)
	}
	var items []OrderItemInput
	ordered := make(map[int32]bool)
	for _, it := range cart.Items {
		if it.Kind != domain.CartItemKindSale {
			continue
		}
		items = append(items, OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
		ordered[it.ID] = true
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("cart has no items for purchase")
	}

	order, err := s.CreateOrder(ctx, buyerID, CreateOrderInput{Items: items, ShippingAddressID: shippingAddressID})
	if err != nil {
		return nil, err
	}
	if err := s.removeOrderedLines(ctx, buyerID, ordered); err != nil {
		logger.Error("Order placed but cart lines were not removed", "orderID", order.ID, "buyerID", buyerID, "error", err)
	}
	return order, nil
}

func (s *orderService) removeOrderedLines(ctx context.Context, buyerID int32, ordered map[int32]bool) error {
	var err error
	for attempt := 0; attempt < defaultCartSaveAttempts; attempt++ {
		var cart *domain.Cart
		if cart, err = s.cartRepo.GetOrCreate(ctx, buyerID); err != nil {
			return err
		}
		kept := cart.Items[:0]
		for _, it := range cart.Items {
			if !ordered[it.ID] {
				kept = append(kept, it)
			}
		}
		cart.Items = kept
		utils.RecalculateCart(cart)
		if err = s.cartRepo.Save(ctx, cart); !errors.Is(err, domain.ErrStaleWrite) {
			return err
		}
	}
	return err
}

func (s *orderService) notifySellers(ctx context.Context, order *domain.Order) {
	if s.sink == nil {
		return
	}
	for _, sellerID := range order.SellerIDs() {
		s.sink.Emit(ctx, domain.NotificationEvent{
			ID:          uuid.NewString(),
			Kind:        domain.NotificationOrderUpdate,
			RecipientID: sellerID,
			FromUserID:  order.BuyerID,
			Priority:    domain.PriorityHigh,
			Title:       "New Order",
			Message:     fmt.Sprintf("New order #%s has been placed. Please check your orders for details.", order.OrderNumber),
			Attributes: map[string]string{
				"order_id":     strconv.Itoa(int(order.ID)),
				"order_number": order.OrderNumber,
			},
			OccurredAt: time.Now().UTC(),
		})
	}
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerID int32) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, storageError(err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *orderService) ListBySeller(ctx context.Context, sellerID int32) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, storageError(err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// GetOrder returns the order to its buyer or to any of its sellers.
func (s *orderService) GetOrder(ctx context.Context, orderID, callerID int32) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "order")
	}
	if order.BuyerID != callerID && !order.HasSeller(callerID) {
		return nil, domain.NewNotFoundError("order")
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID, callerID int32, status domain.OrderStatus) (*domain.Order, error) {
	if status != domain.OrderStatusPending && status != domain.OrderStatusCompleted {
		return nil, domain.NewValidationError("unknown order status %q", status)
	}
	order, err := s.GetOrder(ctx, orderID, callerID)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status == domain.OrderStatusCompleted {
		return nil, domain.NewConflictError("order %s is already completed", order.OrderNumber)
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, lookupError(err, "order")
	}
	order.Status = status
	logger.Info("Order status updated", "orderID", orderID, "status", status, "by", callerID)
	return order, nil
}
