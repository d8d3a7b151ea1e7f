package service

import (
	"context"
	"errors"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/utils"
)

const defaultCartSaveAttempts = 3

type cartService struct {
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	saveAttempts int
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, saveAttempts int) CartService {
	if saveAttempts <= 0 {
		saveAttempts = defaultCartSaveAttempts
	}
	return &cartService{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		saveAttempts: saveAttempts,
	}
}

// mutate runs a read-modify-write on the owner's cart. Totals are re-derived
// before every save; a save that lost a race is retried from a fresh read.
func (s *cartService) mutate(ctx context.Context, ownerID int32, apply func(cart *domain.Cart) error) (*domain.Cart, error) {
	for attempt := 1; ; attempt++ {
		cart, err := s.cartRepo.GetOrCreate(ctx, ownerID)
		if err != nil {
			return nil, storageError(err)
		}
		if err := apply(cart); err != nil {
			return nil, err
		}
		utils.RecalculateCart(cart)

		err = s.cartRepo.Save(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) {
			return nil, storageError(err)
		}
		if attempt >= s.saveAttempts {
			logger.Warn("Cart save retries exhausted", "ownerID", ownerID, "attempts", attempt)
			return nil, domain.NewConflictError("cart was modified concurrently, please retry")
		}
		logger.Debug("Cart changed underneath, retrying", "ownerID", ownerID, "attempt", attempt)
	}
}

func (s *cartService) GetCart(ctx context.Context, ownerID int32) (*domain.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, storageError(err)
	}
	return cart, nil
}

func (s *cartService) lookupProduct(ctx context.Context, id int32) (*domain.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	return p, nil
}

func validateKind(kind domain.CartItemKind) error {
	if kind != domain.CartItemKindSale && kind != domain.CartItemKindRental {
		return domain.NewValidationError("item kind must be %q or %q", domain.CartItemKindSale, domain.CartItemKindRental)
	}
	return nil
}

func validateRentalWindow(start, end *time.Time) (int32, error) {
	if start == nil || end == nil {
		return 0, domain.NewValidationError("rental start and end dates are required for rental items")
	}
	days := utils.RentalDays(*start, *end)
	if days <= 0 {
		return 0, domain.NewValidationError("rental end date must be after start date")
	}
	return days, nil
}

func unitPrice(p *domain.Product, kind domain.CartItemKind) int64 {
	if kind == domain.CartItemKindRental {
		return p.RentalPriceCents
	}
	return p.PriceCents
}

func (s *cartService) AddItem(ctx context.Context, ownerID int32, in CartItemInput) (*domain.Cart, error) {
	if in.Quantity < 1 {
		return nil, domain.NewValidationError("quantity must be at least 1")
	}
	if err := validateKind(in.Kind); err != nil {
		return nil, err
	}

	product, err := s.lookupProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, domain.NewValidationError("product is not available")
	}
	if product.Quantity < in.Quantity {
		return nil, domain.NewValidationError("insufficient product quantity")
	}

	var days int32
	if in.Kind == domain.CartItemKindRental {
		if !product.Rentable() {
			return nil, domain.NewValidationError("product is not available for rent")
		}
		if days, err = validateRentalWindow(in.RentalStart, in.RentalEnd); err != nil {
			return nil, err
		}
	}
	price := unitPrice(product, in.Kind)

	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		if i := cart.FindItem(in.ProductID, in.Kind); i >= 0 {
			item := &cart.Items[i]
			item.Quantity += in.Quantity
			item.UnitPriceCents = price
			if in.Kind == domain.CartItemKindRental {
				item.RentalStart, item.RentalEnd, item.RentalDays = in.RentalStart, in.RentalEnd, days
			}
			return nil
		}
		item := domain.CartItem{
			ProductID:      in.ProductID,
			Quantity:       in.Quantity,
			UnitPriceCents: price,
			Kind:           in.Kind,
		}
		if in.Kind == domain.CartItemKindRental {
			item.RentalStart, item.RentalEnd, item.RentalDays = in.RentalStart, in.RentalEnd, days
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
}

func (s *cartService) UpdateItem(ctx context.Context, ownerID, itemID int32, in CartItemUpdate) (*domain.Cart, error) {
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, domain.NewValidationError("quantity must be at least 1")
	}
	if in.Kind != nil {
		if err := validateKind(*in.Kind); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		i := cart.ItemIndex(itemID)
		if i < 0 {
			return domain.NewNotFoundError("cart item")
		}
		item := cart.Items[i]
		product, err := s.lookupProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}

		if in.Quantity != nil {
			if product.Quantity < *in.Quantity {
				return domain.NewValidationError("insufficient product quantity")
			}
			item.Quantity = *in.Quantity
		}
		if in.Kind != nil && *in.Kind != item.Kind {
			if *in.Kind == domain.CartItemKindRental && !product.Rentable() {
				return domain.NewValidationError("product is not available for rent")
			}
			if cart.FindItem(item.ProductID, *in.Kind) >= 0 {
				return domain.NewValidationError("cart already has a %s line for this product", *in.Kind)
			}
			item.Kind = *in.Kind
			item.UnitPriceCents = unitPrice(product, item.Kind)
		}
		if in.RentalStart != nil {
			item.RentalStart = in.RentalStart
		}
		if in.RentalEnd != nil {
			item.RentalEnd = in.RentalEnd
		}

		if item.Kind == domain.CartItemKindRental {
			if item.RentalDays, err = validateRentalWindow(item.RentalStart, item.RentalEnd); err != nil {
				return err
			}
		} else {
			item.RentalStart, item.RentalEnd, item.RentalDays = nil, nil, 0
		}
		cart.Items[i] = item
		return nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID, itemID int32) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		i := cart.ItemIndex(itemID)
		if i < 0 {
			return domain.NewNotFoundError("cart item")
		}
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return nil
	})
}

func (s *cartService) ClearCart(ctx context.Context, ownerID int32) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		cart.Items = []domain.CartItem{}
		return nil
	})
}
