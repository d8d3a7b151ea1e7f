package service

import (
	"context"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"

	"github.com/gosimple/slug"
)

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func validateProduct(in *ProductInput) error {
	if in.Title == "" {
		return domain.NewValidationError("title is required")
	}
	if in.PriceCents < 0 || in.RentalPriceCents < 0 {
		return domain.NewValidationError("prices must not be negative")
	}
	if in.Quantity < 0 {
		return domain.NewValidationError("quantity must not be negative")
	}
	switch in.ProductType {
	case "":
		in.ProductType = domain.ProductTypeSale
		if in.RentalPriceCents > 0 {
			in.ProductType = domain.ProductTypeBoth
		}
	case domain.ProductTypeSale, domain.ProductTypeRent, domain.ProductTypeBoth:
	default:
		return domain.NewValidationError("unknown product type %q", in.ProductType)
	}
	if in.ProductType != domain.ProductTypeSale && in.RentalPriceCents == 0 {
		return domain.NewValidationError("rental products need a rental price")
	}
	switch in.Status {
	case "":
		in.Status = domain.ProductStatusActive
	case domain.ProductStatusActive, domain.ProductStatusInactive, domain.ProductStatusRented, domain.ProductStatusSold:
	default:
		return domain.NewValidationError("unknown product status %q", in.Status)
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, ownerID int32, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	p := &domain.Product{
		OwnerID:          ownerID,
		Title:            in.Title,
		Slug:             slug.Make(in.Title),
		Description:      in.Description,
		Category:         in.Category,
		PriceCents:       in.PriceCents,
		RentalPriceCents: in.RentalPriceCents,
		ProductType:      in.ProductType,
		Status:           in.Status,
		IsAvailable:      in.IsAvailable,
		Quantity:         in.Quantity,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, storageError(err)
	}
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, id int32) (*domain.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, ownerID, id int32, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	if p.OwnerID != ownerID {
		return nil, domain.NewForbiddenError("only the owner can update this product")
	}
	p.Title = in.Title
	p.Slug = slug.Make(in.Title)
	p.Description = in.Description
	p.Category = in.Category
	p.PriceCents = in.PriceCents
	p.RentalPriceCents = in.RentalPriceCents
	p.ProductType = in.ProductType
	p.Status = in.Status
	p.IsAvailable = in.IsAvailable
	p.Quantity = in.Quantity
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, lookupError(err, "product")
	}
	return p, nil
}

func (s *productService) ListMyProducts(ctx context.Context, ownerID int32) ([]domain.Product, error) {
	products, err := s.productRepo.ListByOwner(ctx, ownerID)
	return products, storageError(err)
}
