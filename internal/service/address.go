package service

import (
	"context"
	"strings"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
)

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func validateAddress(f *domain.AddressFields) error {
	f.FullName = strings.TrimSpace(f.FullName)
	required := []struct{ name, value string }{
		{"full_name", f.FullName},
		{"phone_number", f.PhoneNumber},
		{"address_line1", f.AddressLine1},
		{"city", f.City},
		{"state", f.State},
		{"pincode", f.Pincode},
		{"country", f.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.NewValidationError("%s is required", r.name)
		}
	}
	switch f.AddressType {
	case "":
		f.AddressType = domain.AddressTypeHome
	case domain.AddressTypeHome, domain.AddressTypeWork, domain.AddressTypeOther:
	default:
		return domain.NewValidationError("unknown address type %q", f.AddressType)
	}
	return nil
}

func (s *addressService) CreateAddress(ctx context.Context, ownerID int32, fields domain.AddressFields, wantActive bool) (*domain.Address, error) {
	if err := validateAddress(&fields); err != nil {
		return nil, err
	}
	addr := &domain.Address{OwnerID: ownerID, AddressFields: fields, IsActive: wantActive}
	if err := s.addressRepo.Create(ctx, addr); err != nil {
		logger.Error("Failed to create address", "ownerID", ownerID, "error", err)
		return nil, storageError(err)
	}
	return addr, nil
}

func (s *addressService) SetActive(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	addr, err := s.addressRepo.SetActive(ctx, ownerID, id)
	if err != nil {
		return nil, lookupError(err, "address")
	}
	return addr, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, ownerID, id int32, fields domain.AddressFields, wantActive *bool) (*domain.Address, error) {
	if err := validateAddress(&fields); err != nil {
		return nil, err
	}
	addr := &domain.Address{ID: id, OwnerID: ownerID, AddressFields: fields}
	activate := wantActive != nil && *wantActive
	if err := s.addressRepo.Update(ctx, addr, activate); err != nil {
		return nil, lookupError(err, "address")
	}
	return addr, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, ownerID, id int32) error {
	promoted, err := s.addressRepo.Delete(ctx, ownerID, id)
	if err != nil {
		return lookupError(err, "address")
	}
	if promoted != nil {
		logger.Info("Promoted address after delete", "ownerID", ownerID, "deletedID", id, "activeID", promoted.ID)
	}
	return nil
}

func (s *addressService) ListAddresses(ctx context.Context, ownerID int32) ([]domain.Address, error) {
	addrs, err := s.addressRepo.ListByOwner(ctx, ownerID)
	return addrs, storageError(err)
}

func (s *addressService) GetActive(ctx context.Context, ownerID int32) (*domain.Address, error) {
	addr, err := s.addressRepo.GetActive(ctx, ownerID)
	if err != nil {
		return nil, lookupError(err, "active address")
	}
	return addr, nil
}

func (s *addressService) GetAddress(ctx context.Context, ownerID, id int32) (*domain.Address, error) {
	addr, err := s.addressRepo.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return nil, lookupError(err, "address")
	}
	return addr, nil
}
