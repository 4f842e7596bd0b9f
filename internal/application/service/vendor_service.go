package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// VendorService manages the supplier registry purchase orders are issued
// against
type VendorService interface {
	CreateVendor(ctx context.Context, vendor *entity.Vendor) (string, error)
	GetVendor(ctx context.Context, id string) (*entity.Vendor, error)
	ListVendors(ctx context.Context) ([]*entity.Vendor, error)
}

type vendorServiceImpl struct {
	repo   port.VendorRepository
	logger Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(repo port.VendorRepository, logger Logger) VendorService {
	return &vendorServiceImpl{repo: repo, logger: logger}
}

func (s *vendorServiceImpl) CreateVendor(ctx context.Context, vendor *entity.Vendor) (string, error) {
	if vendor.Name == "" {
		return "", fmt.Errorf("vendor name is required")
	}

	vendor.ID = uuid.NewString()
	vendor.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, vendor); err != nil {
		s.logger.Error("Failed to create vendor", "error", err, "name", vendor.Name)
		return "", err
	}

	s.logger.Info("Vendor created", "vendor_id", vendor.ID, "name", vendor.Name)
	return vendor.ID, nil
}

func (s *vendorServiceImpl) GetVendor(ctx context.Context, id string) (*entity.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, fmt.Errorf("vendor %s: %w", id, port.ErrNotFound)
	}
	return vendor, nil
}

func (s *vendorServiceImpl) ListVendors(ctx context.Context) ([]*entity.Vendor, error) {
	return s.repo.List(ctx)
}
