package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// VendorRepository implements port.VendorRepository on sqlite
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB, logger *zap.Logger) port.VendorRepository {
	return &VendorRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new vendor
func (r *VendorRepository) Create(ctx context.Context, vendor *entity.Vendor) error {
	categories, err := json.Marshal(vendor.ItemCategories)
	if err != nil {
		return fmt.Errorf("failed to marshal item categories: %w", err)
	}

	query := `
		INSERT INTO vendors (
			id, name, contact_person, email, phone, address,
			item_categories, rating, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.ContactPerson,
		vendor.Email,
		vendor.Phone,
		vendor.Address,
		string(categories),
		vendor.Rating,
		vendor.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor", zap.Error(err))
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	return nil
}

const vendorColumns = `
	id, name, contact_person, email, phone, address, item_categories, rating, created_at
`

// GetByID retrieves a vendor by ID
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = ?`

	vendor, err := scanVendor(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get vendor", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	return vendor, nil
}

// List retrieves all vendors ordered by name
func (r *VendorRepository) List(ctx context.Context) ([]*entity.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors ORDER BY name ASC`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list vendors", zap.Error(err))
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*entity.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}

	return vendors, rows.Err()
}

func scanVendor(row rowScanner) (*entity.Vendor, error) {
	var vendor entity.Vendor
	var categories string

	err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.ContactPerson,
		&vendor.Email,
		&vendor.Phone,
		&vendor.Address,
		&categories,
		&vendor.Rating,
		&vendor.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categories != "" && categories != "null" {
		if err := json.Unmarshal([]byte(categories), &vendor.ItemCategories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item categories: %w", err)
		}
	}
	return &vendor, nil
}

// Verify interface compliance
var _ port.VendorRepository = (*VendorRepository)(nil)
