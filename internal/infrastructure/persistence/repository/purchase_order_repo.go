package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// PurchaseOrderRepository implements port.PurchaseOrderRepository on sqlite.
// The indent_id column carries a unique constraint; the store itself
// enforces at most one purchase order per indent.
type PurchaseOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *sql.DB, logger *zap.Logger) port.PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new purchase order
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (
			id, indent_id, vendor_id, po_number, amount, status, issue_date, delivery_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		po.ID,
		po.IndentID,
		po.VendorID,
		po.PONumber,
		po.Amount,
		po.Status,
		po.IssueDate,
		po.DeliveryDate,
	)
	if err != nil {
		r.logger.Error("Failed to create purchase order", zap.Error(err))
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	return nil
}

const poColumns = `
	id, indent_id, vendor_id, po_number, amount, status, issue_date, delivery_date
`

// GetByID retrieves a purchase order by ID
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByIndentID retrieves the purchase order issued for an indent
func (r *PurchaseOrderRepository) GetByIndentID(ctx context.Context, indentID string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE indent_id = ?`
	return r.getOne(ctx, query, indentID)
}

func (r *PurchaseOrderRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var deliveryDate sql.NullTime

	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&po.ID,
		&po.IndentID,
		&po.VendorID,
		&po.PONumber,
		&po.Amount,
		&po.Status,
		&po.IssueDate,
		&deliveryDate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get purchase order", zap.Error(err))
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	if deliveryDate.Valid {
		po.DeliveryDate = &deliveryDate.Time
	}
	return &po, nil
}

// Verify interface compliance
var _ port.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)
