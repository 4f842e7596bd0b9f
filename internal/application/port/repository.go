package port

import (
	"context"

	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// IndentRepository defines persistence operations for Indent aggregates
type IndentRepository interface {
	Create(ctx context.Context, indent *entity.Indent) error

	// GetByID loads an indent with its items and ordered approvals
	GetByID(ctx context.Context, id string) (*entity.Indent, error)

	// SaveTransition writes the new status, SLA deadline and version in one
	// statement guarded by the expected version. Returns ErrConflict when a
	// concurrent writer got there first.
	SaveTransition(ctx context.Context, indent *entity.Indent, expectedVersion int64) error

	List(ctx context.Context, limit, offset int) ([]*entity.Indent, error)

	// ListInFlight returns indents still awaiting an approval decision and
	// carrying an SLA deadline
	ListInFlight(ctx context.Context) ([]*entity.Indent, error)
}

// ApprovalRepository defines persistence operations for Approval records.
// Approvals are append-only.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *entity.Approval) error
	GetByIndentID(ctx context.Context, indentID string) ([]*entity.Approval, error)
}

// VendorRepository defines persistence operations for Vendor
type VendorRepository interface {
	Create(ctx context.Context, vendor *entity.Vendor) error
	GetByID(ctx context.Context, id string) (*entity.Vendor, error)
	List(ctx context.Context) ([]*entity.Vendor, error)
}

// PurchaseOrderRepository defines persistence operations for PurchaseOrder
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetByIndentID(ctx context.Context, indentID string) (*entity.PurchaseOrder, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
