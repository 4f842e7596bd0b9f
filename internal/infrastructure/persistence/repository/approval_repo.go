package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// ApprovalRepository implements port.ApprovalRepository on sqlite.
// Approvals are append-only; there is no update path.
type ApprovalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an approval record
func (r *ApprovalRepository) Create(ctx context.Context, approval *entity.Approval) error {
	query := `
		INSERT INTO approvals (
			id, indent_id, approver_id, decision, remarks, stage_order,
			stage_role, sla_breached, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		approval.ID,
		approval.IndentID,
		approval.ApproverID,
		approval.Decision,
		approval.Remarks,
		approval.StageOrder,
		approval.StageRole,
		approval.SLABreached,
		approval.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create approval", zap.Error(err))
		return fmt.Errorf("failed to create approval: %w", err)
	}

	return nil
}

// GetByIndentID retrieves all approvals for an indent in decision order
func (r *ApprovalRepository) GetByIndentID(ctx context.Context, indentID string) ([]*entity.Approval, error) {
	query := `
		SELECT id, indent_id, approver_id, decision, remarks, stage_order,
			stage_role, sla_breached, timestamp
		FROM approvals WHERE indent_id = ? ORDER BY timestamp ASC, rowid ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, indentID)
	if err != nil {
		r.logger.Error("Failed to get approvals", zap.String("indent_id", indentID), zap.Error(err))
		return nil, fmt.Errorf("failed to get approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*entity.Approval
	for rows.Next() {
		var approval entity.Approval
		if err := rows.Scan(
			&approval.ID,
			&approval.IndentID,
			&approval.ApproverID,
			&approval.Decision,
			&approval.Remarks,
			&approval.StageOrder,
			&approval.StageRole,
			&approval.SLABreached,
			&approval.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, &approval)
	}

	return approvals, rows.Err()
}

// Verify interface compliance
var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
