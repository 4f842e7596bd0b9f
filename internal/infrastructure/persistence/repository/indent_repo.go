package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
)

// IndentRepository implements port.IndentRepository on sqlite
type IndentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIndentRepository creates a new indent repository
func NewIndentRepository(db *sql.DB, logger *zap.Logger) port.IndentRepository {
	return &IndentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new indent and its items
func (r *IndentRepository) Create(ctx context.Context, indent *entity.Indent) error {
	query := `
		INSERT INTO indents (
			id, requester_id, department, title, description, budget_code,
			priority, status, amount, sla_deadline, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := getExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		indent.ID,
		indent.RequesterID,
		indent.Department,
		indent.Title,
		indent.Description,
		indent.BudgetCode,
		indent.Priority,
		indent.Status,
		indent.Amount,
		indent.SLADeadline,
		indent.Version,
		indent.CreatedAt,
		indent.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create indent", zap.Error(err))
		return fmt.Errorf("failed to create indent: %w", err)
	}

	itemQuery := `
		INSERT INTO indent_items (
			id, indent_id, name, description, quantity, unit, estimated_cost, justification
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, item := range indent.Items {
		_, err := exec.ExecContext(ctx, itemQuery,
			item.ID,
			item.IndentID,
			item.Name,
			item.Description,
			item.Quantity,
			item.Unit,
			item.EstimatedCost,
			item.Justification,
		)
		if err != nil {
			r.logger.Error("Failed to create indent item", zap.Error(err))
			return fmt.Errorf("failed to create indent item: %w", err)
		}
	}

	return nil
}

const indentColumns = `
	id, requester_id, department, title, description, budget_code,
	priority, status, amount, sla_deadline, version, created_at, updated_at
`

// GetByID retrieves an indent with its items and ordered approvals
func (r *IndentRepository) GetByID(ctx context.Context, id string) (*entity.Indent, error) {
	query := `SELECT ` + indentColumns + ` FROM indents WHERE id = ?`

	exec := getExecutor(ctx, r.db)
	indent, err := scanIndent(exec.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get indent", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get indent: %w", err)
	}

	if err := r.loadItems(ctx, indent); err != nil {
		return nil, err
	}
	if err := r.loadApprovals(ctx, indent); err != nil {
		return nil, err
	}

	return indent, nil
}

// SaveTransition writes the new status, SLA deadline and version, guarded
// by the version the caller read. A concurrent writer surfaces as
// port.ErrConflict.
func (r *IndentRepository) SaveTransition(ctx context.Context, indent *entity.Indent, expectedVersion int64) error {
	query := `
		UPDATE indents
		SET status = ?, sla_deadline = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		indent.Status,
		indent.SLADeadline,
		indent.Version,
		indent.UpdatedAt,
		indent.ID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to save transition", zap.String("id", indent.ID), zap.Error(err))
		return fmt.Errorf("failed to save transition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("indent %s at version %d: %w", indent.ID, expectedVersion, port.ErrConflict)
	}

	return nil
}

// List retrieves indents with pagination, newest first
func (r *IndentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Indent, error) {
	query := `SELECT ` + indentColumns + ` FROM indents ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list indents", zap.Error(err))
		return nil, fmt.Errorf("failed to list indents: %w", err)
	}
	defer rows.Close()

	return collectIndents(rows)
}

// ListInFlight returns indents still awaiting an approval decision and
// carrying an SLA deadline
func (r *IndentRepository) ListInFlight(ctx context.Context) ([]*entity.Indent, error) {
	query := `SELECT ` + indentColumns + ` FROM indents
		WHERE status IN (?, ?) AND sla_deadline IS NOT NULL`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entity.StatusPending, entity.StatusApproved)
	if err != nil {
		r.logger.Error("Failed to list in-flight indents", zap.Error(err))
		return nil, fmt.Errorf("failed to list in-flight indents: %w", err)
	}
	defer rows.Close()

	return collectIndents(rows)
}

func (r *IndentRepository) loadItems(ctx context.Context, indent *entity.Indent) error {
	query := `
		SELECT id, indent_id, name, description, quantity, unit, estimated_cost, justification
		FROM indent_items WHERE indent_id = ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, indent.ID)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.IndentItem
		if err := rows.Scan(
			&item.ID,
			&item.IndentID,
			&item.Name,
			&item.Description,
			&item.Quantity,
			&item.Unit,
			&item.EstimatedCost,
			&item.Justification,
		); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		indent.Items = append(indent.Items, &item)
	}
	return rows.Err()
}

func (r *IndentRepository) loadApprovals(ctx context.Context, indent *entity.Indent) error {
	query := `
		SELECT id, indent_id, approver_id, decision, remarks, stage_order,
			stage_role, sla_breached, timestamp
		FROM approvals WHERE indent_id = ? ORDER BY timestamp ASC, rowid ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, indent.ID)
	if err != nil {
		return fmt.Errorf("failed to load approvals: %w", err)
	}
	defer rows.Close()

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
			return fmt.Errorf("failed to scan approval: %w", err)
		}
		indent.Approvals = append(indent.Approvals, &approval)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIndent(row rowScanner) (*entity.Indent, error) {
	var indent entity.Indent
	var slaDeadline sql.NullTime

	err := row.Scan(
		&indent.ID,
		&indent.RequesterID,
		&indent.Department,
		&indent.Title,
		&indent.Description,
		&indent.BudgetCode,
		&indent.Priority,
		&indent.Status,
		&indent.Amount,
		&slaDeadline,
		&indent.Version,
		&indent.CreatedAt,
		&indent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if slaDeadline.Valid {
		indent.SLADeadline = &slaDeadline.Time
	}
	return &indent, nil
}

func collectIndents(rows *sql.Rows) ([]*entity.Indent, error) {
	var indents []*entity.Indent
	for rows.Next() {
		indent, err := scanIndent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indent: %w", err)
		}
		indents = append(indents, indent)
	}
	return indents, rows.Err()
}

// Verify interface compliance
var _ port.IndentRepository = (*IndentRepository)(nil)
