package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
	"github.com/garyjia/procure-indent/internal/domain/role"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DocumentGenerator produces the purchase-order form artifact.
// Generation failures never fail the transition itself.
type DocumentGenerator interface {
	GeneratePOForm(po *entity.PurchaseOrder, indent *entity.Indent, vendor *entity.Vendor) (string, error)
}

// ItemInput is a requested line item on submission
type ItemInput struct {
	Name          string
	Description   string
	Quantity      float64
	Unit          string
	EstimatedCost float64
	Justification string
}

// SubmitIndentRequest carries a new indent submission
type SubmitIndentRequest struct {
	RequesterID string
	Department  string
	Title       string
	Description string
	BudgetCode  string
	Priority    string
	Items       []ItemInput
}

// IndentService is the workflow engine: it owns every status transition
// an indent can undergo
type IndentService interface {
	SubmitIndent(ctx context.Context, req SubmitIndentRequest) (string, error)
	GetIndent(ctx context.Context, id string) (*entity.Indent, error)
	ListIndents(ctx context.Context, limit, offset int) ([]*entity.Indent, error)
	SubmitApproval(ctx context.Context, indentID, actorID string, actorRole role.Role, decision, remarks string) (string, error)
	IssuePurchaseOrder(ctx context.Context, indentID, vendorID string) (string, error)
	CompleteIndent(ctx context.Context, indentID string) error
	NextApprovalStage(amount float64, currentOrder int) (workflow.ApprovalStage, bool)
	PermittedActions(status string) []string
}

type indentServiceImpl struct {
	indentRepo   port.IndentRepository
	approvalRepo port.ApprovalRepository
	vendorRepo   port.VendorRepository
	poRepo       port.PurchaseOrderRepository
	txManager    port.TransactionManager
	stages       *workflow.StageTable
	slaClock     *workflow.SLAClock
	notifier     NotificationService
	documents    DocumentGenerator
	logger       Logger

	// one mutex per indent id; transitions against the same indent are
	// serialized so the authorization check never reads stale status
	locks sync.Map
}

// NewIndentService creates a new IndentService. notifier and documents
// may be nil; the corresponding side effects are then skipped.
func NewIndentService(
	indentRepo port.IndentRepository,
	approvalRepo port.ApprovalRepository,
	vendorRepo port.VendorRepository,
	poRepo port.PurchaseOrderRepository,
	txManager port.TransactionManager,
	stages *workflow.StageTable,
	slaClock *workflow.SLAClock,
	notifier NotificationService,
	documents DocumentGenerator,
	logger Logger,
) IndentService {
	return &indentServiceImpl{
		indentRepo:   indentRepo,
		approvalRepo: approvalRepo,
		vendorRepo:   vendorRepo,
		poRepo:       poRepo,
		txManager:    txManager,
		stages:       stages,
		slaClock:     slaClock,
		notifier:     notifier,
		documents:    documents,
		logger:       logger,
	}
}

func (s *indentServiceImpl) lockIndent(id string) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// SubmitIndent creates a new indent in PENDING with the amount computed
// from its items and the first stage's SLA deadline attached
func (s *indentServiceImpl) SubmitIndent(ctx context.Context, req SubmitIndentRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", fmt.Errorf("indent requires at least one item")
	}

	now := time.Now()
	indent := &entity.Indent{
		ID:          uuid.NewString(),
		RequesterID: req.RequesterID,
		Department:  req.Department,
		Title:       req.Title,
		Description: req.Description,
		BudgetCode:  req.BudgetCode,
		Priority:    req.Priority,
		Status:      entity.StatusPending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, item := range req.Items {
		indent.Items = append(indent.Items, &entity.IndentItem{
			ID:            uuid.NewString(),
			IndentID:      indent.ID,
			Name:          item.Name,
			Description:   item.Description,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			EstimatedCost: item.EstimatedCost,
			Justification: item.Justification,
		})
	}
	indent.Amount = entity.TotalEstimatedCost(indent.Items)

	firstStage, hasStage := s.stages.ResolveNext(indent.Amount, 0)
	if hasStage {
		deadline := s.slaClock.DeadlineFor(firstStage, now)
		indent.SLADeadline = &deadline
	}

	if err := s.indentRepo.Create(ctx, indent); err != nil {
		s.logger.Error("Failed to create indent", "error", err, "requester_id", req.RequesterID)
		return "", fmt.Errorf("create indent: %w", err)
	}

	s.notify(ctx, indent.RequesterID, entity.NotificationIndentStatus,
		"Indent submitted",
		fmt.Sprintf("Indent %q submitted for approval (amount %.2f)", indent.Title, indent.Amount),
		indent.ID)
	if hasStage {
		// role-addressed inbox for the stage that has to act next
		s.notify(ctx, firstStage.Role.String(), entity.NotificationApprovalRequired,
			"Approval required",
			fmt.Sprintf("Indent %q (amount %.2f) awaits your decision", indent.Title, indent.Amount),
			indent.ID)
	}

	s.logger.Info("Indent submitted", "indent_id", indent.ID, "amount", indent.Amount)
	return indent.ID, nil
}

// GetIndent retrieves an indent with its items and approvals
func (s *indentServiceImpl) GetIndent(ctx context.Context, id string) (*entity.Indent, error) {
	indent, err := s.indentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get indent", "error", err, "indent_id", id)
		return nil, err
	}
	if indent == nil {
		return nil, fmt.Errorf("indent %s: %w", id, port.ErrNotFound)
	}
	return indent, nil
}

// ListIndents retrieves a paginated list of indents
func (s *indentServiceImpl) ListIndents(ctx context.Context, limit, offset int) ([]*entity.Indent, error) {
	indents, err := s.indentRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list indents", "error", err)
		return nil, err
	}
	return indents, nil
}

// SubmitApproval applies an approval decision to an indent and returns the
// new status. The read, authorization check and write are serialized per
// indent and committed atomically with the approval record.
func (s *indentServiceImpl) SubmitApproval(ctx context.Context, indentID, actorID string, actorRole role.Role, decision, remarks string) (string, error) {
	unlock := s.lockIndent(indentID)
	defer unlock()

	indent, err := s.indentRepo.GetByID(ctx, indentID)
	if err != nil {
		return "", fmt.Errorf("load indent: %w", err)
	}
	if indent == nil {
		return "", fmt.Errorf("indent %s: %w", indentID, port.ErrNotFound)
	}

	state := workflow.State(indent.Status)

	requiredRole, accepting := workflow.RequiredRole(state)
	if !accepting {
		return "", fmt.Errorf("%w: indent %s is %s", workflow.ErrInvalidTransition, indentID, indent.Status)
	}
	if !actorRole.Subsumes(requiredRole) {
		s.logger.Error("Approval rejected by policy", "indent_id", indentID,
			"actor_id", actorID, "actor_role", actorRole.String(), "required_role", requiredRole.String())
		return "", fmt.Errorf("%w: %s acting on %s stage", workflow.ErrUnauthorized, actorRole, requiredRole)
	}

	var trigger workflow.Trigger
	switch decision {
	case entity.DecisionApproved:
		trigger = workflow.TriggerApprove
	case entity.DecisionRejected:
		trigger = workflow.TriggerReject
	default:
		return "", fmt.Errorf("unknown decision %q", decision)
	}

	machine := workflow.NewIndentMachine(state)
	if err := machine.Fire(ctx, trigger); err != nil {
		return "", err
	}
	newState := machine.State()

	now := time.Now()
	breached := indent.SLADeadline != nil && s.slaClock.IsBreached(*indent.SLADeadline, now)

	stageOrder := 0
	if stage, ok := s.stages.StageFor(requiredRole); ok {
		stageOrder = stage.Order
	}

	approval := &entity.Approval{
		ID:          uuid.NewString(),
		IndentID:    indent.ID,
		ApproverID:  actorID,
		Decision:    decision,
		Remarks:     remarks,
		StageOrder:  stageOrder,
		StageRole:   requiredRole.String(),
		SLABreached: breached,
		Timestamp:   now,
	}

	expectedVersion := indent.Version
	indent.Status = newState.String()
	indent.Version++
	indent.UpdatedAt = now
	indent.SLADeadline = nil
	var nextRole role.Role
	var hasNext bool
	if r, ok := workflow.RequiredRole(newState); ok {
		nextRole = r
		hasNext = true
		if stage, ok := s.stages.StageFor(r); ok {
			deadline := s.slaClock.DeadlineFor(stage, now)
			indent.SLADeadline = &deadline
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.indentRepo.SaveTransition(txCtx, indent, expectedVersion); err != nil {
			return fmt.Errorf("save transition: %w", err)
		}
		if err := s.approvalRepo.Create(txCtx, approval); err != nil {
			return fmt.Errorf("append approval: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to persist approval", "error", err, "indent_id", indentID)
		return "", err
	}

	indent.Approvals = append(indent.Approvals, approval)

	s.notify(ctx, indent.RequesterID, entity.NotificationIndentStatus,
		"Indent "+indent.Status,
		fmt.Sprintf("Indent %q is now %s", indent.Title, indent.Status),
		indent.ID)
	if hasNext {
		s.notify(ctx, nextRole.String(), entity.NotificationApprovalRequired,
			"Approval required",
			fmt.Sprintf("Indent %q (amount %.2f) awaits your decision", indent.Title, indent.Amount),
			indent.ID)
	}

	s.logger.Info("Approval recorded", "indent_id", indentID, "decision", decision,
		"new_status", indent.Status, "sla_breached", breached)
	return indent.Status, nil
}

// IssuePurchaseOrder creates the single purchase order for an indent and
// moves it to PO_CREATED. Legal only from PROCUREMENT_APPROVED.
func (s *indentServiceImpl) IssuePurchaseOrder(ctx context.Context, indentID, vendorID string) (string, error) {
	unlock := s.lockIndent(indentID)
	defer unlock()

	indent, err := s.indentRepo.GetByID(ctx, indentID)
	if err != nil {
		return "", fmt.Errorf("load indent: %w", err)
	}
	if indent == nil {
		return "", fmt.Errorf("indent %s: %w", indentID, port.ErrNotFound)
	}

	// Settle the state question before touching the vendor registry
	machine := workflow.NewIndentMachine(workflow.State(indent.Status))
	if !machine.CanFire(workflow.TriggerCreatePO) {
		return "", fmt.Errorf("%w: cannot issue purchase order while indent %s is %s",
			workflow.ErrInvalidTransition, indentID, indent.Status)
	}

	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return "", fmt.Errorf("load vendor: %w", err)
	}
	if vendor == nil {
		return "", fmt.Errorf("vendor %s: %w", vendorID, port.ErrNotFound)
	}

	if err := machine.Fire(ctx, workflow.TriggerCreatePO); err != nil {
		return "", err
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:        uuid.NewString(),
		IndentID:  indent.ID,
		VendorID:  vendor.ID,
		PONumber:  fmt.Sprintf("PO-%d", now.UnixMilli()%1e7),
		Amount:    indent.Amount,
		Status:    entity.POStatusIssued,
		IssueDate: now,
	}

	expectedVersion := indent.Version
	indent.Status = machine.State().String()
	indent.Version++
	indent.UpdatedAt = now
	indent.SLADeadline = nil

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.poRepo.Create(txCtx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		if err := s.indentRepo.SaveTransition(txCtx, indent, expectedVersion); err != nil {
			return fmt.Errorf("save transition: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to issue purchase order", "error", err, "indent_id", indentID)
		return "", err
	}

	if s.documents != nil {
		if path, err := s.documents.GeneratePOForm(po, indent, vendor); err != nil {
			s.logger.Error("PO form generation failed", "error", err, "po_id", po.ID)
		} else {
			s.logger.Info("PO form generated", "po_id", po.ID, "path", path)
		}
	}

	s.notify(ctx, indent.RequesterID, entity.NotificationPOCreated,
		"Purchase order issued",
		fmt.Sprintf("Purchase order %s issued for indent %q", po.PONumber, indent.Title),
		indent.ID)

	s.logger.Info("Purchase order issued", "indent_id", indentID, "po_id", po.ID, "po_number", po.PONumber)
	return po.ID, nil
}

// CompleteIndent closes out a fulfilled indent
func (s *indentServiceImpl) CompleteIndent(ctx context.Context, indentID string) error {
	unlock := s.lockIndent(indentID)
	defer unlock()

	indent, err := s.indentRepo.GetByID(ctx, indentID)
	if err != nil {
		return fmt.Errorf("load indent: %w", err)
	}
	if indent == nil {
		return fmt.Errorf("indent %s: %w", indentID, port.ErrNotFound)
	}

	machine := workflow.NewIndentMachine(workflow.State(indent.Status))
	if err := machine.Fire(ctx, workflow.TriggerComplete); err != nil {
		return err
	}

	expectedVersion := indent.Version
	indent.Status = machine.State().String()
	indent.Version++
	indent.UpdatedAt = time.Now()

	if err := s.indentRepo.SaveTransition(ctx, indent, expectedVersion); err != nil {
		s.logger.Error("Failed to complete indent", "error", err, "indent_id", indentID)
		return fmt.Errorf("save transition: %w", err)
	}

	s.logger.Info("Indent completed", "indent_id", indentID)
	return nil
}

// NextApprovalStage exposes stage resolution to callers
func (s *indentServiceImpl) NextApprovalStage(amount float64, currentOrder int) (workflow.ApprovalStage, bool) {
	return s.stages.ResolveNext(amount, currentOrder)
}

// PermittedActions reports which workflow triggers are legal from the
// given status, sorted for stable output. Terminal and unknown statuses
// permit nothing.
func (s *indentServiceImpl) PermittedActions(status string) []string {
	state := workflow.State(status)
	if !state.IsValid() {
		return []string{}
	}

	triggers := workflow.NewIndentMachine(state).PermittedTriggers()
	actions := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		actions = append(actions, trigger.String())
	}
	sort.Strings(actions)
	return actions
}

// notify records a notification best-effort; a failure never fails the
// transition that triggered it
func (s *indentServiceImpl) notify(ctx context.Context, userID, ntype, title, message, link string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, ntype, title, message, link); err != nil {
		s.logger.Error("Failed to record notification", "error", err, "user_id", userID, "type", ntype)
	}
}
