package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/domain/entity"
	"github.com/garyjia/procure-indent/internal/domain/role"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
)

// Mock repositories

type mockIndentRepo struct {
	createFunc         func(ctx context.Context, indent *entity.Indent) error
	getByIDFunc        func(ctx context.Context, id string) (*entity.Indent, error)
	saveTransitionFunc func(ctx context.Context, indent *entity.Indent, expectedVersion int64) error
	listFunc           func(ctx context.Context, limit, offset int) ([]*entity.Indent, error)
}

func (m *mockIndentRepo) Create(ctx context.Context, indent *entity.Indent) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, indent)
	}
	return nil
}

func (m *mockIndentRepo) GetByID(ctx context.Context, id string) (*entity.Indent, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockIndentRepo) SaveTransition(ctx context.Context, indent *entity.Indent, expectedVersion int64) error {
	if m.saveTransitionFunc != nil {
		return m.saveTransitionFunc(ctx, indent, expectedVersion)
	}
	return nil
}

func (m *mockIndentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Indent, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockIndentRepo) ListInFlight(ctx context.Context) ([]*entity.Indent, error) {
	return nil, nil
}

type mockApprovalRepo struct {
	created []*entity.Approval
}

func (m *mockApprovalRepo) Create(ctx context.Context, approval *entity.Approval) error {
	m.created = append(m.created, approval)
	return nil
}

func (m *mockApprovalRepo) GetByIndentID(ctx context.Context, indentID string) ([]*entity.Approval, error) {
	return m.created, nil
}

type mockVendorRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Vendor, error)
}

func (m *mockVendorRepo) Create(ctx context.Context, vendor *entity.Vendor) error { return nil }

func (m *mockVendorRepo) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Vendor{ID: id, Name: "Acme Supplies"}, nil
}

func (m *mockVendorRepo) List(ctx context.Context) ([]*entity.Vendor, error) { return nil, nil }

type mockPORepo struct {
	created []*entity.PurchaseOrder
}

func (m *mockPORepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	m.created = append(m.created, po)
	return nil
}

func (m *mockPORepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return nil, nil
}

func (m *mockPORepo) GetByIndentID(ctx context.Context, indentID string) (*entity.PurchaseOrder, error) {
	for _, po := range m.created {
		if po.IndentID == indentID {
			return po, nil
		}
	}
	return nil, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestService(indentRepo *mockIndentRepo, approvalRepo *mockApprovalRepo, vendorRepo *mockVendorRepo, poRepo *mockPORepo) IndentService {
	return NewIndentService(
		indentRepo,
		approvalRepo,
		vendorRepo,
		poRepo,
		&mockTxManager{},
		workflow.MustStageTable(workflow.DefaultStages()),
		workflow.NewSLAClock(nil),
		nil,
		nil,
		nopLogger{},
	)
}

func pendingIndent() *entity.Indent {
	deadline := time.Now().Add(24 * time.Hour)
	return &entity.Indent{
		ID:          "ind-1",
		RequesterID: "user-1",
		Title:       "Lab equipment",
		Status:      entity.StatusPending,
		Amount:      2000,
		Version:     1,
		SLADeadline: &deadline,
	}
}

func TestSubmitIndent_ComputesAmountAndDeadline(t *testing.T) {
	var created *entity.Indent
	indentRepo := &mockIndentRepo{
		createFunc: func(ctx context.Context, indent *entity.Indent) error {
			created = indent
			return nil
		},
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	id, err := svc.SubmitIndent(context.Background(), SubmitIndentRequest{
		RequesterID: "user-1",
		Department:  "Engineering",
		Title:       "Lab equipment",
		Priority:    entity.PriorityHigh,
		Items: []ItemInput{
			{Name: "Oscilloscope", Quantity: 1, Unit: "pc", EstimatedCost: 1500},
			{Name: "Probes", Quantity: 5, Unit: "pc", EstimatedCost: 100},
		},
	})

	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.NotNil(t, created)
	assert.Equal(t, entity.StatusPending, created.Status)
	assert.Equal(t, float64(2000), created.Amount)
	require.NotNil(t, created.SLADeadline, "first stage deadline should be set")
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *created.SLADeadline, time.Minute)
}

func TestSubmitIndent_RequiresItems(t *testing.T) {
	svc := newTestService(&mockIndentRepo{}, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	_, err := svc.SubmitIndent(context.Background(), SubmitIndentRequest{RequesterID: "user-1"})
	assert.Error(t, err)
}

func TestSubmitApproval_ManagerApprovesPending(t *testing.T) {
	indent := pendingIndent()
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	approvalRepo := &mockApprovalRepo{}
	svc := newTestService(indentRepo, approvalRepo, &mockVendorRepo{}, &mockPORepo{})

	status, err := svc.SubmitApproval(context.Background(), "ind-1", "mgr-1", role.RoleManager, entity.DecisionApproved, "ok")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, status)
	require.Len(t, approvalRepo.created, 1)
	record := approvalRepo.created[0]
	assert.Equal(t, "mgr-1", record.ApproverID)
	assert.Equal(t, "manager", record.StageRole)
	assert.Equal(t, 1, record.StageOrder)
	assert.False(t, record.SLABreached)
	// procurement stage is next, 72h window
	require.NotNil(t, indent.SLADeadline)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), *indent.SLADeadline, time.Minute)
	assert.Equal(t, int64(2), indent.Version)
}

func TestSubmitApproval_EmployeeIsUnauthorized(t *testing.T) {
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return pendingIndent(), nil },
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	_, err := svc.SubmitApproval(context.Background(), "ind-1", "emp-1", role.RoleEmployee, entity.DecisionApproved, "")
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)
}

func TestSubmitApproval_ManagerCannotClearProcurementStage(t *testing.T) {
	indent := pendingIndent()
	indent.Status = entity.StatusApproved
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	_, err := svc.SubmitApproval(context.Background(), "ind-1", "mgr-1", role.RoleManager, entity.DecisionApproved, "")
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)
}

func TestSubmitApproval_ProcurementClearsApproved(t *testing.T) {
	indent := pendingIndent()
	indent.Status = entity.StatusApproved
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	status, err := svc.SubmitApproval(context.Background(), "ind-1", "po-1", role.RoleProcurementOfficer, entity.DecisionApproved, "")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcurementApproved, status)
	assert.Nil(t, indent.SLADeadline, "no approval stage remains")
}

func TestSubmitApproval_RejectIsTerminal(t *testing.T) {
	indent := pendingIndent()
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	status, err := svc.SubmitApproval(context.Background(), "ind-1", "mgr-1", role.RoleManager, entity.DecisionRejected, "over budget")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, status)

	// A further decision against the rejected indent is an invalid transition
	_, err = svc.SubmitApproval(context.Background(), "ind-1", "po-1", role.RoleProcurementOfficer, entity.DecisionApproved, "")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestSubmitApproval_SLABreachFrozenOnRecord(t *testing.T) {
	indent := pendingIndent()
	stale := time.Now().Add(-time.Hour)
	indent.SLADeadline = &stale
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	approvalRepo := &mockApprovalRepo{}
	svc := newTestService(indentRepo, approvalRepo, &mockVendorRepo{}, &mockPORepo{})

	_, err := svc.SubmitApproval(context.Background(), "ind-1", "mgr-1", role.RoleManager, entity.DecisionApproved, "")
	require.NoError(t, err)
	require.Len(t, approvalRepo.created, 1)
	assert.True(t, approvalRepo.created[0].SLABreached)
}

func TestSubmitApproval_NotFound(t *testing.T) {
	svc := newTestService(&mockIndentRepo{}, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	_, err := svc.SubmitApproval(context.Background(), "missing", "mgr-1", role.RoleManager, entity.DecisionApproved, "")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestIssuePurchaseOrder_OnlyFromProcurementApproved(t *testing.T) {
	indent := pendingIndent()
	indent.Status = entity.StatusProcurementApproved
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	poRepo := &mockPORepo{}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, poRepo)

	poID, err := svc.IssuePurchaseOrder(context.Background(), "ind-1", "ven-1")
	require.NoError(t, err)
	require.NotEmpty(t, poID)
	assert.Equal(t, entity.StatusPOCreated, indent.Status)
	require.Len(t, poRepo.created, 1)
	assert.Equal(t, indent.Amount, poRepo.created[0].Amount)

	// Second call hits PO_CREATED and is rejected; at most one PO per indent
	_, err = svc.IssuePurchaseOrder(context.Background(), "ind-1", "ven-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	assert.Len(t, poRepo.created, 1)
}

func TestIssuePurchaseOrder_WrongStateSkipsVendorLookup(t *testing.T) {
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return pendingIndent(), nil },
	}
	vendorRepo := &mockVendorRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Vendor, error) {
			t.Error("vendor registry consulted before the state check")
			return nil, nil
		},
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, vendorRepo, &mockPORepo{})

	_, err := svc.IssuePurchaseOrder(context.Background(), "ind-1", "ven-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestPermittedActions(t *testing.T) {
	svc := newTestService(&mockIndentRepo{}, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	assert.Equal(t, []string{"APPROVE", "REJECT"}, svc.PermittedActions(entity.StatusPending))
	assert.Equal(t, []string{"APPROVE", "REJECT"}, svc.PermittedActions(entity.StatusApproved))
	assert.Equal(t, []string{"CREATE_PO"}, svc.PermittedActions(entity.StatusProcurementApproved))
	assert.Equal(t, []string{"COMPLETE"}, svc.PermittedActions(entity.StatusPOCreated))
	assert.Empty(t, svc.PermittedActions(entity.StatusRejected))
	assert.Empty(t, svc.PermittedActions("GARBAGE"))
}

func TestIssuePurchaseOrder_VendorMustExist(t *testing.T) {
	indent := pendingIndent()
	indent.Status = entity.StatusProcurementApproved
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	vendorRepo := &mockVendorRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Vendor, error) { return nil, nil },
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, vendorRepo, &mockPORepo{})

	_, err := svc.IssuePurchaseOrder(context.Background(), "ind-1", "ghost")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestCompleteIndent(t *testing.T) {
	indent := pendingIndent()
	indent.Status = entity.StatusPOCreated
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	require.NoError(t, svc.CompleteIndent(context.Background(), "ind-1"))
	assert.Equal(t, entity.StatusCompleted, indent.Status)

	err := svc.CompleteIndent(context.Background(), "ind-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestSubmitApproval_SurfacesVersionConflict(t *testing.T) {
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return pendingIndent(), nil },
		saveTransitionFunc: func(ctx context.Context, indent *entity.Indent, expectedVersion int64) error {
			return port.ErrConflict
		},
	}
	svc := newTestService(indentRepo, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	_, err := svc.SubmitApproval(context.Background(), "ind-1", "mgr-1", role.RoleManager, entity.DecisionApproved, "")
	assert.ErrorIs(t, err, port.ErrConflict)
}

func TestSubmitApproval_RacingManagersOneWins(t *testing.T) {
	indent := pendingIndent()
	indentRepo := &mockIndentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Indent, error) { return indent, nil },
		saveTransitionFunc: func(ctx context.Context, in *entity.Indent, expectedVersion int64) error {
			// expectedVersion reflects the read under the indent's lock,
			// so a stale write here would be a serialization failure
			if in.Version != expectedVersion+1 {
				return port.ErrConflict
			}
			return nil
		},
	}
	approvalRepo := &mockApprovalRepo{}
	svc := newTestService(indentRepo, approvalRepo, &mockVendorRepo{}, &mockPORepo{})

	start := make(chan struct{})
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, approver := range []string{"mgr-1", "mgr-2"} {
		wg.Add(1)
		go func(approver string) {
			defer wg.Done()
			<-start
			_, err := svc.SubmitApproval(context.Background(), "ind-1", approver, role.RoleManager, entity.DecisionApproved, "")
			results <- err
		}(approver)
	}
	close(start)
	wg.Wait()
	close(results)

	var succeeded, unauthorized int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, workflow.ErrUnauthorized):
			unauthorized++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly one manager clears PENDING; the loser reads the advanced
	// status and the procurement stage rejects its tier
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, unauthorized)
	assert.Len(t, approvalRepo.created, 1)
	assert.Equal(t, entity.StatusApproved, indent.Status)
	assert.Equal(t, int64(2), indent.Version)
}

func TestNextApprovalStage_WalksLadderOneRungAtATime(t *testing.T) {
	svc := newTestService(&mockIndentRepo{}, &mockApprovalRepo{}, &mockVendorRepo{}, &mockPORepo{})

	stage, ok := svc.NextApprovalStage(2000, 0)
	require.True(t, ok)
	assert.Equal(t, role.RoleManager, stage.Role)
	assert.Equal(t, 1, stage.Order)

	stage, ok = svc.NextApprovalStage(2000, 1)
	require.True(t, ok)
	assert.Equal(t, role.RoleDirector, stage.Role)
}
