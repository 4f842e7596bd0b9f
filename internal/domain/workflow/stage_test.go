package workflow

import (
	"math"
	"testing"

	"github.com/garyjia/procure-indent/internal/domain/role"
)

func TestNewStageTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		stages  []ApprovalStage
		wantErr bool
	}{
		{"default ladder", DefaultStages(), false},
		{"empty table", nil, false},
		{
			"duplicate order",
			[]ApprovalStage{
				{Role: role.RoleManager, Threshold: 100, Order: 1},
				{Role: role.RoleDirector, Threshold: 200, Order: 1},
			},
			true,
		},
		{
			"decreasing threshold",
			[]ApprovalStage{
				{Role: role.RoleManager, Threshold: 500, Order: 1},
				{Role: role.RoleDirector, Threshold: 100, Order: 2},
			},
			true,
		},
		{
			"unknown role",
			[]ApprovalStage{{Role: role.Role("intern"), Threshold: 100, Order: 1}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStageTable(tt.stages)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStageTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStageTable_ResolveNext(t *testing.T) {
	table := MustStageTable(DefaultStages())

	tests := []struct {
		name         string
		amount       float64
		currentOrder int
		wantRole     role.Role
		wantOrder    int
		wantFound    bool
	}{
		{"small amount starts at manager", 2000, 0, role.RoleManager, 1, true},
		{"amount at manager threshold", 50000, 0, role.RoleManager, 1, true},
		{"amount above manager goes to director", 50001, 0, role.RoleDirector, 2, true},
		{"amount above director goes to unbounded rung", 600000, 0, role.RoleProcurementOfficer, 3, true},
		{"after manager, small amount still walks the ladder", 2000, 1, role.RoleDirector, 2, true},
		{"after director", 2000, 2, role.RoleProcurementOfficer, 3, true},
		{"past the last rung", 2000, 3, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, found := table.ResolveNext(tt.amount, tt.currentOrder)
			if found != tt.wantFound {
				t.Fatalf("ResolveNext() found = %v, want %v", found, tt.wantFound)
			}
			if found && (stage.Role != tt.wantRole || stage.Order != tt.wantOrder) {
				t.Errorf("ResolveNext() = {%s %d}, want {%s %d}", stage.Role, stage.Order, tt.wantRole, tt.wantOrder)
			}
		})
	}
}

func TestStageTable_ResolveNext_EmptyTable(t *testing.T) {
	table := MustStageTable(nil)
	if _, found := table.ResolveNext(1000, 0); found {
		t.Error("ResolveNext() on empty table should find nothing")
	}
}

func TestStageTable_IsApprovalRequired(t *testing.T) {
	table := MustStageTable(DefaultStages())

	tests := []struct {
		name     string
		role     role.Role
		amount   float64
		expected bool
	}{
		{"manager covers small amount", role.RoleManager, 2000, true},
		{"manager at threshold", role.RoleManager, 50000, true},
		{"manager above threshold", role.RoleManager, 50001, false},
		{"procurement officer covers anything", role.RoleProcurementOfficer, math.MaxFloat64, true},
		{"role without a stage", role.RoleEmployee, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.IsApprovalRequired(tt.role, tt.amount); got != tt.expected {
				t.Errorf("IsApprovalRequired(%s, %v) = %v, want %v", tt.role, tt.amount, got, tt.expected)
			}
		})
	}
}

func TestApprovalStage_Unbounded(t *testing.T) {
	if (ApprovalStage{Threshold: 50000}).Unbounded() {
		t.Error("finite threshold reported as unbounded")
	}
	if !(ApprovalStage{Threshold: math.Inf(1)}).Unbounded() {
		t.Error("infinite threshold not reported as unbounded")
	}
}
