package workflow

import (
	"fmt"
	"math"
	"sort"

	"github.com/garyjia/procure-indent/internal/domain/role"
)

// ApprovalStage is one rung of the approval ladder: a role and the largest
// amount that rung still covers. An infinite threshold marks the unbounded
// final rung.
type ApprovalStage struct {
	Role      role.Role
	Threshold float64
	Order     int
}

// Unbounded returns true if the stage covers any amount
func (s ApprovalStage) Unbounded() bool {
	return math.IsInf(s.Threshold, 1)
}

// StageTable is the ordered, read-only approval ladder. It is process-wide
// static configuration.
type StageTable struct {
	stages []ApprovalStage
}

// DefaultStages returns the standard three-rung ladder
func DefaultStages() []ApprovalStage {
	return []ApprovalStage{
		{Role: role.RoleManager, Threshold: 50000, Order: 1},
		{Role: role.RoleDirector, Threshold: 500000, Order: 2},
		{Role: role.RoleProcurementOfficer, Threshold: math.Inf(1), Order: 3},
	}
}

// NewStageTable validates and builds a stage table. Orders must be unique
// and thresholds non-decreasing in order.
func NewStageTable(stages []ApprovalStage) (*StageTable, error) {
	sorted := append([]ApprovalStage{}, stages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	for i, stage := range sorted {
		if !stage.Role.IsValid() {
			return nil, fmt.Errorf("stage %d: unknown role %q", stage.Order, stage.Role)
		}
		if i > 0 {
			prev := sorted[i-1]
			if stage.Order == prev.Order {
				return nil, fmt.Errorf("duplicate stage order %d", stage.Order)
			}
			if stage.Threshold < prev.Threshold {
				return nil, fmt.Errorf("stage %d threshold %v below stage %d threshold %v",
					stage.Order, stage.Threshold, prev.Order, prev.Threshold)
			}
		}
	}

	return &StageTable{stages: sorted}, nil
}

// MustStageTable builds a stage table and panics on invalid configuration
func MustStageTable(stages []ApprovalStage) *StageTable {
	t, err := NewStageTable(stages)
	if err != nil {
		panic(err)
	}
	return t
}

// Stages returns a copy of the ladder in order
func (t *StageTable) Stages() []ApprovalStage {
	return append([]ApprovalStage{}, t.stages...)
}

// ResolveNext returns the lowest-order stage past currentOrder whose
// threshold still covers the amount. A currentOrder of 0 means no stage
// has acted yet. The second return is false when no stage matches.
func (t *StageTable) ResolveNext(amount float64, currentOrder int) (ApprovalStage, bool) {
	for _, stage := range t.stages {
		if stage.Order > currentOrder && amount <= stage.Threshold {
			return stage, true
		}
	}
	return ApprovalStage{}, false
}

// IsApprovalRequired returns true if the role has a configured stage whose
// threshold covers the amount, i.e. that role's sign-off is still meaningful
// for the given amount.
func (t *StageTable) IsApprovalRequired(r role.Role, amount float64) bool {
	for _, stage := range t.stages {
		if stage.Role == r {
			return amount <= stage.Threshold
		}
	}
	return false
}

// StageFor returns the stage configured for the role
func (t *StageTable) StageFor(r role.Role) (ApprovalStage, bool) {
	for _, stage := range t.stages {
		if stage.Role == r {
			return stage, true
		}
	}
	return ApprovalStage{}, false
}
