package entity

import "time"

// Approval is an immutable audit record of a single approval decision.
// Once written it is never edited; the SLA breach flag is frozen at the
// moment the decision was recorded.
type Approval struct {
	ID          string    `json:"id"`
	IndentID    string    `json:"indent_id"`
	ApproverID  string    `json:"approver_id"`
	Decision    string    `json:"decision"`
	Remarks     string    `json:"remarks,omitempty"`
	StageOrder  int       `json:"stage_order"`
	StageRole   string    `json:"stage_role"`
	SLABreached bool      `json:"sla_breached"`
	Timestamp   time.Time `json:"timestamp"`
}
